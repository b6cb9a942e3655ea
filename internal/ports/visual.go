package ports

import (
	"context"

	"github.com/Vovarama1992/voxstudio/internal/models"
)

// VideoGenerator is a long-running text-to-video provider (Veo).
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, prompt, aspectRatio string, seconds int) (*models.GeneratedClip, error)
}

// ImageGenerator returns encoded image bytes (Imagen).
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// AssetStore persists generated media and returns a public URL path.
type AssetStore interface {
	Save(ctx context.Context, dir, name string, data []byte) (string, error)
}

// UnavailableError means the provider refused the job before starting it
// (quota, permissions, model not enabled).
type UnavailableError struct {
	Message string
}

func (e *UnavailableError) Error() string { return e.Message }
