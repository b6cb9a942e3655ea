package ports

import (
	"context"

	"github.com/Vovarama1992/voxstudio/internal/models"
)

type VideoRepository interface {
	SaveVideo(ctx context.Context, v *models.Video) error
	ListVideos(ctx context.Context, limit int) ([]models.Video, error)
	GetVideo(ctx context.Context, id string) (*models.Video, error)
}
