package ports

import (
	"context"

	"github.com/Vovarama1992/voxstudio/internal/models"
)

type SceneRequest struct {
	Prompt         string
	Duration       float64
	Style          string
	AnimationLevel string
}

// ScriptWriter drafts and edits scripts with an LLM.
type ScriptWriter interface {
	DraftScenes(ctx context.Context, req SceneRequest) (*models.VideoPlan, error)
	DraftReel(ctx context.Context, prompt string, duration float64) (*models.ReelPlan, error)
	EditScenes(ctx context.Context, current []models.Scene, instructions string, duration float64, style string) ([]models.Scene, error)
	EnhancePrompt(ctx context.Context, prompt, aspectRatio string, duration int) (models.EnhancedPrompt, error)
}
