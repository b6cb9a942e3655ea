package ports

import (
	"context"

	"github.com/Vovarama1992/voxstudio/internal/domain/composition"
)

// Renderer turns a render plan into an mp4 and returns its URL path.
type Renderer interface {
	Render(ctx context.Context, plan *composition.RenderPlan) (string, error)
}
