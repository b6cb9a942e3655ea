package stations

import (
	"context"
	"log"
	"time"

	"github.com/Vovarama1992/voxstudio/internal/domain/composition"
	"github.com/Vovarama1992/voxstudio/internal/ports"
	"github.com/Vovarama1992/voxstudio/internal/textutil"
)

type S5Render struct {
	renderer ports.Renderer
}

func NewS5Render(renderer ports.Renderer) *S5Render {
	return &S5Render{renderer: renderer}
}

func (s *S5Render) Run(ctx context.Context, plan *composition.RenderPlan) (string, error) {
	start := time.Now()
	log.Printf("[S5][START] comp=%s title=%q frames=%d", plan.Composition, textutil.Trim(plan.Title, 80), plan.TotalFrames)

	url, err := s.renderer.Render(ctx, plan)
	if err != nil {
		log.Printf("[S5][ERR] %v", err)
		return "", err
	}

	log.Printf("[S5][OK] url=%s dur=%s", url, time.Since(start))
	return url, nil
}
