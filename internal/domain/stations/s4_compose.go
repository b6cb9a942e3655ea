package stations

import (
	"errors"
	"log"

	"github.com/Vovarama1992/voxstudio/internal/domain/composition"
)

type S4Compose struct {
	fps int
}

func NewS4Compose(fps int) *S4Compose {
	return &S4Compose{fps: fps}
}

func (s *S4Compose) Run(d *Draft) (*composition.RenderPlan, error) {
	var plan *composition.RenderPlan
	switch {
	case d.Reel != nil:
		plan = composition.BuildReel(d.Reel, s.fps)
	case d.Video != nil:
		plan = composition.BuildVideo(d.Video, s.fps)
	default:
		return nil, errors.New("empty draft")
	}

	log.Printf("[S4][OK] comp=%s frames=%d audio=%d", plan.Composition, plan.TotalFrames, len(plan.Audio))
	return plan, nil
}
