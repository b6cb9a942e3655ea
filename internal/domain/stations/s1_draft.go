package stations

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/Vovarama1992/voxstudio/internal/models"
	"github.com/Vovarama1992/voxstudio/internal/ports"
	"github.com/Vovarama1992/voxstudio/internal/textutil"
)

const ReelSegmentSeconds = 5

// Draft is the script of one job. Exactly one of Video and Reel is set.
type Draft struct {
	Prompt string
	Video  *models.VideoPlan
	Reel   *models.ReelPlan
}

func (d *Draft) Title() string {
	if d.Reel != nil {
		return d.Reel.Title
	}
	if d.Video != nil {
		return d.Video.Title
	}
	return ""
}

type S1Draft struct {
	writer ports.ScriptWriter
}

func NewS1Draft(writer ports.ScriptWriter) *S1Draft {
	return &S1Draft{writer: writer}
}

func (s *S1Draft) Run(ctx context.Context, req ports.ProduceRequest) (*Draft, error) {
	log.Printf("[S1][START] mode=%s dur=%g prompt=%q", req.Mode, req.Duration, textutil.Trim(req.Prompt, 120))

	if req.IsReel() {
		plan, err := s.writer.DraftReel(ctx, req.Prompt, req.Duration)
		if err != nil {
			log.Printf("[S1][ERR] reel: %v", err)
			return nil, err
		}
		NormalizeReel(plan, req.Duration)
		log.Printf("[S1][OK] reel=%q segments=%d", plan.Title, len(plan.Segments))
		return &Draft{Prompt: req.Prompt, Reel: plan}, nil
	}

	plan, err := s.writer.DraftScenes(ctx, ports.SceneRequest{
		Prompt:         req.Prompt,
		Duration:       req.Duration,
		Style:          req.Style,
		AnimationLevel: req.AnimationLevel,
	})
	if err != nil {
		log.Printf("[S1][ERR] scenes: %v", err)
		return nil, err
	}
	if len(plan.Scenes) == 0 {
		return nil, fmt.Errorf("script writer returned no scenes")
	}
	NormalizeScenes(plan, req.Style)
	log.Printf("[S1][OK] video=%q scenes=%d", plan.Title, len(plan.Scenes))
	return &Draft{Prompt: req.Prompt, Video: plan}, nil
}

// NormalizeScenes fills the style the writer may have left out and makes
// scene ids unique. Ids that are already unique, 0 included, are kept; a
// repeated id gets the next one past the largest.
func NormalizeScenes(plan *models.VideoPlan, style string) {
	if plan.Style == "" {
		plan.Style = style
	}

	next := 0
	for _, sc := range plan.Scenes {
		if sc.ID >= next {
			next = sc.ID + 1
		}
	}

	seen := make(map[int]bool, len(plan.Scenes))
	for i := range plan.Scenes {
		if seen[plan.Scenes[i].ID] {
			plan.Scenes[i].ID = next
			next++
		}
		seen[plan.Scenes[i].ID] = true
	}
}

// NormalizeReel forces floor(duration/5) five-second segments that
// alternate avatar, visual, avatar... whatever the model returned.
func NormalizeReel(plan *models.ReelPlan, duration float64) {
	count := int(math.Floor(duration / ReelSegmentSeconds))
	if count < 1 {
		count = 1
	}

	segs := plan.Segments
	if len(segs) > count {
		segs = segs[:count]
	}
	for len(segs) < count {
		segs = append(segs, models.Segment{})
	}

	for i := range segs {
		segs[i].Duration = ReelSegmentSeconds
		if i%2 == 0 {
			segs[i].Type = models.SegmentAvatar
			continue
		}
		segs[i].Type = models.SegmentVisual
		if segs[i].VisualPrompt == "" {
			segs[i].VisualPrompt = plan.Title
		}
	}

	plan.Segments = segs
	plan.TotalDuration = float64(count * ReelSegmentSeconds)
}
