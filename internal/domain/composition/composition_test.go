package composition

import (
	"encoding/json"
	"testing"

	"github.com/Vovarama1992/voxstudio/internal/domain/timeline"
	"github.com/Vovarama1992/voxstudio/internal/models"
)

func TestBuildVideo(t *testing.T) {
	plan := &models.VideoPlan{
		Title:    "Sun",
		Duration: 15,
		Style:    "Educational",
		Scenes: []models.Scene{
			{ID: 1, Title: "Rise", Duration: 5, Script: "The sun rises", VideoURL: "/assets/videos/1.mp4", TTSAudioURL: "/audio/1.mp3"},
			{ID: 2, Title: "Noon", Duration: 6, Script: "It climbs", ImageURLs: []string{"/assets/images/2-1.jpg"}},
			{ID: 3, Title: "Set", Duration: 4, TTSAudioURL: "/audio/3.mp3"},
		},
	}

	rp := BuildVideo(plan, 0)
	if rp.Composition != VideoComposition || rp.IsReel() {
		t.Fatalf("composition = %s", rp.Composition)
	}
	if rp.FPS != timeline.DefaultFPS || rp.Width != 1280 || rp.Height != 720 {
		t.Errorf("format = %dfps %dx%d", rp.FPS, rp.Width, rp.Height)
	}
	if rp.TotalFrames != 450 {
		t.Errorf("total frames = %d, want 450", rp.TotalFrames)
	}
	if got := rp.Scenes[2].Sequence.From; got != 330 {
		t.Errorf("scene 3 from = %d, want 330", got)
	}
	if rp.Scenes[2].Background.Source != timeline.SourceAnimated {
		t.Errorf("scene 3 background = %+v", rp.Scenes[2].Background)
	}

	if len(rp.Audio) != 3 {
		t.Fatalf("audio tracks = %+v", rp.Audio)
	}
	if !rp.Audio[0].Loop || rp.Audio[0].Volume != 0.04 {
		t.Errorf("bgm = %+v", rp.Audio[0])
	}
	if rp.Audio[2].From != 330 || rp.Audio[2].Volume != 1.8 {
		t.Errorf("narration = %+v", rp.Audio[2])
	}
}

func TestBuildVideoWithoutScenesUsesPlanDuration(t *testing.T) {
	rp := BuildVideo(&models.VideoPlan{Duration: 30}, 30)
	if rp.TotalFrames != 900 {
		t.Errorf("total frames = %d, want 900", rp.TotalFrames)
	}
	rp = BuildVideo(&models.VideoPlan{}, 30)
	if rp.TotalFrames != 1800 {
		t.Errorf("total frames = %d, want default 1800", rp.TotalFrames)
	}
}

func TestBuildReel(t *testing.T) {
	plan := &models.ReelPlan{
		Title:         "Atoms",
		TotalDuration: 15,
		Segments: []models.Segment{
			{Type: models.SegmentAvatar, Duration: 5, Script: "Did you know?", TTSAudioURL: "/audio/a.mp3"},
			{Type: models.SegmentVisual, Duration: 5, ImageURLs: []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg"}},
			{Type: models.SegmentVisual, Duration: 5, VideoURL: "/assets/videos/c.mp4"},
		},
	}

	rp := BuildReel(plan, 30)
	if !rp.IsReel() || rp.Width != 1080 || rp.Height != 1920 {
		t.Fatalf("plan = %s %dx%d", rp.Composition, rp.Width, rp.Height)
	}
	if rp.TotalFrames != 450 {
		t.Errorf("total frames = %d, want 450", rp.TotalFrames)
	}

	avatar := rp.Segments[0]
	if avatar.AvatarVideo != avatarFallback {
		t.Errorf("avatar video = %q", avatar.AvatarVideo)
	}
	if avatar.Caption == nil || avatar.Caption.FontSize != 64 || avatar.Caption.Animation != timeline.TextWordByWord {
		t.Errorf("caption = %+v", avatar.Caption)
	}

	slides := rp.Segments[1].Slides
	if len(slides) != 4 || slides[0].DurationInFrames != 37 {
		t.Errorf("slides = %+v", slides)
	}
	if rp.Segments[1].Sequence.From != 150 {
		t.Errorf("segment 2 from = %d", rp.Segments[1].Sequence.From)
	}
	if rp.Segments[2].Video != "/assets/videos/c.mp4" || rp.Segments[2].Slides != nil {
		t.Errorf("segment 3 = %+v", rp.Segments[2])
	}

	if len(rp.Audio) != 2 || rp.Audio[1].Volume != 1.5 || rp.Audio[0].Src != reelBGM {
		t.Errorf("audio = %+v", rp.Audio)
	}
}

func TestRenderPlanCarriesTotalFrames(t *testing.T) {
	rp := BuildVideo(&models.VideoPlan{Scenes: []models.Scene{{Duration: 2}}}, 30)
	raw, err := json.Marshal(rp)
	if err != nil {
		t.Fatal(err)
	}
	var props map[string]any
	if err := json.Unmarshal(raw, &props); err != nil {
		t.Fatal(err)
	}
	if props["_totalFrames"] != float64(60) {
		t.Errorf("_totalFrames = %v, want 60", props["_totalFrames"])
	}
}
