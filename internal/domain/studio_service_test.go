package domain

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Vovarama1992/voxstudio/internal/domain/composition"
	"github.com/Vovarama1992/voxstudio/internal/domain/stations"
	"github.com/Vovarama1992/voxstudio/internal/models"
	"github.com/Vovarama1992/voxstudio/internal/ports"
)

type stubWriter struct {
	plan     *models.VideoPlan
	reel     *models.ReelPlan
	enhanced models.EnhancedPrompt
	gotReq   ports.SceneRequest
	gotEdit  float64
}

func (w *stubWriter) DraftScenes(_ context.Context, req ports.SceneRequest) (*models.VideoPlan, error) {
	w.gotReq = req
	return w.plan, nil
}

func (w *stubWriter) DraftReel(context.Context, string, float64) (*models.ReelPlan, error) {
	return w.reel, nil
}

func (w *stubWriter) EditScenes(_ context.Context, cur []models.Scene, _ string, duration float64, _ string) ([]models.Scene, error) {
	w.gotEdit = duration
	return cur, nil
}

func (w *stubWriter) EnhancePrompt(context.Context, string, string, int) (models.EnhancedPrompt, error) {
	return w.enhanced, nil
}

type stubTTS struct{ err error }

func (t stubTTS) Synthesize(context.Context, string, string) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	return []byte("mp3-audio-bytes"), nil
}

type stubVeo struct{ err error }

func (v stubVeo) GenerateVideo(context.Context, string, string, int) (*models.GeneratedClip, error) {
	if v.err != nil {
		return nil, v.err
	}
	return &models.GeneratedClip{Bytes: []byte("mp4")}, nil
}

type stubImagen struct{}

func (stubImagen) GenerateImage(context.Context, string) ([]byte, error) { return []byte("jpg"), nil }

type stubStore struct{}

func (stubStore) Save(_ context.Context, dir, name string, _ []byte) (string, error) {
	return "/" + dir + "/" + name, nil
}

type stubRenderer struct {
	mu   sync.Mutex
	plan *composition.RenderPlan
	err  error
}

func (r *stubRenderer) Render(_ context.Context, plan *composition.RenderPlan) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plan = plan
	if r.err != nil {
		return "", r.err
	}
	return "/videos/video-1.mp4", nil
}

type stubRepo struct {
	mu     sync.Mutex
	videos map[string]models.Video
}

func (r *stubRepo) SaveVideo(_ context.Context, v *models.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.videos == nil {
		r.videos = map[string]models.Video{}
	}
	r.videos[v.ID] = *v
	return nil
}

func (r *stubRepo) ListVideos(context.Context, int) ([]models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Video{}
	for _, v := range r.videos {
		out = append(out, v)
	}
	return out, nil
}

func (r *stubRepo) GetVideo(_ context.Context, id string) (*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.videos[id]; ok {
		return &v, nil
	}
	return nil, nil
}

type fixture struct {
	svc      *StudioService
	writer   *stubWriter
	renderer *stubRenderer
	repo     *stubRepo
}

func newFixture(t *testing.T, veoErr, ttsErr error) *fixture {
	t.Helper()
	f := &fixture{
		writer:   &stubWriter{},
		renderer: &stubRenderer{},
		repo:     &stubRepo{},
	}
	f.svc = NewStudioService(
		f.writer,
		f.repo,
		stations.NewS2Narrate(stubTTS{err: ttsErr}, stubStore{}),
		stations.NewS3Visualize(stubVeo{err: veoErr}, stubImagen{}, stubStore{}),
		stations.NewS4Compose(30),
		stations.NewS5Render(f.renderer),
		StudioConfig{Workers: 2, LogDir: t.TempDir()},
	)
	f.svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return f
}

func drain(ch <-chan ports.ProgressEvent) []ports.ProgressEvent {
	var out []ports.ProgressEvent
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestDraftScenesValidatesAndDefaults(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.writer.plan = &models.VideoPlan{Scenes: []models.Scene{{Duration: 5}}}

	_, err := f.svc.DraftScenes(context.Background(), ports.SceneRequest{Prompt: "   "})
	if !errors.Is(err, ErrInvalidInput) || err.Error() != "A prompt is required to generate scenes." {
		t.Fatalf("err = %v", err)
	}

	plan, err := f.svc.DraftScenes(context.Background(), ports.SceneRequest{Prompt: " bees "})
	if err != nil {
		t.Fatal(err)
	}
	if f.writer.gotReq.Duration != 60 || f.writer.gotReq.Style != "Educational" || f.writer.gotReq.AnimationLevel != "Medium" || f.writer.gotReq.Prompt != "bees" {
		t.Errorf("writer got %+v", f.writer.gotReq)
	}
	if plan.Scenes[0].ID != 0 || plan.Style != "Educational" {
		t.Errorf("plan = %+v", plan)
	}
}

func TestEditScenesDerivesDuration(t *testing.T) {
	f := newFixture(t, nil, nil)

	if _, err := f.svc.EditScenes(context.Background(), ports.EditRequest{Instructions: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}

	scenes := []models.Scene{{ID: 1, Duration: 4}, {ID: 2, Duration: 6}}
	if _, err := f.svc.EditScenes(context.Background(), ports.EditRequest{Scenes: scenes, Instructions: "shorter"}); err != nil {
		t.Fatal(err)
	}
	if f.writer.gotEdit != 10 {
		t.Errorf("duration = %g", f.writer.gotEdit)
	}
}

func TestDraftReelNormalizes(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.writer.reel = &models.ReelPlan{Title: "r"}

	plan, err := f.svc.DraftReel(context.Background(), "atoms", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Segments) != 12 || plan.TotalDuration != 60 {
		t.Errorf("segments=%d total=%g", len(plan.Segments), plan.TotalDuration)
	}
}

func TestStockImages(t *testing.T) {
	f := newFixture(t, nil, nil)
	urls := f.svc.StockImages("deep ocean blue whales singing", 0)
	if len(urls) != 4 {
		t.Fatalf("urls = %v", urls)
	}
	if urls[0] != "https://source.unsplash.com/random/1080x1920/?deep%2Cocean%2Cblue&sig=1700000000000" {
		t.Errorf("url[0] = %s", urls[0])
	}
	if !strings.HasSuffix(urls[3], "&sig=1700000000003") {
		t.Errorf("url[3] = %s", urls[3])
	}
	if n := len(f.svc.StockImages("x", 100)); n != maxStockCount {
		t.Errorf("count capped at %d", n)
	}
}

func TestGenerateReportsVeoUnavailable(t *testing.T) {
	f := newFixture(t, &ports.UnavailableError{Message: "Quota exceeded"}, nil)
	f.writer.enhanced = models.EnhancedPrompt{VideoPrompt: "cinematic fox", NarrationScript: "Meet the fox."}

	res, err := f.svc.Generate(context.Background(), ports.GenerateRequest{Prompt: "fox", EnableTTS: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Video.Status != ports.ClipUnavailable || res.Video.Message != "Quota exceeded" || res.Video.VideoURL != nil {
		t.Errorf("video = %+v", res.Video)
	}
	if res.TTSAudioURL == nil || !strings.HasPrefix(*res.TTSAudioURL, "/audio/tts-") {
		t.Errorf("tts = %v", res.TTSAudioURL)
	}
	if res.Settings != (ports.GenerateSettings{AspectRatio: "16:9", Resolution: "720p", Duration: "6", EnableTTS: true}) {
		t.Errorf("settings = %+v", res.Settings)
	}
	if res.ID != "" || len(f.repo.videos) != 0 {
		t.Errorf("nothing should be saved without a video")
	}
}

func TestGenerateCompleteIsSaved(t *testing.T) {
	f := newFixture(t, nil, errors.New("tts down"))
	f.writer.enhanced = models.EnhancedPrompt{VideoPrompt: "v", NarrationScript: "n"}

	res, err := f.svc.Generate(context.Background(), ports.GenerateRequest{Prompt: "fox", Duration: 8, EnableTTS: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Video.Status != ports.ClipComplete || res.Video.VideoURL == nil || !strings.HasPrefix(*res.Video.VideoURL, "/assets/videos/veo-") {
		t.Errorf("video = %+v", res.Video)
	}
	if res.TTSAudioURL != nil {
		t.Errorf("tts failure should leave url nil")
	}
	saved, ok := f.repo.videos[res.ID]
	if !ok || saved.Mode != models.ModeClip || saved.Settings["duration"] != "8" {
		t.Errorf("saved = %+v", saved)
	}
}

func TestGenerateOtherVeoErrors(t *testing.T) {
	f := newFixture(t, errors.New("veo operation failed: unsafe"), nil)
	res, err := f.svc.Generate(context.Background(), ports.GenerateRequest{Prompt: "fox"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Video.Status != ports.ClipError || !strings.Contains(res.Video.Message, "unsafe") {
		t.Errorf("video = %+v", res.Video)
	}
}

func TestProduceVideo(t *testing.T) {
	f := newFixture(t, errors.New("veo down"), nil)
	f.writer.plan = &models.VideoPlan{
		Title: "Bees",
		Scenes: []models.Scene{
			{ID: 1, Duration: 4, Script: "Bees buzz", VisualPrompt: "bees"},
			{ID: 2, Duration: 6, Script: "", BrollPrompt: "hive"},
			{ID: 3, Duration: 5, Script: "Honey"},
		},
	}

	v, err := f.svc.Produce(context.Background(), ports.ProduceRequest{Prompt: "bees", Duration: 15}, "room-1")
	if err != nil {
		t.Fatal(err)
	}
	if v.VideoURL != "/videos/video-1.mp4" || v.Mode != models.ModeVideo || v.Title != "Bees" {
		t.Errorf("video = %+v", v)
	}
	if _, ok := f.repo.videos[v.ID]; !ok {
		t.Error("video not saved")
	}

	plan := f.renderer.plan
	if plan.TotalFrames != 450 {
		t.Errorf("frames = %d", plan.TotalFrames)
	}
	// veo is down, so scenes with a prompt fall back to 4 stills
	if got := plan.Scenes[1].Background.Source; got != "image" {
		t.Errorf("scene 2 background = %s", got)
	}
	if plan.Scenes[2].Background.Source != "animated" {
		t.Errorf("scene 3 background = %s", plan.Scenes[2].Background.Source)
	}
	if len(plan.Audio) != 3 {
		t.Errorf("audio = %+v", plan.Audio)
	}

	events := drain(f.svc.Events())
	if len(events) == 0 || events[0].Stage != ports.StageDrafting {
		t.Fatalf("events = %+v", events)
	}
	last := events[len(events)-1]
	if last.Stage != ports.StageDone || last.VideoURL != v.VideoURL || last.RoomID != "room-1" {
		t.Errorf("last event = %+v", last)
	}
	var assets ports.ProgressEvent
	for _, ev := range events {
		if ev.Stage == ports.StageAssets {
			assets = ev
		}
	}
	if assets.Total != 3 || assets.Audio != 2 || assets.Visuals != 2 {
		t.Errorf("final assets event = %+v", assets)
	}

	logs, _ := os.ReadDir(f.svc.cfg.LogDir)
	if len(logs) != 1 || !strings.Contains(logs[0].Name(), "room-1") {
		t.Errorf("job logs = %v", logs)
	}
}

func TestProduceReel(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.writer.reel = &models.ReelPlan{
		Title: "Atoms",
		Segments: []models.Segment{
			{Script: "Hook!"},
			{VisualPrompt: "atoms glowing"},
		},
	}

	v, err := f.svc.Produce(context.Background(), ports.ProduceRequest{Prompt: "atoms", Mode: models.ModeReels, Duration: 10}, "r")
	if err != nil {
		t.Fatal(err)
	}
	if v.Mode != models.ModeReels {
		t.Errorf("mode = %s", v.Mode)
	}

	plan := f.renderer.plan
	if !plan.IsReel() || len(plan.Segments) != 2 {
		t.Fatalf("plan = %+v", plan)
	}
	if plan.Segments[1].Video == "" || !strings.HasPrefix(plan.Segments[1].Video, "/assets/videos/scene-") {
		t.Errorf("visual segment = %+v", plan.Segments[1])
	}
	if len(plan.Audio) != 2 {
		t.Errorf("audio = %+v", plan.Audio)
	}
}

func TestProduceRenderFailureEmitsError(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.writer.plan = &models.VideoPlan{Scenes: []models.Scene{{Duration: 2}}}
	f.renderer.err = errors.New("remotion crashed")

	if _, err := f.svc.Produce(context.Background(), ports.ProduceRequest{Prompt: "x"}, "r"); err == nil {
		t.Fatal("expected error")
	}
	events := drain(f.svc.Events())
	last := events[len(events)-1]
	if last.Stage != ports.StageError || last.Error != "remotion crashed" {
		t.Errorf("last event = %+v", last)
	}
}

func TestRenderSavesHistory(t *testing.T) {
	f := newFixture(t, nil, nil)

	v, err := f.svc.Render(context.Background(), ports.RenderRequest{
		IsReel:   true,
		Title:    "Reel",
		Segments: []models.Segment{{Type: models.SegmentAvatar, Duration: 5}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if v.Mode != models.ModeReels || f.renderer.plan.Composition != composition.ReelComposition {
		t.Errorf("video = %+v", v)
	}

	got, err := f.svc.GetVideo(context.Background(), v.ID)
	if err != nil || got.Title != "Reel" {
		t.Errorf("get = %+v err=%v", got, err)
	}
	if _, err := f.svc.GetVideo(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestGenerateTitleStaysValidUTF8(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.writer.enhanced = models.EnhancedPrompt{VideoPrompt: "v"}
	prompt := "ab" + strings.Repeat("пчёлы ", 20)

	res, err := f.svc.Generate(context.Background(), ports.GenerateRequest{Prompt: prompt})
	if err != nil {
		t.Fatal(err)
	}
	title := f.repo.videos[res.ID].Title
	if !utf8.ValidString(title) || !strings.HasSuffix(title, "…") || !strings.HasPrefix(prompt, strings.TrimSuffix(title, "…")) {
		t.Errorf("title = %q", title)
	}
}
