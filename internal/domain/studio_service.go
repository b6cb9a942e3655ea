package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Vovarama1992/voxstudio/internal/domain/stations"
	"github.com/Vovarama1992/voxstudio/internal/models"
	"github.com/Vovarama1992/voxstudio/internal/ports"
	"github.com/Vovarama1992/voxstudio/internal/textutil"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultDuration       = 60
	defaultStyle          = "Educational"
	defaultAnimationLevel = "Medium"
	defaultStockCount     = 4
	maxStockCount         = 12
	defaultHistoryLimit   = 50
)

type StudioConfig struct {
	Workers  int    // scenes prepared in parallel
	Language string // narration language
	LogDir   string // per-job log files; empty logs to stdout only
}

// StudioService drives the stations: draft → narrate + visualize → compose → render.
type StudioService struct {
	writer ports.ScriptWriter
	repo   ports.VideoRepository

	s1 *stations.S1Draft
	s2 *stations.S2Narrate
	s3 *stations.S3Visualize
	s4 *stations.S4Compose
	s5 *stations.S5Render

	cfg    StudioConfig
	events chan ports.ProgressEvent
	now    func() time.Time
}

func NewStudioService(
	writer ports.ScriptWriter,
	repo ports.VideoRepository,
	s2 *stations.S2Narrate,
	s3 *stations.S3Visualize,
	s4 *stations.S4Compose,
	s5 *stations.S5Render,
	cfg StudioConfig,
) *StudioService {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &StudioService{
		writer: writer,
		repo:   repo,
		s1:     stations.NewS1Draft(writer),
		s2:     s2,
		s3:     s3,
		s4:     s4,
		s5:     s5,
		cfg:    cfg,
		events: make(chan ports.ProgressEvent, 100),
		now:    time.Now,
	}
}

var _ ports.Studio = (*StudioService)(nil)

func (s *StudioService) Events() <-chan ports.ProgressEvent { return s.events }

// ========================================================================
// SCRIPT
// ========================================================================

func (s *StudioService) DraftScenes(ctx context.Context, req ports.SceneRequest) (*models.VideoPlan, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return nil, invalid("A prompt is required to generate scenes.")
	}
	if req.Duration <= 0 {
		req.Duration = defaultDuration
	}
	if req.Style == "" {
		req.Style = defaultStyle
	}
	if req.AnimationLevel == "" {
		req.AnimationLevel = defaultAnimationLevel
	}

	plan, err := s.writer.DraftScenes(ctx, req)
	if err != nil {
		return nil, err
	}
	stations.NormalizeScenes(plan, req.Style)
	return plan, nil
}

func (s *StudioService) DraftReel(ctx context.Context, prompt string, duration float64) (*models.ReelPlan, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, invalid("A prompt is required to generate a reel.")
	}
	if duration <= 0 {
		duration = defaultDuration
	}

	plan, err := s.writer.DraftReel(ctx, prompt, duration)
	if err != nil {
		return nil, err
	}
	stations.NormalizeReel(plan, duration)
	return plan, nil
}

func (s *StudioService) EditScenes(ctx context.Context, req ports.EditRequest) ([]models.Scene, error) {
	if len(req.Scenes) == 0 || strings.TrimSpace(req.Instructions) == "" {
		return nil, invalid("currentScenes and instructions are required")
	}
	if req.Duration <= 0 {
		for _, sc := range req.Scenes {
			req.Duration += sc.Duration
		}
	}
	if req.Style == "" {
		req.Style = defaultStyle
	}
	return s.writer.EditScenes(ctx, req.Scenes, req.Instructions, req.Duration, req.Style)
}

// ========================================================================
// ASSETS
// ========================================================================

func (s *StudioService) GenerateVisual(ctx context.Context, prompt, sceneID string, vertical bool) (*models.Visual, error) {
	if strings.TrimSpace(prompt) == "" || sceneID == "" {
		return nil, invalid("Missing required fields")
	}
	return s.s3.Run(ctx, prompt, sanitizeID(sceneID), vertical)
}

// StockImages builds placeholder stock-photo links keyed on the first
// three words of the prompt.
func (s *StudioService) StockImages(prompt string, count int) []string {
	if count <= 0 {
		count = defaultStockCount
	}
	if count > maxStockCount {
		count = maxStockCount
	}

	words := strings.Fields(prompt)
	if len(words) > 3 {
		words = words[:3]
	}
	terms := url.QueryEscape(strings.Join(words, ","))

	ts := s.now().UnixMilli()
	out := make([]string, count)
	for i := range out {
		out[i] = fmt.Sprintf("https://source.unsplash.com/random/1080x1920/?%s&sig=%d", terms, ts+int64(i))
	}
	return out
}

func (s *StudioService) Narrate(ctx context.Context, text, language string) (*models.Narration, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid("Text is required for TTS.")
	}
	if language == "" {
		language = s.cfg.Language
	}
	return s.s2.Run(ctx, text, language)
}

func (s *StudioService) GenerateClip(ctx context.Context, prompt, aspectRatio string, seconds int) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", invalid("A prompt is required to generate video.")
	}
	if aspectRatio == "" {
		aspectRatio = "16:9"
	}
	if seconds <= 0 {
		seconds = 4
	}
	return s.s3.Clip(ctx, prompt, aspectRatio, seconds)
}

// Generate is the one-shot flow: the idea is rewritten by the LLM, sent to
// Veo, and optionally narrated. Veo trouble is reported in the result, not
// returned as an error.
func (s *StudioService) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, invalid("A prompt is required to generate a video.")
	}
	if req.AspectRatio == "" {
		req.AspectRatio = "16:9"
	}
	if req.Resolution == "" {
		req.Resolution = "720p"
	}
	if req.Duration <= 0 {
		req.Duration = 6
	}

	log.Printf("[GEN][START] prompt=%q aspect=%s dur=%d tts=%v", prompt, req.AspectRatio, req.Duration, req.EnableTTS)

	enhanced, err := s.writer.EnhancePrompt(ctx, prompt, req.AspectRatio, req.Duration)
	if err != nil {
		return nil, err
	}

	res := &ports.GenerateResult{
		OriginalPrompt:  req.Prompt,
		EnhancedPrompt:  enhanced.VideoPrompt,
		NarrationScript: enhanced.NarrationScript,
		Prompt:          req.Prompt,
		Settings: ports.GenerateSettings{
			AspectRatio: req.AspectRatio,
			Resolution:  req.Resolution,
			Duration:    strconv.Itoa(req.Duration),
			EnableTTS:   req.EnableTTS,
		},
		GeneratedAt: s.now().UTC(),
	}

	clipURL, err := s.s3.Clip(ctx, enhanced.VideoPrompt, req.AspectRatio, req.Duration)
	var unavailable *ports.UnavailableError
	switch {
	case err == nil:
		res.Video = ports.ClipResult{VideoURL: &clipURL, Status: ports.ClipComplete, Message: "Video generated successfully!"}
	case errors.As(err, &unavailable):
		res.Video = ports.ClipResult{Status: ports.ClipUnavailable, Message: unavailable.Message}
	default:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		res.Video = ports.ClipResult{Status: ports.ClipError, Message: err.Error()}
	}
	log.Printf("[GEN][VIDEO] status=%s msg=%q", res.Video.Status, textutil.Trim(res.Video.Message, 120))

	if req.EnableTTS {
		text := req.NarrationText
		if text == "" {
			text = enhanced.NarrationScript
		}
		if narr, err := s.s2.Run(ctx, text, s.cfg.Language); err == nil {
			res.TTSAudioURL = &narr.AudioURL
		} else {
			log.Printf("[GEN][TTS][SKIP] err=%v", err)
		}
	}

	if res.Video.VideoURL != nil {
		v := &models.Video{
			ID:          uuid.NewString(),
			Prompt:      prompt,
			Title:       textutil.Trim(prompt, 80),
			Mode:        models.ModeClip,
			VideoURL:    clipURL,
			TTSAudioURL: res.TTSAudioURL,
			Settings: map[string]string{
				"aspectRatio":    req.AspectRatio,
				"resolution":     req.Resolution,
				"duration":       res.Settings.Duration,
				"enhancedPrompt": enhanced.VideoPrompt,
			},
			GeneratedAt: res.GeneratedAt,
		}
		if err := s.repo.SaveVideo(ctx, v); err != nil {
			log.Printf("[GEN][DB][ERR] %v", err)
		} else {
			res.ID = v.ID
		}
	}
	return res, nil
}

// ========================================================================
// RENDER
// ========================================================================

// Render composes a script the caller already has and renders it.
func (s *StudioService) Render(ctx context.Context, req ports.RenderRequest) (*models.Video, error) {
	d := &stations.Draft{Prompt: req.Prompt}
	mode := models.ModeVideo
	if req.IsReel {
		mode = models.ModeReels
		d.Reel = &models.ReelPlan{Title: req.Title, TotalDuration: req.Duration, Segments: req.Segments}
	} else {
		d.Video = &models.VideoPlan{Title: req.Title, Duration: req.Duration, Style: req.Style, Scenes: req.Scenes}
	}

	plan, err := s.s4.Run(d)
	if err != nil {
		return nil, err
	}
	videoURL, err := s.s5.Run(ctx, plan)
	if err != nil {
		return nil, err
	}

	v := s.record(d, mode, videoURL, map[string]string{"style": req.Style})
	if err := s.repo.SaveVideo(ctx, v); err != nil {
		log.Printf("[RENDER][DB][ERR] %v", err)
	}
	return v, nil
}

// ========================================================================
// PRODUCE
// ========================================================================

// Produce runs a whole job and reports progress to roomID.
func (s *StudioService) Produce(ctx context.Context, req ports.ProduceRequest, roomID string) (*models.Video, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return nil, invalid("A prompt is required to generate a video.")
	}
	if req.Duration <= 0 {
		req.Duration = defaultDuration
	}
	if req.Style == "" {
		req.Style = defaultStyle
	}
	if req.AnimationLevel == "" {
		req.AnimationLevel = defaultAnimationLevel
	}
	if req.Language == "" {
		req.Language = s.cfg.Language
	}

	jobID := uuid.NewString()
	jl, closeLog := s.jobLogger(jobID, roomID)
	defer closeLog()

	start := time.Now()
	jl.Printf("[START] job=%s room=%s mode=%s dur=%g", jobID, roomID, req.Mode, req.Duration)

	fail := func(stage string, err error) (*models.Video, error) {
		jl.Printf("[%s][FAIL] job=%s err=%v", strings.ToUpper(stage), jobID, err)
		s.emit(ctx, ports.ProgressEvent{RoomID: roomID, JobID: jobID, Stage: ports.StageError, Error: err.Error()})
		return nil, err
	}

	s.emit(ctx, ports.ProgressEvent{RoomID: roomID, JobID: jobID, Stage: ports.StageDrafting})

	d, err := s.s1.Run(ctx, req)
	if err != nil {
		return fail(ports.StageDrafting, err)
	}

	if err := s.prepareAssets(ctx, jl, d, req, roomID, jobID); err != nil {
		return fail(ports.StageAssets, err)
	}

	plan, err := s.s4.Run(d)
	if err != nil {
		return fail(ports.StageRendering, err)
	}
	s.emit(ctx, ports.ProgressEvent{RoomID: roomID, JobID: jobID, Stage: ports.StageRendering})

	videoURL, err := s.s5.Run(ctx, plan)
	if err != nil {
		return fail(ports.StageRendering, err)
	}

	mode := models.ModeVideo
	if d.Reel != nil {
		mode = models.ModeReels
	}
	v := s.record(d, mode, videoURL, map[string]string{
		"duration":       strconv.FormatFloat(req.Duration, 'f', -1, 64),
		"style":          req.Style,
		"animationLevel": req.AnimationLevel,
		"aspectRatio":    req.AspectRatio,
	})
	v.ID = jobID
	if err := s.repo.SaveVideo(ctx, v); err != nil {
		jl.Printf("[DB][FAIL] job=%s err=%v", jobID, err)
	}

	s.emit(ctx, ports.ProgressEvent{RoomID: roomID, JobID: jobID, Stage: ports.StageDone, VideoURL: videoURL})
	jl.Printf("[DONE] job=%s url=%s dur=%s", jobID, videoURL, time.Since(start))
	return v, nil
}

// prepareAssets narrates and visualizes every scene or segment. A failed
// asset leaves its slot empty and the composition falls back.
func (s *StudioService) prepareAssets(ctx context.Context, jl *log.Logger, d *stations.Draft, req ports.ProduceRequest, roomID, jobID string) error {
	var (
		mu      sync.Mutex
		audio   int
		visuals int
	)
	total := 0
	if d.Reel != nil {
		total = len(d.Reel.Segments)
	} else {
		total = len(d.Video.Scenes)
	}

	progress := func(gotAudio, gotVisual bool) {
		mu.Lock()
		defer mu.Unlock()
		if gotAudio {
			audio++
		}
		if gotVisual {
			visuals++
		}
		s.emit(ctx, ports.ProgressEvent{RoomID: roomID, JobID: jobID, Stage: ports.StageAssets, Audio: audio, Visuals: visuals, Total: total})
	}

	s.emit(ctx, ports.ProgressEvent{RoomID: roomID, JobID: jobID, Stage: ports.StageAssets, Total: total})

	prefix := jobID[:8]
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	if d.Reel != nil {
		for i := range d.Reel.Segments {
			seg := &d.Reel.Segments[i]
			g.Go(func() error {
				var gotAudio, gotVisual bool
				if seg.Type == models.SegmentAvatar && seg.Script != "" {
					if n, err := s.s2.Run(gctx, seg.Script, req.Language); err == nil {
						seg.TTSAudioURL = n.AudioURL
						gotAudio = true
					} else {
						jl.Printf("[ASSET][AUDIO][SKIP] job=%s segment=%d err=%v", jobID, i+1, err)
					}
				}
				if seg.Type == models.SegmentVisual && seg.VisualPrompt != "" {
					if v, err := s.s3.Run(gctx, seg.VisualPrompt, fmt.Sprintf("%s-%d", prefix, i+1), true); err == nil {
						seg.VideoURL, seg.ImageURLs = v.URL, v.URLs
						gotVisual = true
					} else {
						jl.Printf("[ASSET][VISUAL][SKIP] job=%s segment=%d err=%v", jobID, i+1, err)
					}
				}
				progress(gotAudio, gotVisual)
				return gctx.Err()
			})
		}
		return g.Wait()
	}

	vertical := req.AspectRatio == "9:16"
	for i := range d.Video.Scenes {
		sc := &d.Video.Scenes[i]
		g.Go(func() error {
			var gotAudio, gotVisual bool
			if sc.Script != "" {
				if n, err := s.s2.Run(gctx, sc.Script, req.Language); err == nil {
					sc.TTSAudioURL = n.AudioURL
					gotAudio = true
				} else {
					jl.Printf("[ASSET][AUDIO][SKIP] job=%s scene=%d err=%v", jobID, sc.ID, err)
				}
			}
			prompt := sc.VisualPrompt
			if prompt == "" {
				prompt = sc.BrollPrompt
			}
			if prompt != "" && sc.VisualAsset == "" {
				if v, err := s.s3.Run(gctx, prompt, fmt.Sprintf("%s-%d", prefix, sc.ID), vertical); err == nil {
					sc.VideoURL, sc.ImageURLs = v.URL, v.URLs
					gotVisual = true
				} else {
					jl.Printf("[ASSET][VISUAL][SKIP] job=%s scene=%d err=%v", jobID, sc.ID, err)
				}
			}
			progress(gotAudio, gotVisual)
			return gctx.Err()
		})
	}
	return g.Wait()
}

func (s *StudioService) record(d *stations.Draft, mode, videoURL string, settings map[string]string) *models.Video {
	for k, v := range settings {
		if v == "" {
			delete(settings, k)
		}
	}
	return &models.Video{
		ID:          uuid.NewString(),
		Prompt:      d.Prompt,
		Title:       d.Title(),
		Mode:        mode,
		VideoURL:    videoURL,
		Settings:    settings,
		GeneratedAt: s.now().UTC(),
	}
}

func (s *StudioService) emit(ctx context.Context, ev ports.ProgressEvent) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

// jobLogger mirrors job lines to stdout and, when LogDir is set, to a
// file per job.
func (s *StudioService) jobLogger(jobID, roomID string) (*log.Logger, func()) {
	flags := log.LstdFlags | log.Lmicroseconds
	if s.cfg.LogDir == "" {
		return log.New(os.Stdout, "", flags), func() {}
	}
	if err := os.MkdirAll(s.cfg.LogDir, 0o755); err != nil {
		log.Printf("[JOB][LOG][ERR] %v", err)
		return log.New(os.Stdout, "", flags), func() {}
	}

	name := fmt.Sprintf("job_%s_room_%s_%s.log", jobID, sanitizeID(roomID), s.now().Format("2006-01-02T15-04-05"))
	f, err := os.OpenFile(filepath.Join(s.cfg.LogDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("[JOB][LOG][ERR] %v", err)
		return log.New(os.Stdout, "", flags), func() {}
	}
	return log.New(io.MultiWriter(os.Stdout, f), "", flags), func() { f.Close() }
}

// ========================================================================
// HISTORY
// ========================================================================

func (s *StudioService) ListVideos(ctx context.Context, limit int) ([]models.Video, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}
	return s.repo.ListVideos(ctx, limit)
}

func (s *StudioService) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	v, err := s.repo.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNotFound
	}
	return v, nil
}

// sanitizeID keeps ids safe for file names.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}
