package ports

import (
	"context"
	"time"

	"github.com/Vovarama1992/voxstudio/internal/models"
)

type ProduceRequest struct {
	Prompt         string  `json:"prompt"`
	Mode           string  `json:"mode"` // models.ModeVideo (default) or models.ModeReels
	Duration       float64 `json:"duration"`
	Style          string  `json:"style"`
	AnimationLevel string  `json:"animationLevel"`
	AspectRatio    string  `json:"aspectRatio"`
	Language       string  `json:"language"`
}

// IsReel reports whether the request asks for a vertical reel.
func (r ProduceRequest) IsReel() bool {
	return r.Mode == models.ModeReels || r.Mode == "reel"
}

// ProgressEvent is pushed to a websocket room while a job runs.
type ProgressEvent struct {
	RoomID   string `json:"-"`
	JobID    string `json:"jobId"`
	Stage    string `json:"stage"`
	Audio    int    `json:"audio"`
	Visuals  int    `json:"visuals"`
	Total    int    `json:"total"`
	VideoURL string `json:"videoUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}

const (
	StageDrafting  = "drafting"
	StageAssets    = "assets"
	StageRendering = "rendering"
	StageDone      = "done"
	StageError     = "error"
)

type Producer interface {
	Produce(ctx context.Context, req ProduceRequest, roomID string) (*models.Video, error)
	Events() <-chan ProgressEvent
}

type EditRequest struct {
	Scenes       []models.Scene `json:"currentScenes"`
	Instructions string         `json:"instructions"`
	Duration     float64        `json:"duration"`
	Style        string         `json:"style"`
}

// GenerateRequest drives the single-clip flow: enhance, Veo, optional TTS.
type GenerateRequest struct {
	Prompt        string
	AspectRatio   string
	Resolution    string
	Duration      int
	EnableTTS     bool
	NarrationText string
}

type ClipResult struct {
	VideoURL *string `json:"videoUrl"`
	Status   string  `json:"status"` // complete, veo_unavailable, error
	Message  string  `json:"message"`
}

const (
	ClipComplete    = "complete"
	ClipUnavailable = "veo_unavailable"
	ClipError       = "error"
)

type GenerateSettings struct {
	AspectRatio string `json:"aspectRatio"`
	Resolution  string `json:"resolution"`
	Duration    string `json:"duration"`
	EnableTTS   bool   `json:"enableTts"`
}

type GenerateResult struct {
	ID              string           `json:"id,omitempty"`
	OriginalPrompt  string           `json:"originalPrompt"`
	EnhancedPrompt  string           `json:"enhancedPrompt"`
	NarrationScript string           `json:"narrationScript"`
	Video           ClipResult       `json:"video"`
	TTSAudioURL     *string          `json:"ttsAudioUrl"`
	Prompt          string           `json:"prompt"`
	Settings        GenerateSettings `json:"settings"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}

// RenderRequest carries an already drafted (and possibly hand-edited) script.
type RenderRequest struct {
	IsReel   bool             `json:"isReel"`
	Prompt   string           `json:"prompt"`
	Title    string           `json:"title"`
	Duration float64          `json:"duration"`
	Style    string           `json:"style"`
	Scenes   []models.Scene   `json:"scenes"`
	Segments []models.Segment `json:"segments"`
}

// Studio is everything the HTTP layer can ask of the domain.
type Studio interface {
	Producer

	DraftScenes(ctx context.Context, req SceneRequest) (*models.VideoPlan, error)
	DraftReel(ctx context.Context, prompt string, duration float64) (*models.ReelPlan, error)
	EditScenes(ctx context.Context, req EditRequest) ([]models.Scene, error)

	GenerateVisual(ctx context.Context, prompt, sceneID string, vertical bool) (*models.Visual, error)
	StockImages(prompt string, count int) []string
	Narrate(ctx context.Context, text, language string) (*models.Narration, error)
	GenerateClip(ctx context.Context, prompt, aspectRatio string, seconds int) (string, error)
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	Render(ctx context.Context, req RenderRequest) (*models.Video, error)

	ListVideos(ctx context.Context, limit int) ([]models.Video, error)
	GetVideo(ctx context.Context, id string) (*models.Video, error)
}
