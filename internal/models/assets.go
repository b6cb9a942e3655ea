package models

type VisualKind string

const (
	VisualVideo VisualKind = "video"
	VisualImage VisualKind = "image"
)

// Visual is the outcome of a Veo attempt with Imagen fallback.
type Visual struct {
	Type VisualKind `json:"type"`
	URL  string     `json:"url,omitempty"`
	URLs []string   `json:"urls,omitempty"`
}

// Narration is stored TTS audio.
type Narration struct {
	AudioURL string  `json:"audioUrl"`
	Duration float64 `json:"duration"` // rough estimate, seconds
}

// EnhancedPrompt is the LLM rewrite of a raw user idea.
type EnhancedPrompt struct {
	VideoPrompt     string `json:"videoPrompt"`
	NarrationScript string `json:"narrationScript"`
}

// GeneratedClip is a single Veo result before it is stored.
type GeneratedClip struct {
	URI   string // gs:// or https:// when the provider returns a link
	Bytes []byte // mp4 when the provider returns inline data
}
