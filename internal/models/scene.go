package models

// Scene is one shot of a regular (16:9) video.
type Scene struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Duration     float64  `json:"duration"` // seconds
	Script       string   `json:"script"`
	VisualPrompt string   `json:"visualPrompt"`
	Animation    string   `json:"animation"`
	Transition   string   `json:"transition"`
	BrollPrompt  string   `json:"brollPrompt"`
	CameraMotion string   `json:"cameraMotion,omitempty"`
	VisualAsset  string   `json:"visualAsset,omitempty"`
	VideoURL     string   `json:"videoUrl,omitempty"`
	TTSAudioURL  string   `json:"ttsAudioUrl,omitempty"`
	ImageURLs    []string `json:"imageUrls,omitempty"`
}

// VideoPlan is what the script writer returns for a regular video.
type VideoPlan struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Style    string  `json:"style,omitempty"`
	Scenes   []Scene `json:"scenes"`
}

type SegmentType string

const (
	SegmentAvatar SegmentType = "avatar"
	SegmentVisual SegmentType = "visual"
)

// Segment is one 5 second block of a vertical reel.
type Segment struct {
	Type           SegmentType `json:"type"`
	Duration       float64     `json:"duration"`
	Script         string      `json:"script,omitempty"`
	VisualPrompt   string      `json:"visualPrompt,omitempty"`
	AvatarVideoURL string      `json:"avatarVideoUrl,omitempty"`
	TTSAudioURL    string      `json:"ttsAudioUrl,omitempty"`
	ImageURLs      []string    `json:"imageUrls,omitempty"`
	VideoURL       string      `json:"videoUrl,omitempty"`
}

type ReelPlan struct {
	Title         string    `json:"title"`
	TotalDuration float64   `json:"totalDuration"`
	Segments      []Segment `json:"segments"`
}

// Durations returns scene lengths in seconds, in order.
func (p *VideoPlan) Durations() []float64 {
	out := make([]float64, len(p.Scenes))
	for i, s := range p.Scenes {
		out[i] = s.Duration
	}
	return out
}

func (p *ReelPlan) Durations() []float64 {
	out := make([]float64, len(p.Segments))
	for i, s := range p.Segments {
		out[i] = s.Duration
	}
	return out
}
