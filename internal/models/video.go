package models

import "time"

const (
	ModeVideo = "video"
	ModeReels = "reels"
	ModeClip  = "clip"
)

// Video is a finished render kept in history.
type Video struct {
	ID          string            `json:"id" db:"id"`
	Prompt      string            `json:"prompt" db:"prompt"`
	Title       string            `json:"title" db:"title"`
	Mode        string            `json:"mode" db:"mode"` // ModeVideo, ModeReels or ModeClip
	VideoURL    string            `json:"videoUrl" db:"video_url"`
	TTSAudioURL *string           `json:"ttsAudioUrl" db:"tts_audio_url"` // nullable
	Settings    map[string]string `json:"settings" db:"settings"`
	GeneratedAt time.Time         `json:"generatedAt" db:"generated_at"`
}
