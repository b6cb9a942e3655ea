// Package composition assembles a fully timed render plan from a drafted
// video or reel. The renderer only draws what the plan says.
package composition

import (
	"github.com/Vovarama1992/voxstudio/internal/domain/timeline"
	"github.com/Vovarama1992/voxstudio/internal/models"
)

const (
	VideoComposition = "AIComposition"
	ReelComposition  = "ReelComposition"

	videoBGM = "audio/bgm-cinematic.mp3"
	reelBGM  = "audio/bgm-reels.mp3"

	avatarFallback = "videos/avatar-fallback.mp4"
)

type AudioTrack struct {
	Src    string  `json:"src"`
	From   int     `json:"from"`
	Volume float64 `json:"volume"`
	Loop   bool    `json:"loop,omitempty"`
}

// ReelSegment is one timed block of a vertical reel.
type ReelSegment struct {
	Sequence timeline.Sequence  `json:"sequence"`
	Type     models.SegmentType `json:"type"`

	// avatar
	AvatarVideo string         `json:"avatarVideo,omitempty"`
	AvatarZoom  [2]float64     `json:"avatarZoom,omitempty"`
	Caption     *timeline.Text `json:"caption,omitempty"`

	// visual
	Video  string               `json:"video,omitempty"`
	Slides []timeline.ImageSlot `json:"slides,omitempty"`
}

// RenderPlan is written as the renderer's input props.
type RenderPlan struct {
	Composition string  `json:"composition"`
	Title       string  `json:"title"`
	Duration    float64 `json:"duration"`
	Style       string  `json:"style,omitempty"`
	FPS         int     `json:"fps"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	TotalFrames int     `json:"_totalFrames"`

	Scenes   []timeline.SceneLayout `json:"scenes,omitempty"`
	Segments []ReelSegment          `json:"segments,omitempty"`
	Audio    []AudioTrack           `json:"audio"`

	// Source keeps the drafted script for renderers that lay out on their own.
	Source any `json:"source,omitempty"`
}

// IsReel reports whether the plan targets the vertical composition.
func (p *RenderPlan) IsReel() bool { return p.Composition == ReelComposition }

// BuildVideo times every scene of a 16:9 video and stacks its layers.
func BuildVideo(plan *models.VideoPlan, fps int) *RenderPlan {
	if fps <= 0 {
		fps = timeline.DefaultFPS
	}
	durations := plan.Durations()
	seqs := timeline.Sequences(durations, fps)

	out := &RenderPlan{
		Composition: VideoComposition,
		Title:       plan.Title,
		Duration:    plan.Duration,
		Style:       plan.Style,
		FPS:         fps,
		Width:       1280,
		Height:      720,
		TotalFrames: timeline.TotalFrames(durations, fallbackSeconds(plan.Duration), fps),
		Scenes:      make([]timeline.SceneLayout, len(plan.Scenes)),
		Audio:       []AudioTrack{{Src: videoBGM, Volume: 0.04, Loop: true}},
		Source:      plan,
	}

	for i, sc := range plan.Scenes {
		out.Scenes[i] = timeline.LayoutScene(timeline.SceneInput{
			Title:        sc.Title,
			Script:       sc.Script,
			Animation:    sc.Animation,
			CameraMotion: sc.CameraMotion,
			VisualAsset:  sc.VisualAsset,
			VideoURL:     sc.VideoURL,
			ImageURLs:    sc.ImageURLs,
		}, seqs[i])

		if sc.TTSAudioURL != "" {
			out.Audio = append(out.Audio, AudioTrack{Src: sc.TTSAudioURL, From: seqs[i].From, Volume: 1.8})
		}
	}
	return out
}

// BuildReel times a 9:16 reel. Avatar blocks carry a caption and the
// narration; visual blocks play a clip or a crossfading slideshow.
func BuildReel(plan *models.ReelPlan, fps int) *RenderPlan {
	if fps <= 0 {
		fps = timeline.DefaultFPS
	}
	durations := plan.Durations()
	seqs := timeline.Sequences(durations, fps)

	out := &RenderPlan{
		Composition: ReelComposition,
		Title:       plan.Title,
		Duration:    plan.TotalDuration,
		FPS:         fps,
		Width:       1080,
		Height:      1920,
		TotalFrames: timeline.TotalFrames(durations, fallbackSeconds(plan.TotalDuration), fps),
		Segments:    make([]ReelSegment, len(plan.Segments)),
		Audio:       []AudioTrack{{Src: reelBGM, Volume: 0.05, Loop: true}},
		Source:      plan,
	}

	for i, seg := range plan.Segments {
		rs := ReelSegment{Sequence: seqs[i], Type: seg.Type}

		if seg.Type == models.SegmentAvatar {
			rs.AvatarVideo = seg.AvatarVideoURL
			if rs.AvatarVideo == "" {
				rs.AvatarVideo = avatarFallback
			}
			rs.AvatarZoom = [2]float64{1, 1.05}
			if seg.Script != "" {
				rs.Caption = &timeline.Text{
					Content:   seg.Script,
					FontSize:  64,
					Animation: timeline.TextWordByWord,
					Position:  "bottom",
				}
			}
			if seg.TTSAudioURL != "" {
				out.Audio = append(out.Audio, AudioTrack{Src: seg.TTSAudioURL, From: seqs[i].From, Volume: 1.5})
			}
		} else if seg.VideoURL != "" {
			rs.Video = seg.VideoURL
		} else {
			rs.Slides = timeline.Slideshow(seg.ImageURLs, seqs[i].DurationInFrames)
		}

		out.Segments[i] = rs
	}
	return out
}

func fallbackSeconds(d float64) float64 {
	if d <= 0 {
		return 60
	}
	return d
}
