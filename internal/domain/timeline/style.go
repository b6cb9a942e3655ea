package timeline

import "strings"

type Palette [3]string

type BackgroundType string

const (
	BackgroundGradient    BackgroundType = "gradient"
	BackgroundRadialPulse BackgroundType = "radialPulse"
	BackgroundParticles   BackgroundType = "particles"
	BackgroundAurora      BackgroundType = "aurora"
)

type TextAnimation string

const (
	TextWordByWord TextAnimation = "wordByWord"
	TextSlideUp    TextAnimation = "slideUp"
	TextScaleIn    TextAnimation = "scaleIn"
	TextFade       TextAnimation = "fade"
)

type Transition string

const (
	TransitionFade      Transition = "fade"
	TransitionSlideLeft Transition = "slideLeft"
	TransitionSlideUp   Transition = "slideUp"
	TransitionZoomFade  Transition = "zoomFade"
)

type Motion string

const (
	MotionZoomIn   Motion = "zoomIn"
	MotionZoomOut  Motion = "zoomOut"
	MotionPanLeft  Motion = "panLeft"
	MotionPanRight Motion = "panRight"
	MotionPanUp    Motion = "panUp"
)

var palettes = []Palette{
	{"#0f0c29", "#302b63", "#24243e"}, // deep purple cosmos
	{"#0d1117", "#1a5276", "#2e86c1"}, // ocean blue
	{"#1a0a2e", "#5b2c6f", "#8e44ad"}, // electric violet
	{"#0b0e11", "#1b4332", "#2d6a4f"}, // forest emerald
	{"#1c0a00", "#7b2d26", "#c0392b"}, // crimson fire
	{"#0a0a2e", "#1e3a5f", "#4a90d9"}, // sapphire night
	{"#0d0d0d", "#333333", "#666666"}, // monochrome
	{"#0c1445", "#1a237e", "#3f51b5"}, // indigo deep
}

var backgrounds = []BackgroundType{
	BackgroundAurora,
	BackgroundParticles,
	BackgroundRadialPulse,
	BackgroundGradient,
	BackgroundAurora,
	BackgroundParticles,
	BackgroundGradient,
	BackgroundRadialPulse,
}

var textAnimations = []TextAnimation{
	TextWordByWord,
	TextSlideUp,
	TextScaleIn,
	TextWordByWord,
	TextFade,
	TextSlideUp,
	TextWordByWord,
	TextScaleIn,
}

var transitions = []Transition{
	TransitionZoomFade,
	TransitionSlideLeft,
	TransitionFade,
	TransitionSlideUp,
	TransitionZoomFade,
	TransitionFade,
	TransitionSlideLeft,
	TransitionSlideUp,
}

// Style is the look of one scene.
type Style struct {
	Palette       Palette        `json:"palette"`
	Background    BackgroundType `json:"background"`
	TextAnimation TextAnimation  `json:"textAnimation"`
	Transition    Transition     `json:"transition"`
}

func cycle(index, n int) int {
	i := index % n
	if i < 0 {
		i += n
	}
	return i
}

// StyleFor picks palette, background, text animation and transition by
// cycling each fixed table with the scene index.
func StyleFor(index int) Style {
	return Style{
		Palette:       palettes[cycle(index, len(palettes))],
		Background:    backgrounds[cycle(index, len(backgrounds))],
		TextAnimation: textAnimations[cycle(index, len(textAnimations))],
		Transition:    transitions[cycle(index, len(transitions))],
	}
}

// ParseMotion reads a free-text camera direction such as "slow zoom out".
func ParseMotion(direction string) Motion {
	d := strings.ToLower(direction)
	switch {
	case strings.Contains(d, "zoom out"):
		return MotionZoomOut
	case strings.Contains(d, "pan left"):
		return MotionPanLeft
	case strings.Contains(d, "pan right"):
		return MotionPanRight
	default:
		return MotionZoomIn
	}
}

// slideshowMotions alternates so consecutive stills never move the same way.
var slideshowMotions = []Motion{MotionZoomIn, MotionZoomOut, MotionPanUp}

func SlideshowMotion(index int) Motion {
	return slideshowMotions[cycle(index, len(slideshowMotions))]
}
