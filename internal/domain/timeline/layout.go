package timeline

import "strings"

// Layer kinds, bottom to top.
const (
	LayerBackground = "background"
	LayerVisual     = "visual"
	LayerText       = "text"
	LayerOverlay    = "overlay"
)

// Background sources.
const (
	SourceVideo    = "video"
	SourceImage    = "image"
	SourceAnimated = "animated"
)

const (
	sceneFade       = 12
	transitionFade  = 12
	textDelay       = 10
	lowerThirdStart = 20
	lowerThirdRamp  = 15
	lowerThirdTail  = 20
	shapeCount      = 5
	shapeRamp       = 20
	slideOverlap    = 15
)

// SceneInput is the subset of a scene the layout needs.
type SceneInput struct {
	Title        string
	Script       string
	Animation    string
	CameraMotion string
	VisualAsset  string
	VideoURL     string
	ImageURLs    []string
}

type Background struct {
	Source  string         `json:"source"`
	Src     string         `json:"src,omitempty"`
	Motion  Motion         `json:"motion,omitempty"`
	Type    BackgroundType `json:"type,omitempty"`
	Palette Palette        `json:"palette"`
}

type Shape struct {
	X        float64   `json:"x"` // percent of width
	Y        float64   `json:"y"` // percent of height
	Size     int       `json:"size"`
	Speed    float64   `json:"speed"`
	Round    bool      `json:"round"`
	Rotation float64   `json:"rotation"` // degrees reached at the last frame
	Color    string    `json:"color"`
	Opacity  Keyframes `json:"opacity"`
}

type Text struct {
	Content   string        `json:"content"`
	FontSize  int           `json:"fontSize"`
	Animation TextAnimation `json:"animation"`
	Delay     int           `json:"delay"`
	Position  string        `json:"position"` // center | bottom
}

type Overlay struct {
	Title   string    `json:"title"`
	Opacity Keyframes `json:"opacity"`
}

// SceneLayout is the four-layer stack the renderer draws for one scene.
type SceneLayout struct {
	Sequence   Sequence   `json:"sequence"`
	Style      Style      `json:"style"`
	Envelope   Keyframes  `json:"envelope"`
	Transition Keyframes  `json:"transition"`
	Background Background `json:"background"`
	Visual     []Shape    `json:"visual"`
	Text       *Text      `json:"text,omitempty"`
	Overlay    Overlay    `json:"overlay"`
}

// Layers names the layers present, bottom to top.
func (l SceneLayout) Layers() []string {
	out := []string{LayerBackground, LayerVisual}
	if l.Text != nil {
		out = append(out, LayerText)
	}
	return append(out, LayerOverlay)
}

// IsVideoAsset tells a clip from a still by extension.
func IsVideoAsset(url string) bool {
	u := strings.ToLower(url)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.HasSuffix(u, ".mp4") || strings.HasSuffix(u, ".webm") || strings.HasSuffix(u, ".mov")
}

func pickAsset(in SceneInput) string {
	if in.VisualAsset != "" {
		return in.VisualAsset
	}
	if in.VideoURL != "" {
		return in.VideoURL
	}
	if len(in.ImageURLs) > 0 {
		return in.ImageURLs[0]
	}
	return ""
}

func background(in SceneInput, style Style) Background {
	bg := Background{Palette: style.Palette}
	direction := in.CameraMotion
	if direction == "" {
		direction = in.Animation
	}

	src := pickAsset(in)
	switch {
	case src == "":
		bg.Source = SourceAnimated
		bg.Type = style.Background
	case IsVideoAsset(src):
		bg.Source = SourceVideo
		bg.Src = src
		bg.Motion = ParseMotion(direction)
	default:
		bg.Source = SourceImage
		bg.Src = src
		bg.Motion = ParseMotion(direction)
	}
	return bg
}

// FloatingShapes places the decorative shapes for a scene. Positions depend
// only on the scene index so re-renders are identical.
func FloatingShapes(index, durationInFrames int, palette Palette) []Shape {
	shapes := make([]Shape, shapeCount)
	for k := 0; k < shapeCount; k++ {
		peak := 0.08 + float64(k)*0.02
		shapes[k] = Shape{
			X:        float64(10 + mod(index*37+k*67, 80)),
			Y:        float64(10 + mod(index*53+k*43, 60)),
			Size:     40 + k*20,
			Speed:    0.3 + float64(k)*0.15,
			Round:    k%2 == 0,
			Rotation: float64(90 + k*45),
			Color:    palette[1],
			Opacity:  Window(durationInFrames, 0, shapeRamp, shapeRamp, peak),
		}
	}
	return shapes
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// LayoutScene stacks background, visual, text and overlay for scene index.
func LayoutScene(in SceneInput, seq Sequence) SceneLayout {
	index := seq.Index
	style := StyleFor(index)

	layout := SceneLayout{
		Sequence:   seq,
		Style:      style,
		Envelope:   Envelope(seq.DurationInFrames, sceneFade, 1),
		Transition: Envelope(seq.DurationInFrames, transitionFade, 1),
		Background: background(in, style),
		Visual:     FloatingShapes(index, seq.DurationInFrames, style.Palette),
		Overlay: Overlay{
			Title:   in.Title,
			Opacity: Window(seq.DurationInFrames, lowerThirdStart, lowerThirdRamp, lowerThirdTail, 0.9),
		},
	}

	if strings.TrimSpace(in.Script) != "" {
		text := &Text{
			Content:   in.Script,
			FontSize:  44,
			Animation: style.TextAnimation,
			Delay:     textDelay,
			Position:  "bottom",
		}
		if index == 0 {
			text.FontSize = 56
			text.Position = "center"
		}
		layout.Text = text
	}
	return layout
}

// fallbackStills keep a visual segment from going black when generation failed.
var fallbackStills = []string{
	"https://images.unsplash.com/photo-1618005182384-a83a8bd57fbe?q=80&w=1080&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1614850523459-c2f4c699c52e?q=80&w=1080&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1550684848-fac1c5b4e853?q=80&w=1080&auto=format&fit=crop",
}

// ImageSlot is one still inside a slideshow, relative to the segment start.
type ImageSlot struct {
	Src              string `json:"src"`
	From             int    `json:"from"`
	DurationInFrames int    `json:"durationInFrames"`
	Motion           Motion `json:"motion"`
	FadeIn           bool   `json:"fadeIn"`
	FadeOut          bool   `json:"fadeOut"`
	Overlap          int    `json:"overlap"`
}

// Slideshow splits a segment evenly between images. Every image after the
// first starts overlap frames early so consecutive stills crossfade, and the
// last one runs to the end of the segment.
func Slideshow(images []string, durationInFrames int) []ImageSlot {
	if len(images) == 0 {
		images = fallbackStills
	}
	n := len(images)
	seg := durationInFrames / n

	slots := make([]ImageSlot, n)
	for i, src := range images {
		lead := 0
		if i > 0 {
			lead = slideOverlap
		}
		start := i*seg - lead
		if start < 0 {
			start = 0
		}
		dur := seg + lead
		last := i == n-1
		if last {
			dur = durationInFrames - start
		}
		slots[i] = ImageSlot{
			Src:              src,
			From:             start,
			DurationInFrames: dur,
			Motion:           SlideshowMotion(i),
			FadeIn:           i > 0,
			FadeOut:          !last,
			Overlap:          slideOverlap,
		}
	}
	return slots
}
