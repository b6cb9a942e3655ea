// Package timeline turns per-scene durations in seconds into absolute frame
// offsets and picks a deterministic visual style for every scene index.
package timeline

import "math"

// DefaultFPS is the frame rate every composition is rendered at.
const DefaultFPS = 30

// Sequence places one scene on the composition timeline.
type Sequence struct {
	Index            int `json:"index"`
	From             int `json:"from"`
	DurationInFrames int `json:"durationInFrames"`
}

// End is the first frame after the sequence.
func (s Sequence) End() int { return s.From + s.DurationInFrames }

// seconds drops values that cannot be a length.
func seconds(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}
	return d
}

// Frames converts seconds to a frame count. A scene always lasts at least one frame.
func Frames(sec float64, fps int) int {
	n := int(math.Round(seconds(sec) * float64(fps)))
	if n < 1 {
		return 1
	}
	return n
}

// Sequences lays scenes end to end. The start of scene i is the rounded,
// unrounded-prefix sum of all earlier durations, so rounding error never accumulates.
func Sequences(durations []float64, fps int) []Sequence {
	out := make([]Sequence, len(durations))
	prefix := 0.0
	for i, d := range durations {
		out[i] = Sequence{
			Index:            i,
			From:             int(math.Round(prefix)),
			DurationInFrames: Frames(d, fps),
		}
		prefix += seconds(d) * float64(fps)
	}
	return out
}

// TotalSeconds sums durations, or returns fallback when they add up to nothing.
func TotalSeconds(durations []float64, fallback float64) float64 {
	total := 0.0
	for _, d := range durations {
		total += seconds(d)
	}
	if total == 0 {
		return seconds(fallback)
	}
	return total
}

// TotalFrames is the length the renderer must produce.
func TotalFrames(durations []float64, fallback float64, fps int) int {
	n := int(math.Round(TotalSeconds(durations, fallback) * float64(fps)))
	if n < 1 {
		return 1
	}
	return n
}

// Interpolate maps x through the piecewise-linear keyframes in -> out.
// With clamp the result is held at the edge values outside the input range,
// otherwise the first or last segment is extended.
func Interpolate(x float64, in, out []float64, clamp bool) float64 {
	if len(in) == 0 || len(in) != len(out) {
		return 0
	}
	if len(in) == 1 {
		return out[0]
	}
	if x <= in[0] && clamp {
		return out[0]
	}
	last := len(in) - 1
	if x >= in[last] && clamp {
		return out[last]
	}

	seg := 0
	for seg < last-1 && x > in[seg+1] {
		seg++
	}
	x0, x1 := in[seg], in[seg+1]
	if x1 == x0 {
		return out[seg+1]
	}
	t := (x - x0) / (x1 - x0)
	return out[seg] + t*(out[seg+1]-out[seg])
}

// Keyframes is an opacity envelope: value[i] holds at frame[i].
type Keyframes struct {
	Frames []float64 `json:"frames"`
	Values []float64 `json:"values"`
}

// At samples the envelope with clamping.
func (k Keyframes) At(frame float64) float64 {
	return Interpolate(frame, k.Frames, k.Values, true)
}

// Envelope fades in over fade frames and out over the last fade frames.
// Scenes shorter than two fades get a symmetric triangle instead.
func Envelope(durationInFrames, fade int, peak float64) Keyframes {
	d := float64(durationInFrames)
	f := float64(fade)
	if 2*f > d {
		f = d / 2
	}
	if f == d/2 {
		return Keyframes{Frames: []float64{0, f, d}, Values: []float64{0, peak, 0}}
	}
	return Keyframes{
		Frames: []float64{0, f, d - f, d},
		Values: []float64{0, peak, peak, 0},
	}
}

// Window shows a value between start and durationInFrames-tail after fading
// in over rampFrames. Used for lower-thirds and floating shapes.
func Window(durationInFrames, start, ramp, tail int, peak float64) Keyframes {
	d := float64(durationInFrames)
	s := float64(start)
	r := s + float64(ramp)
	e := d - float64(tail)
	if e < r {
		e = r
	}
	if d < e {
		d = e
	}
	return Keyframes{
		Frames: []float64{s, r, e, d},
		Values: []float64{0, peak, peak, 0},
	}
}
