// Package effects is the transform binder: it turns a progress value into
// typed style writes. Every property interpolates
// value(p) = from + (to-from)*ease(p) and lands exactly on from and to.
package effects

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ivlev/scrollsite/internal/layout"
	"github.com/ivlev/scrollsite/internal/renderer"
)

// Property writes its interpolated value for eased progress t into s.
type Property interface {
	Name() string
	Write(t float64, s *renderer.Style)
}

// Measurer is implemented by properties whose range depends on live geometry.
type Measurer interface {
	Measure(vp layout.Viewport)
}

// Vec2 is a two-axis value.
type Vec2 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// lerp is exact at both ends, unlike a+(b-a)*t.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// Translate moves the target along one or two axes.
type Translate struct {
	From, To Vec2
	Unit     renderer.Unit
}

func (p Translate) Name() string { return "translate" }

func (p Translate) Write(t float64, s *renderer.Style) {
	s.TranslateX = lerp(p.From.X, p.To.X, t)
	s.TranslateY = lerp(p.From.Y, p.To.Y, t)
	s.TranslateUnit = p.Unit
	if s.TranslateUnit == "" {
		s.TranslateUnit = renderer.UnitPx
	}
	s.Set |= renderer.FieldTranslate
}

// minScale is the smallest factor a zero-guarded scale writes.
const minScale = 1e-3

// Scale resizes the target. Build it with NewScale so a range that would pass
// through zero is rejected.
type Scale struct {
	From, To Vec2

	floor float64 // written values never drop below this; 0 disables
}

// NewScale validates that both endpoints are strictly positive unless
// allowZero is set. Without allowZero an overshooting ease is also clamped
// above zero between the endpoints.
func NewScale(from, to Vec2, allowZero bool) (Scale, error) {
	if allowZero {
		return Scale{From: from, To: to}, nil
	}
	floor := minScale
	for _, v := range []float64{from.X, from.Y, to.X, to.Y} {
		if v <= 0 {
			return Scale{}, fmt.Errorf("scale %v -> %v reaches zero; set allowZero to permit it", from, to)
		}
		floor = math.Min(floor, v)
	}
	return Scale{From: from, To: to, floor: floor}, nil
}

func (p Scale) Name() string { return "scale" }

func (p Scale) Write(t float64, s *renderer.Style) {
	s.ScaleX = lerp(p.From.X, p.To.X, t)
	s.ScaleY = lerp(p.From.Y, p.To.Y, t)
	if p.floor > 0 {
		s.ScaleX = math.Max(s.ScaleX, p.floor)
		s.ScaleY = math.Max(s.ScaleY, p.floor)
	}
	s.Set |= renderer.FieldScale
}

// Rotate turns the target, in degrees.
type Rotate struct {
	From, To float64
}

func (p Rotate) Name() string { return "rotate" }

func (p Rotate) Write(t float64, s *renderer.Style) {
	s.Rotate = lerp(p.From, p.To, t)
	s.Set |= renderer.FieldRotate
}

// Opacity fades the target; the written value is clamped to [0,1].
type Opacity struct {
	From, To float64
}

func (p Opacity) Name() string { return "opacity" }

func (p Opacity) Write(t float64, s *renderer.Style) {
	s.Opacity = clamp01(lerp(p.From, p.To, t))
	s.Set |= renderer.FieldOpacity
}

// Clip animates a rectangular inset; each edge moves independently.
type Clip struct {
	From, To renderer.Inset
}

func (p Clip) Name() string { return "clip" }

func (p Clip) Write(t float64, s *renderer.Style) {
	s.Clip = renderer.Inset{
		Top:    clamp01(lerp(p.From.Top, p.To.Top, t)),
		Right:  clamp01(lerp(p.From.Right, p.To.Right, t)),
		Bottom: clamp01(lerp(p.From.Bottom, p.To.Bottom, t)),
		Left:   clamp01(lerp(p.From.Left, p.To.Left, t)),
	}
	s.Set |= renderer.FieldClip
}

// ColorSpace selects the blend used by Color.
type ColorSpace string

const (
	SpaceLab ColorSpace = "lab"
	SpaceRGB ColorSpace = "rgb"
)

// Color blends a background or text colour. Lab is perceptually even; RGB is
// acceptable for short transitions.
type Color struct {
	From, To   colorful.Color
	Space      ColorSpace
	Foreground bool
}

func (p Color) Name() string {
	if p.Foreground {
		return "color"
	}
	return "backgroundColor"
}

func (p Color) Write(t float64, s *renderer.Style) {
	var c colorful.Color
	switch {
	case t <= 0:
		c = p.From
	case t >= 1:
		c = p.To
	case p.Space == SpaceRGB:
		c = p.From.BlendRgb(p.To, t)
	default:
		c = p.From.BlendLab(p.To, t).Clamped()
	}
	if p.Foreground {
		s.Color = c
		s.Set |= renderer.FieldColor
		return
	}
	s.Background = c
	s.Set |= renderer.FieldBackground
}

// Pin slides a horizontal track left by its overflow while the section is
// pinned. The overflow is re-measured on every geometry refresh, so images
// that load after mount extend the distance.
type Pin struct {
	Track    layout.Sized
	distance float64
}

// NewPin measures the track once against vp.
func NewPin(track layout.Sized, vp layout.Viewport) *Pin {
	p := &Pin{Track: track}
	p.Measure(vp)
	return p
}

func (p *Pin) Name() string { return "pin" }

func (p *Pin) Measure(vp layout.Viewport) {
	d := p.Track.ContentWidth() - vp.Width
	if d < 0 {
		d = 0
	}
	p.distance = d
}

// Distance is the current horizontal travel in pixels.
func (p *Pin) Distance() float64 { return p.distance }

func (p *Pin) Write(t float64, s *renderer.Style) {
	s.TranslateX = lerp(0, -p.distance, t)
	s.TranslateY = 0
	s.TranslateUnit = renderer.UnitPx
	s.Set |= renderer.FieldTranslate
}
