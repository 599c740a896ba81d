// Package renderer is the write side of the choreography: typed style writes
// and their CSS form. Only compositor-friendly properties exist here
// (transform, opacity, clip-path) plus colours; there is deliberately no
// width, height, top or left.
package renderer

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Field marks which parts of a Style carry a value.
type Field uint16

const (
	FieldTranslate Field = 1 << iota
	FieldScale
	FieldRotate
	FieldOpacity
	FieldClip
	FieldBackground
	FieldColor
)

// Unit of a translation.
type Unit string

const (
	UnitPx      Unit = "px"
	UnitPercent Unit = "%"
)

// Inset is a rectangular clip given as fractions cut from each edge.
type Inset struct {
	Top    float64 `yaml:"top" json:"top"`
	Right  float64 `yaml:"right" json:"right"`
	Bottom float64 `yaml:"bottom" json:"bottom"`
	Left   float64 `yaml:"left" json:"left"`
}

// Visible reports whether any part of the element survives the clip.
func (i Inset) Visible() bool {
	return i.Top+i.Bottom < 1 && i.Left+i.Right < 1
}

// Area is the visible fraction of the element.
func (i Inset) Area() float64 {
	if !i.Visible() {
		return 0
	}
	return (1 - i.Top - i.Bottom) * (1 - i.Left - i.Right)
}

// Style is one frame's worth of writes for a single target.
type Style struct {
	Set Field

	TranslateX, TranslateY float64
	TranslateUnit          Unit
	ScaleX, ScaleY         float64
	Rotate                 float64 // degrees
	Opacity                float64
	Clip                   Inset
	Background             colorful.Color
	Color                  colorful.Color
}

// Has reports whether f was written.
func (s Style) Has(f Field) bool { return s.Set&f == f }

// Merge overlays the fields set in o onto s.
func (s Style) Merge(o Style) Style {
	if o.Has(FieldTranslate) {
		s.TranslateX, s.TranslateY, s.TranslateUnit = o.TranslateX, o.TranslateY, o.TranslateUnit
	}
	if o.Has(FieldScale) {
		s.ScaleX, s.ScaleY = o.ScaleX, o.ScaleY
	}
	if o.Has(FieldRotate) {
		s.Rotate = o.Rotate
	}
	if o.Has(FieldOpacity) {
		s.Opacity = o.Opacity
	}
	if o.Has(FieldClip) {
		s.Clip = o.Clip
	}
	if o.Has(FieldBackground) {
		s.Background = o.Background
	}
	if o.Has(FieldColor) {
		s.Color = o.Color
	}
	s.Set |= o.Set
	return s
}

// Target receives style writes. Implementations must not force layout.
type Target interface {
	Apply(Style)
}

// TargetFunc adapts a function to Target.
type TargetFunc func(Style)

func (f TargetFunc) Apply(s Style) { f(s) }

// Recorder is a Target that keeps every write; used by simulation and tests.
type Recorder struct {
	Name   string
	Writes []Style
}

func (r *Recorder) Apply(s Style) { r.Writes = append(r.Writes, s) }

// Last returns the most recent write.
func (r *Recorder) Last() (Style, bool) {
	if len(r.Writes) == 0 {
		return Style{}, false
	}
	return r.Writes[len(r.Writes)-1], true
}

// Current merges all writes into the element's present style.
func (r *Recorder) Current() Style {
	var s Style
	for _, w := range r.Writes {
		s = s.Merge(w)
	}
	return s
}
