package effects

import (
	"github.com/ivlev/scrollsite/internal/layout"
	"github.com/ivlev/scrollsite/internal/renderer"
)

// Binding is one declarative effect: a set of properties written to a target
// for a local progress value. Timing inside a timeline (order, span) belongs
// to the timeline, not to the binding.
type Binding struct {
	Name   string
	Target renderer.Target
	Ease   Func
	Props  []Property

	last  float64
	wrote bool
}

// NewBinding creates a binding; a nil ease is linear.
func NewBinding(name string, target renderer.Target, ease Func, props ...Property) *Binding {
	if ease == nil {
		ease = Linear
	}
	return &Binding{Name: name, Target: target, Ease: ease, Props: props}
}

// Write applies the binding at local progress p. Repeated writes of the same
// progress are skipped.
func (b *Binding) Write(p float64) {
	p = clamp01(p)
	if b.wrote && p == b.last {
		return
	}
	b.last, b.wrote = p, true

	t := b.Ease(p)
	var s renderer.Style
	for _, prop := range b.Props {
		prop.Write(t, &s)
	}
	if b.Target != nil {
		b.Target.Apply(s)
	}
}

// Measure forwards fresh geometry to properties that depend on it and forces
// the next Write through.
func (b *Binding) Measure(vp layout.Viewport) {
	for _, prop := range b.Props {
		if m, ok := prop.(Measurer); ok {
			m.Measure(vp)
		}
	}
	b.wrote = false
}

// Progress is the last progress written.
func (b *Binding) Progress() float64 { return b.last }
