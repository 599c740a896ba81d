package engine

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/ivlev/scrollsite/internal/renderer"
)

// Follower is a pointer-driven binding: the target chases the pointer on a
// damped spring, like the custom cursor of the site.
type Follower struct {
	Target renderer.Target
	// Offset centres the target on the pointer (half its size, negated).
	OffsetX, OffsetY float64

	spring   harmonica.Spring
	x, y     float64
	vx, vy   float64
	tx, ty   float64
	visible  bool
	shown    bool // visibility last written
	shownSet bool
}

// NewFollower creates a follower stepping at fps. Lower frequency means more
// lag; damping 1 is critically damped.
func NewFollower(target renderer.Target, fps int, frequency, damping float64) *Follower {
	if fps <= 0 {
		fps = 60
	}
	return &Follower{
		Target: target,
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
	}
}

// Pointer sets the pointer position in viewport pixels. The first call
// places the follower without animation.
func (f *Follower) Pointer(x, y float64) {
	if !f.visible {
		f.x, f.y = x, y
	}
	f.tx, f.ty = x, y
	f.visible = true
}

// Leave hides the follower when the pointer leaves the window.
func (f *Follower) Leave() { f.visible = false }

// Position is the current follower position.
func (f *Follower) Position() (x, y float64) { return f.x, f.y }

// Settled reports whether the follower has caught up with the pointer.
func (f *Follower) Settled() bool {
	return math.Abs(f.tx-f.x) < 0.01 && math.Abs(f.ty-f.y) < 0.01 &&
		math.Abs(f.vx) < 0.01 && math.Abs(f.vy) < 0.01
}

// Step advances the spring one frame and writes the target.
func (f *Follower) Step() {
	if f.visible && !f.Settled() {
		f.x, f.vx = f.spring.Update(f.x, f.vx, f.tx)
		f.y, f.vy = f.spring.Update(f.y, f.vy, f.ty)
	}

	var s renderer.Style
	if f.visible {
		s.TranslateX, s.TranslateY = f.x+f.OffsetX, f.y+f.OffsetY
		s.TranslateUnit = renderer.UnitPx
		s.Set |= renderer.FieldTranslate
	}
	if !f.shownSet || f.shown != f.visible {
		s.Opacity = 0
		if f.visible {
			s.Opacity = 1
		}
		s.Set |= renderer.FieldOpacity
		f.shown, f.shownSet = f.visible, true
	}
	if s.Set != 0 && f.Target != nil {
		f.Target.Apply(s)
	}
}
