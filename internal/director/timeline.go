package director

import (
	"time"

	"github.com/ivlev/scrollsite/internal/effects"
	"github.com/ivlev/scrollsite/internal/layout"
	"github.com/ivlev/scrollsite/internal/progress"
	"github.com/ivlev/scrollsite/internal/viewport"
)

// State of a toggle timeline.
type State int

const (
	StateIdle State = iota
	StateEntering
	StateEntered
	StateExiting
)

func (s State) String() string {
	switch s {
	case StateEntering:
		return "entering"
	case StateEntered:
		return "entered"
	case StateExiting:
		return "exiting"
	}
	return "idle"
}

// Entry places a binding inside a timeline. Span 0 means "until the end"
// (1 - Order); a negative span makes the binding a step at Order.
type Entry struct {
	Binding *effects.Binding
	Order   float64
	Span    float64
}

// Effective is the local progress of a binding at timeline progress p.
func Effective(p, order, span float64) float64 {
	if span <= 0 {
		if p >= order {
			return 1
		}
		return 0
	}
	v := (p - order) / span
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Timeline runs a group of bindings that share one trigger. In scrub mode the
// output is a pure function of trigger progress. In toggle mode crossings
// start, stop or reverse a playhead that advances with frame time.
type Timeline struct {
	Name     string
	Mode     progress.Mode
	Duration time.Duration
	Actions  ToggleActions
	Themes   map[progress.Event]Theme
	// Once keeps a toggle timeline at its end state after it has played:
	// reverse, restart and reset are ignored from then on.
	Once     bool

	bus     *ThemeBus
	entries []Entry

	state    State
	playhead float64
	dir      int
	kicked   bool
	lastTime time.Duration
	clocked  bool
}

// NewTimeline creates an empty timeline. Toggle timelines default to a
// 0.8 s playback and DefaultToggleActions.
func NewTimeline(name string, mode progress.Mode) *Timeline {
	if mode == "" {
		mode = progress.ModeScrub
	}
	return &Timeline{
		Name:     name,
		Mode:     mode,
		Duration: 800 * time.Millisecond,
		Actions:  DefaultToggleActions,
	}
}

// Add appends a binding at order with the given span.
func (tl *Timeline) Add(b *effects.Binding, order, span float64) *Timeline {
	if span == 0 {
		span = 1 - order
	}
	tl.entries = append(tl.entries, Entry{Binding: b, Order: order, Span: span})
	return tl
}

// Stagger appends bindings so that binding i starts at i*each. Each one runs
// for span of the timeline progress.
func (tl *Timeline) Stagger(bs []*effects.Binding, each, span float64) *Timeline {
	for i, b := range bs {
		tl.Add(b, float64(i)*each, span)
	}
	return tl
}

// Entries returns the bindings in insertion order.
func (tl *Timeline) Entries() []Entry { return tl.entries }

// SetThemeBus attaches the bus crossings publish to.
func (tl *Timeline) SetThemeBus(b *ThemeBus) { tl.bus = b }

// State returns the toggle state; scrub timelines are always idle.
func (tl *Timeline) State() State { return tl.state }

// Progress is the current timeline progress: trigger progress for scrub, the
// playhead for toggle.
func (tl *Timeline) Progress() float64 { return tl.playhead }

// Seek writes every binding at timeline progress p.
func (tl *Timeline) Seek(p float64) {
	tl.playhead = clamp01(p)
	for _, e := range tl.entries {
		e.Binding.Write(Effective(tl.playhead, e.Order, e.Span))
	}
}

// Measure forwards new geometry to the bindings.
func (tl *Timeline) Measure(vp layout.Viewport) {
	for _, e := range tl.entries {
		e.Binding.Measure(vp)
	}
}

// Update is the tracker callback for the timeline's trigger.
func (tl *Timeline) Update(u viewport.Update) {
	if u.Remeasured {
		tl.Measure(u.Viewport)
	}
	for _, ev := range crossingOrder {
		if !u.Events.Has(ev) {
			continue
		}
		if th, ok := tl.Themes[ev]; ok && tl.bus != nil {
			tl.bus.Publish(th)
		}
		if tl.Mode == progress.ModeToggle {
			tl.apply(tl.Actions.For(ev))
		}
	}

	if tl.Mode != progress.ModeToggle {
		tl.Seek(u.Progress)
		return
	}
	tl.advance(u.State.Time)
}

func (tl *Timeline) apply(a Action) {
	if tl.Once && tl.played() {
		switch a {
		case ActionReverse, ActionRestart, ActionReset:
			return
		}
	}
	switch a {
	case ActionPlay:
		if tl.playhead < 1 {
			tl.dir, tl.kicked = 1, true
			tl.state = StateEntering
		}
	case ActionReverse:
		if tl.playhead > 0 {
			tl.dir, tl.kicked = -1, true
			tl.state = StateExiting
		}
	case ActionRestart:
		tl.playhead = 0
		tl.dir, tl.kicked = 1, true
		tl.state = StateEntering
	case ActionReset:
		tl.dir = 0
		tl.state = StateIdle
		tl.Seek(0)
	case ActionComplete:
		tl.dir = 0
		tl.state = StateEntered
		tl.Seek(1)
	}
}

// played reports whether the timeline has started playing forward.
func (tl *Timeline) played() bool {
	return tl.playhead > 0 || tl.state == StateEntering || tl.state == StateEntered
}

// advance moves the playhead by the frame time elapsed since the previous
// update. Reversal continues from wherever the playhead is. Time before the
// frame that started playback does not count.
func (tl *Timeline) advance(now time.Duration) {
	var dt time.Duration
	if tl.clocked && now > tl.lastTime && !tl.kicked {
		dt = now - tl.lastTime
	}
	tl.lastTime, tl.clocked, tl.kicked = now, true, false

	if tl.dir == 0 {
		return
	}

	step := 1.0
	if tl.Duration > 0 {
		step = float64(dt) / float64(tl.Duration)
	}
	next := tl.playhead + float64(tl.dir)*step
	switch {
	case tl.dir > 0 && next >= 1:
		next = 1
		tl.dir = 0
		tl.state = StateEntered
	case tl.dir < 0 && next <= 0:
		next = 0
		tl.dir = 0
		tl.state = StateIdle
	}
	tl.Seek(next)
}

// Play runs the enter action directly, for timelines that start on load
// rather than on a crossing.
func (tl *Timeline) Play() { tl.apply(ActionPlay) }

// Tick advances a toggle timeline that has no tracker updates of its own.
func (tl *Timeline) Tick(now time.Duration) {
	if tl.Mode == progress.ModeToggle {
		tl.advance(now)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
