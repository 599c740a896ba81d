// Package scroll turns raw wheel and touch input into one eased scroll
// position per frame. It is the only time source of the choreography layer:
// mappers read State, never raw input.
package scroll

import (
	"math"
	"sort"
	"time"

	"github.com/charmbracelet/harmonica"
)

// State is the scroll signal delivered once per frame.
type State struct {
	Position  float64
	Velocity  float64 // px per second
	Direction int     // 1 forward, -1 backward, 0 still
	Limit     float64
	Frame     uint64
	Time      time.Duration
}

// Mode selects how the position chases its target.
type Mode string

const (
	ModeTween  Mode = "tween"
	ModeSpring Mode = "spring"
)

// Options configures a Smoother.
type Options struct {
	Mode            Mode
	Duration        time.Duration // tween length for one input burst
	Easing          func(float64) float64
	FPS             int     // spring step rate
	Frequency       float64 // spring angular frequency
	Damping         float64 // spring damping ratio
	WheelMultiplier float64
}

// DefaultOptions mirrors the site's original smooth-scroll settings:
// 1.2s tweens on an exponential ease-out.
func DefaultOptions() Options {
	return Options{
		Mode:            ModeTween,
		Duration:        1200 * time.Millisecond,
		Easing:          LenisEase,
		FPS:             60,
		Frequency:       6.0,
		Damping:         1.0,
		WheelMultiplier: 1.0,
	}
}

// LenisEase is min(1, 1.001 - 2^(-10t)).
func LenisEase(t float64) float64 {
	return math.Min(1, 1.001-math.Pow(2, -10*t))
}

type subscriber struct {
	id int
	fn func(State)
}

// Smoother is the smooth-scroll adapter. It is driven by Tick from the frame
// loop and must not be used from more than one goroutine.
type Smoother struct {
	opts   Options
	spring harmonica.Spring

	pos, vel float64
	target   float64
	limit    float64

	from      float64
	started   time.Duration
	animating bool
	restart   bool

	last   time.Duration
	ticked bool
	frame  uint64
	dir    int

	subs      []subscriber
	nextSub   int
	destroyed bool
}

// NewSmoother creates an adapter starting at position 0.
func NewSmoother(opts Options) *Smoother {
	def := DefaultOptions()
	if opts.Mode == "" {
		opts.Mode = def.Mode
	}
	if opts.Duration <= 0 {
		opts.Duration = def.Duration
	}
	if opts.Easing == nil {
		opts.Easing = def.Easing
	}
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	if opts.Frequency <= 0 {
		opts.Frequency = def.Frequency
	}
	if opts.Damping <= 0 {
		opts.Damping = def.Damping
	}
	if opts.WheelMultiplier == 0 {
		opts.WheelMultiplier = def.WheelMultiplier
	}
	return &Smoother{
		opts:   opts,
		spring: harmonica.NewSpring(harmonica.FPS(opts.FPS), opts.Frequency, opts.Damping),
	}
}

// Subscribe registers a per-frame callback. The returned function detaches it
// and is safe to call more than once.
func (s *Smoother) Subscribe(fn func(State)) func() {
	if s.destroyed || fn == nil {
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// SetLimit sets the maximum scroll position (document height minus viewport).
func (s *Smoother) SetLimit(max float64) {
	if max < 0 {
		max = 0
	}
	s.limit = max
	s.setTarget(s.target)
}

// Wheel feeds a raw wheel or touch delta.
func (s *Smoother) Wheel(delta float64) {
	if s.destroyed {
		return
	}
	s.setTarget(s.target + delta*s.opts.WheelMultiplier)
}

// ScrollTo moves the target. With immediate the position jumps without easing.
func (s *Smoother) ScrollTo(pos float64, immediate bool) {
	if s.destroyed {
		return
	}
	s.setTarget(pos)
	if immediate {
		s.pos = s.target
		s.vel = 0
		s.animating = false
	}
}

func (s *Smoother) setTarget(t float64) {
	if t < 0 {
		t = 0
	}
	if s.limit > 0 && t > s.limit {
		t = s.limit
	}
	if t == s.target && !s.animating {
		return
	}
	s.target = t
	s.from = s.pos
	s.animating = true
	s.restart = true
}

// Position reports the current eased position.
func (s *Smoother) Position() float64 { return s.pos }

// Tick advances the animation to now and notifies subscribers. Ticks whose
// timestamp does not move forward are dropped so callbacks never observe
// frames out of order.
func (s *Smoother) Tick(now time.Duration) {
	if s.destroyed {
		return
	}
	if s.ticked && now <= s.last {
		return
	}
	var dt time.Duration
	if s.ticked {
		dt = now - s.last
	}
	prev := s.pos

	if s.animating {
		switch s.opts.Mode {
		case ModeSpring:
			s.pos, s.vel = s.spring.Update(s.pos, s.vel, s.target)
			if math.Abs(s.target-s.pos) < 0.01 && math.Abs(s.vel) < 0.01 {
				s.pos, s.vel = s.target, 0
				s.animating = false
			}
		default:
			if s.restart {
				s.started = s.last
				if !s.ticked {
					s.started = now
				}
				s.restart = false
			}
			t := float64(now-s.started) / float64(s.opts.Duration)
			if t >= 1 {
				s.pos = s.target
				s.animating = false
			} else {
				s.pos = s.from + (s.target-s.from)*s.opts.Easing(t)
			}
		}
	}

	switch {
	case s.pos > prev:
		s.dir = 1
	case s.pos < prev:
		s.dir = -1
	default:
		s.dir = 0
	}

	velocity := 0.0
	if dt > 0 {
		velocity = (s.pos - prev) / dt.Seconds()
	}
	s.last = now
	s.ticked = true
	s.frame++

	state := State{
		Position:  s.pos,
		Velocity:  velocity,
		Direction: s.dir,
		Limit:     s.limit,
		Frame:     s.frame,
		Time:      now,
	}
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })
	for _, sub := range subs {
		sub.fn(state)
	}
}

// Destroy detaches every subscriber; no callback fires afterwards.
func (s *Smoother) Destroy() {
	s.destroyed = true
	s.subs = nil
}
