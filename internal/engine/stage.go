// Package engine runs the frame loop: one goroutine owns the smooth-scroll
// adapter, the tracker and every mounted timeline.
package engine

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ivlev/scrollsite/internal/config"
	"github.com/ivlev/scrollsite/internal/director"
	"github.com/ivlev/scrollsite/internal/layout"
	"github.com/ivlev/scrollsite/internal/scroll"
	"github.com/ivlev/scrollsite/internal/viewport"
)

// ErrStopped is returned by Post after Stop.
var ErrStopped = errors.New("stage stopped")

// ErrQueueFull is returned by Post when the frame loop is not keeping up.
var ErrQueueFull = errors.New("stage queue full")

const postQueue = 256

// Stage is the app-lifetime owner of the scroll signal and the tracker.
// Everything except Post must be called on the frame goroutine.
type Stage struct {
	Scroll  *scroll.Smoother
	Tracker *viewport.Tracker
	Theme   *director.ThemeBus

	log   *zap.Logger
	fps   int
	posts chan func()
	stop  atomic.Bool
	unsub func()

	followers map[int]*Follower
	nextID    int
}

// ScrollOptions converts the scroll section of the config.
func ScrollOptions(cfg config.ScrollConfig) scroll.Options {
	opts := scroll.DefaultOptions()
	if cfg.Mode == string(scroll.ModeSpring) {
		opts.Mode = scroll.ModeSpring
	}
	opts.Duration = cfg.GetDuration()
	if cfg.FPS > 0 {
		opts.FPS = cfg.FPS
	}
	if cfg.Frequency > 0 {
		opts.Frequency = cfg.Frequency
	}
	if cfg.Damping > 0 {
		opts.Damping = cfg.Damping
	}
	if cfg.WheelMultiplier != 0 {
		opts.WheelMultiplier = cfg.WheelMultiplier
	}
	return opts
}

// NewStage wires a smoother to a tracker; obs may be nil.
func NewStage(cfg config.ScrollConfig, log *zap.Logger, obs viewport.Observer) *Stage {
	if log == nil {
		log = zap.NewNop()
	}
	vp := layout.Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight}
	s := &Stage{
		Scroll:    scroll.NewSmoother(ScrollOptions(cfg)),
		Tracker:   viewport.New(log.Named("tracker"), vp, cfg.GetRefreshDebounce()),
		Theme:     director.NewThemeBus(),
		log:       log,
		fps:       cfg.FPS,
		posts:     make(chan func(), postQueue),
		followers: make(map[int]*Follower),
	}
	if s.fps <= 0 {
		s.fps = 60
	}
	if obs != nil {
		s.Tracker.SetObserver(obs)
	}
	// The tracker is the adapter's only consumer.
	s.unsub = s.Scroll.Subscribe(func(st scroll.State) {
		s.Tracker.OnFrame(st, st.Time)
	})
	return s
}

// Post queues fn for the start of the next frame. It is the only Stage method
// safe to call from other goroutines.
func (s *Stage) Post(fn func()) error {
	if s.stop.Load() {
		return ErrStopped
	}
	select {
	case s.posts <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

// Step runs one frame at time now: queued work, then the scroll tick (which
// drives the tracker), then pointer followers.
func (s *Stage) Step(now time.Duration) {
	s.drain()
	s.Scroll.Tick(now)
	for _, id := range sortedKeys(s.followers) {
		s.followers[id].Step()
	}
}

func (s *Stage) drain() {
	for {
		select {
		case fn := <-s.posts:
			fn()
		default:
			return
		}
	}
}

// Run steps the stage at the configured frame rate until ctx is done, then
// stops it.
func (s *Stage) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()
	defer s.Stop()

	start := time.Now()
	s.log.Info("frame loop started", zap.Int("fps", s.fps))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Step(time.Since(start))
		}
	}
}

// Stop rejects further posts, runs what is queued and tears the adapter down.
func (s *Stage) Stop() {
	if s.stop.Swap(true) {
		return
	}
	s.drain()
	s.unsub()
	s.Scroll.Destroy()
}

// Mount registers every timeline of page and returns the scope that owns
// the registrations. Closing the scope unmounts the page.
func (s *Stage) Mount(page *director.Page) *Scope {
	scope := NewScope()
	sc := page.Scene

	if sc.Viewport.Width > 0 && sc.Viewport.Height > 0 {
		s.Tracker.SetViewport(sc.Viewport, 0)
		s.Tracker.RefreshAll()
	}
	if sc.Height > 0 {
		s.Scroll.SetLimit(sc.Height - s.Tracker.Viewport().Height)
	}

	mounted := 0
	for _, c := range page.Timelines {
		c.Timeline.SetThemeBus(s.Theme)
		h, ok := s.Tracker.Register(c.Trigger, c.Timeline.Update)
		if !ok {
			s.log.Warn("timeline not mounted", zap.String("page", sc.Page), zap.String("timeline", c.Timeline.Name))
			continue
		}
		scope.Track(func() { s.Tracker.Unregister(h) })
		if c.Autoplay {
			c.Timeline.Play()
		}
		mounted++
	}
	s.log.Debug("page mounted", zap.String("page", sc.Page), zap.Int("timelines", mounted))
	return scope
}

// Follow adds a pointer follower stepped every frame. The returned function
// removes it.
func (s *Stage) Follow(f *Follower) func() {
	id := s.nextID
	s.nextID++
	s.followers[id] = f
	return func() { delete(s.followers, id) }
}

func sortedKeys(m map[int]*Follower) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
