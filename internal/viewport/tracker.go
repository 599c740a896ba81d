// Package viewport tracks registered triggers against the scrolling viewport
// and pushes progress to their callbacks once per frame.
package viewport

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ivlev/scrollsite/internal/layout"
	"github.com/ivlev/scrollsite/internal/progress"
	"github.com/ivlev/scrollsite/internal/scroll"
)

// DefaultDebounce coalesces resize and content-load bursts.
const DefaultDebounce = 150 * time.Millisecond

// Handle identifies a registration. The zero Handle is never issued.
type Handle uint64

// Update is what a callback receives each frame.
type Update struct {
	Progress float64
	Events   progress.Event
	Rect     layout.Rect
	Viewport layout.Viewport
	State    scroll.State
	// Remeasured is set when offsets were re-derived since the last update.
	Remeasured bool
}

// Func receives updates for one registration.
type Func func(Update)

// Observer receives per-frame bookkeeping; metrics implements it.
type Observer interface {
	ObserveFrame(d time.Duration, active int)
	ObserveSkip()
	ObservePanic()
	ObserveRefresh()
}

type entry struct {
	handle     Handle
	mapper     *progress.Mapper
	fn         Func
	rect       layout.Rect
	widths     []float64 // content widths of the trigger's watched elements
	detached   bool
	remeasured bool
}

// Tracker owns every registration of the page. It is not safe for concurrent
// use; the frame loop is its only caller.
type Tracker struct {
	log      *zap.Logger
	vp       layout.Viewport
	debounce time.Duration
	obs      Observer

	entries map[Handle]*entry
	next    Handle
	state   scroll.State

	refreshPending bool
	refreshAt      time.Duration
}

// New creates a tracker for viewport vp. A non-positive debounce uses
// DefaultDebounce.
func New(log *zap.Logger, vp layout.Viewport, debounce time.Duration) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Tracker{
		log:      log,
		vp:       vp,
		debounce: debounce,
		entries:  make(map[Handle]*entry),
	}
}

// SetObserver attaches o; nil detaches.
func (t *Tracker) SetObserver(o Observer) { t.obs = o }

// Viewport returns the current viewport.
func (t *Tracker) Viewport() layout.Viewport { return t.vp }

// Len is the number of live registrations.
func (t *Tracker) Len() int { return len(t.entries) }

// Register measures trig and delivers its first update immediately. A trigger
// whose target is missing or detached is not registered: the call logs and
// returns ok=false.
func (t *Tracker) Register(trig progress.Trigger, fn Func) (Handle, bool) {
	if fn == nil {
		t.log.Warn("register without callback")
		return 0, false
	}
	if trig.Target == nil {
		t.log.Warn("register: trigger has no target")
		return 0, false
	}
	r, ok := trig.Target.Bounds()
	if !ok {
		t.log.Warn("register: target is not attached", zap.String("start", trig.Start.String()))
		return 0, false
	}

	t.next++
	e := &entry{
		handle: t.next,
		mapper: progress.NewMapper(trig),
		fn:     fn,
	}
	t.entries[e.handle] = e
	t.measure(e, r)
	t.deliver(e)
	return e.handle, true
}

// Unregister removes h. Unknown and repeated handles are ignored.
func (t *Tracker) Unregister(h Handle) {
	delete(t.entries, h)
}

// SetViewport records a new viewport size and schedules a refresh.
func (t *Tracker) SetViewport(vp layout.Viewport, now time.Duration) {
	if vp == t.vp {
		return
	}
	t.vp = vp
	t.RequestRefresh(now)
}

// RefreshAll re-derives offsets for every attached registration.
func (t *Tracker) RefreshAll() {
	t.refreshPending = false
	for _, e := range t.sorted() {
		r, ok := e.mapper.Trigger().Target.Bounds()
		if !ok {
			continue
		}
		t.measure(e, r)
	}
	if t.obs != nil {
		t.obs.ObserveRefresh()
	}
}

// RequestRefresh schedules RefreshAll for the first frame at least one
// debounce window after the latest request.
func (t *Tracker) RequestRefresh(now time.Duration) {
	t.refreshPending = true
	t.refreshAt = now + t.debounce
}

// RefreshPending reports whether a debounced refresh is waiting.
func (t *Tracker) RefreshPending() bool { return t.refreshPending }

// OnFrame pushes state to every registration. Detached targets are skipped
// and logged once. A changed box or watched content width re-derives offsets
// before mapping.
func (t *Tracker) OnFrame(state scroll.State, now time.Duration) {
	began := time.Now()
	t.state = state

	if t.refreshPending && now >= t.refreshAt {
		t.RefreshAll()
	}

	list := t.sorted()
	for _, e := range list {
		if _, live := t.entries[e.handle]; !live {
			// Unregistered by an earlier callback in this frame.
			continue
		}
		r, ok := e.mapper.Trigger().Target.Bounds()
		if !ok {
			if !e.detached {
				e.detached = true
				t.log.Warn("target detached, skipping", zap.Uint64("handle", uint64(e.handle)))
			}
			if t.obs != nil {
				t.obs.ObserveSkip()
			}
			continue
		}
		if e.detached || r != e.rect || e.contentChanged() {
			e.detached = false
			t.measure(e, r)
		}
		t.deliver(e)
	}

	if t.obs != nil {
		t.obs.ObserveFrame(time.Since(began), len(t.entries))
	}
}

func (t *Tracker) measure(e *entry, r layout.Rect) {
	if e.mapper.Measure(r, t.vp) {
		start, _ := e.mapper.Offsets()
		t.log.Warn("trigger end resolves before start; treating as degenerate",
			zap.Uint64("handle", uint64(e.handle)),
			zap.Float64("start", start))
	}
	e.rect = r
	e.widths = e.widths[:0]
	for _, w := range e.mapper.Trigger().Watch {
		e.widths = append(e.widths, w.ContentWidth())
	}
	e.remeasured = true
}

// contentChanged reports whether a watched element was resized since the last
// measure, e.g. a track whose images finished loading.
func (e *entry) contentChanged() bool {
	for i, w := range e.mapper.Trigger().Watch {
		if w.ContentWidth() != e.widths[i] {
			return true
		}
	}
	return false
}

func (t *Tracker) deliver(e *entry) {
	p, ev := e.mapper.Map(t.state.Position)
	u := Update{
		Progress:   p,
		Events:     ev,
		Rect:       e.rect,
		Viewport:   t.vp,
		State:      t.state,
		Remeasured: e.remeasured,
	}
	e.remeasured = false

	defer func() {
		if rec := recover(); rec != nil {
			t.log.Error("trigger callback panicked",
				zap.Uint64("handle", uint64(e.handle)),
				zap.String("panic", fmt.Sprint(rec)))
			if t.obs != nil {
				t.obs.ObservePanic()
			}
		}
	}()
	e.fn(u)
}

// sorted returns entries in registration order so callbacks run
// deterministically.
func (t *Tracker) sorted() []*entry {
	list := make([]*entry, 0, len(t.entries))
	for _, e := range t.entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].handle < list[j].handle })
	return list
}
