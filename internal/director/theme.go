package director

import (
	"sort"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Theme is the page-level colour pair a section may switch to while it is on
// screen.
type Theme struct {
	Name       string
	Background colorful.Color
	Foreground colorful.Color
}

// ThemeBus carries theme changes from timelines to whoever paints the page
// shell. Sections publish; the layout subscribes. Nothing else touches the
// page colours.
type ThemeBus struct {
	mu      sync.Mutex
	subs    map[int]func(Theme)
	next    int
	current Theme
	set     bool
}

// NewThemeBus returns a bus with no current theme.
func NewThemeBus() *ThemeBus {
	return &ThemeBus{subs: make(map[int]func(Theme))}
}

// Subscribe registers fn and replays the current theme to it, if any. The
// returned function unsubscribes and may be called more than once.
func (b *ThemeBus) Subscribe(fn func(Theme)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	cur, set := b.current, b.set
	b.mu.Unlock()

	if set {
		fn(cur)
	}
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish makes t current and notifies subscribers. Publishing the theme that
// is already current is a no-op.
func (b *ThemeBus) Publish(t Theme) {
	b.mu.Lock()
	if b.set && b.current == t {
		b.mu.Unlock()
		return
	}
	b.current, b.set = t, true

	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Theme), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.subs[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(t)
	}
}

// Current returns the last published theme.
func (b *ThemeBus) Current() (Theme, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, b.set
}
