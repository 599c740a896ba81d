// Package progress converts element geometry and the current scroll position
// into a normalized progress value for a trigger.
package progress

import (
	"github.com/ivlev/scrollsite/internal/layout"
)

// Mode decides how progress follows scroll.
type Mode string

const (
	// ModeScrub tracks scroll continuously through [start, end].
	ModeScrub Mode = "scrub"
	// ModeToggle snaps to 0 or 1 when the start boundary is crossed.
	ModeToggle Mode = "toggle"
)

// Trigger describes when a progress measurement is active.
type Trigger struct {
	Target layout.Element
	Start  Boundary
	End    *Boundary // nil makes a one-shot boundary
	Mode   Mode
	// Once latches toggle progress at 1 after the first forward crossing.
	Once bool
	// Watch lists elements whose content width feeds the bindings, such as
	// a pinned track. A change in any of them remeasures the trigger.
	Watch []layout.Sized
}

// Event is a set of boundary crossings observed in one frame.
type Event uint8

const (
	EventEnter Event = 1 << iota
	EventLeave
	EventEnterBack
	EventLeaveBack
)

// Has reports whether e contains all of o.
func (e Event) Has(o Event) bool { return e&o == o }

func (e Event) String() string {
	if e == 0 {
		return "none"
	}
	s := ""
	for _, n := range []struct {
		ev   Event
		name string
	}{{EventEnter, "enter"}, {EventLeave, "leave"}, {EventEnterBack, "enterBack"}, {EventLeaveBack, "leaveBack"}} {
		if e.Has(n.ev) {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	return s
}

type zone int8

const (
	zoneBefore zone = iota
	zoneInside
	zoneAfter
)

// Mapper holds the measured offsets of one trigger.
type Mapper struct {
	trigger  Trigger
	start    float64
	end      float64
	measured bool
	zone     zone
	latched  bool
}

// NewMapper returns an unmeasured mapper for t.
func NewMapper(t Trigger) *Mapper {
	if t.Mode == "" {
		t.Mode = ModeScrub
	}
	return &Mapper{trigger: t}
}

// Trigger returns the trigger the mapper was built from.
func (m *Mapper) Trigger() Trigger { return m.trigger }

// Measure re-derives start and end offsets from the current geometry. It
// reports inverted=true when end resolved before start; end is then pulled
// back onto start and the trigger behaves as degenerate.
func (m *Mapper) Measure(r layout.Rect, vp layout.Viewport) (inverted bool) {
	m.start = m.trigger.Start.Offset(r, vp, 0)
	m.end = m.start
	if m.trigger.End != nil {
		m.end = m.trigger.End.Offset(r, vp, m.start)
	}
	if m.end < m.start {
		m.end = m.start
		inverted = true
	}
	m.measured = true
	return inverted
}

// Offsets returns the scroll positions of start and end.
func (m *Mapper) Offsets() (start, end float64) { return m.start, m.end }

// Measured reports whether Measure ran at least once.
func (m *Mapper) Measured() bool { return m.measured }

// Map computes progress at scroll position pos and the crossings since the
// previous call.
func (m *Mapper) Map(pos float64) (float64, Event) {
	next := m.zoneOf(pos)
	ev := crossings(m.zone, next)
	m.zone = next

	if m.trigger.Mode == ModeToggle {
		if pos >= m.start {
			m.latched = m.trigger.Once
			return 1, ev
		}
		if m.latched {
			return 1, ev
		}
		return 0, ev
	}
	return m.scrub(pos), ev
}

func (m *Mapper) scrub(pos float64) float64 {
	span := m.end - m.start
	if span <= 0 {
		if pos >= m.start {
			return 1
		}
		return 0
	}
	return clamp01((pos - m.start) / span)
}

func (m *Mapper) zoneOf(pos float64) zone {
	switch {
	case pos < m.start:
		return zoneBefore
	case pos < m.end:
		return zoneInside
	default:
		return zoneAfter
	}
}

func crossings(from, to zone) Event {
	switch {
	case from == to:
		return 0
	case from == zoneBefore && to == zoneInside:
		return EventEnter
	case from == zoneBefore && to == zoneAfter:
		return EventEnter | EventLeave
	case from == zoneInside && to == zoneAfter:
		return EventLeave
	case from == zoneAfter && to == zoneInside:
		return EventEnterBack
	case from == zoneAfter && to == zoneBefore:
		return EventEnterBack | EventLeaveBack
	default: // inside -> before
		return EventLeaveBack
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
