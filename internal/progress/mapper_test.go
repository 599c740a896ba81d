package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivlev/scrollsite/internal/layout"
)

var testViewport = layout.Viewport{Width: 1280, Height: 800}

func scrubMapper(start, end string, r layout.Rect) *Mapper {
	e := MustBoundary(end)
	m := NewMapper(Trigger{
		Target: layout.NewBox("section", r),
		Start:  MustBoundary(start),
		End:    &e,
	})
	m.Measure(r, testViewport)
	return m
}

func TestScrubMonotonicAndClamped(t *testing.T) {
	m := scrubMapper("top bottom", "bottom top", layout.Rect{Y: 1000, H: 600})
	start, end := m.Offsets()
	assert.Equal(t, 200.0, start)
	assert.Equal(t, 1600.0, end)

	p, _ := m.Map(0)
	assert.Equal(t, 0.0, p, "before start")

	prev := 0.0
	for pos := start; pos <= end; pos += 7 {
		p, _ := m.Map(pos)
		assert.GreaterOrEqual(t, p, prev)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		prev = p
	}

	p, _ = m.Map(end)
	assert.Equal(t, 1.0, p)
	p, _ = m.Map(end + 5000)
	assert.Equal(t, 1.0, p, "after end")
}

func TestDegenerateTrigger(t *testing.T) {
	m := scrubMapper("top top", "top top", layout.Rect{Y: 1000, H: 600})

	for _, pos := range []float64{0, 999, 999.999, 1000, 1000.001, 4000} {
		p, _ := m.Map(pos)
		if pos < 1000 {
			assert.Equal(t, 0.0, p, "pos %v", pos)
		} else {
			assert.Equal(t, 1.0, p, "pos %v", pos)
		}
	}
}

func TestInvertedEndClampedToStart(t *testing.T) {
	r := layout.Rect{Y: 1000, H: 600}
	end := MustBoundary("top bottom")
	m := NewMapper(Trigger{Target: layout.NewBox("s", r), Start: MustBoundary("bottom top"), End: &end})

	assert.True(t, m.Measure(r, testViewport))
	start, e := m.Offsets()
	assert.Equal(t, start, e)

	p, _ := m.Map(start - 1)
	assert.Equal(t, 0.0, p)
	p, _ = m.Map(start)
	assert.Equal(t, 1.0, p)
}

func TestToggle(t *testing.T) {
	r := layout.Rect{Y: 1000, H: 600}
	m := NewMapper(Trigger{Target: layout.NewBox("s", r), Start: MustBoundary("top 80%"), Mode: ModeToggle})
	m.Measure(r, testViewport)

	p, _ := m.Map(0)
	assert.Equal(t, 0.0, p)
	p, ev := m.Map(400)
	assert.Equal(t, 1.0, p)
	assert.True(t, ev.Has(EventEnter))
	p, ev = m.Map(100)
	assert.Equal(t, 0.0, p, "reversible toggle goes back")
	assert.True(t, ev.Has(EventLeaveBack))
}

func TestToggleOnceLatches(t *testing.T) {
	r := layout.Rect{Y: 1000, H: 600}
	m := NewMapper(Trigger{Target: layout.NewBox("s", r), Start: MustBoundary("top 80%"), Mode: ModeToggle, Once: true})
	m.Measure(r, testViewport)

	m.Map(400)
	p, _ := m.Map(0)
	assert.Equal(t, 1.0, p)
}

func TestCrossingEvents(t *testing.T) {
	m := scrubMapper("top top", "bottom top", layout.Rect{Y: 1000, H: 600})

	steps := []struct {
		pos  float64
		want Event
	}{
		{0, 0},
		{1200, EventEnter},
		{1300, 0},
		{2000, EventLeave},
		{1500, EventEnterBack},
		{500, EventLeaveBack},
		{3000, EventEnter | EventLeave},
		{0, EventEnterBack | EventLeaveBack},
	}
	for _, s := range steps {
		_, ev := m.Map(s.pos)
		assert.Equal(t, s.want, ev, "pos %v: got %s", s.pos, ev)
	}
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "none", Event(0).String())
	assert.Equal(t, "enter|leave", (EventEnter | EventLeave).String())
}
