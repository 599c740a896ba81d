package scroll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 16 * time.Millisecond

func TestLenisEaseEndpoints(t *testing.T) {
	// The curve starts at 0.001 and saturates just before t=1.
	assert.InDelta(t, 0.001, LenisEase(0), 1e-12)
	assert.Equal(t, 1.0, LenisEase(1))
	assert.Equal(t, 1.0, LenisEase(2))
}

func TestTweenConverges(t *testing.T) {
	s := NewSmoother(DefaultOptions())
	s.SetLimit(10000)

	var states []State
	s.Subscribe(func(st State) { states = append(states, st) })

	s.Tick(0)
	s.Wheel(1000)

	now := time.Duration(0)
	for i := 0; i < 100; i++ {
		now += frame
		s.Tick(now)
	}

	require.NotEmpty(t, states)
	assert.Equal(t, 1000.0, s.Position())
	assert.Equal(t, 1000.0, states[len(states)-1].Position)

	for i := 1; i < len(states); i++ {
		assert.GreaterOrEqual(t, states[i].Position, states[i-1].Position, "eased forward scroll never goes back")
		assert.Greater(t, states[i].Frame, states[i-1].Frame)
	}
}

func TestSpringConverges(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeSpring
	s := NewSmoother(opts)

	s.ScrollTo(500, false)
	now := time.Duration(0)
	for i := 0; i < 600; i++ {
		now += frame
		s.Tick(now)
	}
	assert.InDelta(t, 500, s.Position(), 0.01)
}

func TestTargetClampedToLimit(t *testing.T) {
	s := NewSmoother(DefaultOptions())
	s.SetLimit(300)
	s.ScrollTo(900, true)
	assert.Equal(t, 300.0, s.Position())

	s.Wheel(-5000)
	now := time.Duration(0)
	for i := 0; i < 100; i++ {
		now += frame
		s.Tick(now)
	}
	assert.Equal(t, 0.0, s.Position())
}

func TestOutOfOrderTickDropped(t *testing.T) {
	s := NewSmoother(DefaultOptions())
	var frames []time.Duration
	s.Subscribe(func(st State) { frames = append(frames, st.Time) })

	s.Tick(100 * time.Millisecond)
	s.Tick(50 * time.Millisecond)
	s.Tick(100 * time.Millisecond)
	s.Tick(116 * time.Millisecond)

	assert.Equal(t, []time.Duration{100 * time.Millisecond, 116 * time.Millisecond}, frames)
}

func TestUnsubscribe(t *testing.T) {
	s := NewSmoother(DefaultOptions())
	var a, b int
	unsubA := s.Subscribe(func(State) { a++ })
	s.Subscribe(func(State) { b++ })

	s.Tick(frame)
	unsubA()
	unsubA()
	s.Tick(2 * frame)

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestNoCallbackAfterDestroy(t *testing.T) {
	s := NewSmoother(DefaultOptions())
	calls := 0
	s.Subscribe(func(State) { calls++ })

	s.Tick(frame)
	s.Destroy()
	s.Wheel(100)
	s.Tick(2 * frame)
	s.Subscribe(func(State) { calls++ })
	s.Tick(3 * frame)

	assert.Equal(t, 1, calls)
}

func TestImmediateScrollTo(t *testing.T) {
	s := NewSmoother(DefaultOptions())
	var last State
	s.Subscribe(func(st State) { last = st })

	s.ScrollTo(420, true)
	s.Tick(frame)
	assert.Equal(t, 420.0, last.Position)
	assert.Equal(t, 0, last.Direction, "jump lands before the frame")
}
