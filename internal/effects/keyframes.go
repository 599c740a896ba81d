package effects

import (
	"fmt"
	"sort"

	"github.com/ivlev/scrollsite/internal/renderer"
)

// Channel is a scalar style channel a keyframe track can drive.
type Channel string

const (
	ChannelX       Channel = "x"
	ChannelY       Channel = "y"
	ChannelScale   Channel = "scale"
	ChannelRotate  Channel = "rotate"
	ChannelOpacity Channel = "opacity"
)

// Stop is a value at a point of the binding's progress.
type Stop struct {
	At    float64 `yaml:"at" json:"at"`
	Value float64 `yaml:"value" json:"value"`
}

// Keyframes drives one channel through more than two stops, e.g. a caption
// that fades in, holds, then fades out inside one trigger range.
type Keyframes struct {
	Channel Channel
	Stops   []Stop
}

// NewKeyframes sorts the stops and checks the channel.
func NewKeyframes(ch Channel, stops []Stop) (Keyframes, error) {
	if len(stops) == 0 {
		return Keyframes{}, fmt.Errorf("keyframes %s: no stops", ch)
	}
	switch ch {
	case ChannelX, ChannelY, ChannelScale, ChannelRotate, ChannelOpacity:
	default:
		return Keyframes{}, fmt.Errorf("keyframes: unknown channel %q", ch)
	}
	sorted := make([]Stop, len(stops))
	copy(sorted, stops)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	return Keyframes{Channel: ch, Stops: sorted}, nil
}

func (k Keyframes) Name() string { return "keyframes:" + string(k.Channel) }

// Value interpolates the track at t. Before the first stop the first value
// holds, after the last stop the last value holds.
func (k Keyframes) Value(t float64) float64 {
	first, last := k.Stops[0], k.Stops[len(k.Stops)-1]
	if t <= first.At {
		return first.Value
	}
	if t >= last.At {
		return last.Value
	}

	var prev, next Stop
	for i := 0; i < len(k.Stops)-1; i++ {
		if t >= k.Stops[i].At && t < k.Stops[i+1].At {
			prev, next = k.Stops[i], k.Stops[i+1]
			break
		}
	}
	delta := next.At - prev.At
	if delta <= 0 {
		return next.Value
	}
	return lerp(prev.Value, next.Value, (t-prev.At)/delta)
}

func (k Keyframes) Write(t float64, s *renderer.Style) {
	v := k.Value(t)
	switch k.Channel {
	case ChannelX:
		s.TranslateX = v
		if s.TranslateUnit == "" {
			s.TranslateUnit = renderer.UnitPx
		}
		s.Set |= renderer.FieldTranslate
	case ChannelY:
		s.TranslateY = v
		if s.TranslateUnit == "" {
			s.TranslateUnit = renderer.UnitPx
		}
		s.Set |= renderer.FieldTranslate
	case ChannelScale:
		s.ScaleX, s.ScaleY = v, v
		s.Set |= renderer.FieldScale
	case ChannelRotate:
		s.Rotate = v
		s.Set |= renderer.FieldRotate
	case ChannelOpacity:
		s.Opacity = clamp01(v)
		s.Set |= renderer.FieldOpacity
	}
}
