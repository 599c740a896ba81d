package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/scrollsite/internal/layout"
)

func TestParseBoundary(t *testing.T) {
	tests := []struct {
		in   string
		want Boundary
	}{
		{"top 80%", Boundary{Element: Edge{Fraction: 0}, Viewport: Edge{Fraction: 0.8}}},
		{"bottom top", Boundary{Element: Edge{Fraction: 1}, Viewport: Edge{Fraction: 0}}},
		{"center center", Boundary{Element: Edge{Fraction: 0.5}, Viewport: Edge{Fraction: 0.5}}},
		{"top 100px", Boundary{Element: Edge{}, Viewport: Edge{Pixels: 100}}},
		{"Top Bottom", Boundary{Element: Edge{}, Viewport: Edge{Fraction: 1}}},
		{"top", Boundary{}},
		{"+=3000", Boundary{Relative: true, Distance: Edge{Pixels: 3000}}},
		{"+=150%", Boundary{Relative: true, Distance: Edge{Fraction: 1.5}}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBoundary(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBoundaryErrors(t *testing.T) {
	for _, in := range []string{"", "top middle", "top 80% 10px", "+=", "+=abc%"} {
		_, err := ParseBoundary(in)
		assert.Error(t, err, in)
	}
}

func TestBoundaryOffset(t *testing.T) {
	r := layout.Rect{Y: 2000, H: 500}
	vp := layout.Viewport{Width: 1280, Height: 800}

	// Element top meets 80% of the viewport.
	assert.Equal(t, 2000.0-640, MustBoundary("top 80%").Offset(r, vp, 0))
	// Element bottom meets the viewport top.
	assert.Equal(t, 2500.0, MustBoundary("bottom top").Offset(r, vp, 0))
	assert.Equal(t, 2250.0-400, MustBoundary("center center").Offset(r, vp, 0))
	assert.Equal(t, 1900.0, MustBoundary("top 100px").Offset(r, vp, 0))

	assert.Equal(t, 5000.0, MustBoundary("+=3000").Offset(r, vp, 2000))
	assert.Equal(t, 3200.0, MustBoundary("+=150%").Offset(r, vp, 2000))
}

func TestBoundaryString(t *testing.T) {
	for _, in := range []string{"top 80%", "bottom top", "center center", "top 100px", "+=3000", "+=150%"} {
		assert.Equal(t, in, MustBoundary(in).String())
	}
}
