package progress

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivlev/scrollsite/internal/layout"
)

// Edge is one side of an alignment: a fraction of a length plus a pixel offset.
type Edge struct {
	Fraction float64
	Pixels   float64
}

// Boundary says "when the viewport point V lines up with the element point E".
// A relative boundary is measured from the trigger start instead
// ("+=3000" pixels or "+=150%" of the viewport height).
type Boundary struct {
	Element  Edge
	Viewport Edge
	Relative bool
	Distance Edge
}

// Offset returns the scroll position at which the boundary aligns.
func (b Boundary) Offset(r layout.Rect, vp layout.Viewport, start float64) float64 {
	if b.Relative {
		return start + b.Distance.Fraction*vp.Height + b.Distance.Pixels
	}
	elem := r.Y + b.Element.Fraction*r.H + b.Element.Pixels
	view := b.Viewport.Fraction*vp.Height + b.Viewport.Pixels
	return elem - view
}

// String renders the boundary back into position syntax.
func (b Boundary) String() string {
	if b.Relative {
		if b.Distance.Fraction != 0 {
			return fmt.Sprintf("+=%g%%", b.Distance.Fraction*100)
		}
		return fmt.Sprintf("+=%g", b.Distance.Pixels)
	}
	return formatEdge(b.Element) + " " + formatEdge(b.Viewport)
}

func formatEdge(e Edge) string {
	if e.Pixels != 0 {
		return fmt.Sprintf("%gpx", e.Pixels)
	}
	switch e.Fraction {
	case 0:
		return "top"
	case 0.5:
		return "center"
	case 1:
		return "bottom"
	}
	return fmt.Sprintf("%g%%", e.Fraction*100)
}

// ParseBoundary reads position strings such as "top 80%", "bottom top",
// "center center", "top 100px", "+=3000" and "+=150%". A single token
// aligns the element point with the viewport top.
func ParseBoundary(s string) (Boundary, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Boundary{}, fmt.Errorf("empty position")
	}
	if rest, ok := strings.CutPrefix(s, "+="); ok {
		d, err := parseEdge(rest)
		if err != nil {
			return Boundary{}, fmt.Errorf("relative position %q: %w", s, err)
		}
		return Boundary{Relative: true, Distance: d}, nil
	}

	parts := strings.Fields(s)
	if len(parts) > 2 {
		return Boundary{}, fmt.Errorf("position %q: expected at most two tokens", s)
	}
	el, err := parseEdge(parts[0])
	if err != nil {
		return Boundary{}, fmt.Errorf("position %q: %w", s, err)
	}
	b := Boundary{Element: el}
	if len(parts) == 2 {
		vp, err := parseEdge(parts[1])
		if err != nil {
			return Boundary{}, fmt.Errorf("position %q: %w", s, err)
		}
		b.Viewport = vp
	}
	return b, nil
}

// MustBoundary is ParseBoundary for literals known to be valid.
func MustBoundary(s string) Boundary {
	b, err := ParseBoundary(s)
	if err != nil {
		panic(err)
	}
	return b
}

func parseEdge(tok string) (Edge, error) {
	switch tok {
	case "top", "left":
		return Edge{Fraction: 0}, nil
	case "center":
		return Edge{Fraction: 0.5}, nil
	case "bottom", "right":
		return Edge{Fraction: 1}, nil
	}
	if v, ok := strings.CutSuffix(tok, "%"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Edge{}, fmt.Errorf("bad percentage %q", tok)
		}
		return Edge{Fraction: f / 100}, nil
	}
	v := strings.TrimSuffix(tok, "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Edge{}, fmt.Errorf("unknown token %q", tok)
	}
	return Edge{Pixels: f}, nil
}
