// Package layout holds the geometry shared by the scroll choreography:
// element boxes in document coordinates and the viewport they scroll through.
package layout

// Rect is a box in document coordinates (Y grows downwards from the page top).
type Rect struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	W float64 `yaml:"w" json:"w"`
	H float64 `yaml:"h" json:"h"`
}

// Bottom returns the Y coordinate of the lower edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Viewport is the visible window of the scroller.
type Viewport struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Element is an opaque handle to something on the page whose box can be
// measured. Bounds reports ok=false once the element has left the document.
type Element interface {
	Bounds() (Rect, bool)
}

// Sized is implemented by elements that also know their scrollable content
// width (horizontal tracks inside pinned sections).
type Sized interface {
	Element
	ContentWidth() float64
}

// Box is a plain Element used by headless simulation and tests.
type Box struct {
	ID      string
	rect    Rect
	content float64
	gone    bool
}

// NewBox returns an attached box with the given geometry.
func NewBox(id string, r Rect) *Box {
	return &Box{ID: id, rect: r, content: r.W}
}

func (b *Box) Bounds() (Rect, bool) {
	if b == nil || b.gone {
		return Rect{}, false
	}
	return b.rect, true
}

// ContentWidth is the scroll width of the box contents.
func (b *Box) ContentWidth() float64 { return b.content }

// Resize replaces the box geometry, e.g. after an image finished loading.
func (b *Box) Resize(r Rect) { b.rect = r }

// SetContentWidth updates the scroll width of the contents.
func (b *Box) SetContentWidth(w float64) { b.content = w }

// Detach removes the box from the document.
func (b *Box) Detach() { b.gone = true }
