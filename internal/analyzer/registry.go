package analyzer

import (
	"fmt"
	"image"
)

// NewDetector returns the detector for variant.
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "edges", "":
		return NewEdgeDetector(), nil
	case "center":
		return CenterDetector{}, nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}

// CenterDetector always reports the middle third of the image.
type CenterDetector struct{}

func (CenterDetector) Detect(img image.Image) ([]Region, error) {
	b := img.Bounds()
	w, h := b.Dx()/3, b.Dy()/3
	r := image.Rect(b.Min.X+w, b.Min.Y+h, b.Max.X-w, b.Max.Y-h)
	return []Region{{Rect: r, Weight: 1}}, nil
}
