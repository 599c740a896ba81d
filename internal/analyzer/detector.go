// Package analyzer inspects cover images: where the busy part of the picture
// is and whether text laid over it should be light or dark.
package analyzer

import "image"

// Region is a busy area of an image.
type Region struct {
	Rect   image.Rectangle
	Weight float64 // share of edge pixels inside Rect, 0..1
}

// Detector finds regions of interest.
type Detector interface {
	Detect(img image.Image) ([]Region, error)
}
