package analyzer

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// Tone says which text colour reads over a cover.
type Tone string

const (
	ToneDark  Tone = "dark"  // dark picture, light text
	ToneLight Tone = "light" // light picture, dark text
)

// lightness above which a cover counts as light (CIE L*, 0..1)
const lightCutoff = 0.6

// Cover is what the site needs to lay text over an image.
type Cover struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FocusX    float64 `json:"focusX"` // 0..1, for object-position
	FocusY    float64 `json:"focusY"`
	Average   string  `json:"average"` // mean colour as #rrggbb
	Lightness float64 `json:"lightness"`
	Tone      Tone    `json:"tone"`
}

// Analyze measures img. A nil detector uses the edge detector.
func Analyze(img image.Image, det Detector) (*Cover, error) {
	if det == nil {
		det = NewEdgeDetector()
	}
	b := img.Bounds()
	c := &Cover{Width: b.Dx(), Height: b.Dy(), FocusX: 0.5, FocusY: 0.5}
	if b.Empty() {
		c.Tone = ToneDark
		return c, nil
	}

	regions, err := det.Detect(img)
	if err != nil {
		return nil, err
	}
	if fx, fy, ok := focus(regions, b); ok {
		c.FocusX, c.FocusY = fx, fy
	}

	avg := average(img)
	l, _, _ := avg.Lab()
	c.Average = avg.Clamped().Hex()
	c.Lightness = l
	c.Tone = ToneDark
	if l >= lightCutoff {
		c.Tone = ToneLight
	}
	return c, nil
}

// focus is the mass-weighted centre of the regions, relative to b.
func focus(regions []Region, b image.Rectangle) (float64, float64, bool) {
	var sx, sy, total float64
	for _, r := range regions {
		m := r.Weight * float64(r.Rect.Dx()*r.Rect.Dy())
		cx := float64(r.Rect.Min.X+r.Rect.Max.X) / 2
		cy := float64(r.Rect.Min.Y+r.Rect.Max.Y) / 2
		sx += cx * m
		sy += cy * m
		total += m
	}
	if total == 0 {
		return 0, 0, false
	}
	return (sx/total - float64(b.Min.X)) / float64(b.Dx()),
		(sy/total - float64(b.Min.Y)) / float64(b.Dy()), true
}

// average is the mean colour over the downscaled cover, taken in linear RGB.
func average(img image.Image) colorful.Color {
	small := workingRGBA(img)
	var r, g, bl float64
	n := 0
	for i := 0; i+3 < len(small.Pix); i += 4 {
		c := colorful.Color{
			R: float64(small.Pix[i]) / 255,
			G: float64(small.Pix[i+1]) / 255,
			B: float64(small.Pix[i+2]) / 255,
		}
		lr, lg, lb := c.LinearRgb()
		r, g, bl = r+lr, g+lg, bl+lb
		n++
	}
	if n == 0 {
		return colorful.Color{}
	}
	return colorful.LinearRgb(r/float64(n), g/float64(n), bl/float64(n))
}
