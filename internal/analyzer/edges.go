package analyzer

import (
	"image"
	"image/color"
	"math"
	"sort"

	"golang.org/x/image/draw"
)

// maxSide bounds the working resolution; covers are analysed downscaled.
const maxSide = 256

// EdgeDetector finds busy regions with a Sobel gradient, a dilation pass to
// join neighbouring edges and a connected-component sweep.
type EdgeDetector struct {
	MinArea       int     // minimum region area at working resolution
	EdgeThreshold float64 // gradient magnitude threshold
	Dilate        int     // dilation radius in pixels
}

func NewEdgeDetector() *EdgeDetector {
	return &EdgeDetector{
		MinArea:       64,
		EdgeThreshold: 30.0,
		Dilate:        2,
	}
}

// Detect returns regions in the coordinates of img, heaviest first.
func (d *EdgeDetector) Detect(img image.Image) ([]Region, error) {
	gray, scale := workingGray(img)
	edges := sobel(gray, d.EdgeThreshold)
	joined := dilate(edges, d.Dilate)

	b := img.Bounds()
	var regions []Region
	for _, c := range components(joined) {
		if c.rect.Dx()*c.rect.Dy() < d.MinArea {
			continue
		}
		r := image.Rect(
			b.Min.X+int(float64(c.rect.Min.X)/scale),
			b.Min.Y+int(float64(c.rect.Min.Y)/scale),
			b.Min.X+int(math.Ceil(float64(c.rect.Max.X)/scale)),
			b.Min.Y+int(math.Ceil(float64(c.rect.Max.Y)/scale)),
		).Intersect(b)
		regions = append(regions, Region{
			Rect:   r,
			Weight: float64(c.edges) / float64(c.rect.Dx()*c.rect.Dy()),
		})
	}
	sortRegions(regions)
	return regions, nil
}

// workingSize fits b into maxSide on either axis.
func workingSize(b image.Rectangle) (image.Rectangle, float64) {
	scale := 1.0
	if side := max(b.Dx(), b.Dy()); side > maxSide {
		scale = float64(maxSide) / float64(side)
	}
	return image.Rect(0, 0, max(1, int(float64(b.Dx())*scale)), max(1, int(float64(b.Dy())*scale))), scale
}

// workingGray returns a downscaled grayscale copy of img and the scale used.
func workingGray(img image.Image) (*image.Gray, float64) {
	r, scale := workingSize(img.Bounds())
	gray := image.NewGray(r)
	if scale == 1 {
		draw.Draw(gray, r, img, img.Bounds().Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(gray, r, img, img.Bounds(), draw.Src, nil)
	}
	return gray, scale
}

func workingRGBA(img image.Image) *image.RGBA {
	r, _ := workingSize(img.Bounds())
	dst := image.NewRGBA(r)
	draw.ApproxBiLinear.Scale(dst, r, img, img.Bounds(), draw.Src, nil)
	return dst
}

var (
	sobelX = [3][3]int{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY = [3][3]int{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
)

func sobel(gray *image.Gray, threshold float64) *image.Gray {
	b := gray.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := float64(gray.GrayAt(x+kx, y+ky).Y)
					gx += v * float64(sobelX[ky+1][kx+1])
					gy += v * float64(sobelY[ky+1][kx+1])
				}
			}
			if math.Hypot(gx, gy) > threshold {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

func dilate(img *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		return img
	}
	b := img.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.GrayAt(x, y).Y == 0 {
				continue
			}
			for ky := max(b.Min.Y, y-radius); ky <= min(b.Max.Y-1, y+radius); ky++ {
				for kx := max(b.Min.X, x-radius); kx <= min(b.Max.X-1, x+radius); kx++ {
					out.SetGray(kx, ky, color.Gray{Y: 255})
				}
			}
		}
	}
	return out
}

type component struct {
	rect  image.Rectangle
	edges int
}

// components labels 4-connected white areas of img.
func components(img *image.Gray) []component {
	b := img.Bounds()
	seen := make([]bool, b.Dx()*b.Dy())
	idx := func(x, y int) int { return (y-b.Min.Y)*b.Dx() + (x - b.Min.X) }

	var out []component
	var stack []image.Point
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if seen[idx(x, y)] || img.GrayAt(x, y).Y == 0 {
				continue
			}
			c := component{rect: image.Rect(x, y, x+1, y+1)}
			stack = append(stack[:0], image.Pt(x, y))
			seen[idx(x, y)] = true
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				c.edges++
				c.rect = c.rect.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
				for _, n := range [4]image.Point{{p.X + 1, p.Y}, {p.X - 1, p.Y}, {p.X, p.Y + 1}, {p.X, p.Y - 1}} {
					if !n.In(b) || seen[idx(n.X, n.Y)] || img.GrayAt(n.X, n.Y).Y == 0 {
						continue
					}
					seen[idx(n.X, n.Y)] = true
					stack = append(stack, n)
				}
			}
			out = append(out, c)
		}
	}
	return out
}

func sortRegions(r []Region) {
	mass := func(x Region) float64 { return x.Weight * float64(x.Rect.Dx()*x.Rect.Dy()) }
	sort.SliceStable(r, func(i, j int) bool { return mass(r[i]) > mass(r[j]) })
}
