// Package source decodes uploaded cover media. Raster images are decoded
// directly; PDFs are rasterized through MuPDF so a brochure can serve as a
// post cover.
package source

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"sync"

	"github.com/gen2brain/go-fitz"
)

type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Open sniffs data and returns a matching Source together with the detected
// media type.
func Open(data []byte) (Source, string, error) {
	mediaType := http.DetectContentType(data)
	switch mediaType {
	case "application/pdf":
		src, err := NewFitzPDFSource(data)
		return src, mediaType, err
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		src, err := NewImageSource(data)
		return src, mediaType, err
	}
	return nil, mediaType, fmt.Errorf("unsupported media type %s", mediaType)
}

// RenderCover renders the first page of src.
func RenderCover(src Source, dpi int) (image.Image, error) {
	if src.PageCount() == 0 {
		return nil, fmt.Errorf("источник не содержит страниц")
	}
	img, err := src.RenderPage(0, dpi)
	if err != nil {
		return nil, fmt.Errorf("render cover: %w", err)
	}
	return img, nil
}

// EncodePNG encodes img into a fresh byte slice.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}
	return buf.Bytes(), nil
}

type FitzPDFSource struct {
	mu  sync.Mutex // MuPDF documents are not safe for concurrent use
	doc *fitz.Document
}

func NewFitzPDFSource(data []byte) (*FitzPDFSource, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc}, nil
}

func (f *FitzPDFSource) PageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doc.NumPage()
}

func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
