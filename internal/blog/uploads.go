package blog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ivlev/scrollsite/internal/analyzer"
	"github.com/ivlev/scrollsite/internal/source"
)

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Uploads writes cover files into Dir and hands back their public URL.
type Uploads struct {
	Dir       string
	PublicURL string // e.g. http://localhost:8080; files are served under /uploads/
	DPI       int    // PDF cover resolution
	Detector  analyzer.Detector
}

// Stored describes one saved upload.
type Stored struct {
	Name      string
	URL       string
	MediaType string // detected type of the original bytes
	Cover     *analyzer.Cover
}

// Save checks data is a decodable cover and writes it under a fresh name.
// PDFs are replaced by a PNG render of their first page.
func (u *Uploads) Save(data []byte) (*Stored, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalid)
	}
	src, mediaType, err := source.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	defer src.Close()

	dpi := u.DPI
	if dpi <= 0 {
		dpi = 96
	}
	img, err := source.RenderCover(src, dpi)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	ext := extByType[mediaType]
	if mediaType == "application/pdf" {
		data, err = source.EncodePNG(img)
		if err != nil {
			return nil, err
		}
		ext = ".png"
	}

	cover, err := analyzer.Analyze(img, u.Detector)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze cover: %w", err)
	}

	if err := os.MkdirAll(u.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(u.Dir, name), data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}
	return &Stored{Name: name, URL: u.URL(name), MediaType: mediaType, Cover: cover}, nil
}

// URL returns the public address of a stored file.
func (u *Uploads) URL(name string) string {
	return strings.TrimRight(u.PublicURL, "/") + "/uploads/" + name
}
