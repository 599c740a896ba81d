// Package blog stores posts and cover uploads and serves them over HTTP.
package blog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("post not found")
	ErrInvalid  = errors.New("invalid post")
)

// Post is the stored form. The JSON id key matches what the front-end reads.
type Post struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author,omitempty"`
	Category  string    `json:"category,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input is the create/update payload.
type Input struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author,omitempty"`
	Category string `json:"category,omitempty"`
	Image    string `json:"image,omitempty"`
}

// localSchemes are references that only mean something inside the editor's
// browser tab.
var localSchemes = []string{"blob:", "file:", "data:"}

// IsLocalRef reports whether ref points at client-local data.
func IsLocalRef(ref string) bool {
	r := strings.ToLower(strings.TrimSpace(ref))
	for _, s := range localSchemes {
		if strings.HasPrefix(r, s) {
			return true
		}
	}
	return false
}

// Validate trims the input in place and rejects empty titles and local image
// references.
func (in *Input) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Category = strings.TrimSpace(in.Category)
	in.Image = strings.TrimSpace(in.Image)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if IsLocalRef(in.Image) {
		return fmt.Errorf("%w: image %q is a local reference", ErrInvalid, truncate(in.Image, 24))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
