// Package cms is the admin side of the blog: an HTTP client for the blog API
// and the publish flow built on it.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ivlev/scrollsite/internal/blog"
)

// Client talks to the blog API. Every call is a single attempt; failures are
// returned to the caller.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		log:     log.Named("cms"),
	}
}

// ErrUnconfirmed means the server accepted a create but its answer carried no
// post id. The post most likely exists; retrying blindly would duplicate it.
var ErrUnconfirmed = errors.New("post saved but the response did not identify it")

// StatusError is a non-2xx answer.
type StatusError struct {
	Method, URL string
	Code        int
	Body        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// List fetches all posts. A malformed payload is logged and read as no posts.
func (c *Client) List(ctx context.Context) ([]blog.Post, error) {
	body, err := c.do(ctx, http.MethodGet, "/blogs", nil, "")
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	posts, ok := decodeList[blog.Post](body)
	if !ok {
		c.log.Warn("malformed post list, treating as empty", zap.Int("bytes", len(body)))
	}
	return posts, nil
}

func (c *Client) Get(ctx context.Context, id string) (*blog.Post, error) {
	body, err := c.do(ctx, http.MethodGet, "/blogs/"+id, nil, "")
	if err != nil {
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	var p blog.Post
	if err := json.Unmarshal(Sanitize(body), &p); err != nil {
		return nil, fmt.Errorf("decode post %s: %w", id, err)
	}
	return &p, nil
}

// Create stores a new post. When the answer cannot be read the id is taken
// from the Location header; without one the error wraps ErrUnconfirmed.
func (c *Client) Create(ctx context.Context, in blog.Input) (*blog.Post, error) {
	return c.send(ctx, http.MethodPost, "/blogs/create", "", in)
}

func (c *Client) Update(ctx context.Context, id string, in blog.Input) (*blog.Post, error) {
	return c.send(ctx, http.MethodPut, "/blogs/"+id, id, in)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/blogs/"+id, nil, ""); err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	return nil
}

// Upload sends a cover under the multipart field "image" and returns the
// durable URL the server assigned.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("read cover: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	body, err := c.do(ctx, http.MethodPost, "/upload", &buf, mw.FormDataContentType())
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	var resp blog.UploadResponse
	if err := json.Unmarshal(Sanitize(body), &resp); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if resp.URL == "" {
		return "", fmt.Errorf("upload %s: server returned no url", filename)
	}
	return resp.URL, nil
}

func (c *Client) send(ctx context.Context, method, urlPath, id string, in blog.Input) (*blog.Post, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	body, header, err := c.call(ctx, method, urlPath, bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, fmt.Errorf("save post: %w", err)
	}
	var p blog.Post
	if err := json.Unmarshal(Sanitize(body), &p); err == nil && p.ID != "" {
		return &p, nil
	}

	// Some backends answer with a bare message; the write still happened.
	if id == "" {
		if loc := header.Get("Location"); loc != "" {
			id = path.Base(loc)
		}
	}
	c.log.Warn("unparsed save response",
		zap.String("path", urlPath),
		zap.String("id", id),
		zap.Int("bytes", len(body)))
	if id == "" {
		return nil, fmt.Errorf("%s %s: %w", method, urlPath, ErrUnconfirmed)
	}
	return &blog.Post{
		ID:       id,
		Title:    in.Title,
		Content:  in.Content,
		Author:   in.Author,
		Category: in.Category,
		Image:    in.Image,
	}, nil
}

func (c *Client) do(ctx context.Context, method, urlPath string, body io.Reader, contentType string) ([]byte, error) {
	data, _, err := c.call(ctx, method, urlPath, body, contentType)
	return data, err
}

func (c *Client) call(ctx context.Context, method, urlPath string, body io.Reader, contentType string) ([]byte, http.Header, error) {
	url := c.BaseURL + urlPath
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &StatusError{Method: method, URL: url, Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	c.log.Debug("api call", zap.String("method", method), zap.String("path", urlPath), zap.Int("status", resp.StatusCode))
	return data, resp.Header, nil
}
