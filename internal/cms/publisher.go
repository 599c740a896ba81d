package cms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ivlev/scrollsite/internal/blog"
)

// Draft is the editor state of one post. Image holds the durable URL of the
// current cover; CoverPath names a newly selected local file that still has
// to be uploaded.
type Draft struct {
	ID        string
	Title     string
	Content   string
	Author    string
	Category  string
	Image     string
	CoverPath string
}

// API is what the publisher needs from the blog backend.
type API interface {
	Get(ctx context.Context, id string) (*blog.Post, error)
	Create(ctx context.Context, in blog.Input) (*blog.Post, error)
	Update(ctx context.Context, id string, in blog.Input) (*blog.Post, error)
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

type Publisher struct {
	api API
	log *zap.Logger
}

func NewPublisher(api API, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{api: api, log: log.Named("publish")}
}

// Edit loads post id into a draft with every field prefilled.
func (p *Publisher) Edit(ctx context.Context, id string) (*Draft, error) {
	post, err := p.api.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Draft{
		ID:       post.ID,
		Title:    post.Title,
		Content:  post.Content,
		Author:   post.Author,
		Category: post.Category,
		Image:    post.Image,
	}, nil
}

// Publish uploads a newly selected cover, then creates the post (no ID) or
// updates it (ID set) with the uploaded URL. A local reference is never sent.
func (p *Publisher) Publish(ctx context.Context, d *Draft) (*blog.Post, error) {
	if d.CoverPath != "" {
		url, err := p.uploadCover(ctx, d.CoverPath)
		if err != nil {
			return nil, err
		}
		d.Image = url
		d.CoverPath = ""
	}
	if blog.IsLocalRef(d.Image) {
		return nil, fmt.Errorf("%w: cover %q was never uploaded", blog.ErrInvalid, d.Image)
	}

	in := blog.Input{
		Title:    d.Title,
		Content:  d.Content,
		Author:   d.Author,
		Category: d.Category,
		Image:    d.Image,
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var (
		post *blog.Post
		err  error
	)
	if d.ID != "" {
		post, err = p.api.Update(ctx, d.ID, in)
	} else {
		post, err = p.api.Create(ctx, in)
	}
	if errors.Is(err, ErrUnconfirmed) {
		p.log.Warn("post created without an id; check the list before publishing again",
			zap.String("title", in.Title))
	}
	if err != nil {
		return nil, err
	}
	if d.ID == "" {
		d.ID = post.ID
	}
	p.log.Info("post published", zap.String("id", d.ID), zap.String("title", in.Title), zap.String("image", in.Image))
	return post, nil
}

func (p *Publisher) uploadCover(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open cover: %w", err)
	}
	defer f.Close()
	url, err := p.api.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		return "", err
	}
	p.log.Info("cover uploaded", zap.String("path", path), zap.String("url", url))
	return url, nil
}
