package usecase

import (
	"context"
	"io"

	"portfolio-backend/internal/blog/domain"
)

// BlogUsecase defines the interface for blog business logic
type BlogUsecase interface {
	// ListPublished returns published posts, optionally filtered by category
	ListPublished(ctx context.Context, category string, page, limit int) (*domain.PostPage, error)

	// ListAll returns drafts and published posts for the admin panel
	ListAll(ctx context.Context, page, limit int) (*domain.PostPage, error)

	// GetBySlug hides drafts unless includeDrafts is set
	GetBySlug(ctx context.Context, slug string, includeDrafts bool) (*domain.Post, error)

	Categories(ctx context.Context) ([]string, error)

	// Search ranks published posts by typo-tolerant relevance to query
	Search(ctx context.Context, query string, page, limit int) (*domain.PostPage, error)

	CreatePost(ctx context.Context, req PostRequest) (*domain.Post, error)

	UpdatePost(ctx context.Context, id string, req PostUpdateRequest) (*domain.Post, error)

	DeletePost(ctx context.Context, id string) error

	// UploadImage stores an image for use in posts and returns its public URL
	UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// PostRequest is the body for creating a post
type PostRequest struct {
	Title      string   `json:"title" binding:"required"`
	Slug       string   `json:"slug"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	CoverImage string   `json:"cover_image"`
	Published  bool     `json:"published"`
}

// PostUpdateRequest represents the fields that can be updated
type PostUpdateRequest struct {
	Title      *string   `json:"title,omitempty"`
	Slug       *string   `json:"slug,omitempty"`
	Excerpt    *string   `json:"excerpt,omitempty"`
	Content    *string   `json:"content,omitempty"`
	Category   *string   `json:"category,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	CoverImage *string   `json:"cover_image,omitempty"`
	Published  *bool     `json:"published,omitempty"`
}

// PublishNotifier is told when a post goes live
type PublishNotifier interface {
	PostPublished(ctx context.Context, post *domain.Post)
}

// ImageStore persists uploaded images
type ImageStore interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
}
