package repository

import (
	"context"

	"portfolio-backend/internal/blog/domain"
)

// PostRepository defines the interface for blog post data access
type PostRepository interface {
	// Create stores a new post and assigns its ID
	Create(ctx context.Context, post *domain.Post) error

	// FindByID returns nil when the post does not exist
	FindByID(ctx context.Context, id string) (*domain.Post, error)

	// FindBySlug returns nil when no post has the slug
	FindBySlug(ctx context.Context, slug string) (*domain.Post, error)

	// List returns posts newest first with the total matching count
	List(ctx context.Context, filter domain.ListFilter, limit, offset int) ([]*domain.Post, int64, error)

	// Categories returns the distinct categories of published posts
	Categories(ctx context.Context) ([]string, error)

	Update(ctx context.Context, post *domain.Post) error

	Delete(ctx context.Context, id string) error
}
