package repository

import (
	"context"

	"portfolio-backend/internal/github/domain"
)

// RepoRepository defines the interface for the GitHub repo cache
type RepoRepository interface {
	List(ctx context.Context) ([]*domain.Repo, error)

	// FindByName returns nil when the repo is not cached
	FindByName(ctx context.Context, name string) (*domain.Repo, error)

	// SaveSynced writes the GitHub fields of repos without touching Pinned or Hidden
	SaveSynced(ctx context.Context, repos []*domain.Repo) error

	SetFlags(ctx context.Context, name string, flags domain.Flags) error

	Delete(ctx context.Context, names []string) error
}
