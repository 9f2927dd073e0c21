package repository

import (
	"context"
	"sync"

	"portfolio-backend/internal/github/domain"
)

type memoryRepoRepository struct {
	mu    sync.RWMutex
	repos map[string]domain.Repo
}

// NewMemoryRepoRepository creates an in-memory cache, used when Firestore is not configured
func NewMemoryRepoRepository() RepoRepository {
	return &memoryRepoRepository{repos: make(map[string]domain.Repo)}
}

func (r *memoryRepoRepository) List(ctx context.Context) ([]*domain.Repo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	repos := make([]*domain.Repo, 0, len(r.repos))
	for _, repo := range r.repos {
		repo := repo
		repos = append(repos, &repo)
	}
	return repos, nil
}

func (r *memoryRepoRepository) FindByName(ctx context.Context, name string) (*domain.Repo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	repo, ok := r.repos[name]
	if !ok {
		return nil, nil
	}
	return &repo, nil
}

func (r *memoryRepoRepository) SaveSynced(ctx context.Context, repos []*domain.Repo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, repo := range repos {
		next := *repo
		if existing, ok := r.repos[repo.Name]; ok {
			next.Pinned = existing.Pinned
			next.Hidden = existing.Hidden
		}
		r.repos[repo.Name] = next
	}
	return nil
}

func (r *memoryRepoRepository) SetFlags(ctx context.Context, name string, flags domain.Flags) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, ok := r.repos[name]
	if !ok {
		return domain.ErrRepoNotFound
	}
	if flags.Pinned != nil {
		repo.Pinned = *flags.Pinned
	}
	if flags.Hidden != nil {
		repo.Hidden = *flags.Hidden
	}
	r.repos[name] = repo
	return nil
}

func (r *memoryRepoRepository) Delete(ctx context.Context, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		delete(r.repos, name)
	}
	return nil
}
