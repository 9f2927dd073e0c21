package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio-backend/internal/blog/domain"
)

// memoryPostRepository keeps posts in process memory. Used when Firestore is not configured.
type memoryPostRepository struct {
	mu    sync.RWMutex
	posts map[string]domain.Post
}

// NewMemoryPostRepository creates an empty in-memory PostRepository
func NewMemoryPostRepository() PostRepository {
	return &memoryPostRepository{posts: make(map[string]domain.Post)}
}

func (r *memoryPostRepository) Create(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slugTaken(post.Slug, post.ID) {
		return domain.ErrSlugTaken
	}
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	r.posts[post.ID] = *post
	return nil
}

// slugTaken must be called with mu held
func (r *memoryPostRepository) slugTaken(slug, selfID string) bool {
	for id, post := range r.posts {
		if post.Slug == slug && id != selfID {
			return true
		}
	}
	return false
}

func (r *memoryPostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	return &post, nil
}

func (r *memoryPostRepository) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, post := range r.posts {
		if post.Slug == slug {
			p := post
			return &p, nil
		}
	}
	return nil, nil
}

func (r *memoryPostRepository) List(ctx context.Context, filter domain.ListFilter, limit, offset int) ([]*domain.Post, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*domain.Post, 0, len(r.posts))
	for _, post := range r.posts {
		if filter.PublishedOnly && !post.Published {
			continue
		}
		if filter.Category != "" && filter.Category != domain.CategoryAll && post.Category != filter.Category {
			continue
		}
		p := post
		matched = append(matched, &p)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return []*domain.Post{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *memoryPostRepository) Categories(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, post := range r.posts {
		if post.Published && post.Category != "" {
			seen[post.Category] = struct{}{}
		}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *memoryPostRepository) Update(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[post.ID]; !ok {
		return domain.ErrPostNotFound
	}
	if r.slugTaken(post.Slug, post.ID) {
		return domain.ErrSlugTaken
	}
	post.UpdatedAt = time.Now()
	r.posts[post.ID] = *post
	return nil
}

func (r *memoryPostRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.posts, id)
	return nil
}
