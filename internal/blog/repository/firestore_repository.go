package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	firestorepb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"portfolio-backend/internal/blog/domain"
)

const postsCollection = "posts"

// firestorePostRepository implements PostRepository on Firestore
type firestorePostRepository struct {
	client *firestore.Client
}

// NewFirestorePostRepository creates a new Firestore-backed PostRepository
func NewFirestorePostRepository(client *firestore.Client) PostRepository {
	return &firestorePostRepository{client: client}
}

func (r *firestorePostRepository) posts() *firestore.CollectionRef {
	return r.client.Collection(postsCollection)
}

func (r *firestorePostRepository) Create(ctx context.Context, post *domain.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := r.checkSlug(tx, post.Slug, post.ID); err != nil {
			return err
		}
		return tx.Create(r.posts().Doc(post.ID), post)
	})
}

// checkSlug reads the slug inside tx so a concurrent writer of the same slug aborts one of the two transactions
func (r *firestorePostRepository) checkSlug(tx *firestore.Transaction, slug, selfID string) error {
	docs, err := tx.Documents(r.posts().Where("slug", "==", slug).Limit(2)).GetAll()
	if err != nil {
		return fmt.Errorf("check slug %s: %w", slug, err)
	}
	for _, doc := range docs {
		if doc.Ref.ID != selfID {
			return domain.ErrSlugTaken
		}
	}
	return nil
}

func (r *firestorePostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	snap, err := r.posts().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return decodePost(snap)
}

func (r *firestorePostRepository) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	docs, err := r.posts().Where("slug", "==", slug).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodePost(docs[0])
}

func (r *firestorePostRepository) filtered(filter domain.ListFilter) firestore.Query {
	query := r.posts().Query
	if filter.PublishedOnly {
		query = query.Where("published", "==", true)
	}
	if filter.Category != "" && filter.Category != domain.CategoryAll {
		query = query.Where("category", "==", filter.Category)
	}
	return query
}

func (r *firestorePostRepository) List(ctx context.Context, filter domain.ListFilter, limit, offset int) ([]*domain.Post, int64, error) {
	query := r.filtered(filter)

	total, err := count(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	docs, err := query.OrderBy("createdAt", firestore.Desc).Offset(offset).Limit(limit).Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, err
	}

	posts := make([]*domain.Post, 0, len(docs))
	for _, doc := range docs {
		post, err := decodePost(doc)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	return posts, total, nil
}

func count(ctx context.Context, query firestore.Query) (int64, error) {
	result, err := query.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	v, ok := result["all"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("count posts: unexpected aggregation result %T", result["all"])
	}
	return v.GetIntegerValue(), nil
}

func (r *firestorePostRepository) Categories(ctx context.Context) ([]string, error) {
	docs, err := r.posts().Where("published", "==", true).Select("category").Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, doc := range docs {
		category, err := doc.DataAt("category")
		if err != nil {
			continue
		}
		if c, ok := category.(string); ok && c != "" {
			seen[c] = struct{}{}
		}
	}

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *firestorePostRepository) Update(ctx context.Context, post *domain.Post) error {
	post.UpdatedAt = time.Now()

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := r.checkSlug(tx, post.Slug, post.ID); err != nil {
			return err
		}
		return tx.Set(r.posts().Doc(post.ID), post)
	})
}

func (r *firestorePostRepository) Delete(ctx context.Context, id string) error {
	_, err := r.posts().Doc(id).Delete(ctx)
	return err
}

func decodePost(snap *firestore.DocumentSnapshot) (*domain.Post, error) {
	var post domain.Post
	if err := snap.DataTo(&post); err != nil {
		return nil, err
	}
	post.ID = snap.Ref.ID
	return &post, nil
}
