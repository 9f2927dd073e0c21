package usecase

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"portfolio-backend/internal/blog/domain"
	"portfolio-backend/internal/blog/repository"
	"portfolio-backend/pkg/fuzzy"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
	maxSlugLength   = 80
	excerptLength   = 160
	// searchScanLimit caps how many published posts a search ranks
	searchScanLimit = 500
)

// blogUsecase implements BlogUsecase
type blogUsecase struct {
	repo     repository.PostRepository
	notifier PublishNotifier
	images   ImageStore
	now      func() time.Time
}

// NewBlogUsecase creates a new BlogUsecase. notifier and images may be nil.
func NewBlogUsecase(repo repository.PostRepository, notifier PublishNotifier, images ImageStore) BlogUsecase {
	return &blogUsecase{
		repo:     repo,
		notifier: notifier,
		images:   images,
		now:      time.Now,
	}
}

func (u *blogUsecase) ListPublished(ctx context.Context, category string, page, limit int) (*domain.PostPage, error) {
	return u.list(ctx, domain.ListFilter{Category: category, PublishedOnly: true}, page, limit)
}

func (u *blogUsecase) ListAll(ctx context.Context, page, limit int) (*domain.PostPage, error) {
	return u.list(ctx, domain.ListFilter{}, page, limit)
}

func (u *blogUsecase) list(ctx context.Context, filter domain.ListFilter, page, limit int) (*domain.PostPage, error) {
	page, limit = normalizePaging(page, limit)

	posts, total, err := u.repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*domain.Post{}
	}

	return &domain.PostPage{
		Posts:      posts,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func (u *blogUsecase) GetBySlug(ctx context.Context, slug string, includeDrafts bool) (*domain.Post, error) {
	post, err := u.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post == nil || (!post.Published && !includeDrafts) {
		return nil, domain.ErrPostNotFound
	}
	return post, nil
}

func (u *blogUsecase) Categories(ctx context.Context) ([]string, error) {
	categories, err := u.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (u *blogUsecase) Search(ctx context.Context, query string, page, limit int) (*domain.PostPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return u.ListPublished(ctx, "", page, limit)
	}
	page, limit = normalizePaging(page, limit)

	posts, _, err := u.repo.List(ctx, domain.ListFilter{PublishedOnly: true}, searchScanLimit, 0)
	if err != nil {
		return nil, err
	}

	type hit struct {
		post  *domain.Post
		score float64
	}
	hits := make([]hit, 0, len(posts))
	for _, post := range posts {
		score := fuzzy.RelevanceScore(query, fuzzy.PostFields{
			Title:   post.Title,
			Tags:    post.Tags,
			Excerpt: post.Excerpt,
			Content: post.Content,
		})
		if score > 0 {
			hits = append(hits, hit{post: post, score: score})
		}
	}
	// Posts arrive newest first, a stable sort keeps that order among equal scores
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	total := int64(len(hits))
	result := []*domain.Post{}
	for i := (page - 1) * limit; i < len(hits) && i < page*limit; i++ {
		result = append(result, hits[i].post)
	}

	return &domain.PostPage{
		Posts:      result,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (u *blogUsecase) CreatePost(ctx context.Context, req PostRequest) (*domain.Post, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidPost)
	}

	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: cannot derive a slug from %q", domain.ErrInvalidPost, title)
	}
	if err := u.ensureSlugFree(ctx, slug, ""); err != nil {
		return nil, err
	}

	post := &domain.Post{
		Slug:       slug,
		Title:      title,
		Excerpt:    strings.TrimSpace(req.Excerpt),
		Content:    req.Content,
		Category:   strings.TrimSpace(req.Category),
		Tags:       cleanTags(req.Tags),
		CoverImage: req.CoverImage,
	}
	if post.Excerpt == "" {
		post.Excerpt = Excerpt(post.Content)
	}
	if req.Published {
		u.markPublished(post)
	}

	if err := u.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	log.Printf("[Blog] Created post %s (%s, published=%v)", post.ID, post.Slug, post.Published)
	if post.Published {
		u.notifyPublished(ctx, post)
	}
	return post, nil
}

func (u *blogUsecase) UpdatePost(ctx context.Context, id string, req PostUpdateRequest) (*domain.Post, error) {
	post, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, domain.ErrPostNotFound
	}
	wasPublished := post.Published

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidPost)
		}
		post.Title = title
	}
	if req.Slug != nil {
		slug := Slugify(*req.Slug)
		if slug == "" {
			return nil, fmt.Errorf("%w: invalid slug %q", domain.ErrInvalidPost, *req.Slug)
		}
		if slug != post.Slug {
			if err := u.ensureSlugFree(ctx, slug, post.ID); err != nil {
				return nil, err
			}
			post.Slug = slug
		}
	}
	if req.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*req.Excerpt)
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Category != nil {
		post.Category = strings.TrimSpace(*req.Category)
	}
	if req.Tags != nil {
		post.Tags = cleanTags(*req.Tags)
	}
	if req.CoverImage != nil {
		post.CoverImage = *req.CoverImage
	}
	if req.Published != nil {
		if *req.Published {
			u.markPublished(post)
		} else {
			post.Published = false
		}
	}
	if post.Excerpt == "" {
		post.Excerpt = Excerpt(post.Content)
	}

	if err := u.repo.Update(ctx, post); err != nil {
		return nil, err
	}

	if post.Published && !wasPublished {
		u.notifyPublished(ctx, post)
	}
	return post, nil
}

func (u *blogUsecase) DeletePost(ctx context.Context, id string) error {
	post, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if post == nil {
		return domain.ErrPostNotFound
	}
	return u.repo.Delete(ctx, id)
}

func (u *blogUsecase) UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if u.images == nil {
		return "", fmt.Errorf("image storage is not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", domain.ErrInvalidImage
	}

	ext := strings.ToLower(path.Ext(filename))
	objectName := fmt.Sprintf("blog/%s/%s%s", u.now().Format("2006/01"), uuid.New().String(), ext)
	return u.images.Upload(ctx, objectName, contentType, r)
}

// markPublished keeps the first publication time across unpublish/republish cycles
func (u *blogUsecase) markPublished(post *domain.Post) {
	post.Published = true
	if post.PublishedAt == nil {
		now := u.now()
		post.PublishedAt = &now
	}
}

func (u *blogUsecase) notifyPublished(ctx context.Context, post *domain.Post) {
	if u.notifier == nil {
		return
	}
	u.notifier.PostPublished(ctx, post)
}

func (u *blogUsecase) ensureSlugFree(ctx context.Context, slug, selfID string) error {
	existing, err := u.repo.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return domain.ErrSlugTaken
	}
	return nil
}

// Slugify lowercases s and joins its letter and digit runs with hyphens
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	return strings.TrimRight(truncateRunes(b.String(), maxSlugLength), "-")
}

// Excerpt collapses whitespace in content and cuts it to a preview length
func Excerpt(content string) string {
	text := strings.Join(strings.Fields(content), " ")
	if len([]rune(text)) <= excerptLength {
		return text
	}
	return strings.TrimSpace(truncateRunes(text, excerptLength-3)) + "..."
}

// truncateRunes keeps at most n runes of s
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func cleanTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
