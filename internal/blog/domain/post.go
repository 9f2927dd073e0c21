package domain

import (
	"errors"
	"time"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrSlugTaken    = errors.New("slug already in use")
	ErrInvalidPost  = errors.New("invalid post")
	ErrInvalidImage = errors.New("only image uploads are allowed")
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

// Post is a blog article. Drafts are only visible to the master account.
type Post struct {
	ID          string     `json:"id" firestore:"-"`
	Slug        string     `json:"slug" firestore:"slug"`
	Title       string     `json:"title" firestore:"title"`
	Excerpt     string     `json:"excerpt" firestore:"excerpt"`
	Content     string     `json:"content" firestore:"content"`
	Category    string     `json:"category" firestore:"category"`
	Tags        []string   `json:"tags" firestore:"tags"`
	CoverImage  string     `json:"cover_image,omitempty" firestore:"coverImage"`
	Published   bool       `json:"published" firestore:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty" firestore:"publishedAt"`
	CreatedAt   time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time  `json:"updated_at" firestore:"updatedAt"`
}

// ListFilter narrows a post listing.
type ListFilter struct {
	Category      string
	PublishedOnly bool
}

// PostPage is one page of a listing.
type PostPage struct {
	Posts      []*Post `json:"posts"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"total_pages"`
}
