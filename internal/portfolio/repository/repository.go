package repository

import "context"

// Document ids in the portfolio collection
const (
	DocAbout    = "about"
	DocSkills   = "skills"
	DocProjects = "projects"
	DocSnippets = "snippets"
	DocLayout   = "layout"
)

// ContentRepository stores each portfolio section as one document
type ContentRepository interface {
	// Get decodes the document into dst. It reports false when the document does not exist.
	Get(ctx context.Context, doc string, dst any) (bool, error)

	// Set replaces the document
	Set(ctx context.Context, doc string, value any) error
}

// itemList wraps list sections since a Firestore document must be a map
type itemList[T any] struct {
	Items []T `firestore:"items" json:"items"`
}

// GetList loads a list section, returning an empty slice when it was never saved
func GetList[T any](ctx context.Context, repo ContentRepository, doc string) ([]T, error) {
	var list itemList[T]
	if _, err := repo.Get(ctx, doc, &list); err != nil {
		return nil, err
	}
	if list.Items == nil {
		list.Items = []T{}
	}
	return list.Items, nil
}

// SetList replaces a list section
func SetList[T any](ctx context.Context, repo ContentRepository, doc string, items []T) error {
	return repo.Set(ctx, doc, itemList[T]{Items: items})
}
