package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const portfolioCollection = "portfolio"

type firestoreContentRepository struct {
	client *firestore.Client
}

// NewFirestoreContentRepository creates a ContentRepository on the portfolio collection
func NewFirestoreContentRepository(client *firestore.Client) ContentRepository {
	return &firestoreContentRepository{client: client}
}

func (r *firestoreContentRepository) Get(ctx context.Context, doc string, dst any) (bool, error) {
	snap, err := r.client.Collection(portfolioCollection).Doc(doc).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("get portfolio/%s: %w", doc, err)
	}
	if err := snap.DataTo(dst); err != nil {
		return false, fmt.Errorf("decode portfolio/%s: %w", doc, err)
	}
	return true, nil
}

func (r *firestoreContentRepository) Set(ctx context.Context, doc string, value any) error {
	if _, err := r.client.Collection(portfolioCollection).Doc(doc).Set(ctx, value); err != nil {
		return fmt.Errorf("set portfolio/%s: %w", doc, err)
	}
	return nil
}
