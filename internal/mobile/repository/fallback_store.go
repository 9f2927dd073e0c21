package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"portfolio-backend/pkg/bridge"
)

const fallbackCollection = "bridgeFallback"

// StoreFactory returns the fallback store of one session
type StoreFactory func(sessionID string) bridge.Store

// firestoreFallbackStore keeps the fallback keys of one session as fields of
// bridgeFallback/<sessionId>
type firestoreFallbackStore struct {
	doc *firestore.DocumentRef
}

// NewFirestoreStoreFactory creates per-session stores backed by Firestore
func NewFirestoreStoreFactory(client *firestore.Client) StoreFactory {
	return func(sessionID string) bridge.Store {
		return &firestoreFallbackStore{doc: client.Collection(fallbackCollection).Doc(sessionID)}
	}
}

// NewMemoryStoreFactory creates a fresh in-memory store per session
func NewMemoryStoreFactory() StoreFactory {
	return func(string) bridge.Store {
		return bridge.NewMemoryStore()
	}
}

func (s *firestoreFallbackStore) Get(ctx context.Context, key string) (string, bool, error) {
	snap, err := s.doc.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", s.doc.Path, err)
	}

	v, err := snap.DataAtPath(firestore.FieldPath{key})
	if err != nil {
		// missing field
		return "", false, nil
	}
	value, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("field %s of %s is %T, not a string", key, s.doc.Path, v)
	}
	return value, true, nil
}

func (s *firestoreFallbackStore) Set(ctx context.Context, key, value string) error {
	_, err := s.doc.Set(ctx, map[string]any{
		key:         value,
		"updatedAt": time.Now(),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("write %s: %w", s.doc.Path, err)
	}
	return nil
}
