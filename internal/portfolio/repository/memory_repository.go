package repository

import (
	"context"
	"encoding/json"
	"sync"
)

// memoryContentRepository keeps sections as JSON so callers never share state with the store
type memoryContentRepository struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryContentRepository() ContentRepository {
	return &memoryContentRepository{docs: make(map[string][]byte)}
}

func (r *memoryContentRepository) Get(ctx context.Context, doc string, dst any) (bool, error) {
	r.mu.RLock()
	data, ok := r.docs[doc]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dst)
}

func (r *memoryContentRepository) Set(ctx context.Context, doc string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.docs[doc] = data
	r.mu.Unlock()
	return nil
}
