package bridge

import (
	"context"
	"sync"
)

// Fallback storage keys.
const (
	KeyPrefix   = "bridge_"
	KeyFCMToken = KeyPrefix + "fcm_token"
	KeyUserData = KeyPrefix + "user_data"
)

// ActionKey returns the fallback key for payloads of action that had no native transport.
func ActionKey(action string) string {
	return KeyPrefix + "action_" + action
}

// Store persists payloads when no native host can receive them.
// Writes overwrite; last writer wins.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
