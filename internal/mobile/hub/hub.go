package hub

import (
	"log"
	"sort"
	"sync"
)

// Hub tracks the connected native shells
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*Session)}
}

func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID()] = s
	n := len(h.sessions)
	h.mu.Unlock()
	log.Printf("[Mobile] Session %s connected (%s), %d active", s.ID(), s.Bridge().Platform(), n)
}

// Unregister removes and closes the session.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	if h.sessions[s.ID()] == s {
		delete(h.sessions, s.ID())
	}
	n := len(h.sessions)
	h.mu.Unlock()

	s.Close()
	log.Printf("[Mobile] Session %s disconnected, %d active", s.ID(), n)
}

func (h *Hub) Get(id string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	return s, ok
}

// List returns the sessions oldest first.
func (h *Hub) List() []*Session {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].connectedAt.Before(sessions[j].connectedAt)
	})
	return sessions
}

// CloseAll closes every session, used at shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
