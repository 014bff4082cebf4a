package server

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/five82/imagestrip/internal/strip"
)

// SessionStore holds one strip per connected viewer.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*strip.Strip
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*strip.Strip),
	}
}

// Add stores s under a fresh UUID and returns the id.
func (st *SessionStore) Add(s *strip.Strip) string {
	id := uuid.NewString()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[id] = s
	return id
}

func (st *SessionStore) Get(id string) (*strip.Strip, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// IDs returns the session ids in sorted order.
func (st *SessionStore) IDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
