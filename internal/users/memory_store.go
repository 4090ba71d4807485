package users

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryStore builds an in-memory user store for tests and local development.
func NewMemoryStore() Store {
	return &memoryStore{docs: make(map[string]Document)}
}

func (s *memoryStore) Save(_ context.Context, user User) error {
	if user.ID == "" {
		return ErrInvalidID
	}
	doc := user.ToDocument()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[user.ID] = doc
	return nil
}

func (s *memoryStore) Fetch(_ context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidID
	}
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return User{}, notFound(id)
	}
	return FromDocument(doc)
}
