package auth

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewMemoryRepository builds an in-memory credential store for tests and development.
func NewMemoryRepository() CredentialRepository {
	return &memoryRepository{creds: make(map[string]Credential)}
}

func (r *memoryRepository) Create(_ context.Context, cred Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.creds[cred.Email]; exists {
		return ErrEmailTaken
	}
	r.creds[cred.Email] = cred
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cred, ok := r.creds[email]
	if !ok {
		return Credential{}, ErrCredentialNotFound
	}
	return cred, nil
}
