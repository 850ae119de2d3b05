package tokens

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory token store for tests and development runs.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]Token)}
}

func (s *MemoryStore) Find(ctx context.Context, token string) (*Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tokens[token]; ok {
		cp := t
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryStore) Insert(ctx context.Context, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token]; ok {
		return ErrExists
	}
	s.tokens[token] = Token{Token: token, ExpiryDate: expiry}
	return nil
}
