package token

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store used by tests.
type MemStore struct {
	mu  sync.Mutex
	tok *Token

	// LoadErr/SaveErr, when set, are returned by the corresponding call.
	LoadErr error
	SaveErr error
}

func (s *MemStore) Load(ctx context.Context) (*Token, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.tok == nil {
		return nil, nil
	}
	cp := *s.tok
	return &cp, nil
}

func (s *MemStore) Save(ctx context.Context, t Token) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.tok = &t
	return nil
}

func (s *MemStore) Close() error { return nil }

// Set seeds the store with a record.
func (s *MemStore) Set(t Token) {
	s.mu.Lock()
	s.tok = &t
	s.mu.Unlock()
}
