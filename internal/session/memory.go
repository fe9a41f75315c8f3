package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-process store with TTL eviction.
type MemoryStore struct {
	mu      sync.Mutex
	results map[string]Result
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		results: make(map[string]Result),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.results[id]
	if !ok || s.expired(res) {
		return Result{}, ErrNotFound
	}
	return res, nil
}

func (s *MemoryStore) Put(_ context.Context, id string, res Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res.UpdatedAt = s.now()
	s.results[id] = res
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Cleanup removes expired sessions and returns how many were dropped.
func (s *MemoryStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, res := range s.results {
		if s.expired(res) {
			delete(s.results, id)
			n++
		}
	}
	return n
}

func (s *MemoryStore) expired(res Result) bool {
	return s.ttl > 0 && s.now().Sub(res.UpdatedAt) > s.ttl
}
