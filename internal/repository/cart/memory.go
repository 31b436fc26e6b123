package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"pos-backend/internal/cart"
	"pos-backend/internal/domain"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

type memoryStore struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemory returns a process-local Store. Carts expire ttl after their last
// save; ttl <= 0 keeps them forever.
func NewMemory(ttl time.Duration) Store {
	return newMemory(ttl, time.Now)
}

func newMemory(ttl time.Duration, now func() time.Time) *memoryStore {
	return &memoryStore{items: make(map[string]memoryEntry), ttl: ttl, now: now}
}

func (s *memoryStore) Get(_ context.Context, id string) (*cart.Cart, error) {
	s.mu.Lock()
	entry, ok := s.items[id]
	if ok && s.ttl > 0 && !s.now().Before(entry.expires) {
		delete(s.items, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	var c cart.Cart
	if err := json.Unmarshal(entry.data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save stores a serialised copy so later edits by the caller are not visible
// until saved again.
func (s *memoryStore) Save(_ context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[c.ID] = memoryEntry{data: data, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}
