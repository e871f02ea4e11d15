package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	domcheckout "example.com/cleantec-orders/app/internal/domain/checkout"
	"example.com/cleantec-orders/app/internal/usecase/checkout"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is the single-process store used when no Redis address is
// configured. Entries expire ttl after their last save.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*checkout.Snapshot, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok && s.expired(e) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, domcheckout.ErrSessionNotFound
	}

	var snap checkout.Snapshot
	if err := json.Unmarshal(e.data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &snap, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, snap *checkout.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	e := memoryEntry{data: data}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[id] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Purge drops expired entries and reports how many were removed.
func (s *MemoryStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
