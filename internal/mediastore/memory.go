package mediastore

import (
	"context"
	"sort"
	"sync"
	"time"

	"coursepack/internal/failures"
)

// MemoryStore is an in-process store that records how often each id was
// fetched.
type MemoryStore struct {
	mu       sync.Mutex
	payloads map[string]Payload
	created  map[string]time.Time
	fetches  map[string]int
	total    int

	// Gate, when set, is received from before each fetch returns so tests
	// can hold fetches in flight.
	Gate chan struct{}
}

// NewMemory returns a store preloaded with payloads.
func NewMemory(payloads ...Payload) *MemoryStore {
	s := &MemoryStore{
		payloads: make(map[string]Payload),
		created:  make(map[string]time.Time),
		fetches:  make(map[string]int),
	}
	for _, p := range payloads {
		s.payloads[p.ID] = p
		s.created[p.ID] = time.Now().UTC()
	}
	return s
}

// Fetch returns a copy of the payload for id.
func (s *MemoryStore) Fetch(ctx context.Context, id string) (Payload, error) {
	s.mu.Lock()
	s.fetches[id]++
	s.total++
	p, ok := s.payloads[id]
	gate := s.Gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Payload{}, ctx.Err()
		}
	}
	if !ok {
		return Payload{}, failures.NotFound(id)
	}
	p.Data = append([]byte(nil), p.Data...)
	return p, nil
}

// Put stores a payload.
func (s *MemoryStore) Put(_ context.Context, p Payload) error {
	if err := ValidateID(p.ID); err != nil {
		return failures.Wrap(failures.ErrValidation, "mediastore", "put", "", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[p.ID] = p
	s.created[p.ID] = time.Now().UTC()
	return nil
}

// List returns entries ordered by id.
func (s *MemoryStore) List(context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, 0, len(s.payloads))
	for id, p := range s.payloads {
		entries = append(entries, entryFor(p, s.created[id]))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Fetches reports how many times id was fetched.
func (s *MemoryStore) Fetches(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[id]
}

// TotalFetches reports the number of Fetch calls across all ids.
func (s *MemoryStore) TotalFetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}
