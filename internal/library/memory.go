package library

import (
	"context"
	"sync"
	"time"
)

var (
	_ Source    = (*MemorySource)(nil)
	_ Directory = (*MemorySource)(nil)
)

// MemorySource serves books from an in-memory seed table.
type MemorySource struct {
	mu      sync.RWMutex
	clients []Client
	books   map[string]Snapshot
	latency time.Duration
}

// NewMemorySource builds a source over seed. A zero latency answers
// immediately.
func NewMemorySource(seed Seed, latency time.Duration) *MemorySource {
	s := &MemorySource{latency: latency}
	s.Replace(seed)
	return s
}

// Replace swaps the backing table.
func (s *MemorySource) Replace(seed Seed) {
	clients := make([]Client, 0, len(seed.Clients))
	books := make(map[string]Snapshot, len(seed.Clients))
	for _, c := range seed.Clients {
		clients = append(clients, Client{ID: c.ID, Name: c.Name})
		books[c.ID] = Snapshot{Borrowed: c.Borrowed, Available: c.Available}.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = clients
	s.books = books
}

// Fetch returns a deep copy of the client's books. Unknown clients get an
// empty snapshot rather than an error.
func (s *MemorySource) Fetch(ctx context.Context, clientID string) (Snapshot, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		case <-timer.C:
		}
	}

	snap, _ := s.lookup(clientID)
	return snap, nil
}

// Lookup is Fetch without latency, reporting whether the client exists.
func (s *MemorySource) Lookup(clientID string) (Snapshot, bool) {
	return s.lookup(clientID)
}

// Clients lists the seeded clients in seed order.
func (s *MemorySource) Clients(context.Context) ([]Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dup := make([]Client, len(s.clients))
	copy(dup, s.clients)
	return dup, nil
}

func (s *MemorySource) lookup(clientID string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.books[clientID]
	if !ok {
		return Snapshot{Borrowed: []Book{}, Available: []Book{}}, false
	}
	return snap.Clone(), true
}
