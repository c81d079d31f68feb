package state

import (
	"sync"

	"github.com/five82/shelf/internal/events"
	"github.com/five82/shelf/internal/library"
)

// NoClientName is shown when no client is selected.
const NoClientName = "---"

// ClientStore holds the currently selected client.
type ClientStore struct {
	mu      sync.RWMutex
	current *library.Client
	changes *events.Bus
}

// NewClientStore returns an empty store that announces changes on bus.
// A nil bus gets a private one.
func NewClientStore(bus *events.Bus) *ClientStore {
	if bus == nil {
		bus = &events.Bus{}
	}
	return &ClientStore{changes: bus}
}

// Get returns the current client and whether one is selected.
func (s *ClientStore) Get() (library.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return library.Client{}, false
	}
	return *s.current, true
}

// Set replaces the current client (nil clears it) and then notifies
// subscribers. Subscribers always observe the value just written.
func (s *ClientStore) Set(client *library.Client) {
	s.mu.Lock()
	if client == nil {
		s.current = nil
	} else {
		dup := *client
		s.current = &dup
	}
	s.mu.Unlock()

	s.changes.Emit()
}

// Name returns the current client's display name or NoClientName.
func (s *ClientStore) Name() string {
	client, ok := s.Get()
	if !ok {
		return NoClientName
	}
	return client.Name
}

// Subscribe registers fn to run after every Set.
func (s *ClientStore) Subscribe(fn func()) (unsubscribe func()) {
	return s.changes.Subscribe(fn)
}
