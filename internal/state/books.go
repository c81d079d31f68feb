package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/five82/shelf/internal/events"
	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/logger"
)

// DefaultFetchTimeout bounds a single source fetch.
const DefaultFetchTimeout = 5 * time.Second

// Status describes where the books store is in its load cycle.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// View is a point-in-time copy of the books store.
type View struct {
	ClientID  string
	Status    Status
	Borrowed  []library.Book
	Available []library.Book
	Err       error
}

// LimitReached reports whether the borrow cap is used up.
func (v View) LimitReached() bool {
	return len(v.Borrowed) >= library.BorrowLimit
}

// BooksStore owns the borrowed and available lists for the active client
// and a per-client cache of their last known state.
type BooksStore struct {
	source  library.Source
	log     *logger.Logger
	timeout time.Duration
	changes events.Bus

	mu        sync.RWMutex
	borrowed  []library.Book
	available []library.Book
	cache     map[string]library.Snapshot
	pending   pendingRequest
	active    string
	status    Status
	lastErr   error
}

type pendingRequest struct {
	id       string
	clientID string
}

// BooksOption customises a BooksStore.
type BooksOption func(*BooksStore)

// WithLogger sets the store's logger.
func WithLogger(l *logger.Logger) BooksOption {
	return func(s *BooksStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFetchTimeout bounds each fetch. Non-positive values keep the default.
func WithFetchTimeout(d time.Duration) BooksOption {
	return func(s *BooksStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewBooksStore returns an idle store that loads books from source.
func NewBooksStore(source library.Source, opts ...BooksOption) *BooksStore {
	s := &BooksStore{
		source:    source,
		log:       logger.Nop(),
		timeout:   DefaultFetchTimeout,
		borrowed:  []library.Book{},
		available: []library.Book{},
		cache:     make(map[string]library.Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Follow reloads the store whenever clients changes. Each notification reads
// the client once and passes its ID to Reload.
func (s *BooksStore) Follow(ctx context.Context, clients *ClientStore) (unsubscribe func()) {
	return clients.Subscribe(func() {
		client, _ := clients.Get()
		s.Reload(ctx, client.ID)
	})
}

// Reload switches the store to clientID; an empty ID clears it. The returned
// channel is closed once the reload has settled: immediately for a cleared
// or cached client, after the fetch completes otherwise.
func (s *BooksStore) Reload(ctx context.Context, clientID string) <-chan struct{} {
	done := make(chan struct{})

	if clientID == "" {
		s.mu.Lock()
		s.pending = pendingRequest{}
		s.active = ""
		s.adoptLocked(library.Snapshot{}, StatusIdle)
		s.mu.Unlock()

		s.log.Debug().Msg("client cleared")
		s.changes.Emit()
		close(done)
		return done
	}

	s.mu.Lock()
	if cached, ok := s.cache[clientID]; ok {
		s.pending = pendingRequest{}
		s.active = clientID
		s.adoptLocked(cached, StatusLoaded)
		s.mu.Unlock()

		s.log.Debug().Str("client", clientID).Msg("books restored from cache")
		s.changes.Emit()
		close(done)
		return done
	}

	req := pendingRequest{id: uuid.NewString(), clientID: clientID}
	s.pending = req
	s.active = clientID
	s.adoptLocked(library.Snapshot{}, StatusLoading)
	s.mu.Unlock()

	s.log.Debug().Str("client", clientID).Str("request", req.id).Msg("fetching books")
	s.changes.Emit()

	go func() {
		defer close(done)
		s.fetch(ctx, req)
	}()
	return done
}

func (s *BooksStore) fetch(ctx context.Context, req pendingRequest) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snap, err := s.source.Fetch(ctx, req.clientID)

	s.mu.Lock()
	if s.pending != req {
		s.mu.Unlock()
		s.log.Debug().Str("client", req.clientID).Str("request", req.id).Msg("discarding superseded books response")
		return
	}
	s.pending = pendingRequest{}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("fetch books for %s: timed out after %s: %w", req.clientID, s.timeout, err)
		} else {
			err = fmt.Errorf("fetch books for %s: %w", req.clientID, err)
		}
		s.lastErr = err
		s.status = StatusFailed
		s.mu.Unlock()

		s.log.Warn().Err(err).Str("client", req.clientID).Str("request", req.id).Msg("books fetch failed")
		s.changes.Emit()
		return
	}

	normalized := snap.Clone()
	s.cache[req.clientID] = normalized
	s.adoptLocked(normalized, StatusLoaded)
	s.mu.Unlock()

	s.log.Debug().Str("client", req.clientID).Str("request", req.id).
		Int("borrowed", len(normalized.Borrowed)).
		Int("available", len(normalized.Available)).
		Msg("books loaded")
	s.changes.Emit()
}

// Borrow moves book into the borrowed list. It returns false, changing
// nothing, when the cap is reached, the book is already borrowed, or the
// store is loading or failed.
func (s *BooksStore) Borrow(book library.Book) bool {
	s.mu.Lock()
	if !s.mutableLocked() ||
		len(s.borrowed) >= library.BorrowLimit ||
		library.Contains(s.borrowed, book.ID) {
		s.mu.Unlock()
		return false
	}

	s.borrowed = append(library.CloneBooks(s.borrowed), book)
	s.available = library.Without(s.available, book.ID)
	s.persistLocked()
	s.mu.Unlock()

	s.changes.Emit()
	return true
}

// Return moves a borrowed book back to the available list. It returns false,
// changing nothing, when the book is not borrowed or the store is loading or
// failed.
func (s *BooksStore) Return(book library.Book) bool {
	s.mu.Lock()
	if !s.mutableLocked() || !library.Contains(s.borrowed, book.ID) {
		s.mu.Unlock()
		return false
	}

	s.borrowed = library.Without(s.borrowed, book.ID)
	if !library.Contains(s.available, book.ID) {
		s.available = append(library.CloneBooks(s.available), book)
	}
	s.persistLocked()
	s.mu.Unlock()

	s.changes.Emit()
	return true
}

// View returns a copy of the current state.
func (s *BooksStore) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return View{
		ClientID:  s.active,
		Status:    s.status,
		Borrowed:  library.CloneBooks(s.borrowed),
		Available: library.CloneBooks(s.available),
		Err:       s.lastErr,
	}
}

// Borrowed returns a copy of the borrowed list.
func (s *BooksStore) Borrowed() []library.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return library.CloneBooks(s.borrowed)
}

// Available returns a copy of the available list.
func (s *BooksStore) Available() []library.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return library.CloneBooks(s.available)
}

// LimitReached reports whether the active client holds the maximum number
// of books.
func (s *BooksStore) LimitReached() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.borrowed) >= library.BorrowLimit
}

// Cached reports whether clientID has a cached snapshot.
func (s *BooksStore) Cached(clientID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cache[clientID]
	return ok
}

// Subscribe registers fn to run after every state change.
func (s *BooksStore) Subscribe(fn func()) (unsubscribe func()) {
	return s.changes.Subscribe(fn)
}

func (s *BooksStore) mutableLocked() bool {
	return s.status == StatusIdle || s.status == StatusLoaded
}

// adoptLocked installs copies of snap's lists. Callers hold s.mu.
func (s *BooksStore) adoptLocked(snap library.Snapshot, status Status) {
	s.borrowed = library.CloneBooks(snap.Borrowed)
	s.available = library.CloneBooks(snap.Available)
	s.status = status
	s.lastErr = nil
}

func (s *BooksStore) persistLocked() {
	if s.active == "" {
		return
	}
	s.cache[s.active] = library.Snapshot{
		Borrowed:  s.borrowed,
		Available: s.available,
	}.Clone()
}
