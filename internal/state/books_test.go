package state

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/mock"
)

var (
	b1 = library.Book{ID: "b1", Title: "Pan Tadeusz"}
	b2 = library.Book{ID: "b2", Title: "Lalka"}
	b3 = library.Book{ID: "b3", Title: "Ballady i romanse"}
	b4 = library.Book{ID: "b4", Title: "Zemsta"}
	b6 = library.Book{ID: "b6", Title: "Ferdydurke"}
)

// manualSource hands every Fetch to the test, which decides when and how
// it completes.
type manualSource struct {
	calls chan fetchCall
}

type fetchCall struct {
	clientID string
	reply    chan fetchReply
}

type fetchReply struct {
	snap library.Snapshot
	err  error
}

func newManualSource() *manualSource {
	return &manualSource{calls: make(chan fetchCall, 8)}
}

func (m *manualSource) Fetch(ctx context.Context, clientID string) (library.Snapshot, error) {
	call := fetchCall{clientID: clientID, reply: make(chan fetchReply, 1)}
	m.calls <- call
	select {
	case r := <-call.reply:
		return r.snap, r.err
	case <-ctx.Done():
		return library.Snapshot{}, ctx.Err()
	}
}

func (m *manualSource) next(t *testing.T) fetchCall {
	t.Helper()
	select {
	case call := <-m.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch")
		return fetchCall{}
	}
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload to settle")
	}
}

func newSeededStore(t *testing.T, clientID string) *BooksStore {
	t.Helper()
	s := NewBooksStore(library.NewMemorySource(library.DefaultSeed(), 0))
	wait(t, s.Reload(context.Background(), clientID))
	require.Equal(t, StatusLoaded, s.View().Status)
	return s
}

func ids(books []library.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

func TestBooksStore_StartsIdleAndEmpty(t *testing.T) {
	s := NewBooksStore(library.NewMemorySource(library.DefaultSeed(), 0))

	v := s.View()
	assert.Equal(t, StatusIdle, v.Status)
	assert.Empty(t, v.ClientID)
	assert.NotNil(t, v.Borrowed)
	assert.NotNil(t, v.Available)
	assert.Empty(t, v.Borrowed)
	assert.Empty(t, v.Available)
	assert.False(t, v.LimitReached())
}

func TestBooksStore_Scenario(t *testing.T) {
	s := newSeededStore(t, "user1")

	assert.Equal(t, []library.Book{b1}, s.Borrowed())
	assert.Equal(t, []library.Book{b2, b3}, s.Available())

	require.True(t, s.Borrow(b2))
	assert.Equal(t, []string{"b1", "b2"}, ids(s.Borrowed()))
	assert.Equal(t, []string{"b3"}, ids(s.Available()))
	assert.False(t, s.LimitReached())

	require.True(t, s.Borrow(b3))
	assert.Equal(t, []string{"b1", "b2", "b3"}, ids(s.Borrowed()))
	assert.Empty(t, s.Available())
	assert.True(t, s.LimitReached())

	before := s.View()
	assert.False(t, s.Borrow(b4))
	assert.Equal(t, before, s.View())

	require.True(t, s.Return(b1))
	assert.Equal(t, []string{"b2", "b3"}, ids(s.Borrowed()))
	assert.Equal(t, []string{"b1"}, ids(s.Available()))
	assert.False(t, s.LimitReached())
}

func TestBooksStore_BorrowRejectsDuplicate(t *testing.T) {
	s := newSeededStore(t, "user1")

	before := s.View()
	assert.False(t, s.Borrow(b1))
	assert.Equal(t, before, s.View())
}

func TestBooksStore_ReturnRejectsNotBorrowed(t *testing.T) {
	s := newSeededStore(t, "user1")

	before := s.View()
	assert.False(t, s.Return(b2))
	assert.Equal(t, before, s.View())
}

func TestBooksStore_ReturnDoesNotDuplicateAvailable(t *testing.T) {
	// An unvalidated table can list a book on both sides.
	s := NewBooksStore(library.NewMemorySource(library.Seed{Clients: []library.SeedClient{{
		ID:        "odd",
		Borrowed:  []library.Book{b1},
		Available: []library.Book{b1, b2},
	}}}, 0))
	wait(t, s.Reload(context.Background(), "odd"))

	require.True(t, s.Return(b1))
	assert.Empty(t, s.Borrowed())
	assert.Equal(t, []string{"b1", "b2"}, ids(s.Available()))
	assert.False(t, s.Return(b1))
}

func TestBooksStore_RoundTripRestoresSets(t *testing.T) {
	s := newSeededStore(t, "user2")
	before := s.View()

	require.True(t, s.Borrow(b6))
	require.True(t, s.Return(b6))

	after := s.View()
	assert.ElementsMatch(t, before.Borrowed, after.Borrowed)
	assert.ElementsMatch(t, before.Available, after.Available)
}

func TestBooksStore_CapNeverExceeded(t *testing.T) {
	var available []library.Book
	for i := 0; i < 10; i++ {
		available = append(available, library.Book{ID: fmt.Sprintf("x%d", i), Title: "t"})
	}
	s := NewBooksStore(library.NewMemorySource(library.Seed{Clients: []library.SeedClient{{ID: "u", Available: available}}}, 0))
	wait(t, s.Reload(context.Background(), "u"))

	accepted := 0
	for _, b := range available {
		if s.Borrow(b) {
			accepted++
		}
		require.LessOrEqual(t, len(s.Borrowed()), library.BorrowLimit)
	}
	assert.Equal(t, library.BorrowLimit, accepted)
	assert.True(t, s.LimitReached())
}

func TestBooksStore_RandomOperationsKeepInvariants(t *testing.T) {
	s := newSeededStore(t, "user1")
	pool := []library.Book{b1, b2, b3, b4, b6}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		book := pool[rng.Intn(len(pool))]
		if rng.Intn(2) == 0 {
			s.Borrow(book)
		} else {
			s.Return(book)
		}

		v := s.View()
		require.LessOrEqual(t, len(v.Borrowed), library.BorrowLimit)
		seen := make(map[string]string)
		for _, b := range v.Borrowed {
			require.NotContains(t, seen, b.ID, "duplicate in borrowed")
			seen[b.ID] = "borrowed"
		}
		for _, b := range v.Available {
			require.NotContains(t, seen, b.ID, "id %s in available and %s", b.ID, seen[b.ID])
			seen[b.ID] = "available"
		}
	}
}

func TestBooksStore_CacheFastPathSkipsFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock.NewMockSource(ctrl)
	src.EXPECT().Fetch(gomock.Any(), "user1").
		Return(library.Snapshot{Borrowed: []library.Book{b1}, Available: []library.Book{b2, b3}}, nil).
		Times(1)
	src.EXPECT().Fetch(gomock.Any(), "user2").
		Return(library.Snapshot{Borrowed: []library.Book{b4}, Available: []library.Book{b6}}, nil).
		Times(1)

	s := NewBooksStore(src)
	ctx := context.Background()

	wait(t, s.Reload(ctx, "user1"))
	require.True(t, s.Borrow(b2))
	left := s.View()

	wait(t, s.Reload(ctx, "user2"))
	assert.Equal(t, []string{"b4"}, ids(s.Borrowed()))

	done := s.Reload(ctx, "user1")
	select {
	case <-done:
	default:
		t.Fatal("cached reload should settle synchronously")
	}
	assert.Equal(t, left, s.View())
	assert.True(t, s.Cached("user1"))
	assert.True(t, s.Cached("user2"))
}

func TestBooksStore_StaleResponseIsDiscarded(t *testing.T) {
	src := newManualSource()
	s := NewBooksStore(src)
	ctx := context.Background()

	doneA := s.Reload(ctx, "user1")
	callA := src.next(t)
	require.Equal(t, "user1", callA.clientID)

	doneB := s.Reload(ctx, "user2")
	callB := src.next(t)
	callB.reply <- fetchReply{snap: library.Snapshot{Borrowed: []library.Book{b4}, Available: []library.Book{b6}}}
	wait(t, doneB)

	callA.reply <- fetchReply{snap: library.Snapshot{Borrowed: []library.Book{b1}, Available: []library.Book{b2}}}
	wait(t, doneA)

	v := s.View()
	assert.Equal(t, "user2", v.ClientID)
	assert.Equal(t, StatusLoaded, v.Status)
	assert.Equal(t, []library.Book{b4}, v.Borrowed)
	assert.Equal(t, []library.Book{b6}, v.Available)
	assert.False(t, s.Cached("user1"), "a discarded response must not populate the cache")
}

func TestBooksStore_StaleResponseAfterSwitchToCachedClient(t *testing.T) {
	src := newManualSource()
	s := NewBooksStore(src)
	ctx := context.Background()

	doneB := s.Reload(ctx, "user2")
	src.next(t).reply <- fetchReply{snap: library.Snapshot{Borrowed: []library.Book{b4}}}
	wait(t, doneB)

	doneA := s.Reload(ctx, "user1")
	callA := src.next(t)
	wait(t, s.Reload(ctx, "user2"))

	callA.reply <- fetchReply{snap: library.Snapshot{Borrowed: []library.Book{b1}}}
	wait(t, doneA)

	v := s.View()
	assert.Equal(t, "user2", v.ClientID)
	assert.Equal(t, []library.Book{b4}, v.Borrowed)
}

func TestBooksStore_StaleResponseAfterClear(t *testing.T) {
	src := newManualSource()
	s := NewBooksStore(src)
	ctx := context.Background()

	doneA := s.Reload(ctx, "user1")
	callA := src.next(t)
	wait(t, s.Reload(ctx, ""))

	callA.reply <- fetchReply{snap: library.Snapshot{Borrowed: []library.Book{b1}}}
	wait(t, doneA)

	v := s.View()
	assert.Equal(t, StatusIdle, v.Status)
	assert.Empty(t, v.Borrowed)
}

func TestBooksStore_ReloadSameClientTwiceKeepsLatestRequest(t *testing.T) {
	src := newManualSource()
	s := NewBooksStore(src)
	ctx := context.Background()

	first := s.Reload(ctx, "user1")
	oldCall := src.next(t)
	second := s.Reload(ctx, "user1")
	newCall := src.next(t)

	oldCall.reply <- fetchReply{snap: library.Snapshot{Borrowed: []library.Book{b1}}}
	wait(t, first)
	assert.Equal(t, StatusLoading, s.View().Status, "older request for the same client must not commit")

	newCall.reply <- fetchReply{snap: library.Snapshot{Borrowed: []library.Book{b2}}}
	wait(t, second)
	assert.Equal(t, []library.Book{b2}, s.Borrowed())
}

func TestBooksStore_ClearEmptiesLists(t *testing.T) {
	s := newSeededStore(t, "user1")

	wait(t, s.Reload(context.Background(), ""))

	v := s.View()
	assert.Equal(t, StatusIdle, v.Status)
	assert.Empty(t, v.ClientID)
	assert.Empty(t, v.Borrowed)
	assert.Empty(t, v.Available)
}

func TestBooksStore_MutationsRejectedWhileLoading(t *testing.T) {
	src := newManualSource()
	s := NewBooksStore(src)

	done := s.Reload(context.Background(), "user1")
	call := src.next(t)
	require.Equal(t, StatusLoading, s.View().Status)

	assert.False(t, s.Borrow(b2))
	assert.False(t, s.Return(b1))

	call.reply <- fetchReply{snap: library.Snapshot{Borrowed: []library.Book{b1}, Available: []library.Book{b2}}}
	wait(t, done)
	assert.True(t, s.Borrow(b2))
}

func TestBooksStore_FetchErrorMovesToFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock.NewMockSource(ctrl)
	gomock.InOrder(
		src.EXPECT().Fetch(gomock.Any(), "user1").Return(library.Snapshot{}, library.ErrTransport),
		src.EXPECT().Fetch(gomock.Any(), "user1").Return(library.Snapshot{Borrowed: []library.Book{b1}}, nil),
	)

	s := NewBooksStore(src)
	wait(t, s.Reload(context.Background(), "user1"))

	v := s.View()
	assert.Equal(t, StatusFailed, v.Status)
	require.ErrorIs(t, v.Err, library.ErrTransport)
	assert.False(t, s.Cached("user1"))
	assert.False(t, s.Borrow(b2))

	wait(t, s.Reload(context.Background(), "user1"))
	v = s.View()
	assert.Equal(t, StatusLoaded, v.Status)
	assert.NoError(t, v.Err)
	assert.Equal(t, []library.Book{b1}, v.Borrowed)
}

func TestBooksStore_FetchTimeoutMovesToFailed(t *testing.T) {
	src := newManualSource()
	s := NewBooksStore(src, WithFetchTimeout(20*time.Millisecond))

	done := s.Reload(context.Background(), "user1")
	src.next(t)
	wait(t, done)

	v := s.View()
	assert.Equal(t, StatusFailed, v.Status)
	assert.True(t, errors.Is(v.Err, context.DeadlineExceeded))
	assert.Contains(t, v.Err.Error(), "timed out")
}

func TestBooksStore_IdleMutationsDoNotCache(t *testing.T) {
	s := NewBooksStore(library.NewMemorySource(library.DefaultSeed(), 0))

	require.True(t, s.Borrow(b1))
	assert.Equal(t, []library.Book{b1}, s.Borrowed())
	assert.False(t, s.Cached(""))
}

func TestBooksStore_FetchedSnapshotIsCopied(t *testing.T) {
	shared := library.Snapshot{Borrowed: []library.Book{b1}, Available: []library.Book{b2}}
	ctrl := gomock.NewController(t)
	src := mock.NewMockSource(ctrl)
	src.EXPECT().Fetch(gomock.Any(), "user1").Return(shared, nil)

	s := NewBooksStore(src)
	wait(t, s.Reload(context.Background(), "user1"))
	shared.Borrowed[0].Title = "mutated by source"

	assert.Equal(t, "Pan Tadeusz", s.Borrowed()[0].Title)
}

func TestBooksStore_ViewIsACopy(t *testing.T) {
	s := newSeededStore(t, "user1")

	v := s.View()
	v.Borrowed[0].Title = "changed"
	assert.Equal(t, "Pan Tadeusz", s.Borrowed()[0].Title)
}

func TestBooksStore_NotifiesOnChangeOnly(t *testing.T) {
	s := newSeededStore(t, "user1")
	calls := 0
	unsub := s.Subscribe(func() { calls++ })
	defer unsub()

	s.Borrow(b2)
	assert.Equal(t, 1, calls)

	s.Borrow(b2)
	s.Return(b4)
	assert.Equal(t, 1, calls, "rejected mutations must not notify")

	s.Return(b2)
	assert.Equal(t, 2, calls)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "loaded", StatusLoaded.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
