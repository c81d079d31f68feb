package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shelf/internal/events"
	"github.com/five82/shelf/internal/library"
)

func TestClientStore_GetSet(t *testing.T) {
	s := NewClientStore(nil)

	_, ok := s.Get()
	assert.False(t, ok)
	assert.Equal(t, NoClientName, s.Name())

	s.Set(&library.Client{ID: "user1", Name: "Paweł"})
	got, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, library.Client{ID: "user1", Name: "Paweł"}, got)
	assert.Equal(t, "Paweł", s.Name())

	s.Set(nil)
	_, ok = s.Get()
	assert.False(t, ok)
	assert.Equal(t, NoClientName, s.Name())
}

func TestClientStore_SetCopiesInput(t *testing.T) {
	s := NewClientStore(nil)
	c := &library.Client{ID: "user1", Name: "Paweł"}
	s.Set(c)
	c.Name = "changed"

	assert.Equal(t, "Paweł", s.Name())
}

func TestClientStore_NotifiesAfterWrite(t *testing.T) {
	bus := &events.Bus{}
	s := NewClientStore(bus)

	var seen []string
	s.Subscribe(func() {
		c, _ := s.Get()
		seen = append(seen, c.ID)
	})

	s.Set(&library.Client{ID: "user1"})
	s.Set(&library.Client{ID: "user2"})
	s.Set(nil)

	assert.Equal(t, []string{"user1", "user2", ""}, seen)
	assert.Equal(t, 1, bus.Len())
}

func TestClientStore_SetSameClientStillNotifies(t *testing.T) {
	s := NewClientStore(nil)
	calls := 0
	s.Subscribe(func() { calls++ })

	c := &library.Client{ID: "user1"}
	s.Set(c)
	s.Set(c)
	assert.Equal(t, 2, calls)
}

func TestBooksStore_FollowReloadsOnClientChange(t *testing.T) {
	clients := NewClientStore(&events.Bus{})
	books := NewBooksStore(library.NewMemorySource(library.DefaultSeed(), 0))
	unsub := books.Follow(context.Background(), clients)
	defer unsub()

	clients.Set(&library.Client{ID: "user1", Name: "Paweł"})
	require.Eventually(t, func() bool {
		return books.View().Status == StatusLoaded
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"b1"}, ids(books.Borrowed()))

	clients.Set(&library.Client{ID: "user2", Name: "Kasia"})
	require.Eventually(t, func() bool {
		v := books.View()
		return v.ClientID == "user2" && v.Status == StatusLoaded
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"b4", "b5"}, ids(books.Borrowed()))

	clients.Set(nil)
	v := books.View()
	assert.Equal(t, StatusIdle, v.Status)
	assert.Empty(t, v.Borrowed)
}

func TestBooksStore_FollowUnsubscribeStopsReloads(t *testing.T) {
	clients := NewClientStore(nil)
	books := NewBooksStore(library.NewMemorySource(library.DefaultSeed(), 0))
	unsub := books.Follow(context.Background(), clients)
	unsub()

	clients.Set(&library.Client{ID: "user1"})
	assert.Equal(t, StatusIdle, books.View().Status)
}
