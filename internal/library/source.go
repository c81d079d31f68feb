package library

import (
	"context"
	"errors"
)

//go:generate mockgen -source=source.go -destination=../mock/source_mock.go -package=mock

var (
	// ErrNotFound reports that the source has no books for a client.
	ErrNotFound = errors.New("client not found")
	// ErrTransport reports that the source could not be reached.
	ErrTransport = errors.New("books source unreachable")
)

// Source looks up the books of a single client.
type Source interface {
	// Fetch returns a snapshot owned by the caller.
	Fetch(ctx context.Context, clientID string) (Snapshot, error)
}

// Directory lists the clients a source knows about.
type Directory interface {
	Clients(ctx context.Context) ([]Client, error)
}
