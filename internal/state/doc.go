// Package state holds the observable stores behind the shelf UI.
//
// # Overview
//
// Two stores cooperate:
//
//   - ClientStore holds the selected client. Set writes the slot and then
//     notifies subscribers through an injected events.Bus.
//   - BooksStore holds the borrowed and available lists for the active client,
//     a per-client cache, and the marker of the fetch it is waiting for.
//
// # Architecture
//
//	UI                ClientStore           BooksStore              Source
//	┌──────────┐      ┌──────────┐          ┌──────────────┐        ┌───────┐
//	│ select   │─Set─→│ slot     │─notify──→│ Reload(id)   │        │       │
//	│          │      └──────────┘          │  cached? ────┼─yes──→ adopt
//	│          │                            │  no ─────────┼─Fetch─→│       │
//	│          │←─────────notify────────────│  commit/skip │←───────│       │
//	│ borrow   │─────────Borrow/Return─────→│  lists+cache │        └───────┘
//	└──────────┘                            └──────────────┘
//
// Follow wires the two stores together: every client change is turned into
// a Reload carrying the client ID read once at notification time. Reload
// itself never consults the ClientStore, which keeps the stale-response
// logic testable on its own.
//
// # Load Cycle
//
//	Reload("")        → StatusIdle, empty lists
//	Reload(cached id) → StatusLoaded, lists restored from cache, no fetch
//	Reload(new id)    → StatusLoading, empty lists, fetch in a goroutine
//	  fetch ok        → cache[id] = copy, StatusLoaded
//	  fetch error     → StatusFailed, View.Err set, cache untouched
//	  superseded      → result dropped, no state change
//
// Each fetch gets a fresh request ID. A completion only commits when its ID
// is still the pending one, so switching A → B before A's fetch returns can
// never show A's books under B. Switching to a cached client also clears the
// pending marker. Every fetch runs under a timeout so a hung source ends in
// StatusFailed rather than loading forever.
//
// # Mutations
//
// Borrow and Return report success as a bool:
//
//	Borrow: rejected when 3 books are borrowed, the ID is already borrowed,
//	        or the store is loading/failed. Moves the book from available
//	        to borrowed.
//	Return: rejected when the ID is not borrowed or the store is
//	        loading/failed. Moves the book back, never duplicating it in
//	        available.
//
// Successful mutations replace whole slices (copy-on-write) and write the
// result into the cache for the active client, so revisiting a client shows
// the state it was left in.
//
// # Concurrency Model
//
// Both stores guard their fields with a sync.RWMutex. Readers get copies
// (View, Borrowed, Available) and never observe a half-applied mutation.
// Subscribers are notified after the lock is released, so a subscriber may
// call back into the store.
package state
