// Package ui provides the Bubble Tea borrow view for shelf.
//
// # Layout
//
//	shelf  Client: Paweł  LOADED  Borrowed: 1/3  1 Paweł  2 Kasia
//	[ Previous client  ] Next client  tab Switch pane  enter Borrow / return
//	╭ Available (2) ──────────╮╭ Borrowed (1/3) ─────────╮
//	│ Lalka                   ││ Pan Tadeusz             │
//	│ Ballady i romanse       ││                         │
//	╰─────────────────────────╯╰─────────────────────────╯
//	status line (flash message, loading hint or error)
//
// The header shows "---" when no client is selected and a LIMIT badge when
// three books are borrowed. Refused borrows flash "Borrow limit reached (3)"
// in the status line for a few seconds.
//
// # Data Flow
//
// The Model never owns book data. Key handlers call the stores directly
// (ClientStore.Set, BooksStore.Borrow/Return/Reload) and then re-read a
// BooksStore View. Asynchronous changes, such as a fetch completing, reach
// the program as messages: Run subscribes to both stores and forwards each
// notification with Program.Send from a fresh goroutine, since a store may
// notify from inside Update.
//
// # Preferences
//
// Theme changes and client selection are written to prefs.toml so the next
// start restores them.
package ui
