// Package app is the composition root for the shelf TUI.
//
// # Startup
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()          TOML + SHELF_* env
//	       ├─────> logger.NewFile()       zerolog to log_path
//	       ├─────> prefs.Load()           theme, last client
//	       ├─────> newSource()            MemorySource or HTTPSource
//	       ├─────> loadDirectory()        client list (3s limit)
//	       ├─────> BooksStore.Follow()    client changes trigger reloads
//	       ├─────> ClientStore.Set()      remembered or first client
//	       ├─────> StartPoller()          http source only
//	       └─────> ui.Run()               blocks until quit
//
// # Directory Polling
//
// With the http source the catalog's seed can change underneath the TUI.
// StartPoller re-reads the client list every few seconds and forwards it to
// the UI when it differs. Failed polls back off exponentially up to 30s and
// are logged, never fatal.
//
// # Error Handling
//
// Fatal (returned from Run): invalid config, unusable log file, an unreadable
// seed file, or a source that cannot list clients at startup. Everything
// after startup (fetch failures, poll failures, prefs writes) is logged and
// surfaced in the UI instead.
package app
