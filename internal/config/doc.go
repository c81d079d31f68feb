// Package config loads the settings shared by the shelf TUI and the
// shelf-catalog server.
//
// # Resolution Order
//
// Load builds a Config in layers, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. The TOML file at the given path, or ~/.config/shelf/config.toml
//  3. SHELF_* environment variables
//
// A missing file is not an error. Empty values in the file or environment
// leave the previous layer untouched. The merged result is validated before
// it is returned.
//
// # Default Values
//
//   - Source: memory
//   - Catalog URL: http://127.0.0.1:7488
//   - Fetch timeout: 5s
//   - Latency: 0 (memory source only)
//   - Log file: ~/.local/state/shelf/shelf.log
//   - Listen address: 127.0.0.1:7488 (catalog server)
//
// # TOML Format
//
//	source = "http"
//	catalog_url = "http://127.0.0.1:7488"
//	fetch_timeout = "3s"
//	latency = "250ms"
//	seed_path = "~/.config/shelf/seed.toml"
//	log_path = "~/.local/state/shelf/shelf.log"
//	listen = "127.0.0.1:7488"
//
// Durations use time.ParseDuration syntax. Paths support tilde expansion
// and are made absolute.
//
// # Environment
//
//	SHELF_SOURCE, SHELF_CATALOG_URL, SHELF_FETCH_TIMEOUT, SHELF_LATENCY,
//	SHELF_SEED_PATH, SHELF_LOG_PATH, SHELF_LISTEN
package config
