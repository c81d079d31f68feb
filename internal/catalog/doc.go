// Package catalog serves seed book data over HTTP for library.HTTPSource.
//
// # Routes
//
//	GET /api/health                  {"status":"ok"}
//	GET /api/clients                 {"clients":[{"id":"user1","name":"Paweł"}]}
//	GET /api/clients/{clientID}/books {"borrowed":[...],"available":[...]}
//
// Unknown client IDs get 404 with {"error":"client not found"}. Every
// request passes through chi's Recoverer and RequestID middleware and is
// logged with zerolog, tagged with its request ID.
//
// # Seed Reloading
//
// Watch follows a seed file with fsnotify, watching its directory so that
// editors which save through a rename are seen too. Each successful reload is handed
// to the caller, which normally swaps it into the served MemorySource with
// Replace. Invalid files are logged and ignored.
package catalog
