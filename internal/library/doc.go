// Package library defines the lending domain types and the sources that
// supply a client's books.
//
// A Source answers one question: which books has this client borrowed, and
// which can they still borrow? Two implementations ship:
//
//   - MemorySource serves a static Seed table. It never fails, treats an
//     unknown client as having no books, and always hands out deep copies.
//   - HTTPSource asks a shelf catalog server. It maps 404 to ErrNotFound and
//     every other failure to ErrTransport.
//
// Seeds come from DefaultSeed or from a TOML file via LoadSeed:
//
//	[[clients]]
//	id = "user1"
//	name = "Paweł"
//
//	  [[clients.borrowed]]
//	  id = "b1"
//	  title = "Pan Tadeusz"
//
//	  [[clients.available]]
//	  id = "b2"
//	  title = "Lalka"
package library
