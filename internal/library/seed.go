package library

import (
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Seed is the static book table a MemorySource serves.
type Seed struct {
	Clients []SeedClient `toml:"clients"`
}

// SeedClient is one client's entry in a Seed.
type SeedClient struct {
	ID        string `toml:"id"`
	Name      string `toml:"name"`
	Borrowed  []Book `toml:"borrowed"`
	Available []Book `toml:"available"`
}

// DefaultSeed returns the built-in two-client table.
func DefaultSeed() Seed {
	return Seed{Clients: []SeedClient{
		{
			ID:   "user1",
			Name: "Paweł",
			Borrowed: []Book{
				{ID: "b1", Title: "Pan Tadeusz"},
			},
			Available: []Book{
				{ID: "b2", Title: "Lalka"},
				{ID: "b3", Title: "Ballady i romanse"},
			},
		},
		{
			ID:   "user2",
			Name: "Kasia",
			Borrowed: []Book{
				{ID: "b4", Title: "Zemsta"},
				{ID: "b5", Title: "Krzyżacy"},
			},
			Available: []Book{
				{ID: "b6", Title: "Ferdydurke"},
				{ID: "b7", Title: "Solaris"},
			},
		},
	}}
}

// LoadSeed reads and validates a TOML seed file.
func LoadSeed(path string) (Seed, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := toml.Unmarshal(bytes, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	for i := range seed.Clients {
		c := &seed.Clients[i]
		c.ID = strings.TrimSpace(c.ID)
		c.Name = strings.TrimSpace(c.Name)
	}
	if err := seed.Validate(); err != nil {
		return Seed{}, fmt.Errorf("invalid seed %s: %w", path, err)
	}
	return seed, nil
}

// Validate checks identity and cap rules for every client.
func (s Seed) Validate() error {
	seen := make(map[string]struct{}, len(s.Clients))
	for _, c := range s.Clients {
		if c.ID == "" {
			return fmt.Errorf("client %q has an empty id", c.Name)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate client id %q", c.ID)
		}
		seen[c.ID] = struct{}{}

		if len(c.Borrowed) > BorrowLimit {
			return fmt.Errorf("client %q borrows %d books, limit is %d", c.ID, len(c.Borrowed), BorrowLimit)
		}
		books := make(map[string]struct{}, len(c.Borrowed)+len(c.Available))
		for _, b := range append(CloneBooks(c.Borrowed), c.Available...) {
			if b.ID == "" {
				return fmt.Errorf("client %q has a book with an empty id", c.ID)
			}
			if _, dup := books[b.ID]; dup {
				return fmt.Errorf("client %q lists book %q more than once", c.ID, b.ID)
			}
			books[b.ID] = struct{}{}
		}
	}
	return nil
}
