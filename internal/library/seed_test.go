package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultSeed_IsValid(t *testing.T) {
	require.NoError(t, DefaultSeed().Validate())
}

func TestLoadSeed_ParsesClientsAndBooks(t *testing.T) {
	path := writeSeed(t, `
[[clients]]
id = "  user1  "
name = "Paweł"

  [[clients.borrowed]]
  id = "b1"
  title = "Pan Tadeusz"

  [[clients.available]]
  id = "b2"
  title = "Lalka"

[[clients]]
id = "user3"
name = "Zosia"
`)

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.Clients, 2)
	assert.Equal(t, "user1", seed.Clients[0].ID)
	assert.Equal(t, []Book{{ID: "b1", Title: "Pan Tadeusz"}}, seed.Clients[0].Borrowed)
	assert.Equal(t, []Book{{ID: "b2", Title: "Lalka"}}, seed.Clients[0].Available)
	assert.Empty(t, seed.Clients[1].Borrowed)
}

func TestLoadSeed_MissingFile(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read seed")
}

func TestLoadSeed_InvalidTOML(t *testing.T) {
	_, err := LoadSeed(writeSeed(t, `clients = [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse seed")
}

func TestSeedValidate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		seed Seed
		want string
	}{
		{
			name: "empty client id",
			seed: Seed{Clients: []SeedClient{{Name: "x"}}},
			want: "empty id",
		},
		{
			name: "duplicate client",
			seed: Seed{Clients: []SeedClient{{ID: "u"}, {ID: "u"}}},
			want: "duplicate client id",
		},
		{
			name: "book in both lists",
			seed: Seed{Clients: []SeedClient{{
				ID:        "u",
				Borrowed:  []Book{{ID: "b1"}},
				Available: []Book{{ID: "b1"}},
			}}},
			want: "more than once",
		},
		{
			name: "duplicate available",
			seed: Seed{Clients: []SeedClient{{
				ID:        "u",
				Available: []Book{{ID: "b1"}, {ID: "b1"}},
			}}},
			want: "more than once",
		},
		{
			name: "over the cap",
			seed: Seed{Clients: []SeedClient{{
				ID:       "u",
				Borrowed: []Book{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}},
			}}},
			want: "limit is 3",
		},
		{
			name: "empty book id",
			seed: Seed{Clients: []SeedClient{{ID: "u", Available: []Book{{Title: "t"}}}}},
			want: "empty id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.seed.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
