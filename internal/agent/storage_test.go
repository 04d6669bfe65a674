package agent

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestStorageImplementations(t *testing.T) {
	database, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })

	sqliteStorage, err := NewSQLiteStorage(database)
	require.NoError(t, err)

	for name, storage := range map[string]Storage{
		"memory": NewMemoryStorage(),
		"sqlite": sqliteStorage,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := storage.Get("missing")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, storage.Set("k", "v1"))
			v, err := storage.Get("k")
			require.NoError(t, err)
			require.Equal(t, "v1", v)

			// Upsert.
			require.NoError(t, storage.Set("k", "v2"))
			v, err = storage.Get("k")
			require.NoError(t, err)
			require.Equal(t, "v2", v)

			require.NoError(t, storage.Delete("k"))
			_, err = storage.Get("k")
			require.ErrorIs(t, err, ErrNotFound)

			// Deleting an absent key is not an error.
			require.NoError(t, storage.Delete("k"))
		})
	}
}
