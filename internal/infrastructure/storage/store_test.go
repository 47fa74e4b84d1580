package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "shell.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": db,
	}
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, BucketSessions, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, BucketSessions, "b", []byte("two")))
			require.NoError(t, s.Put(ctx, BucketSessions, "a", []byte("one")))
			require.NoError(t, s.Put(ctx, BucketFiles, "a", []byte("other bucket")))

			got, err := s.Get(ctx, BucketSessions, "a")
			require.NoError(t, err)
			assert.Equal(t, []byte("one"), got)

			require.NoError(t, s.Put(ctx, BucketSessions, "a", []byte("uno")))
			got, err = s.Get(ctx, BucketSessions, "a")
			require.NoError(t, err)
			assert.Equal(t, []byte("uno"), got)

			records, err := s.List(ctx, BucketSessions)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "a", records[0].Key)
			assert.Equal(t, "b", records[1].Key)
			assert.False(t, records[0].UpdatedAt.IsZero())

			require.NoError(t, s.Delete(ctx, BucketSessions, "a"))
			assert.ErrorIs(t, s.Delete(ctx, BucketSessions, "a"), ErrNotFound)

			records, err = s.List(ctx, BucketSessions)
			require.NoError(t, err)
			assert.Len(t, records, 1)
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	type layout struct {
		Name  string   `json:"name"`
		Apps  []string `json:"apps"`
		Count int      `json:"count"`
	}

	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, PutJSON(ctx, s, BucketSessions, "one", layout{Name: "work", Apps: []string{"wallet"}, Count: 1}))
	require.NoError(t, s.Put(ctx, BucketSessions, "two", []byte("not json")))

	var got layout
	require.NoError(t, GetJSON(ctx, s, BucketSessions, "one", &got))
	assert.Equal(t, "work", got.Name)

	all, skipped, err := ListJSON[layout](ctx, s, BucketSessions)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 1, skipped)
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	value := []byte("abc")
	require.NoError(t, s.Put(ctx, BucketFiles, "k", value))
	value[0] = 'z'

	got, err := s.Get(ctx, BucketFiles, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestOpenEmptyPathUsesMemory(t *testing.T) {
	s, err := Open("", nil)
	require.NoError(t, err)
	_, ok := s.(*Memory)
	assert.True(t, ok)
}
