package filestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-health/halcyon/pkg/types"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Put("goals", []byte(`[{"id":"g1"}]`)))

	got, err := s.Get("goals")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"g1"}]`, string(got))
}

func TestGetAbsentKey(t *testing.T) {
	s := newStore(t)

	_, err := s.Get("goals")
	assert.ErrorIs(t, err, types.ErrKeyNotFound)
}

func TestGetCorruptedValue(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	// Corrupt one key behind the store's back.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "habits.json"), []byte("{not json"), 0o644))
	require.NoError(t, s.Put("goals", []byte(`[]`)))

	_, err = s.Get("habits")
	assert.True(t, types.IsCorruption(err), "expected CorruptionError, got %v", err)

	// Corruption is scoped to the one key.
	_, err = s.Get("goals")
	assert.NoError(t, err)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Put("goals", []byte(`[]`)))
	assert.NoError(t, s.Delete("goals"))
	assert.NoError(t, s.Delete("goals"), "deleting an absent key succeeds")

	_, err := s.Get("goals")
	assert.ErrorIs(t, err, types.ErrKeyNotFound)
}

func TestKeys(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Put("goals", []byte(`[]`)))
	require.NoError(t, s.Put("habits", []byte(`[]`)))

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"goals", "habits"}, keys)
}

func TestInvalidKeysRejected(t *testing.T) {
	s := newStore(t)

	for _, key := range []string{"", "../escape", `a\b`, ".hidden"} {
		_, err := s.Get(key)
		assert.ErrorIs(t, err, types.ErrInvalidKey, "key %q", key)
		assert.ErrorIs(t, s.Put(key, []byte(`{}`)), types.ErrInvalidKey, "key %q", key)
	}
}

func TestPutOverwrites(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Put("goals", []byte(`[{"id":"old"}]`)))
	require.NoError(t, s.Put("goals", []byte(`[{"id":"new"}]`)))

	got, err := s.Get("goals")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"new"}]`, string(got))
}

func TestClosedStore(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")

	_, err := s.Get("goals")
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	assert.ErrorIs(t, s.Put("goals", []byte(`[]`)), types.ErrStoreClosed)
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put("goals", []byte(`[]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the committed file should remain")
}
