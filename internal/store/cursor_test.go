package store

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCursorStore(t *testing.T) *CursorStore {
	t.Helper()
	return NewCursorStore(filepath.Join(t.TempDir(), "cursor.json"), slog.Default())
}

func TestCursorStore_AbsentOnFirstRun(t *testing.T) {
	s := testCursorStore(t)
	id, ok := s.Load()
	assert.False(t, ok)
	assert.Zero(t, id)
}

func TestCursorStore_SaveAndLoad(t *testing.T) {
	s := testCursorStore(t)

	require.NoError(t, s.Save(1042))

	id, ok := s.Load()
	assert.True(t, ok)
	assert.Equal(t, int64(1042), id)
}

func TestCursorStore_LastWriteWins(t *testing.T) {
	s := testCursorStore(t)

	for _, id := range []int64{1, 2, 7, 9} {
		require.NoError(t, s.Save(id))
	}

	id, ok := s.Load()
	assert.True(t, ok)
	assert.Equal(t, int64(9), id)
}

func TestCursorStore_WireFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor.json")
	s := NewCursorStore(path, slog.Default())

	require.NoError(t, s.Save(5))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_message_id":5}`, string(data))
}

func TestCursorStore_CorruptFileTreatedAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	s := NewCursorStore(path, slog.Default())
	_, ok := s.Load()
	assert.False(t, ok)
}
