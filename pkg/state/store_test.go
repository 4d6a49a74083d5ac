package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStray(path string) error {
	return os.WriteFile(path, []byte("stray"), 0644)
}

type fakeSession struct {
	ID    string `json:"id"`
	Stage string `json:"interview_stage"`
	Count int    `json:"question_count"`
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	in := fakeSession{ID: "abc-123", Stage: "technical", Count: 4}
	require.NoError(t, store.Save("abc-123", "AWAITING_ANSWER", in))

	var out fakeSession
	snapshot, err := store.Load("abc-123", &out)
	require.NoError(t, err)

	assert.Equal(t, "abc-123", snapshot.SessionID)
	assert.Equal(t, "AWAITING_ANSWER", snapshot.ControlState)
	assert.False(t, snapshot.SavedAt.IsZero())
	assert.Equal(t, in, out)
}

func TestStoreSaveOverwrites(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("s1", "PREPARING", fakeSession{Count: 1}))
	require.NoError(t, store.Save("s1", "DECIDING", fakeSession{Count: 5}))

	var out fakeSession
	snapshot, err := store.Load("s1", &out)
	require.NoError(t, err)
	assert.Equal(t, "DECIDING", snapshot.ControlState)
	assert.Equal(t, 5, out.Count)
}

func TestStoreSaveValidation(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Save("", "PREPARING", fakeSession{}))
	assert.Error(t, store.Save("s1", "", fakeSession{}))
}

func TestStoreLoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nope", nil)
	require.Error(t, err)
}

func TestStoreDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("s1", "DONE", fakeSession{}))
	require.NoError(t, store.Delete("s1"))

	_, err = store.Load("s1", nil)
	assert.Error(t, err)

	// Deleting a missing snapshot is not an error
	assert.NoError(t, store.Delete("s1"))
}

func TestStoreListSessions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	ids, err := store.ListSessions()
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.Save("session-a", "DONE", fakeSession{}))
	require.NoError(t, store.Save("session-b", "DONE", fakeSession{}))

	// A stray file that does not match the snapshot pattern is skipped
	require.NoError(t, writeStray(filepath.Join(dir, "notes.txt")))

	ids, err = store.ListSessions()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"session-a", "session-b"}, ids)
}
