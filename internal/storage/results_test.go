package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillpath_quiz/internal/core"
	"skillpath_quiz/internal/quizerr"
)

func result(id, user string, at time.Time) core.Result {
	return core.Result{
		ID:         id,
		UserID:     user,
		FinishedAt: at,
		Profile:    "A",
		Score:      5,
		Branch:     "A",
		Scores:     map[string]int{"A": 5, "B": 1},
		Details:    map[string]string{"language": "en"},
	}
}

func resultStores(t *testing.T) map[string]ResultStore {
	return map[string]ResultStore{
		"memory": NewMemoryResultStore(),
		"file":   NewFileResultStore(filepath.Join(t.TempDir(), "results")),
	}
}

func TestResultStores(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for name, store := range resultStores(t) {
		t.Run(name, func(t *testing.T) {
			empty, err := store.List(ctx, "u1", 0)
			require.NoError(t, err)
			assert.Empty(t, empty)

			for i, id := range []string{"r1", "r2", "r3"} {
				require.NoError(t, store.Append(ctx, result(id, "u1", at.Add(time.Duration(i)*time.Hour))))
			}
			require.NoError(t, store.Append(ctx, result("other", "u2", at)))

			all, err := store.List(ctx, "u1", 0)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []string{"r3", "r2", "r1"}, []string{all[0].ID, all[1].ID, all[2].ID})
			assert.Equal(t, result("r3", "u1", at.Add(2*time.Hour)), all[0])

			latest, err := store.List(ctx, "u1", 1)
			require.NoError(t, err)
			require.Len(t, latest, 1)
			assert.Equal(t, "r3", latest[0].ID)

			assert.ErrorIs(t, store.Append(ctx, result("x", "", at)), quizerr.ErrInvalidArgument)
		})
	}
}

func TestResultStoresIgnoreRepeatedIDs(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for name, store := range resultStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Append(ctx, result("r1", "u1", at)))
			require.NoError(t, store.Append(ctx, result("r1", "u1", at.Add(time.Minute))))

			all, err := store.List(ctx, "u1", 0)
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, at, all[0].FinishedAt, "the first write wins")
		})
	}
}

func TestFileResultStoreEscapesUserIDs(t *testing.T) {
	dir := t.TempDir()
	store := NewFileResultStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, result("r1", "../evil/user", time.Now().UTC())))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "..%2Fevil%2Fuser.json", entries[0].Name())

	got, err := store.List(ctx, "../evil/user", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFileResultStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "u1.json"), []byte("{broken"), 0644))
	store := NewFileResultStore(dir)

	_, err := store.List(context.Background(), "u1", 0)
	assert.ErrorIs(t, err, quizerr.ErrStorage)
	assert.ErrorIs(t, store.Append(context.Background(), result("r1", "u1", time.Now())), quizerr.ErrStorage)
}
