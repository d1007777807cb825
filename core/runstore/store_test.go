package runstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history", "runs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenCreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")

	store, err := Open(path, nil)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Record(Run{Command: "cluster", Dataset: "iris.csv"})
	require.NoError(t, err)

	_, err = uuid.Parse(got.ID)
	assert.NoError(t, err, "id %q is not a uuid", got.ID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRecordRoundTrip(t *testing.T) {
	store := openTestStore(t)

	params := map[string]string{"k": "3", "seed": "42"}
	metrics := map[string]float64{"inertia": 12.5, "iterations": 4}

	recorded, err := store.Record(Run{
		Command: "cluster",
		Dataset: "blobs.csv",
		Params:  params,
		Metrics: metrics,
	})
	require.NoError(t, err)

	got, err := store.Get(recorded.ID)
	require.NoError(t, err)

	assert.Equal(t, "cluster", got.Command)
	assert.Equal(t, "blobs.csv", got.Dataset)
	assert.Equal(t, params, got.Params)
	assert.Equal(t, metrics, got.Metrics)
	assert.WithinDuration(t, recorded.CreatedAt, got.CreatedAt, time.Second)
}

func TestListNewestFirst(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, command := range []string{"cluster", "conjoint", "cluster"} {
		_, err := store.Record(Run{
			Command:   command,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	all, err := store.List("", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "cluster", all[0].Command)
	assert.True(t, all[0].CreatedAt.After(all[2].CreatedAt))

	clusters, err := store.List("cluster", 0)
	require.NoError(t, err)
	assert.Len(t, clusters, 2)

	limited, err := store.List("", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGetMissingRun(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get("no-such-run")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRecordRequiresCommand(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Record(Run{})
	assert.Error(t, err)
}

func TestClosedStore(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err := store.Record(Run{Command: "cluster"})
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = store.List("", 0)
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = store.Get("id")
	assert.ErrorIs(t, err, ErrStoreClosed)
}
