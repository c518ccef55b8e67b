package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchSerialization(t *testing.T) {
	started := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	t.Run("omitempty omits zero-value optional fields", func(t *testing.T) {
		l := Launch{
			ID:        "abcd1234",
			Name:      "testvm",
			Profile:   "default",
			WorkDir:   "/home/user/vms/testvm",
			Args:      []string{"qemu-system-x86_64", "-name", "testvm"},
			StartedAt: started,
		}

		data, err := json.Marshal(l)
		require.NoError(t, err)

		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))

		assert.Equal(t, "testvm", m["name"])
		assert.NotContains(t, m, "pid")
		assert.NotContains(t, m, "iso")
		assert.NotContains(t, m, "detached")
	})
}

func TestStore(t *testing.T) {
	store, err := NewStoreAt(filepath.Join(t.TempDir(), "launches"))
	require.NoError(t, err)

	older := NewLaunch("testvm", "default", "/vms/testvm", []string{"qemu"})
	older.StartedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := NewLaunch("othervm", "daemon", "/vms/othervm", []string{"qemu", "-daemonize"})
	newer.StartedAt = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	newer.PID = 4242
	newer.ISO = "/isos/debian.iso"

	require.Len(t, older.ID, 8)
	require.NotEqual(t, older.ID, newer.ID)
	require.NoError(t, store.Save(older))
	require.NoError(t, store.Save(newer))

	// Stray files are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "junk.json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0o644))

	launches, err := store.List()
	require.NoError(t, err)
	require.Len(t, launches, 2)
	assert.Equal(t, newer.ID, launches[0].ID)
	assert.Equal(t, older.ID, launches[1].ID)
	assert.Equal(t, 4242, launches[0].PID)
	assert.Equal(t, "/isos/debian.iso", launches[0].ISO)

	loaded, err := store.Load(older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.Args, loaded.Args)

	_, err = store.Load("missing")
	assert.Error(t, err)

	removed, err := store.Prune("testvm")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	launches, err = store.List()
	require.NoError(t, err)
	require.Len(t, launches, 1)
	assert.Equal(t, "othervm", launches[0].Name)

	removed, err = store.Prune("")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	require.NoError(t, store.Delete("missing"))
}
