package gamedata

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// copyCatalog writes the embedded catalog files into dir.
func copyCatalog(t *testing.T, dir string) {
	t.Helper()
	for _, name := range []string{"skills.json", "passives.json", "enemies.json", "classes.json"} {
		data, err := dataFS.ReadFile(name)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
}

func TestWatchCatalogReloads(t *testing.T) {
	dir := t.TempDir()
	copyCatalog(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reloads, err := WatchCatalog(ctx, dir, logger)
	require.NoError(t, err)

	// A broken write is skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skills.json"), []byte(`{"skills": [`), 0o644))
	select {
	case <-reloads:
		t.Fatal("a catalog that fails to load must not be delivered")
	case <-time.After(4 * reloadDebounce):
	}

	skills := `{"skills":[{"id":"jab","name":"Jab","type":"damage","cost":40,"power":9}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skills.json"), []byte(skills), 0o644))

	select {
	case catalog := <-reloads:
		require.NotNil(t, catalog)
		assert.Equal(t, 1, catalog.Skills.Count())
		assert.Equal(t, 9, catalog.Skills.GetByID("jab").Power)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after a valid change")
	}

	cancel()
	select {
	case _, ok := <-reloads:
		assert.False(t, ok, "channel closes once the context is done")
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestWatchCatalogMissingDir(t *testing.T) {
	_, err := WatchCatalog(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}
