package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/watch"
)

func TestRelevant(t *testing.T) {
	root := filepath.FromSlash("/theme")
	tests := []struct {
		path string
		rel  string
		ok   bool
	}{
		{"/theme/sections/hero.liquid", "sections/hero.liquid", true},
		{"/theme/templates/index.json", "templates/index.json", true},
		{"/theme/assets/base.css", "assets/base.css", true},
		{"/theme/assets/app.js", "", false},
		{"/theme/.liquidlint/cache/results.json", "", false},
		{"/theme/_archive/old.liquid", "", false},
		{"/theme/node_modules/x/y.json", "", false},
		{"/elsewhere/a.liquid", "", false},
	}
	for _, tt := range tests {
		rel, ok := watch.Relevant(root, filepath.FromSlash(tt.path))
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.rel, rel, tt.path)
	}
}

type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) record(files []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, files)
}

func (r *recorder) all() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.batches...)
}

func startWatcher(t *testing.T, root string, rec *recorder) context.CancelFunc {
	t.Helper()
	w, err := watch.New(root, 50*time.Millisecond, rec.record, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Run(ctx) }()

	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)
	return cancel
}

func TestThemeWatcher_BatchesChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sections"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "snippets"), 0o755))

	rec := &recorder{}
	cancel := startWatcher(t, root, rec)
	defer cancel()

	require.NoError(t, os.WriteFile(filepath.Join(root, "sections", "hero.liquid"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "snippets", "card.liquid"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("c"), 0o644))

	assert.Eventually(t, func() bool { return len(rec.all()) > 0 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)

	batches := rec.all()
	require.Len(t, batches, 1)
	assert.Equal(t, []string{"sections/hero.liquid", "snippets/card.liquid"}, batches[0])
}

func TestThemeWatcher_IgnoresStateDir(t *testing.T) {
	root := t.TempDir()
	state := filepath.Join(root, ".liquidlint", "cache")
	require.NoError(t, os.MkdirAll(state, 0o755))

	rec := &recorder{}
	cancel := startWatcher(t, root, rec)
	defer cancel()

	require.NoError(t, os.WriteFile(filepath.Join(state, "results.json"), []byte("{}"), 0o644))
	time.Sleep(200 * time.Millisecond)

	assert.Empty(t, rec.all())
}

func TestThemeWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()

	rec := &recorder{}
	cancel := startWatcher(t, root, rec)
	defer cancel()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "blocks"), 0o755))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "blocks", "text.liquid"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool {
		for _, b := range rec.all() {
			for _, f := range b {
				if f == "blocks/text.liquid" {
					return true
				}
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}
