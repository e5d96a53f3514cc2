package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/cache"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
)

func sampleCache() *domain.ResultCacheData {
	return &domain.ResultCacheData{
		Fingerprint: "experimental=false",
		Entries: map[string]domain.CacheEntry{
			"sections/hero.liquid": {
				Hash: "abc123",
				Result: domain.FileResult{
					Path: "sections/hero.liquid",
					Type: domain.FileTypeSection,
					Issues: []domain.Issue{{
						FilePath: "sections/hero.liquid",
						Line:     3,
						Type:     "fake_object",
						Severity: domain.SeverityError,
						Message:  "Suspicious object",
					}},
					BlockIDs: []domain.BlockIDEntry{{ID: "hero", Line: 12}},
				},
			},
		},
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := cache.New()
	root := t.TempDir()

	original := sampleCache()
	require.NoError(t, store.Save(root, original))

	loaded, err := store.Load(root)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, original.Fingerprint, loaded.Fingerprint)
	entry := loaded.Entries["sections/hero.liquid"]
	assert.Equal(t, "abc123", entry.Hash)
	require.Len(t, entry.Result.Issues, 1)
	assert.Equal(t, domain.SeverityError, entry.Result.Issues[0].Severity)
	assert.Equal(t, domain.FileTypeSection, entry.Result.Type)
	assert.Equal(t, []domain.BlockIDEntry{{ID: "hero", Line: 12}}, entry.Result.BlockIDs)
}

func TestStore_LoadNonExistent(t *testing.T) {
	store := cache.New()

	loaded, err := store.Load(t.TempDir())
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_LoadCorrupt(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".liquidlint", "cache")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "results.json"), []byte("{not json"), 0644))

	_, err := cache.New().Load(root)
	assert.Error(t, err)
}

func TestStore_Invalidate(t *testing.T) {
	store := cache.New()
	root := t.TempDir()

	require.NoError(t, store.Save(root, sampleCache()))
	require.NoError(t, store.Invalidate(root))

	loaded, err := store.Load(root)
	assert.NoError(t, err)
	assert.Nil(t, loaded)

	assert.NoError(t, store.Invalidate(root), "invalidating twice is fine")
}

func TestStore_SaveCreatesDirectory(t *testing.T) {
	store := cache.New()
	root := t.TempDir()

	cacheDir := filepath.Join(root, ".liquidlint", "cache")
	_, err := os.Stat(cacheDir)
	require.True(t, os.IsNotExist(err), "cache directory should not exist before save")

	require.NoError(t, store.Save(root, sampleCache()))

	info, err := os.Stat(cacheDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
