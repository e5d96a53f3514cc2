package cache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
)

// Store is a file-based implementation of domain.ResultCache.
type Store struct{}

// New creates a new file-based cache store.
func New() *Store {
	return &Store{}
}

// Load reads the result cache of a theme. Returns (nil, nil) if no cache exists.
func (s *Store) Load(rootPath string) (*domain.ResultCacheData, error) {
	data, err := os.ReadFile(cachePath(rootPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // no cache is not an error
		}
		return nil, err
	}

	var cache domain.ResultCacheData
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}
	if cache.Entries == nil {
		cache.Entries = make(map[string]domain.CacheEntry)
	}
	return &cache, nil
}

// Save writes the result cache to disk, creating directories as needed.
func (s *Store) Save(rootPath string, cache *domain.ResultCacheData) error {
	if err := os.MkdirAll(cacheDir(rootPath), 0755); err != nil {
		return err
	}

	data, err := json.Marshal(cache)
	if err != nil {
		return err
	}

	return os.WriteFile(cachePath(rootPath), data, 0644)
}

// Invalidate removes the cache file for the given theme root.
func (s *Store) Invalidate(rootPath string) error {
	if err := os.Remove(cachePath(rootPath)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func cacheDir(rootPath string) string {
	return filepath.Join(rootPath, domain.StateDir, "cache")
}

func cachePath(rootPath string) string {
	return filepath.Join(cacheDir(rootPath), "results.json")
}
