package history_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/history"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	entry := domain.RunEntry{
		ID:           "run-1",
		Timestamp:    time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC),
		CommitHash:   "abc1234",
		Level:        domain.LevelProduction,
		FilesScanned: 12,
		TotalIssues:  3,
		Errors:       1,
		Warnings:     2,
	}

	require.NoError(t, h.Save(dir, entry))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc1234", entries[0].CommitHash)
	assert.Equal(t, 12, entries[0].FilesScanned)
	assert.Equal(t, domain.LevelProduction, entries[0].Level)
	assert.True(t, entry.Timestamp.Equal(entries[0].Timestamp))
}

func TestHistory_AppendMultiple(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	require.NoError(t, h.Save(dir, domain.RunEntry{ID: "1", TotalIssues: 47}))
	require.NoError(t, h.Save(dir, domain.RunEntry{ID: "2", TotalIssues: 12}))
	require.NoError(t, h.Save(dir, domain.RunEntry{ID: "3", TotalIssues: 0, Passed: true}))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 47, entries[0].TotalIssues)
	assert.True(t, entries[2].Passed)
}

func TestHistory_LoadEmpty(t *testing.T) {
	entries, err := history.New().Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistory_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	nestedDir := filepath.Join(dir, "deep", "nested")
	h := history.New()

	require.NoError(t, h.Save(nestedDir, domain.RunEntry{ID: "1"}))

	entries, err := h.Load(nestedDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
