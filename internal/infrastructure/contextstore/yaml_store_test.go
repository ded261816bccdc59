package contextstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/infrastructure/contextstore"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := contextstore.NewYAMLStore(filepath.Join(t.TempDir(), "contexts.yaml"))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "contexts.yaml")
	s := contextstore.NewYAMLStore(path)
	want := map[string]domain.CustomContext{
		"crunchcloudcandy.com": {
			PrimaryTheme:      "candy recipes",
			CustomKeywords:    []string{"fudge", "toffee"},
			SeasonalModifiers: domain.SeasonalModifiers{Winter: []string{"peppermint"}},
			Notes:             "no savory",
		},
	}

	require.NoError(t, s.Save(want))
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "primaryTheme: candy recipes")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is renamed away")
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contexts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: [unclosed"), 0o600))

	_, err := contextstore.NewYAMLStore(path).Load()
	require.Error(t, err)
}
