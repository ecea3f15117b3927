package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagpeek/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, config.DefaultPattern, cfg.Pattern)
	assert.Equal(t, ":", cfg.PathSeparator)
	assert.Equal(t, 8192, cfg.MaxBytes)
	assert.Equal(t, 100, cfg.DebounceMs)
	assert.True(t, cfg.ShowInline)
	assert.True(t, cfg.ShowHover)
	assert.False(t, cfg.OnlyHighlightExistingPaths)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagpeek.yaml")
	data := []byte("pattern: '\\[\\[([^\\]]+)\\]\\]'\nmaxBytes: 1024\nshowInline: false\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, `\[\[([^\]]+)\]\]`, cfg.Pattern)
	assert.Equal(t, 1024, cfg.MaxBytes)
	assert.False(t, cfg.ShowInline)
	// Untouched options keep their defaults.
	assert.Equal(t, ":", cfg.PathSeparator)
}

func TestMerge(t *testing.T) {
	cfg := config.Default()

	cfg.Merge(map[string]any{
		"pattern":                    `{{([^}]+)}}`,
		"pathSeparator":              ".",
		"onlyHighlightExistingPaths": true,
		"maxBytes":                   float64(2048), // JSON numbers arrive as float64
		"newlineJoiner":              " | ",
		"debounceMs":                 250,
	})

	assert.Equal(t, `{{([^}]+)}}`, cfg.Pattern)
	assert.Equal(t, ".", cfg.PathSeparator)
	assert.True(t, cfg.OnlyHighlightExistingPaths)
	assert.Equal(t, 2048, cfg.MaxBytes)
	assert.Equal(t, " | ", cfg.NewlineJoiner)
	assert.Equal(t, 250, cfg.DebounceMs)
}

func TestMergeIgnoresWrongTypes(t *testing.T) {
	cfg := config.Default()

	cfg.Merge(map[string]any{
		"pattern":  42,
		"maxBytes": "lots",
	})

	assert.Equal(t, config.DefaultPattern, cfg.Pattern)
	assert.Equal(t, 8192, cfg.MaxBytes)
}

func TestMergeNormalizesDegenerateValues(t *testing.T) {
	cfg := config.Default()

	cfg.Merge(map[string]any{
		"pattern":    "",
		"maxBytes":   float64(-1),
		"debounceMs": float64(0),
	})

	assert.Equal(t, config.DefaultPattern, cfg.Pattern)
	assert.Equal(t, config.DefaultMaxBytes, cfg.MaxBytes)
	assert.Equal(t, config.DefaultDebounceMs, cfg.DebounceMs)
}
