package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcf/internal/domain"
	"hcf/internal/storage/config"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, 2, cfg.SortField)
	assert.Equal(t, "desc", cfg.SortOrder)
	assert.Equal(t, "mods", cfg.DefaultCategory)
	assert.True(t, cfg.CDNFallback)
	assert.Equal(t, "vim", cfg.Keybindings)
	assert.Empty(t, cfg.GamePath)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
game_path: /games/hytale
page_size: 40
default_category: worlds
cdn_fallback: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/games/hytale", cfg.GamePath)
	assert.Equal(t, 40, cfg.PageSize)
	assert.Equal(t, domain.ClassWorlds, cfg.Category().ClassID)
	assert.False(t, cfg.CDNFallback)
	assert.Equal(t, "desc", cfg.SortOrder, "unset keys keep defaults")
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("page_size: 500\n"), 0644))

	_, err := config.Load(dir)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("page_size: [\n"), 0644))

	_, err := config.Load(dir)
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := config.Default()
	cfg.GamePath = "/games/hytale"
	cfg.PageSize = 10
	require.NoError(t, cfg.Save(dir))

	loaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSet(t *testing.T) {
	cfg := config.Default()
	game := t.TempDir()

	require.NoError(t, cfg.Set("game_path", game))
	assert.Equal(t, game, cfg.GamePath)

	require.NoError(t, cfg.Set("page_size", "35"))
	assert.Equal(t, 35, cfg.PageSize)

	require.NoError(t, cfg.Set("cdn_fallback", "false"))
	assert.False(t, cfg.CDNFallback)

	assert.ErrorIs(t, cfg.Set("page_size", "0"), domain.ErrInvalidConfig)
	assert.Equal(t, 35, cfg.PageSize, "rejected value leaves config unchanged")

	assert.ErrorIs(t, cfg.Set("default_category", "skins"), domain.ErrInvalidConfig)
	assert.ErrorIs(t, cfg.Set("colour", "blue"), domain.ErrInvalidConfig)
	assert.Error(t, cfg.Set("game_path", filepath.Join(game, "missing")))
}

func TestKeys(t *testing.T) {
	keys := config.Keys()
	assert.Contains(t, keys, "game_path")
	assert.Contains(t, keys, "page_size")
	assert.IsIncreasing(t, keys)
}
