package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := NewLoader(filepath.Join(dir, "missing.toml")).Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tagbox.toml")
	contents := `
[import.paths]
storage_dir = "/srv/library"
rename_template = "{title}_{authors}_{year}"
classify_template = "{category1}/{filename}"

[hash]
algorithm = "blake3"
verify_on_import = false
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/library", cfg.Import.Paths.StorageDir)
	assert.Equal(t, "blake3", cfg.Hash.Algorithm)
	assert.False(t, cfg.Hash.VerifyOnImport)
	// Untouched sections keep their defaults.
	assert.Equal(t, Default().Search.DefaultLimit, cfg.Search.DefaultLimit)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tagbox.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))

	_, err := NewLoader(path).Load()
	require.Error(t, err)
}

func TestValidateRejectsMissingPlaceholders(t *testing.T) {
	cfg := Default()
	cfg.Import.Paths.RenameTemplate = "{authors}_{year}"
	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingPlaceholder)
}

func TestValidateRejectsUnknownHashAlgorithm(t *testing.T) {
	cfg := Default()
	cfg.Hash.Algorithm = "crc32"
	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidHashAlgorithm)
}

func TestWriteRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tagbox.toml")
	cfg := Default()
	cfg.Database.Path = "custom.db"

	require.NoError(t, Write(path, cfg))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.db", loaded.Database.Path)
}
