package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `
[database]
catalog_path = "/var/lib/jsonsqlmirror/catalog.db"

[sync]
default_chunk_size = 500
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/jsonsqlmirror/catalog.db", cfg.Database.CatalogPath)
	require.Equal(t, "data.db", cfg.Database.DataPath)
	require.Equal(t, 500, cfg.Sync.DefaultChunkSize)
	require.Equal(t, 3600, cfg.Sync.DefaultTTLSeconds)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
