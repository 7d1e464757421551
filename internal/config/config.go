// Package config loads the module's flat TOML configuration file, in the
// same small-options-struct spirit as apply.Options and
// dialect.MigrationOptions: no environment-variable merging, no remote
// config service.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for a running sync daemon.
type Config struct {
	Database Database `toml:"database"`
	Sync     Sync     `toml:"sync"`
	Logging  Logging  `toml:"logging"`
}

// Database locates the two SQLite files the module owns: the sync
// catalog and the mirrored data store.
type Database struct {
	CatalogPath string `toml:"catalog_path"`
	DataPath    string `toml:"data_path"`
}

// Sync carries the defaults a table's own SyncConfig falls back to when
// it leaves a field unset.
type Sync struct {
	DefaultChunkSize     int    `toml:"default_chunk_size"`
	DefaultMaxConcurrent int    `toml:"default_max_concurrent"`
	DefaultTTLSeconds    int    `toml:"default_ttl_seconds"`
	DefaultStrategy      string `toml:"default_strategy"`
}

// Logging configures internal/obs's file sink. An empty Path leaves the
// sync engine on its no-op logger; a non-empty Path logs to stderr and to
// that file, rotated per the size, backup and age settings.
type Logging struct {
	Path       string `toml:"path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Default returns the module's built-in defaults, applied before a TOML
// file is layered on top.
func Default() Config {
	return Config{
		Database: Database{CatalogPath: "catalog.db", DataPath: "data.db"},
		Sync: Sync{
			DefaultChunkSize:     1000,
			DefaultMaxConcurrent: 3,
			DefaultTTLSeconds:    3600,
			DefaultStrategy:      "full",
		},
		Logging: Logging{MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 28},
	}
}

// Load reads path as TOML into a copy of Default(), so a config file only
// needs to mention the fields it wants to override.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %q: %w", path, err)
	}
	return cfg, nil
}
