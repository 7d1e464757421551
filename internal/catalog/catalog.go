// Package catalog is the sync metadata store: one SQLite database holding
// per-table bookkeeping (_sync_metadata, _field_mappings, _sync_history,
// _cache_stats) and two convenience views. It never holds mirrored rows
// itself; that is the datastore package's job.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"jsonsqlmirror/internal/jsonsqlerrors"
	"jsonsqlmirror/internal/schema"
)

// PragmaOptions controls the SQLite pragmas Initialize applies, mirroring
// the tunables the original cache settings object exposed.
type PragmaOptions struct {
	JournalMode string
	CacheSize   int
	PageSize    int
}

// DefaultPragmaOptions matches the original implementation's defaults.
func DefaultPragmaOptions() PragmaOptions {
	return PragmaOptions{JournalMode: "WAL", CacheSize: -2000, PageSize: 4096}
}

// Catalog wraps the sync metadata SQLite database.
type Catalog struct {
	db      *sql.DB
	path    string
	pragmas PragmaOptions
	now     func() time.Time
}

// Open creates the parent directory if needed, opens the SQLite file, and
// pings it to verify the connection the way Applier.Connect does for MySQL.
func Open(ctx context.Context, path string, pragmas PragmaOptions) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("catalog: creating directory %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: opening %q: %w", path, err)
	}
	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("catalog: pinging %q: %w; additionally failed to close: %v", path, pingErr, closeErr)
		}
		return nil, fmt.Errorf("catalog: pinging %q: %w", path, pingErr)
	}
	db.SetMaxOpenConns(1)

	return &Catalog{db: db, path: path, pragmas: pragmas, now: time.Now}, nil
}

// Close closes the underlying connection.
func (c *Catalog) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Catalog) nowFunc() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// Initialize applies pragmas, creates the metadata tables, views, and
// indexes, and seeds the singleton _cache_stats row if absent.
func (c *Catalog) Initialize(ctx context.Context) error {
	pragmaStatements := []string{
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA journal_mode = %s", c.pragmas.JournalMode),
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA cache_size = %d", c.pragmas.CacheSize),
		fmt.Sprintf("PRAGMA page_size = %d", c.pragmas.PageSize),
		"PRAGMA temp_store = MEMORY",
		"PRAGMA mmap_size = 268435456",
	}
	for _, stmt := range pragmaStatements {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return &jsonsqlerrors.DatabaseError{Op: "applying pragma", Cause: err}
		}
	}

	ddl := []string{ddlSyncMetadata, ddlFieldMappings, ddlSyncHistory, ddlCacheStats}
	ddl = append(ddl, ddlIndexes...)
	ddl = append(ddl, ddlViewSyncStatus, ddlViewRecentHistory)
	for _, stmt := range ddl {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return &jsonsqlerrors.DatabaseError{Op: "creating metadata schema", Cause: err}
		}
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO _cache_stats (id, initialized_at) VALUES (1, ?)`,
		c.nowFunc().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &jsonsqlerrors.DatabaseError{Op: "seeding cache stats", Cause: err}
	}
	return nil
}

// RegisterTable records schema in _sync_metadata and _field_mappings,
// replacing any prior registration for the same table name.
func (c *Catalog) RegisterTable(ctx context.Context, s *schema.TableSchema) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return &jsonsqlerrors.DatabaseError{Op: "registering table", Cause: err}
	}
	defer tx.Rollback()

	now := c.nowFunc().UTC().Format(time.RFC3339)
	cfg := s.SyncConfig
	var meta *schema.TableMetadata
	if s.Metadata != nil {
		meta = s.Metadata
	}

	var rowCount, minID, maxID any
	if meta != nil {
		rowCount = meta.RowCount
		if meta.MinID != nil {
			minID = *meta.MinID
		}
		if meta.MaxID != nil {
			maxID = *meta.MaxID
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO _sync_metadata (
			table_name, last_sync_at, next_sync_at, strategy, ttl,
			chunk_size, where_clause, order_by, schema_hash,
			schema_version, total_fields, incremental_field,
			row_count, min_id, max_id,
			created_at, updated_at
		) VALUES (?, ?, NULL, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.TableName, now, string(cfg.CacheStrategy), cfg.TTLSeconds,
		cfg.ChunkSize, cfg.Where, cfg.OrderBy, s.Hash(),
		s.TotalFields, cfg.IncrementalField,
		rowCount, minID, maxID, now, now,
	)
	if err != nil {
		return &jsonsqlerrors.DatabaseError{Op: "upserting sync_metadata", Cause: err}
	}

	for position, field := range s.Fields {
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO _field_mappings (
				table_name, position, field_name, local_column,
				field_type, is_primary_key, is_incremental_field,
				is_nullable, description
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			s.TableName, position, field.Name, schema.NormalizeLocalColumn(field.MappedName()),
			string(field.FieldType), strings.EqualFold(field.Name, "id"), field.Name == cfg.IncrementalField,
			true, field.Description,
		)
		if err != nil {
			return &jsonsqlerrors.DatabaseError{Op: "upserting field_mappings", Cause: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &jsonsqlerrors.DatabaseError{Op: "committing table registration", Cause: err}
	}
	return nil
}
