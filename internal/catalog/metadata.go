package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"jsonsqlmirror/internal/jsonsqlerrors"
)

// Metadata mirrors one row of _sync_metadata.
type Metadata struct {
	TableName          string
	LastSyncAt         time.Time
	NextSyncAt         *time.Time
	SyncVersion        int
	LastSyncCheckpoint *string
	IncrementalField   string
	RowCount           int64
	LocalRowCount      int64
	MaxID              *int64
	MinID              *int64
	Strategy           string
	TTLSeconds         *int
	ChunkSize          int
	WhereClause        string
	OrderBy            string
	SchemaHash         string
	SchemaVersion      int
	TotalFields        int
	LastSyncDurationMs *int64
	LastSyncRows       *int64
	TotalSyncs         int64
	FailedSyncs        int64
	LastError          *string
	LastErrorAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// GetMetadata returns the registration row for table, or nil if the table
// has never been registered.
func (c *Catalog) GetMetadata(ctx context.Context, table string) (*Metadata, error) {
	row := c.db.QueryRowContext(ctx, `SELECT
		table_name, last_sync_at, next_sync_at, sync_version, last_sync_checkpoint,
		incremental_field, row_count, local_row_count, max_id, min_id, strategy, ttl,
		chunk_size, where_clause, order_by, schema_hash, schema_version, total_fields,
		last_sync_duration_ms, last_sync_rows, total_syncs, failed_syncs, last_error,
		last_error_at, created_at, updated_at
		FROM _sync_metadata WHERE table_name = ?`, table)

	var m Metadata
	var lastSyncAt, createdAt, updatedAt string
	var nextSyncAt, lastErrorAt sql.NullString

	err := row.Scan(
		&m.TableName, &lastSyncAt, &nextSyncAt, &m.SyncVersion, &m.LastSyncCheckpoint,
		&m.IncrementalField, &m.RowCount, &m.LocalRowCount, &m.MaxID, &m.MinID, &m.Strategy, &m.TTLSeconds,
		&m.ChunkSize, &m.WhereClause, &m.OrderBy, &m.SchemaHash, &m.SchemaVersion, &m.TotalFields,
		&m.LastSyncDurationMs, &m.LastSyncRows, &m.TotalSyncs, &m.FailedSyncs, &m.LastError,
		&lastErrorAt, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &jsonsqlerrors.DatabaseError{Op: "reading sync_metadata", Cause: err}
	}

	m.LastSyncAt, _ = time.Parse(time.RFC3339, lastSyncAt)
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if nextSyncAt.Valid {
		t, _ := time.Parse(time.RFC3339, nextSyncAt.String)
		m.NextSyncAt = &t
	}
	if lastErrorAt.Valid {
		t, _ := time.Parse(time.RFC3339, lastErrorAt.String)
		m.LastErrorAt = &t
	}
	return &m, nil
}

// MetadataPatch updates a subset of _sync_metadata columns; only non-nil
// fields are written, the same shape the original's **kwargs update took,
// made explicit here.
type MetadataPatch struct {
	LastSyncAt         *time.Time
	NextSyncAt         *time.Time
	SyncVersion        *int
	LastSyncCheckpoint *string
	RowCount           *int64
	LocalRowCount      *int64
	MaxID              *int64
	MinID              *int64
	LastSyncDurationMs *int64
	LastSyncRows       *int64
	TotalSyncs         *int64
	FailedSyncs        *int64
	LastError          *string
	LastErrorAt        *time.Time
}

// UpdateMetadata applies patch to table's row, also bumping updated_at. A
// patch with every field nil is a no-op.
func (c *Catalog) UpdateMetadata(ctx context.Context, table string, patch MetadataPatch) error {
	set := make([]string, 0, 12)
	args := make([]any, 0, 12)

	add := func(column string, value any) {
		set = append(set, fmt.Sprintf("%s = ?", column))
		args = append(args, value)
	}
	if patch.LastSyncAt != nil {
		add("last_sync_at", patch.LastSyncAt.UTC().Format(time.RFC3339))
	}
	if patch.NextSyncAt != nil {
		add("next_sync_at", patch.NextSyncAt.UTC().Format(time.RFC3339))
	}
	if patch.SyncVersion != nil {
		add("sync_version", *patch.SyncVersion)
	}
	if patch.LastSyncCheckpoint != nil {
		add("last_sync_checkpoint", *patch.LastSyncCheckpoint)
	}
	if patch.RowCount != nil {
		add("row_count", *patch.RowCount)
	}
	if patch.LocalRowCount != nil {
		add("local_row_count", *patch.LocalRowCount)
	}
	if patch.MaxID != nil {
		add("max_id", *patch.MaxID)
	}
	if patch.MinID != nil {
		add("min_id", *patch.MinID)
	}
	if patch.LastSyncDurationMs != nil {
		add("last_sync_duration_ms", *patch.LastSyncDurationMs)
	}
	if patch.LastSyncRows != nil {
		add("last_sync_rows", *patch.LastSyncRows)
	}
	if patch.TotalSyncs != nil {
		add("total_syncs", *patch.TotalSyncs)
	}
	if patch.FailedSyncs != nil {
		add("failed_syncs", *patch.FailedSyncs)
	}
	if patch.LastError != nil {
		add("last_error", *patch.LastError)
	}
	if patch.LastErrorAt != nil {
		add("last_error_at", patch.LastErrorAt.UTC().Format(time.RFC3339))
	}
	if len(set) == 0 {
		return nil
	}

	add("updated_at", c.nowFunc().UTC().Format(time.RFC3339))
	args = append(args, table)

	query := "UPDATE _sync_metadata SET " + strings.Join(set, ", ") + " WHERE table_name = ?"

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return &jsonsqlerrors.DatabaseError{Op: "updating sync_metadata", Cause: err}
	}
	return nil
}

// IsStale reports whether table has no registration, no next_sync_at, or a
// next_sync_at in the past.
func (c *Catalog) IsStale(ctx context.Context, table string) (bool, error) {
	meta, err := c.GetMetadata(ctx, table)
	if err != nil {
		return false, err
	}
	if meta == nil || meta.NextSyncAt == nil {
		return true, nil
	}
	return c.nowFunc().After(*meta.NextSyncAt), nil
}
