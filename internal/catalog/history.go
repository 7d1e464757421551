package catalog

import (
	"context"
	"time"

	"jsonsqlmirror/internal/jsonsqlerrors"
)

// HistoryEntry is one row appended to _sync_history at the end of a sync
// attempt, successful or not.
type HistoryEntry struct {
	TableName        string
	SyncType         string
	StartedAt        time.Time
	CompletedAt      time.Time
	DurationMs       int64
	RowsFetched      int64
	RowsInserted     int64
	RowsUpdated      int64
	RowsDeleted      int64
	ChunksProcessed  int
	Status           string
	ErrorMessage     string
	TriggeredBy      string
	CheckpointBefore string
	CheckpointAfter  string
}

// AppendHistory records entry.
func (c *Catalog) AppendHistory(ctx context.Context, entry HistoryEntry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO _sync_history (
			table_name, sync_type, started_at, completed_at, duration_ms,
			rows_fetched, rows_inserted, rows_updated, rows_deleted,
			chunks_processed, status, error_message, triggered_by,
			checkpoint_before, checkpoint_after
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.TableName, entry.SyncType,
		entry.StartedAt.UTC().Format(time.RFC3339), entry.CompletedAt.UTC().Format(time.RFC3339),
		entry.DurationMs, entry.RowsFetched, entry.RowsInserted, entry.RowsUpdated, entry.RowsDeleted,
		entry.ChunksProcessed, entry.Status, nullableString(entry.ErrorMessage), nullableString(entry.TriggeredBy),
		nullableString(entry.CheckpointBefore), nullableString(entry.CheckpointAfter),
	)
	if err != nil {
		return &jsonsqlerrors.DatabaseError{Op: "appending sync_history", Cause: err}
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// RecentHistory returns up to limit history rows for table, most recent
// first.
func (c *Catalog) RecentHistory(ctx context.Context, table string, limit int) ([]HistoryEntry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT table_name, sync_type, started_at, completed_at, duration_ms,
			rows_fetched, rows_inserted, rows_updated, rows_deleted,
			chunks_processed, status, error_message, triggered_by
		FROM _sync_history WHERE table_name = ?
		ORDER BY started_at DESC LIMIT ?`, table, limit)
	if err != nil {
		return nil, &jsonsqlerrors.DatabaseError{Op: "querying sync_history", Cause: err}
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var started, completed string
		var errMsg, triggeredBy *string
		if err := rows.Scan(&e.TableName, &e.SyncType, &started, &completed, &e.DurationMs,
			&e.RowsFetched, &e.RowsInserted, &e.RowsUpdated, &e.RowsDeleted,
			&e.ChunksProcessed, &e.Status, &errMsg, &triggeredBy); err != nil {
			return nil, &jsonsqlerrors.DatabaseError{Op: "scanning sync_history", Cause: err}
		}
		e.StartedAt, _ = time.Parse(time.RFC3339, started)
		e.CompletedAt, _ = time.Parse(time.RFC3339, completed)
		if errMsg != nil {
			e.ErrorMessage = *errMsg
		}
		if triggeredBy != nil {
			e.TriggeredBy = *triggeredBy
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
