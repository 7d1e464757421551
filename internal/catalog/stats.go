package catalog

import (
	"context"
	"os"
	"time"

	"jsonsqlmirror/internal/jsonsqlerrors"
)

// Stats is the global cache statistics row plus derived figures.
type Stats struct {
	TotalTables       int64
	TotalRows         int64
	DatabaseSizeBytes int64
	TotalSyncs        int64
	SuccessfulSyncs   int64
	FailedSyncs       int64
	InitializedAt     time.Time
	LastVacuumAt      *time.Time
	LastAnalyzeAt     *time.Time
}

// Stats returns the singleton _cache_stats row enriched with the live file
// size and the table/row counts derived from _sync_metadata.
func (c *Catalog) Stats(ctx context.Context) (*Stats, error) {
	row := c.db.QueryRowContext(ctx, `SELECT
		total_tables, total_rows, total_syncs, successful_syncs, failed_syncs,
		initialized_at, last_vacuum_at, last_analyze_at
		FROM _cache_stats WHERE id = 1`)

	var s Stats
	var initializedAt string
	var lastVacuum, lastAnalyze *string
	if err := row.Scan(&s.TotalTables, &s.TotalRows, &s.TotalSyncs, &s.SuccessfulSyncs, &s.FailedSyncs,
		&initializedAt, &lastVacuum, &lastAnalyze); err != nil {
		return nil, &jsonsqlerrors.DatabaseError{Op: "reading cache_stats", Cause: err}
	}
	s.InitializedAt, _ = time.Parse(time.RFC3339, initializedAt)
	if lastVacuum != nil {
		t, _ := time.Parse(time.RFC3339, *lastVacuum)
		s.LastVacuumAt = &t
	}
	if lastAnalyze != nil {
		t, _ := time.Parse(time.RFC3339, *lastAnalyze)
		s.LastAnalyzeAt = &t
	}

	if info, err := os.Stat(c.path); err == nil {
		s.DatabaseSizeBytes = info.Size()
	}

	tableRow := c.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT table_name), COALESCE(SUM(local_row_count), 0) FROM _sync_metadata`)
	if err := tableRow.Scan(&s.TotalTables, &s.TotalRows); err != nil {
		return nil, &jsonsqlerrors.DatabaseError{Op: "aggregating sync_metadata", Cause: err}
	}

	return &s, nil
}

// Vacuum reclaims free space and records the timestamp.
func (c *Catalog) Vacuum(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "VACUUM"); err != nil {
		return &jsonsqlerrors.DatabaseError{Op: "vacuuming", Cause: err}
	}
	_, err := c.db.ExecContext(ctx, "UPDATE _cache_stats SET last_vacuum_at = ? WHERE id = 1",
		c.nowFunc().UTC().Format(time.RFC3339))
	if err != nil {
		return &jsonsqlerrors.DatabaseError{Op: "recording vacuum timestamp", Cause: err}
	}
	return nil
}

// Analyze refreshes the query planner's statistics and records the
// timestamp.
func (c *Catalog) Analyze(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "ANALYZE"); err != nil {
		return &jsonsqlerrors.DatabaseError{Op: "analyzing", Cause: err}
	}
	_, err := c.db.ExecContext(ctx, "UPDATE _cache_stats SET last_analyze_at = ? WHERE id = 1",
		c.nowFunc().UTC().Format(time.RFC3339))
	if err != nil {
		return &jsonsqlerrors.DatabaseError{Op: "recording analyze timestamp", Cause: err}
	}
	return nil
}
