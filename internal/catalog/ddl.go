package catalog

const ddlSyncMetadata = `
CREATE TABLE IF NOT EXISTS _sync_metadata (
	table_name TEXT PRIMARY KEY,
	last_sync_at TEXT NOT NULL,
	next_sync_at TEXT,
	sync_version INTEGER DEFAULT 1,
	last_sync_checkpoint TEXT,
	incremental_field TEXT,
	row_count INTEGER DEFAULT 0,
	local_row_count INTEGER DEFAULT 0,
	max_id INTEGER,
	min_id INTEGER,
	strategy TEXT NOT NULL,
	ttl INTEGER,
	chunk_size INTEGER DEFAULT 1000,
	where_clause TEXT,
	order_by TEXT DEFAULT 'id',
	schema_hash TEXT NOT NULL,
	schema_version INTEGER DEFAULT 1,
	total_fields INTEGER,
	last_sync_duration_ms INTEGER,
	last_sync_rows INTEGER,
	total_syncs INTEGER DEFAULT 0,
	failed_syncs INTEGER DEFAULT 0,
	last_error TEXT,
	last_error_at TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

const ddlFieldMappings = `
CREATE TABLE IF NOT EXISTS _field_mappings (
	table_name TEXT NOT NULL,
	position INTEGER NOT NULL,
	field_name TEXT NOT NULL,
	local_column TEXT NOT NULL,
	field_type TEXT NOT NULL,
	is_primary_key BOOLEAN DEFAULT FALSE,
	is_incremental_field BOOLEAN DEFAULT FALSE,
	is_nullable BOOLEAN DEFAULT TRUE,
	description TEXT,
	PRIMARY KEY (table_name, position),
	FOREIGN KEY (table_name) REFERENCES _sync_metadata(table_name) ON DELETE CASCADE
)`

const ddlSyncHistory = `
CREATE TABLE IF NOT EXISTS _sync_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	table_name TEXT NOT NULL,
	sync_type TEXT NOT NULL,
	started_at TEXT NOT NULL,
	completed_at TEXT,
	duration_ms INTEGER,
	rows_fetched INTEGER DEFAULT 0,
	rows_inserted INTEGER DEFAULT 0,
	rows_updated INTEGER DEFAULT 0,
	rows_deleted INTEGER DEFAULT 0,
	chunks_processed INTEGER DEFAULT 0,
	status TEXT NOT NULL,
	error_message TEXT,
	triggered_by TEXT,
	checkpoint_before TEXT,
	checkpoint_after TEXT,
	FOREIGN KEY (table_name) REFERENCES _sync_metadata(table_name) ON DELETE CASCADE
)`

const ddlCacheStats = `
CREATE TABLE IF NOT EXISTS _cache_stats (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	total_tables INTEGER DEFAULT 0,
	total_rows INTEGER DEFAULT 0,
	database_size_bytes INTEGER DEFAULT 0,
	total_syncs INTEGER DEFAULT 0,
	successful_syncs INTEGER DEFAULT 0,
	failed_syncs INTEGER DEFAULT 0,
	last_activity_at TEXT,
	initialized_at TEXT NOT NULL,
	last_vacuum_at TEXT,
	last_analyze_at TEXT,
	cache_version TEXT DEFAULT '1.0.0',
	schema_format_version INTEGER DEFAULT 1
)`

var ddlIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_sync_meta_next_sync ON _sync_metadata(next_sync_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_meta_strategy ON _sync_metadata(strategy)`,
	`CREATE INDEX IF NOT EXISTS idx_field_map_table ON _field_mappings(table_name)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_history_table ON _sync_history(table_name)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_history_started ON _sync_history(started_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_history_status ON _sync_history(status)`,
}

const ddlViewSyncStatus = `
CREATE VIEW IF NOT EXISTS v_sync_status AS
SELECT
	m.table_name,
	m.strategy,
	m.row_count,
	m.local_row_count,
	m.last_sync_at,
	m.next_sync_at,
	CASE
		WHEN datetime(m.next_sync_at) < datetime('now') THEN 'stale'
		WHEN datetime(m.next_sync_at) > datetime('now') THEN 'fresh'
		ELSE 'unknown'
	END as cache_status,
	m.last_sync_duration_ms,
	m.total_syncs,
	m.failed_syncs,
	m.last_error
FROM _sync_metadata m
ORDER BY m.table_name`

const ddlViewRecentHistory = `
CREATE VIEW IF NOT EXISTS v_recent_sync_history AS
SELECT
	h.table_name,
	h.sync_type,
	h.started_at,
	h.duration_ms,
	h.rows_fetched,
	h.rows_inserted + h.rows_updated as rows_modified,
	h.status,
	h.triggered_by
FROM _sync_history h
ORDER BY h.started_at DESC
LIMIT 100`
