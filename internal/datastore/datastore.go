// Package datastore is the Data Store half of the local mirror: one SQLite
// table per mirrored remote table, with dynamic DDL derived from a
// schema.TableSchema and bulk write paths tuned for chunked sync loads.
package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"jsonsqlmirror/internal/jsonsql"
	"jsonsqlmirror/internal/jsonsqlerrors"
	"jsonsqlmirror/internal/schema"
)

// ConflictMode controls how bulk writes react to a primary-key collision.
type ConflictMode string

const (
	ConflictFail    ConflictMode = "FAIL"
	ConflictReplace ConflictMode = "REPLACE"
	ConflictIgnore  ConflictMode = "IGNORE"
)

// syncColumns are appended to every mirrored table beyond its remote
// fields, recording when and how completely a row was last written.
var syncColumns = []string{"_synced_at", "_sync_version", "_is_partial"}

// Store wraps the mirrored-data SQLite database.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens (creating if absent) the data store file at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("datastore: creating directory %q: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("datastore: opening %q: %w", path, err)
	}
	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("datastore: pinging %q: %w; additionally failed to close: %v", path, pingErr, closeErr)
		}
		return nil, fmt.Errorf("datastore: pinging %q: %w", path, pingErr)
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db, path: path, now: time.Now}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) nowFunc() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// columnPlan resolves, for every position 0..TotalFields-1, the SQLite
// column name and type, deduping colliding names with a numeric suffix the
// same way schema.TableSchema.ResolveSelectStar does for remote names.
type columnPlan struct {
	names []string
	types []string
}

func planColumns(t *schema.TableSchema) columnPlan {
	total := t.TotalFields
	if total == 0 {
		for p := range t.Fields {
			if p+1 > total {
				total = p + 1
			}
		}
	}
	plan := columnPlan{names: make([]string, total), types: make([]string, total)}
	used := make(map[string]int, total)
	for p := 0; p < total; p++ {
		name := fmt.Sprintf("Field_%d", p)
		colType := "TEXT"
		if f, ok := t.Fields[p]; ok {
			name = schema.NormalizeLocalColumn(f.MappedName())
			colType = sqliteType(f.FieldType)
		}
		base := name
		if n, dup := used[base]; dup {
			n++
			used[base] = n
			name = fmt.Sprintf("%s_%d", base, n)
		} else {
			used[base] = 0
		}
		plan.names[p] = name
		plan.types[p] = colType
	}
	return plan
}

func sqliteType(t schema.FieldType) string {
	switch t {
	case schema.FieldTypeInteger:
		return "INTEGER"
	case schema.FieldTypeFloat:
		return "REAL"
	case schema.FieldTypeBoolean:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// CreateTable issues CREATE TABLE IF NOT EXISTS for t, one Field_<n>/named
// column per remote position plus the three sync bookkeeping columns, and
// declares the id field (if any) as the primary key.
func (s *Store) CreateTable(ctx context.Context, t *schema.TableSchema) error {
	plan := planColumns(t)

	cols := make([]string, 0, len(plan.names)+len(syncColumns)+1)
	idField := t.IDField()
	var idColumn string
	for i, name := range plan.names {
		nullable := " NULL"
		if f, ok := t.Fields[i]; ok && f == idField {
			nullable = ""
			idColumn = name
		}
		cols = append(cols, fmt.Sprintf("%s %s%s", name, plan.types[i], nullable))
	}
	cols = append(cols,
		"_synced_at TEXT NOT NULL",
		"_sync_version INTEGER DEFAULT 1",
		"_is_partial BOOLEAN DEFAULT FALSE",
	)
	if idColumn != "" {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", idColumn))
	}

	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.TableName, strings.Join(cols, ", "))
	if _, err := s.db.ExecContext(ctx, createSQL); err != nil {
		return &jsonsqlerrors.DatabaseError{Op: fmt.Sprintf("creating table %q", t.TableName), Cause: err}
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_%s_synced_at ON %s(_synced_at)", t.TableName, t.TableName)); err != nil {
		return &jsonsqlerrors.DatabaseError{Op: "creating synced_at index", Cause: err}
	}
	if idColumn != "" {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)", t.TableName, idColumn, t.TableName, idColumn)); err != nil {
			return &jsonsqlerrors.DatabaseError{Op: "creating id index", Cause: err}
		}
	}
	if t.SyncConfig != nil && t.SyncConfig.IncrementalField != "" {
		if inc := t.FieldByName(t.SyncConfig.IncrementalField); inc != nil {
			col := schema.NormalizeLocalColumn(inc.MappedName())
			if _, err := s.db.ExecContext(ctx, fmt.Sprintf(
				"CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)", t.TableName, col, t.TableName, col)); err != nil {
				return &jsonsqlerrors.DatabaseError{Op: "creating incremental field index", Cause: err}
			}
		}
	}
	return nil
}

// BulkInsert writes rows (each a positional slice of values already
// aligned to 0..TotalFields-1) using mode's conflict resolution, stamping
// every row with the current time, sync version 1, and is_partial=false.
func (s *Store) BulkInsert(ctx context.Context, t *schema.TableSchema, rows [][]any, mode ConflictMode) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	plan := planColumns(t)
	cols := append(append([]string(nil), plan.names...), syncColumns...)

	var verb string
	switch mode {
	case ConflictReplace:
		verb = "INSERT OR REPLACE INTO"
	case ConflictIgnore:
		verb = "INSERT OR IGNORE INTO"
	default:
		verb = "INSERT INTO"
	}

	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	insertSQL := fmt.Sprintf("%s %s (%s) VALUES %s", verb, t.TableName, strings.Join(cols, ", "), placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &jsonsqlerrors.DatabaseError{Op: "beginning bulk insert", Cause: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, &jsonsqlerrors.DatabaseError{Op: "preparing bulk insert", Cause: err}
	}
	defer stmt.Close()

	now := s.nowFunc().UTC().Format(time.RFC3339)
	for _, row := range rows {
		values := padRow(row, len(plan.names))
		values = append(values, now, 1, false)
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return 0, &jsonsqlerrors.DatabaseError{Op: fmt.Sprintf("inserting into %q", t.TableName), Cause: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, &jsonsqlerrors.DatabaseError{Op: "committing bulk insert", Cause: err}
	}
	return len(rows), nil
}

func padRow(row []any, total int) []any {
	out := make([]any, total)
	for i := 0; i < total; i++ {
		if i < len(row) {
			out[i] = row[i]
		}
	}
	return out
}

// RowsFromResult converts a jsonsql.Result into the [][]any BulkInsert
// expects, using each Value's native Go representation.
func RowsFromResult(result jsonsql.Result) [][]any {
	out := make([][]any, len(result))
	for i, row := range result {
		converted := make([]any, len(row))
		for j, v := range row {
			converted[j] = v.Native()
		}
		out[i] = converted
	}
	return out
}

// ClearTable deletes every row from t's mirrored table and returns how many
// rows were removed.
func (s *Store) ClearTable(ctx context.Context, table string) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
		return 0, &jsonsqlerrors.DatabaseError{Op: fmt.Sprintf("counting %q before clear", table), Cause: err}
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
		return 0, &jsonsqlerrors.DatabaseError{Op: fmt.Sprintf("clearing %q", table), Cause: err}
	}
	return count, nil
}

// ExecuteQuery runs an arbitrary read-only SQL statement against table's
// mirrored data and returns each row as a column-name -> value map. It
// errors with jsonsqlerrors.TableNotFoundError if table was never created.
func (s *Store) ExecuteQuery(ctx context.Context, table string, query string, args ...any) ([]map[string]any, error) {
	var exists string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, &jsonsqlerrors.TableNotFoundError{Table: table}
	}
	if err != nil {
		return nil, &jsonsqlerrors.DatabaseError{Op: "checking table existence", Cause: err}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &jsonsqlerrors.DatabaseError{Op: fmt.Sprintf("querying %q", table), Cause: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &jsonsqlerrors.DatabaseError{Op: "reading result columns", Cause: err}
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &jsonsqlerrors.DatabaseError{Op: "scanning result row", Cause: err}
		}
		record := make(map[string]any, len(columns))
		for i, col := range columns {
			record[col] = values[i]
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
