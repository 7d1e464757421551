package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"jsonsqlmirror/internal/jsonsqlerrors"
	"jsonsqlmirror/internal/schema"
)

// UpsertRows inserts rows that don't yet exist (by id) and updates rows
// that do, incrementing _sync_version on update. It requires t to have an
// id field; callers doing a full sync use BulkInsert with ConflictReplace
// instead, which does not need to distinguish insert from update.
func (s *Store) UpsertRows(ctx context.Context, t *schema.TableSchema, rows [][]any) (inserted, updated int, err error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}
	idField := t.IDField()
	if idField == nil {
		return 0, 0, &jsonsqlerrors.ConfigurationError{Table: t.TableName, Message: "upsert requires an id field"}
	}
	idPosition := idField.Position
	plan := planColumns(t)
	idColumn := plan.names[idPosition]

	tx, txErr := s.db.BeginTx(ctx, nil)
	if txErr != nil {
		return 0, 0, &jsonsqlerrors.DatabaseError{Op: "beginning upsert", Cause: txErr}
	}
	defer tx.Rollback()

	now := s.nowFunc().UTC().Format(time.RFC3339)
	for _, row := range rows {
		values := padRow(row, len(plan.names))
		var idValue any
		if idPosition < len(values) {
			idValue = values[idPosition]
		}

		var exists int
		scanErr := tx.QueryRowContext(ctx,
			fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ?", t.TableName, idColumn), idValue).Scan(&exists)
		switch {
		case scanErr == sql.ErrNoRows:
			if err := insertOne(ctx, tx, t.TableName, plan.names, values, now); err != nil {
				return 0, 0, err
			}
			inserted++
		case scanErr != nil:
			return 0, 0, &jsonsqlerrors.DatabaseError{Op: "checking row existence", Cause: scanErr}
		default:
			if err := updateOne(ctx, tx, t.TableName, plan.names, values, idColumn, idValue, now); err != nil {
				return 0, 0, err
			}
			updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, &jsonsqlerrors.DatabaseError{Op: "committing upsert", Cause: err}
	}
	return inserted, updated, nil
}

func insertOne(ctx context.Context, tx *sql.Tx, table string, columns []string, values []any, now string) error {
	cols := append(append([]string(nil), columns...), syncColumns...)
	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	args := append(append([]any(nil), values...), now, 1, false)

	_, err := tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(cols, ", "), placeholders), args...)
	if err != nil {
		return &jsonsqlerrors.DatabaseError{Op: fmt.Sprintf("inserting row into %q", table), Cause: err}
	}
	return nil
}

func updateOne(ctx context.Context, tx *sql.Tx, table string, columns []string, values []any, idColumn string, idValue any, now string) error {
	sets := make([]string, 0, len(columns)+2)
	args := make([]any, 0, len(columns)+3)
	for i, col := range columns {
		sets = append(sets, fmt.Sprintf("%s = ?", col))
		args = append(args, values[i])
	}
	sets = append(sets, "_synced_at = ?", "_sync_version = _sync_version + 1")
	args = append(args, now, idValue)

	_, err := tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", table, strings.Join(sets, ", "), idColumn), args...)
	if err != nil {
		return &jsonsqlerrors.DatabaseError{Op: fmt.Sprintf("updating row in %q", table), Cause: err}
	}
	return nil
}
