package catalog

import (
	"context"
	"database/sql"
	"errors"

	"jsonsqlmirror/internal/jsonsqlerrors"
	"jsonsqlmirror/internal/schema"
)

// ListRegisteredTables returns every table name present in
// _sync_metadata, in no particular order.
func (c *Catalog) ListRegisteredTables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT table_name FROM _sync_metadata`)
	if err != nil {
		return nil, &jsonsqlerrors.DatabaseError{Op: "listing registered tables", Cause: err}
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &jsonsqlerrors.DatabaseError{Op: "scanning table name", Cause: err}
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// LoadSchema reconstructs a usable TableSchema for table from
// _sync_metadata and _field_mappings: enough to drive a sync (field
// positions, names, types, sync policy) though not round-trip-identical to
// whatever richer schema.TableSchema produced the registration (aliases,
// transformers, and relationships live only in a schema document or live
// introspection, not in the catalog). Of the sync policy only strategy,
// ttl, chunk_size, where, order_by and incremental_field are stored; limit,
// disabled and the remaining SyncConfig fields come back at their
// DefaultSyncConfig values.
func (c *Catalog) LoadSchema(ctx context.Context, table string) (*schema.TableSchema, error) {
	var totalFields int
	var strategy, whereClause, orderBy, incrementalField string
	var ttlSeconds, chunkSize sql.NullInt64

	row := c.db.QueryRowContext(ctx, `
		SELECT total_fields, strategy, ttl, chunk_size, where_clause, order_by, incremental_field
		FROM _sync_metadata WHERE table_name = ?`, table)
	err := row.Scan(&totalFields, &strategy, &ttlSeconds, &chunkSize, &whereClause, &orderBy, &incrementalField)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &jsonsqlerrors.TableNotFoundError{Table: table}
	}
	if err != nil {
		return nil, &jsonsqlerrors.DatabaseError{Op: "loading sync_metadata", Cause: err}
	}

	s := schema.NewTableSchema(table, totalFields)
	s.SyncConfig = schema.DefaultSyncConfig()
	s.SyncConfig.CacheStrategy = schema.CacheStrategy(strategy)
	s.SyncConfig.Where = whereClause
	s.SyncConfig.OrderBy = orderBy
	s.SyncConfig.IncrementalField = incrementalField
	s.SyncConfig.IncrementalMode = incrementalField != ""
	if ttlSeconds.Valid {
		v := int(ttlSeconds.Int64)
		s.SyncConfig.TTLSeconds = &v
	}
	if chunkSize.Valid {
		s.SyncConfig.ChunkSize = int(chunkSize.Int64)
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT position, field_name, field_type, description FROM _field_mappings WHERE table_name = ?`, table)
	if err != nil {
		return nil, &jsonsqlerrors.DatabaseError{Op: "loading field_mappings", Cause: err}
	}
	defer rows.Close()

	for rows.Next() {
		var position int
		var name, fieldType string
		var description sql.NullString
		if err := rows.Scan(&position, &name, &fieldType, &description); err != nil {
			return nil, &jsonsqlerrors.DatabaseError{Op: "scanning field_mappings", Cause: err}
		}
		s.Fields[position] = &schema.FieldDefinition{
			Position:    position,
			Name:        name,
			FieldType:   schema.FieldType(fieldType),
			Description: description.String,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &jsonsqlerrors.DatabaseError{Op: "iterating field_mappings", Cause: err}
	}

	return s, nil
}
