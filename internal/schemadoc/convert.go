package schemadoc

import (
	"fmt"
	"strconv"

	"jsonsqlmirror/internal/jsonsqlerrors"
	"jsonsqlmirror/internal/schema"
)

func fromDoc(table string, doc TableDoc) (*schema.TableSchema, error) {
	s := schema.NewTableSchema(table, doc.TotalFields)
	seen := make(map[int]string, len(doc.Fields))
	for key, fd := range doc.Fields {
		pos, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("schema %q: field key %q is not an integer position: %w", table, key, err)
		}
		if other, dup := seen[pos]; dup {
			return nil, &jsonsqlerrors.ConfigurationError{
				Table:   table,
				Message: fmt.Sprintf("field keys %q and %q both resolve to position %d", other, key, pos),
			}
		}
		seen[pos] = key
		ft := schema.FieldType(fd.Type)
		if !ft.Valid() {
			return nil, fmt.Errorf("schema %q: field %q has unrecognized type %q", table, key, fd.Type)
		}
		field := &schema.FieldDefinition{
			Position:    pos,
			Name:        fd.Name,
			Alias:       fd.Alias,
			PythonName:  fd.PythonName,
			RemoteName:  fd.RemoteName,
			Description: fd.Description,
			FieldType:   ft,
		}
		if fd.Transformer != "" {
			t, ok := schema.BuiltinTransformers[fd.Transformer]
			if !ok {
				return nil, fmt.Errorf("schema %q: field %q names unknown transformer %q", table, key, fd.Transformer)
			}
			field.Transformer = t
		}
		s.Fields[pos] = field
	}

	s.SyncConfig = schema.DefaultSyncConfig()
	if doc.SyncConfig != nil {
		sc := doc.SyncConfig
		if sc.Where != "" {
			s.SyncConfig.Where = sc.Where
		}
		if sc.Limit != nil {
			s.SyncConfig.Limit = sc.Limit
		}
		if sc.OrderBy != "" {
			s.SyncConfig.OrderBy = sc.OrderBy
		}
		if sc.ChunkSize > 0 {
			s.SyncConfig.ChunkSize = sc.ChunkSize
		}
		if sc.CacheStrategy != "" {
			s.SyncConfig.CacheStrategy = schema.CacheStrategy(sc.CacheStrategy)
		}
		s.SyncConfig.IncrementalField = sc.IncrementalField
		s.SyncConfig.IncrementalMode = sc.IncrementalMode
		s.SyncConfig.Disabled = sc.Disabled
		if sc.TTLSeconds != nil {
			s.SyncConfig.TTLSeconds = sc.TTLSeconds
		}
	}
	if err := s.SyncConfig.Validate(); err != nil {
		return nil, fmt.Errorf("schema %q: invalid sync_config: %w", table, err)
	}

	if doc.Metadata != nil {
		s.Metadata = &schema.TableMetadata{RowCount: doc.Metadata.RowCount}
	}

	return s, nil
}
