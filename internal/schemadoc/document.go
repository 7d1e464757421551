// Package schemadoc loads and saves TableSchemas as on-disk documents in
// YAML, JSON, or TOML, following the format-dispatch-by-extension shape of
// the teacher's own schema parser package.
package schemadoc

import (
	"fmt"

	"jsonsqlmirror/internal/schema"
)

// Document is the on-disk shape a schema file serializes to: a map of
// table name to its serialized schema.
type Document struct {
	Schemas map[string]TableDoc `json:"schemas" yaml:"schemas" toml:"schemas"`
}

// TableDoc is one table's serialized schema.
type TableDoc struct {
	TotalFields int                `json:"total_fields" yaml:"total_fields" toml:"total_fields"`
	Fields      map[string]FieldDoc `json:"fields" yaml:"fields" toml:"fields"`
	SyncConfig  *SyncConfigDoc     `json:"sync_config,omitempty" yaml:"sync_config,omitempty" toml:"sync_config,omitempty"`
	Metadata    *MetadataDoc       `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata,omitempty"`
}

// FieldDoc is one field slot, keyed by its position as a string (the
// integer key is authoritative; insertion order within the map is not).
type FieldDoc struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	Type        string `json:"type" yaml:"type" toml:"type"`
	Alias       string `json:"alias,omitempty" yaml:"alias,omitempty" toml:"alias,omitempty"`
	PythonName  string `json:"python_name,omitempty" yaml:"python_name,omitempty" toml:"python_name,omitempty"`
	RemoteName  string `json:"remote_name,omitempty" yaml:"remote_name,omitempty" toml:"remote_name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Transformer string `json:"transformer,omitempty" yaml:"transformer,omitempty" toml:"transformer,omitempty"`
}

// SyncConfigDoc carries the subset of schema.SyncConfig fields a schema
// document persists. toDoc writes each of them whether or not it holds the
// default; on load, fields missing from the document (and SyncConfig
// fields not listed here) take their DefaultSyncConfig values.
type SyncConfigDoc struct {
	Where            string `json:"where,omitempty" yaml:"where,omitempty" toml:"where,omitempty"`
	Limit            *int   `json:"limit,omitempty" yaml:"limit,omitempty" toml:"limit,omitempty"`
	OrderBy          string `json:"order_by,omitempty" yaml:"order_by,omitempty" toml:"order_by,omitempty"`
	ChunkSize        int    `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty" toml:"chunk_size,omitempty"`
	CacheStrategy    string `json:"cache_strategy,omitempty" yaml:"cache_strategy,omitempty" toml:"cache_strategy,omitempty"`
	IncrementalField string `json:"incremental_field,omitempty" yaml:"incremental_field,omitempty" toml:"incremental_field,omitempty"`
	IncrementalMode  bool   `json:"incremental_mode,omitempty" yaml:"incremental_mode,omitempty" toml:"incremental_mode,omitempty"`
	Disabled         bool   `json:"disabled,omitempty" yaml:"disabled,omitempty" toml:"disabled,omitempty"`
	TTLSeconds       *int   `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty" toml:"ttl_seconds,omitempty"`
}

// MetadataDoc is the optional advisory remote-side measurement. Only
// row_count is persisted; loading a document copies it into the schema's
// TableMetadata.RowCount.
type MetadataDoc struct {
	RowCount int64 `json:"row_count,omitempty" yaml:"row_count,omitempty" toml:"row_count,omitempty"`
}

// UnsupportedFormatError mirrors the teacher's own unsupported-extension
// error shape.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return "unsupported schema document format: " + e.Path
}

func toDoc(s *schema.TableSchema) TableDoc {
	doc := TableDoc{TotalFields: s.TotalFields, Fields: make(map[string]FieldDoc, len(s.Fields))}
	for pos, f := range s.Fields {
		fd := FieldDoc{
			Name:        f.Name,
			Type:        string(f.FieldType),
			Alias:       f.Alias,
			PythonName:  f.PythonName,
			RemoteName:  f.RemoteName,
			Description: f.Description,
		}
		doc.Fields[fmt.Sprintf("%d", pos)] = fd
	}
	if s.SyncConfig != nil {
		doc.SyncConfig = &SyncConfigDoc{
			Where: s.SyncConfig.Where, Limit: s.SyncConfig.Limit, OrderBy: s.SyncConfig.OrderBy,
			ChunkSize: s.SyncConfig.ChunkSize, CacheStrategy: string(s.SyncConfig.CacheStrategy),
			IncrementalField: s.SyncConfig.IncrementalField, IncrementalMode: s.SyncConfig.IncrementalMode,
			Disabled: s.SyncConfig.Disabled, TTLSeconds: s.SyncConfig.TTLSeconds,
		}
	}
	if s.Metadata != nil {
		doc.Metadata = &MetadataDoc{RowCount: s.Metadata.RowCount}
	}
	return doc
}
