package schema

import (
	"fmt"
	"hash/fnv"
	"sort"

	"jsonsqlmirror/internal/jsonsql"
)

// TableSchema is the full description of one mirrored table: its ordered
// field slots, sync policy, and any remote-side statistics gathered at
// introspection time. Once registered with a SchemaRegistry a TableSchema
// is treated as immutable for the duration of a sync run.
type TableSchema struct {
	TableName   string
	Fields      map[int]*FieldDefinition
	TotalFields int
	SyncConfig  *SyncConfig
	Metadata    *TableMetadata
}

// NewTableSchema builds an empty schema for name with totalFields
// positional slots, none of them described yet.
func NewTableSchema(name string, totalFields int) *TableSchema {
	return &TableSchema{
		TableName:   name,
		Fields:      make(map[int]*FieldDefinition, totalFields),
		TotalFields: totalFields,
	}
}

// syntheticName is the fallback local name for an undescribed position.
func syntheticName(position int) string {
	return fmt.Sprintf("Field_%d", position)
}

// ResolveSelectStar returns, in ascending position order, the resolved name
// of every slot 0..TotalFields-1. Positions with no FieldDefinition resolve
// to the synthetic Field_<n> name. If TotalFields is unknown (zero) and no
// fields are described, the single sentinel "*" is returned.
func (t *TableSchema) ResolveSelectStar(useAliases bool) []string {
	if t.TotalFields == 0 && len(t.Fields) == 0 {
		return []string{"*"}
	}
	names := make([]string, t.TotalFields)
	seen := make(map[string]int, t.TotalFields)
	for p := 0; p < t.TotalFields; p++ {
		name := syntheticName(p)
		if f, ok := t.Fields[p]; ok {
			if useAliases && f.Alias != "" {
				name = f.Alias
			} else {
				name = f.MappedName()
			}
		}
		if n, dup := seen[name]; dup {
			n++
			seen[name] = n
			name = fmt.Sprintf("%s_%d", name, n)
		} else {
			seen[name] = 0
		}
		names[p] = name
	}
	return names
}

// MapRow maps a positional remote row into a name->value dictionary, using
// each slot's mapped name and applying its transformer. A transformer
// failure never aborts the mapping: the raw value is kept for that
// position and no error is surfaced (see FieldDefinition.Transform).
func (t *TableSchema) MapRow(row jsonsql.Row) map[string]any {
	out := make(map[string]any, len(row))
	for p, v := range row {
		name := syntheticName(p)
		raw := v.Native()
		if f, ok := t.Fields[p]; ok {
			name = f.MappedName()
			raw = f.Transform(raw)
		}
		out[name] = raw
	}
	return out
}

// FieldByName matches q against every field's name, alias, or python_name.
func (t *TableSchema) FieldByName(q string) *FieldDefinition {
	for _, f := range t.Fields {
		if f.Matches(q) {
			return f
		}
	}
	return nil
}

// FieldByPosition returns the field declared at position p, or nil if that
// slot is undescribed.
func (t *TableSchema) FieldByPosition(p int) *FieldDefinition {
	return t.Fields[p]
}

// IDField returns the field named "id" (case-insensitive), if any.
func (t *TableSchema) IDField() *FieldDefinition {
	for _, f := range t.Fields {
		if eqFold(f.Name, "id") {
			return f
		}
	}
	return nil
}

func eqFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// hashProjection is the canonical, order-independent payload that Hash
// reduces: table name, per-position (name, type, position) triples sorted
// by position, and the sync-config fields that participate in cache
// identity.
type hashProjection struct {
	Table  string            `json:"table"`
	Fields []hashFieldEntry  `json:"fields"`
	Sync   *hashSyncProjection `json:"sync,omitempty"`
}

type hashFieldEntry struct {
	Position int       `json:"position"`
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
}

type hashSyncProjection struct {
	Strategy         CacheStrategy `json:"strategy"`
	IncrementalField string        `json:"incremental_field,omitempty"`
	ChunkSize        int           `json:"chunk_size"`
	Where            string        `json:"where,omitempty"`
	OrderBy          string        `json:"order_by,omitempty"`
}

// Hash returns a canonical, order-independent digest over
// {table_name, per-position (name, type, position), sync_config projected
// fields}. Two schemas with identical content hash equal regardless of the
// order fields were inserted in. Used by the catalog to detect schema
// change across registrations.
func (t *TableSchema) Hash() string {
	positions := make([]int, 0, len(t.Fields))
	for p := range t.Fields {
		positions = append(positions, p)
	}
	sort.Ints(positions)

	proj := hashProjection{Table: t.TableName, Fields: make([]hashFieldEntry, 0, len(positions))}
	for _, p := range positions {
		f := t.Fields[p]
		proj.Fields = append(proj.Fields, hashFieldEntry{Position: p, Name: f.MappedName(), Type: f.FieldType})
	}
	if t.SyncConfig != nil {
		proj.Sync = &hashSyncProjection{
			Strategy:         t.SyncConfig.CacheStrategy,
			IncrementalField: t.SyncConfig.IncrementalField,
			ChunkSize:        t.SyncConfig.ChunkSize,
			Where:            t.SyncConfig.Where,
			OrderBy:          t.SyncConfig.OrderBy,
		}
	}
	return hashCanonical(proj)
}

// hashCanonical encodes v deterministically (Go's encoding/json sorts map
// keys and this projection uses only slices and scalars) and reduces it with
// FNV-1a, rendered as a short hex digest. Hashing here is a change-detection
// signal, not a security boundary, so the standard library's hash/fnv is
// sufficient without reaching for a third-party hash package.
func hashCanonical(v any) string {
	enc, err := canonicalJSON(v)
	if err != nil {
		return ""
	}
	h := fnv.New64a()
	h.Write(enc)
	return fmt.Sprintf("%016x", h.Sum64())
}
