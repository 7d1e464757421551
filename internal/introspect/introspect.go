// Package introspect discovers the shape of a remote JSONSQL table by
// sampling a single row and, optionally, gathering descriptive statistics,
// producing a schema.TableSchema without any out-of-band description of
// the table.
package introspect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jsonsqlmirror/internal/jsonsql"
	"jsonsqlmirror/internal/schema"
)

// Introspector samples remote tables through a jsonsql.Client and builds a
// schema.TableSchema for each.
type Introspector struct {
	Client jsonsql.Client

	// GatherMetadata controls whether step 4 of the procedure (row counts,
	// id range, timestamp ranges) runs. Defaults to true via New.
	GatherMetadata bool

	// NameOverrides lets a caller pre-seed field names by position,
	// short-circuiting the pattern-rule inference for those positions.
	NameOverrides map[int]string

	// now is overridable for tests.
	now func() time.Time
}

// New returns an Introspector with metadata gathering enabled.
func New(client jsonsql.Client) *Introspector {
	return &Introspector{Client: client, GatherMetadata: true, now: time.Now}
}

// ErrEmptyTable is returned when the sampling SELECT returns no rows.
var ErrEmptyTable = errors.New("introspect: table empty or missing")

// IntrospectTable runs the introspection procedure: sample a row, infer per-position type and name, optionally
// gather aggregate metadata, and generate a default SyncConfig from the
// observed row count.
func (in *Introspector) IntrospectTable(ctx context.Context, table string) (*schema.TableSchema, error) {
	sample, err := in.sampleRow(ctx, table)
	if err != nil {
		return nil, err
	}

	total := len(sample)
	s := schema.NewTableSchema(table, total)

	for p := 0; p < total; p++ {
		ft := inferFieldType(sample.At(p))
		name := in.inferFieldName(p, total, ft, sample.At(p))
		s.Fields[p] = &schema.FieldDefinition{
			Position:  p,
			Name:      name,
			FieldType: ft,
		}
	}

	var meta *schema.TableMetadata
	var accessDenied bool
	if in.GatherMetadata {
		meta, accessDenied = in.gatherMetadata(ctx, s)
	}
	s.Metadata = meta
	s.SyncConfig = defaultSyncConfig(s, meta)
	if accessDenied {
		s.SyncConfig.Disabled = true
	}

	return s, nil
}

func (in *Introspector) sampleRow(ctx context.Context, table string) (jsonsql.Row, error) {
	res, err := in.Client.Execute(ctx, jsonsql.SelectStar(table, 1))
	if err != nil {
		return nil, fmt.Errorf("introspect: sampling %q: %w", table, err)
	}
	if len(res) == 0 {
		return nil, ErrEmptyTable
	}
	return res[0], nil
}

// IntrospectResult pairs a successful schema with the per-table outcome of
// a batch introspection run.
type IntrospectResult struct {
	Table  string
	Schema *schema.TableSchema
	Err    error
}

// IntrospectAll runs IntrospectTable concurrently for every table in
// tables. Individual failures are isolated: one table's error never
// prevents another table's result from being reported.
func (in *Introspector) IntrospectAll(ctx context.Context, tables []string) []IntrospectResult {
	results := make([]IntrospectResult, len(tables))
	done := make(chan int, len(tables))

	for i, table := range tables {
		go func(i int, table string) {
			s, err := in.IntrospectTable(ctx, table)
			results[i] = IntrospectResult{Table: table, Schema: s, Err: err}
			done <- i
		}(i, table)
	}

	for range tables {
		<-done
	}
	return results
}

func (in *Introspector) nowFunc() time.Time {
	if in.now != nil {
		return in.now()
	}
	return time.Now()
}
