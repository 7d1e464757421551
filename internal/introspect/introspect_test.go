package introspect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonsqlmirror/internal/jsonsql"
	"jsonsqlmirror/internal/schema"
)

// fakeClient answers canned results chosen by the requested data
// expressions, letting tests script exactly the sequence of queries the
// Introspector is expected to issue. The table name only matters for the
// sampling query of a table listed in empty, which returns no rows.
type fakeClient struct {
	sample  jsonsql.Result
	count   jsonsql.Result
	countErr error
	minMax  map[string]jsonsql.Result
	empty   map[string]bool
}

func (f *fakeClient) Execute(ctx context.Context, req jsonsql.Request) (jsonsql.Result, error) {
	if len(req.Params.Data) == 1 && req.Params.Data[0] == "*" {
		if f.empty[req.Params.From] {
			return jsonsql.Result{}, nil
		}
		return f.sample, nil
	}
	if len(req.Params.Data) == 1 && req.Params.Data[0] == "COUNT(*)" {
		if f.countErr != nil {
			return nil, f.countErr
		}
		return f.count, nil
	}
	if len(req.Params.Data) == 2 {
		if res, ok := f.minMax[req.Params.Data[0]]; ok {
			return res, nil
		}
	}
	return nil, nil
}

func TestIntrospectTableEmptyFails(t *testing.T) {
	client := &fakeClient{sample: jsonsql.Result{}}
	in := New(client)
	_, err := in.IntrospectTable(context.Background(), "users")
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestIntrospectTableInfersTypesAndNames(t *testing.T) {
	client := &fakeClient{
		sample: jsonsql.Result{
			jsonsql.Row{
				jsonsql.Int(1),
				jsonsql.String("2023-01-01T00:00:00"),
				jsonsql.String("2023-02-01T00:00:00"),
				jsonsql.String("alice@example.com"),
			},
		},
		count: jsonsql.Result{jsonsql.Row{jsonsql.Int(4)}},
	}
	in := New(client)
	s, err := in.IntrospectTable(context.Background(), "users")
	require.NoError(t, err)

	assert.Equal(t, 4, s.TotalFields)
	assert.Equal(t, "id", s.Fields[0].Name)
	assert.Equal(t, schema.FieldTypeInteger, s.Fields[0].FieldType)
	assert.Equal(t, "created_at", s.Fields[1].Name)
	assert.Equal(t, schema.FieldTypeDateTime, s.Fields[1].FieldType)
	assert.Equal(t, "updated_at", s.Fields[2].Name)
	assert.Equal(t, "email", s.Fields[3].Name)
}

func TestIntrospectTableTieredDefaults(t *testing.T) {
	cases := []struct {
		name     string
		rowCount int64
		strategy schema.CacheStrategy
		chunk    int
	}{
		{"small", 10, schema.CacheStrategyFull, 100},
		{"medium", 50_000, schema.CacheStrategyFull, 5000},
		{"large", 200_000, schema.CacheStrategyIncremental, 10_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeClient{
				sample: jsonsql.Result{jsonsql.Row{jsonsql.Int(1)}},
				count:  jsonsql.Result{jsonsql.Row{jsonsql.Int(tc.rowCount)}},
			}
			in := New(client)
			s, err := in.IntrospectTable(context.Background(), "t")
			require.NoError(t, err)
			assert.Equal(t, tc.strategy, s.SyncConfig.CacheStrategy)
			assert.Equal(t, tc.chunk, s.SyncConfig.ChunkSize)
		})
	}
}

func TestIntrospectTableAccessDeniedDisablesTable(t *testing.T) {
	client := &fakeClient{
		sample:   jsonsql.Result{jsonsql.Row{jsonsql.Int(1)}},
		countErr: &jsonsql.ApiError{Message: "forbidden", AccessDenied: true},
	}
	in := New(client)
	s, err := in.IntrospectTable(context.Background(), "t")
	require.NoError(t, err)
	assert.True(t, s.SyncConfig.Disabled)
}

func TestIntrospectAllIsolatesFailures(t *testing.T) {
	client := &fakeClient{
		sample: jsonsql.Result{jsonsql.Row{jsonsql.Int(1)}},
		count:  jsonsql.Result{jsonsql.Row{jsonsql.Int(1)}},
		empty:  map[string]bool{"missing": true},
	}
	in := New(client)

	results := in.IntrospectAll(context.Background(), []string{"ok", "missing"})
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Schema)
	assert.ErrorIs(t, results[1].Err, ErrEmptyTable)
}
