package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonsqlmirror/internal/jsonsql"
)

type fakeClient struct {
	all    jsonsql.Result
	column jsonsql.Result
}

func (f *fakeClient) Execute(ctx context.Context, req jsonsql.Request) (jsonsql.Result, error) {
	if len(req.Params.Data) == 1 && req.Params.Data[0] == "*" {
		return f.all, nil
	}
	return f.column, nil
}

func TestValidateFieldMappingPerfectMatch(t *testing.T) {
	client := &fakeClient{
		all:    jsonsql.Result{jsonsql.Row{jsonsql.Int(1), jsonsql.String("a@x.com")}, jsonsql.Row{jsonsql.Int(2), jsonsql.String("b@x.com")}},
		column: jsonsql.Result{jsonsql.Row{jsonsql.String("a@x.com")}, jsonsql.Row{jsonsql.String("b@x.com")}},
	}
	v := New(client)
	res, err := v.ValidateFieldMapping(context.Background(), "users", 1, "email")
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.MatchRatio)
	assert.Equal(t, OutcomeConfirmed, res.Outcome)
	assert.Equal(t, DtypeString, res.Dtype)
}

func TestValidateFieldMappingMismatch(t *testing.T) {
	client := &fakeClient{
		all:    jsonsql.Result{jsonsql.Row{jsonsql.String("a")}, jsonsql.Row{jsonsql.String("b")}},
		column: jsonsql.Result{jsonsql.Row{jsonsql.String("x")}, jsonsql.Row{jsonsql.String("y")}},
	}
	v := New(client)
	res, err := v.ValidateFieldMapping(context.Background(), "t", 0, "col")
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.MatchRatio)
	assert.Equal(t, OutcomeRejected, res.Outcome)
}

func TestValidateFieldMappingEmptyErrors(t *testing.T) {
	client := &fakeClient{all: jsonsql.Result{}, column: jsonsql.Result{}}
	v := New(client)
	_, err := v.ValidateFieldMapping(context.Background(), "t", 0, "col")
	assert.Error(t, err)
}

func TestClassifyThresholds(t *testing.T) {
	assert.Equal(t, OutcomeConfirmed, Classify(0.95))
	assert.Equal(t, OutcomeSuspect, Classify(0.80))
	assert.Equal(t, OutcomeSuspect, Classify(0.94))
	assert.Equal(t, OutcomeRejected, Classify(0.79))
}

func TestValidateTableSchemaIsolatesFailures(t *testing.T) {
	client := &fakeClient{
		all:    jsonsql.Result{jsonsql.Row{jsonsql.Int(1)}},
		column: jsonsql.Result{jsonsql.Row{jsonsql.Int(1)}},
	}
	v := New(client)
	results := v.ValidateTableSchema(context.Background(), "t", map[int]string{0: "id"})
	require.Len(t, results, 1)
	assert.NotNil(t, results[0])

	// An empty column sample makes every mapping fail; each still gets its
	// own entry instead of aborting the call.
	failing := New(&fakeClient{all: jsonsql.Result{jsonsql.Row{jsonsql.Int(1)}}, column: jsonsql.Result{}})
	failed := failing.ValidateTableSchema(context.Background(), "t", map[int]string{0: "id", 1: "name"})
	require.Len(t, failed, 2)
	require.NotNil(t, failed[1])
	assert.Equal(t, "name", failed[1].RemoteColumn)
}
