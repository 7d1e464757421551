package syncmanager

import (
	"context"
	"fmt"

	"jsonsqlmirror/internal/jsonsql"
	"jsonsqlmirror/internal/jsonsqlerrors"
	"jsonsqlmirror/internal/wheresql"
)

// fetchChunk requests one page of rows for a full sync.
func (m *Manager) fetchChunk(ctx context.Context, table, where, orderBy string, limit, offset int) (jsonsql.Result, error) {
	req := jsonsql.Request{
		Method: jsonsql.MethodSelect,
		Params: jsonsql.Params{
			Data: []string{"*"}, From: table, Limit: &limit, Offset: &offset, OrderBy: &orderBy,
		},
	}
	if where != "" {
		w, err := wheresql.Parse(where)
		if err != nil {
			return nil, &jsonsqlerrors.ConfigurationError{Table: table, Message: "where clause", Cause: err}
		}
		req.Params.Where = &w
	}

	result, err := m.Client.Execute(ctx, req)
	if err != nil {
		return nil, &jsonsqlerrors.ConnectionError{Op: fmt.Sprintf("fetching chunk of %q", table), Cause: err}
	}
	return result, nil
}

// fetchIncremental requests every row whose incremental field exceeds
// lastCheckpoint, ordered by that same field.
func (m *Manager) fetchIncremental(ctx context.Context, table, incrementalField, lastCheckpoint string, limit *int) (jsonsql.Result, error) {
	where := jsonsql.Gt(incrementalField, lastCheckpoint)
	req := jsonsql.Request{
		Method: jsonsql.MethodSelect,
		Params: jsonsql.Params{
			Data: []string{"*"}, From: table, Where: &where, OrderBy: &incrementalField, Limit: limit,
		},
	}
	result, err := m.Client.Execute(ctx, req)
	if err != nil {
		return nil, &jsonsqlerrors.ConnectionError{Op: fmt.Sprintf("fetching incremental updates for %q", table), Cause: err}
	}
	return result, nil
}
