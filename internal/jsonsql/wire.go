package jsonsql

import "encoding/json"

// MarshalJSON encodes a Where as the single populated discriminator the
// wire protocol expects: {"eq":[col,v]}, {"like":[col,v]}, {"gt":[col,v]},
// {"is_null":col}, or {"and":[...]}.
func (w Where) MarshalJSON() ([]byte, error) {
	switch {
	case w.Eq != nil:
		return json.Marshal(map[string]any{"eq": []any{w.Eq.Column, w.Eq.Value}})
	case w.Like != nil:
		return json.Marshal(map[string]any{"like": []any{w.Like.Column, w.Like.Value}})
	case w.Gt != nil:
		return json.Marshal(map[string]any{"gt": []any{w.Gt.Column, w.Gt.Value}})
	case w.IsNull != nil:
		return json.Marshal(map[string]any{"is_null": *w.IsNull})
	case w.And != nil:
		return json.Marshal(map[string]any{"and": w.And})
	default:
		return []byte("null"), nil
	}
}

// wireRequest is the JSON shape a Request serializes to on the wire:
// {"method": "...", "params": {...}}.
type wireRequest struct {
	Method Method `json:"method"`
	Params Params `json:"params"`
}

// MarshalJSON encodes a Request in the wire's method/params envelope.
func (r Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRequest{Method: r.Method, Params: r.Params})
}

// rawRow is how one remote row arrives before classification into Value.
type rawRow []any

// UnmarshalJSON decodes a Result as a positional list of rows, each row a
// positional list of JSON scalars classified via ValueOf.
func (res *Result) UnmarshalJSON(data []byte) error {
	var rows []rawRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	out := make(Result, len(rows))
	for i, row := range rows {
		r := make(Row, len(row))
		for j, v := range row {
			r[j] = ValueOf(v)
		}
		out[i] = r
	}
	*res = out
	return nil
}
