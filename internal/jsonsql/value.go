// Package jsonsql defines the wire contract the core speaks to the remote
// JSONSQL service: the Client interface, request/result document shapes,
// and the error kinds the Client is allowed to fail with.
package jsonsql

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the runtime shape carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindJSON
)

// Value is a tagged union over the scalar/aggregate types a JSONSQL remote
// row position can carry. Remote rows arrive as positional lists of JSON
// scalars; Value models one such slot without committing to a Go native
// type until a caller asks for one.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
	j    json.RawMessage
}

func Null() Value                 { return Value{kind: KindNull} }
func Int(v int64) Value           { return Value{kind: KindInt, i: v} }
func Float(v float64) Value       { return Value{kind: KindFloat, f: v} }
func Bool(v bool) Value           { return Value{kind: KindBool, b: v} }
func String(v string) Value       { return Value{kind: KindString, s: v} }
func JSON(v json.RawMessage) Value { return Value{kind: KindJSON, j: v} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Int() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

func (v Value) Float() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) String() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) RawJSON() (json.RawMessage, bool) {
	if v.kind != KindJSON {
		return nil, false
	}
	return v.j, true
}

// Native returns the value as a plain Go interface{}, the representation
// used when handing a row off to callers who do not care about the tagged
// union (e.g. database/sql binding, transformer functions).
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindString:
		return v.s
	case KindJSON:
		return v.j
	default:
		return nil
	}
}

// ValueOf classifies a decoded JSON scalar (as produced by
// encoding/json.Unmarshal into an any) into a Value. Objects and arrays
// become KindJSON, carrying their canonical re-encoding.
func ValueOf(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case float64:
		if t == float64(int64(t)) {
			return Int(int64(t))
		}
		return Float(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i)
		}
		if f, err := t.Float64(); err == nil {
			return Float(f)
		}
		return String(t.String())
	case map[string]any, []any:
		enc, err := json.Marshal(t)
		if err != nil {
			return String(fmt.Sprintf("%v", t))
		}
		return JSON(enc)
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

// Row is one positional remote record.
type Row []Value

// At returns the value at position p, or Null if the row is shorter than
// p+1 (a short row is treated as trailing NULLs, matching the remote's
// row-tuple contract).
func (r Row) At(p int) Value {
	if p < 0 || p >= len(r) {
		return Null()
	}
	return r[p]
}
