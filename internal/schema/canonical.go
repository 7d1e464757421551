package schema

import "encoding/json"

// canonicalJSON marshals v with encoding/json, which always emits object
// keys in a fixed order for map[string]T and struct fields in declaration
// order — sufficient determinism for hashCanonical's purposes since the
// projection types here never use a Go map.
func canonicalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}
