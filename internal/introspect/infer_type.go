package introspect

import (
	"time"

	"jsonsqlmirror/internal/jsonsql"
	"jsonsqlmirror/internal/schema"
)

// isoLayouts are tried in order when deciding whether a sampled string
// value should be classified DATETIME rather than STRING.
var isoLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func looksLikeISO8601(s string) bool {
	for _, layout := range isoLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// inferFieldType classifies the runtime type of a sampled value: integer,
// float, boolean, ISO-8601-parseable string -> DATETIME, any other string
// -> STRING, JSON blob -> JSON, null -> UNKNOWN.
func inferFieldType(v jsonsql.Value) schema.FieldType {
	switch v.Kind() {
	case jsonsql.KindInt:
		return schema.FieldTypeInteger
	case jsonsql.KindFloat:
		return schema.FieldTypeFloat
	case jsonsql.KindBool:
		return schema.FieldTypeBoolean
	case jsonsql.KindString:
		s, _ := v.String()
		if looksLikeISO8601(s) {
			return schema.FieldTypeDateTime
		}
		return schema.FieldTypeString
	case jsonsql.KindJSON:
		return schema.FieldTypeJSON
	default:
		return schema.FieldTypeUnknown
	}
}
