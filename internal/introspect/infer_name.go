package introspect

import (
	"fmt"
	"regexp"

	"jsonsqlmirror/internal/jsonsql"
	"jsonsqlmirror/internal/schema"
)

// Pattern rules are tried in order against the sampled string value; the
// first match wins. Numeric/positional rules are applied separately before
// falling back to the synthetic name.
var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	urlRe   = regexp.MustCompile(`^https?://`)
	uuidRe  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	phoneRe = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
)

// inferFieldName resolves the local name for position p. A caller-provided
// override always wins; otherwise the ordered pattern rules from the
// specification apply: email/url/uuid/E.164 phone regexes on the sampled
// string value, then position 0 + INTEGER -> "id", DATETIME at position
// 1/2 -> created_at/updated_at, and finally the synthetic Field_<p>.
func (in *Introspector) inferFieldName(p, total int, ft schema.FieldType, v jsonsql.Value) string {
	if override, ok := in.NameOverrides[p]; ok && override != "" {
		return override
	}

	if ft == schema.FieldTypeString {
		if s, ok := v.String(); ok {
			switch {
			case emailRe.MatchString(s):
				return "email"
			case urlRe.MatchString(s):
				return "url"
			case uuidRe.MatchString(s):
				return "uuid"
			case phoneRe.MatchString(s):
				return "phone"
			}
		}
	}

	if p == 0 && ft == schema.FieldTypeInteger {
		return "id"
	}
	if ft == schema.FieldTypeDateTime {
		switch p {
		case 1:
			return "created_at"
		case 2:
			return "updated_at"
		}
	}

	return fmt.Sprintf("Field_%d", p)
}
