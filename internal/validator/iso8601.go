package validator

import "time"

// isoLayouts mirrors the same ISO-8601 detection the introspector uses,
// duplicated here rather than shared: the two packages classify values for
// different purposes (schema field type vs. sampled-column dtype family)
// and evolving one independently of the other is expected.
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
