package schema

import "time"

// TimestampRange is the [min, max] observed for a DATETIME/DATE field at
// introspection time.
type TimestampRange struct {
	Min string
	Max string
}

// TableMetadata is the remote-side measurement captured at introspection
// time. It is advisory: a failure while gathering it does not fail
// introspection. If the row count cannot be read, Metadata is left nil on
// the resulting TableSchema; a failed MIN/MAX query only leaves that range
// unset.
type TableMetadata struct {
	RowCount         int64
	MinID            *int64
	MaxID            *int64
	AnalyzedAt       time.Time
	EstimatedSizeMB  float64
	TimestampRanges  map[string]TimestampRange
}
