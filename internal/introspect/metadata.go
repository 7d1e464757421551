package introspect

import (
	"context"

	"jsonsqlmirror/internal/jsonsql"
	"jsonsqlmirror/internal/schema"
)

// gatherMetadata issues the aggregate queries described in step 4 of the
// procedure: COUNT(*), MIN/MAX(id) if an id field exists, and MIN/MAX per
// DATETIME/DATE field. No query failure is fatal. If COUNT(*) fails (other
// than with AccessDenied) the metadata is unavailable and nil is returned;
// a failing MIN/MAX query only leaves that piece unset. The second return value
// reports whether the COUNT(*) query specifically failed with AccessDenied,
// the signal the caller uses to disable the table at registration time.
func (in *Introspector) gatherMetadata(ctx context.Context, s *schema.TableSchema) (*schema.TableMetadata, bool) {
	meta := &schema.TableMetadata{AnalyzedAt: in.nowFunc()}

	count, ok, denied := in.queryCountDetailed(ctx, s.TableName)
	if denied {
		return meta, true
	}
	if !ok {
		return nil, false
	}
	meta.RowCount = count

	if idField := s.IDField(); idField != nil {
		if min, max, ok := in.queryMinMaxInt(ctx, s.TableName, idField.Name); ok {
			meta.MinID = &min
			meta.MaxID = &max
		}
	}

	ranges := make(map[string]schema.TimestampRange)
	for _, f := range s.Fields {
		if f.FieldType != schema.FieldTypeDateTime && f.FieldType != schema.FieldTypeDate {
			continue
		}
		if min, max, ok := in.queryMinMaxString(ctx, s.TableName, f.Name); ok {
			ranges[f.Name] = schema.TimestampRange{Min: min, Max: max}
		}
	}
	if len(ranges) > 0 {
		meta.TimestampRanges = ranges
	}

	return meta, false
}

func (in *Introspector) queryCountDetailed(ctx context.Context, table string) (count int64, ok bool, accessDenied bool) {
	res, err := in.Client.Execute(ctx, jsonsql.Aggregate(table, "COUNT(*)"))
	if err != nil {
		return 0, false, jsonsql.IsAccessDenied(err)
	}
	if len(res) == 0 {
		return 0, false, false
	}
	n, ok := res[0].At(0).Int()
	return n, ok, false
}

func (in *Introspector) queryMinMaxInt(ctx context.Context, table, column string) (min, max int64, ok bool) {
	res, err := in.Client.Execute(ctx, jsonsql.Aggregate(table, "MIN("+column+")", "MAX("+column+")"))
	if err != nil || len(res) == 0 {
		return 0, 0, false
	}
	minV, okMin := res[0].At(0).Int()
	maxV, okMax := res[0].At(1).Int()
	if !okMin || !okMax {
		return 0, 0, false
	}
	return minV, maxV, true
}

func (in *Introspector) queryMinMaxString(ctx context.Context, table, column string) (min, max string, ok bool) {
	res, err := in.Client.Execute(ctx, jsonsql.Aggregate(table, "MIN("+column+")", "MAX("+column+")"))
	if err != nil || len(res) == 0 {
		return "", "", false
	}
	minV, okMin := res[0].At(0).String()
	maxV, okMax := res[0].At(1).String()
	if !okMin || !okMax {
		return "", "", false
	}
	return minV, maxV, true
}
