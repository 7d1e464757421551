package validator

import "jsonsqlmirror/internal/jsonsql"

// DtypeFamily is the inferred distribution family of a sampled remote
// column, standing in for pandas' dtype in the original implementation.
type DtypeFamily string

const (
	DtypeInteger  DtypeFamily = "integer"
	DtypeFloat    DtypeFamily = "float"
	DtypeBoolean  DtypeFamily = "boolean"
	DtypeDatetime DtypeFamily = "datetime"
	DtypeString   DtypeFamily = "string"
	DtypeUnknown  DtypeFamily = "unknown"
)

type columnStats struct {
	dtype       DtypeFamily
	nullCount   int
	uniqueCount int
	minNumber   *float64
	maxNumber   *float64
	minString   *string
	maxString   *string
}

// summarize reduces a sampled column into dtype family, null/unique
// counts, and min/max (numeric or lexical, depending on dtype).
func summarize(values []jsonsql.Value) columnStats {
	stats := columnStats{dtype: DtypeUnknown}
	seen := make(map[any]struct{})

	var minF, maxF float64
	haveF := false
	var minS, maxS string
	haveS := false

	for _, v := range values {
		if v.IsNull() {
			stats.nullCount++
			continue
		}
		seen[v.Native()] = struct{}{}

		switch v.Kind() {
		case jsonsql.KindInt:
			if stats.dtype == DtypeUnknown {
				stats.dtype = DtypeInteger
			}
			n, _ := v.Int()
			f := float64(n)
			if !haveF || f < minF {
				minF = f
			}
			if !haveF || f > maxF {
				maxF = f
			}
			haveF = true
		case jsonsql.KindFloat:
			stats.dtype = DtypeFloat
			f, _ := v.Float()
			if !haveF || f < minF {
				minF = f
			}
			if !haveF || f > maxF {
				maxF = f
			}
			haveF = true
		case jsonsql.KindBool:
			if stats.dtype == DtypeUnknown {
				stats.dtype = DtypeBoolean
			}
		case jsonsql.KindString:
			s, _ := v.String()
			if stats.dtype == DtypeUnknown || stats.dtype == DtypeString {
				stats.dtype = classifyStringDtype(s)
			}
			if !haveS || s < minS {
				minS = s
			}
			if !haveS || s > maxS {
				maxS = s
			}
			haveS = true
		}
	}

	stats.uniqueCount = len(seen)

	switch stats.dtype {
	case DtypeInteger, DtypeFloat:
		if haveF {
			stats.minNumber = &minF
			stats.maxNumber = &maxF
		}
	case DtypeDatetime:
		if haveS {
			stats.minString = &minS
			stats.maxString = &maxS
		}
	}

	return stats
}

func classifyStringDtype(s string) DtypeFamily {
	if looksLikeISO8601(s) {
		return DtypeDatetime
	}
	return DtypeString
}
