package obs

import "go.uber.org/zap"

// TableField is the structured field every sync-related log line carries
// to identify which mirrored table it concerns.
func TableField(table string) zap.Field {
	return zap.String("table", table)
}

// ErrField wraps an error as a structured field, a no-op when err is nil
// so call sites don't need to guard it.
func ErrField(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.Error(err)
}
