package jsonsql

import (
	"errors"
	"fmt"
)

// TransportError reports a network/timeout failure while talking to the
// remote JSONSQL service. Retryable at the caller's discretion; the core
// never retries one itself.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("jsonsql: transport error: %v", e.Err)
	}
	return fmt.Sprintf("jsonsql: transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ApiError reports a structured error payload returned by the remote
// service. Never retried by the core.
type ApiError struct {
	Message string
	Code    string
	// AccessDenied distinguishes a 403-equivalent response: the Sync
	// Manager treats this as a permanent per-table condition rather than a
	// transient failure.
	AccessDenied bool
}

func (e *ApiError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("jsonsql: api error [%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("jsonsql: api error: %s", e.Message)
}

// IsAccessDenied reports whether err is (or wraps) an ApiError whose
// AccessDenied flag is set.
func IsAccessDenied(err error) bool {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr.AccessDenied
	}
	return false
}
