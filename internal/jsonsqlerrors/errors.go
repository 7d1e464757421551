// Package jsonsqlerrors holds the concrete error kinds the sync stack
// surfaces to its callers, each a named struct wrapping an optional
// underlying cause so callers can recover it with errors.As.
package jsonsqlerrors

import "fmt"

// TableNotFoundError means the requested table has no registered schema.
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %q is not registered", e.Table)
}

// SyncStrategyError means the requested or configured cache strategy is not
// one the Sync Manager recognizes. (Incremental requested without an
// incremental_field is a ConfigurationError.)
type SyncStrategyError struct {
	Table   string
	Message string
}

func (e *SyncStrategyError) Error() string {
	return fmt.Sprintf("table %q: %s", e.Table, e.Message)
}

// SyncInProgressError means a caller asked to sync a table that already has
// an in-flight sync.
type SyncInProgressError struct {
	Table string
}

func (e *SyncInProgressError) Error() string {
	return fmt.Sprintf("table %q: sync already in progress", e.Table)
}

// ConfigurationError means a SyncConfig, where-clause fragment, or schema
// document is malformed: bad sync_config, an unsupported where shape, or a
// missing incremental field.
type ConfigurationError struct {
	Table   string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("configuration error for table %q: %s", e.Table, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error { return e.Cause }

// ConnectionError means a request to the remote JSONSQL endpoint failed
// during a sync. Cause holds the Client's error: a transport failure the
// Client gave up retrying, or an API error the remote answered with.
type ConnectionError struct {
	Op    string
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s: %v", e.Op, e.Cause)
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

// ApiError means the remote endpoint answered with an application-level
// failure. AccessDenied marks the subkind that converts to "disable this
// table" at registration time but fails the run mid-sync.
type ApiError struct {
	Table        string
	Message      string
	Code         string
	AccessDenied bool
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("api error for table %q (%s): %s", e.Table, e.Code, e.Message)
}

// DatabaseError means the local SQLite catalog or data store rejected an
// operation. The caller rolls back the current chunk and fails the run.
type DatabaseError struct {
	Op    string
	Cause error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Op, e.Cause)
}

func (e *DatabaseError) Unwrap() error { return e.Cause }
