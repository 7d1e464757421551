// Package syncmanager orchestrates table synchronization: strategy
// resolution, freshness gating, chunked or incremental fetch against a
// jsonsql.Client, and bookkeeping through the catalog and datastore
// packages. It mirrors the admission -> resolution -> freshness gate ->
// dispatch -> progress -> termination control flow of the sync engine it
// was distilled from, expressed with Go's own concurrency primitives
// rather than asyncio tasks.
package syncmanager

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jsonsqlmirror/internal/catalog"
	"jsonsqlmirror/internal/datastore"
	"jsonsqlmirror/internal/jsonsql"
	"jsonsqlmirror/internal/jsonsqlerrors"
	"jsonsqlmirror/internal/obs"
	"jsonsqlmirror/internal/schema"
)

// Status is the closed set of terminal (and in-progress) sync outcomes.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Progress is reported to a ProgressFunc as a full sync proceeds chunk by
// chunk.
type Progress struct {
	TableName                 string
	TotalChunks               int
	CompletedChunks           int
	RowsSynced                int64
	BytesTransferred          int64
	ElapsedSeconds            float64
	EstimatedRemainingSeconds *float64
}

// ProgressFunc receives incremental progress during a full sync. It may be
// nil.
type ProgressFunc func(Progress)

// Result is the outcome of one SyncTable call.
type Result struct {
	TableName       string
	Strategy        schema.CacheStrategy
	RowsFetched     int64
	RowsInserted    int64
	RowsUpdated     int64
	RowsDeleted     int64
	ChunksProcessed int
	DurationMs      int64
	Status          Status
	StartedAt       time.Time
	CompletedAt     time.Time
	ErrorMessage    string
}

// inFlightSync tracks one running sync's cancellation handle so CancelSync
// can reach it by table name.
type inFlightSync struct {
	cancel context.CancelFunc
}

// Manager orchestrates synchronization for every table known to Registry.
//
// max_concurrent_chunks in a table's SyncConfig is accepted and validated
// but not yet parallelized here: chunks within a single table's full sync
// are always fetched and committed serially. SyncAll parallelizes across
// different tables, not within one.
type Manager struct {
	Catalog          *catalog.Catalog
	Store            *datastore.Store
	Registry         *schema.Registry
	Client           jsonsql.Client
	DefaultChunkSize int
	DefaultTTL       int
	DefaultStrategy  schema.CacheStrategy

	logger *zap.Logger

	mu     sync.Mutex
	active map[string]*inFlightSync
	now    func() time.Time
}

// SetLogger installs l as the Manager's structured logger. A Manager
// logs to a no-op logger until this is called, so omitting it is safe.
func (m *Manager) SetLogger(l *zap.Logger) {
	m.logger = l
}

func (m *Manager) log() *zap.Logger {
	if m.logger != nil {
		return m.logger
	}
	return obs.Nop()
}

// New returns a Manager with the specification's defaults (chunk size
// 1000, TTL 3600s, full strategy) for any table whose own SyncConfig
// leaves them unset.
func New(cat *catalog.Catalog, store *datastore.Store, registry *schema.Registry, client jsonsql.Client) *Manager {
	return &Manager{
		Catalog:          cat,
		Store:            store,
		Registry:         registry,
		Client:           client,
		DefaultChunkSize: 1000,
		DefaultTTL:       3600,
		DefaultStrategy:  schema.CacheStrategyFull,
		active:           make(map[string]*inFlightSync),
		logger:           obs.Nop(),
	}
}

func (m *Manager) nowFunc() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

// SyncTable synchronizes one table. strategy overrides the table's
// configured cache_strategy when non-empty. force bypasses the freshness
// gate. A failure of the run itself is reported as a non-nil
// Result{Status: StatusFailed} with ErrorMessage set and a nil error. A
// failure before the run starts (not registered, invalid strategy, already
// in progress, or a catalog error while checking freshness) returns a nil
// Result and the error.
func (m *Manager) SyncTable(ctx context.Context, table string, strategy schema.CacheStrategy, force bool, progress ProgressFunc) (*Result, error) {
	s := m.Registry.Get(table)
	if s == nil {
		return nil, &jsonsqlerrors.TableNotFoundError{Table: table}
	}

	resolved := strategy
	if resolved == "" {
		resolved = s.SyncConfig.CacheStrategy
	}
	if resolved == "" {
		resolved = m.DefaultStrategy
	}
	if !resolved.Valid() {
		return nil, &jsonsqlerrors.SyncStrategyError{Table: table, Message: "invalid sync strategy: " + string(resolved)}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := m.admit(table, cancel); err != nil {
		return nil, err
	}
	defer m.release(table)

	startedAt := m.nowFunc()

	if s.SyncConfig.Disabled {
		return &Result{
			TableName: table, Strategy: resolved, Status: StatusSkipped,
			StartedAt: startedAt, CompletedAt: startedAt,
		}, nil
	}

	if !force {
		stale, err := m.Catalog.IsStale(ctx, table)
		if err != nil {
			return nil, err
		}
		if !stale {
			return &Result{
				TableName: table, Strategy: resolved, Status: StatusSkipped,
				StartedAt: startedAt, CompletedAt: startedAt,
			}, nil
		}
	}

	runID := uuid.New().String()
	m.log().Info("sync starting", obs.TableField(table), zap.String("run_id", runID), zap.String("strategy", string(resolved)))
	result := m.dispatch(runCtx, table, s, resolved, progress)
	result.StartedAt = startedAt
	result.CompletedAt = m.nowFunc()
	result.DurationMs = result.CompletedAt.Sub(startedAt).Milliseconds()

	if result.Status == StatusFailed {
		m.log().Error("sync failed", obs.TableField(table), zap.String("run_id", runID), zap.String("error", result.ErrorMessage))

		failedSyncs := int64(1)
		if meta, metaErr := m.Catalog.GetMetadata(ctx, table); metaErr == nil && meta != nil {
			failedSyncs = meta.FailedSyncs + 1
		}
		errMsg := result.ErrorMessage
		errAt := result.CompletedAt
		if metaErr := m.Catalog.UpdateMetadata(ctx, table, catalog.MetadataPatch{
			FailedSyncs: &failedSyncs, LastError: &errMsg, LastErrorAt: &errAt,
		}); metaErr != nil {
			m.log().Warn("failed to record sync failure in metadata", obs.TableField(table), obs.ErrField(metaErr))
		}
	} else {
		m.log().Info("sync finished", obs.TableField(table), zap.String("run_id", runID), zap.String("status", string(result.Status)), zap.Int64("rows_fetched", result.RowsFetched))
	}

	if result.Status != StatusSkipped {
		if histErr := m.Catalog.AppendHistory(ctx, catalog.HistoryEntry{
			TableName: table, SyncType: string(resolved),
			StartedAt: result.StartedAt, CompletedAt: result.CompletedAt, DurationMs: result.DurationMs,
			RowsFetched: result.RowsFetched, RowsInserted: result.RowsInserted, RowsUpdated: result.RowsUpdated,
			RowsDeleted: result.RowsDeleted, ChunksProcessed: result.ChunksProcessed,
			Status: string(result.Status), ErrorMessage: result.ErrorMessage, TriggeredBy: runID,
		}); histErr != nil {
			m.log().Warn("failed to append sync history", obs.TableField(table), obs.ErrField(histErr))
		}
	}
	return result, nil
}

func (m *Manager) dispatch(ctx context.Context, table string, s *schema.TableSchema, strategy schema.CacheStrategy, progress ProgressFunc) *Result {
	var result *Result
	var err error

	switch strategy {
	case schema.CacheStrategyFull:
		result, err = m.syncFull(ctx, table, s, progress)
	case schema.CacheStrategyIncremental:
		result, err = m.syncIncremental(ctx, table, s, progress)
	case schema.CacheStrategyOnDemand:
		result, err = &Result{TableName: table, Strategy: strategy, Status: StatusSuccess}, nil
	default:
		err = &jsonsqlerrors.SyncStrategyError{Table: table, Message: "unsupported strategy: " + string(strategy)}
	}

	if err != nil {
		status := StatusFailed
		if ctx.Err() == context.Canceled {
			status = StatusCancelled
		}
		return &Result{TableName: table, Strategy: strategy, Status: status, ErrorMessage: err.Error()}
	}
	return result
}

func (m *Manager) admit(table string, cancel context.CancelFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, inFlight := m.active[table]; inFlight {
		return &jsonsqlerrors.SyncInProgressError{Table: table}
	}
	m.active[table] = &inFlightSync{cancel: cancel}
	return nil
}

func (m *Manager) release(table string) {
	m.mu.Lock()
	delete(m.active, table)
	m.mu.Unlock()
}

// CancelSync cancels table's in-flight sync, if any, reporting whether one
// was found and cancelled.
func (m *Manager) CancelSync(table string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.active[table]
	if !ok {
		return false
	}
	s.cancel()
	return true
}

func (m *Manager) isActive(table string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[table]
	return ok
}

// TableStatus is the point-in-time sync status of one registered table.
type TableStatus struct {
	TableName     string
	Registered    bool
	Strategy      string
	LastSyncAt    *time.Time
	NextSyncAt    *time.Time
	IsStale       bool
	IsActive      bool
	RowCount      int64
	LocalRowCount int64
	LastError     string
	TotalSyncs    int64
	FailedSyncs   int64
}

// GetSyncStatus reports table's current status, or Registered=false if it
// has never been registered in the catalog.
func (m *Manager) GetSyncStatus(ctx context.Context, table string) (*TableStatus, error) {
	meta, err := m.Catalog.GetMetadata(ctx, table)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return &TableStatus{TableName: table, Registered: false}, nil
	}
	stale, err := m.Catalog.IsStale(ctx, table)
	if err != nil {
		return nil, err
	}

	status := &TableStatus{
		TableName:     table,
		Registered:    true,
		Strategy:      meta.Strategy,
		NextSyncAt:    meta.NextSyncAt,
		IsStale:       stale,
		IsActive:      m.isActive(table),
		RowCount:      meta.RowCount,
		LocalRowCount: meta.LocalRowCount,
		TotalSyncs:    meta.TotalSyncs,
		FailedSyncs:   meta.FailedSyncs,
	}
	status.LastSyncAt = &meta.LastSyncAt
	if meta.LastError != nil {
		status.LastError = *meta.LastError
	}
	return status, nil
}

// GetAllSyncStatus reports status for every table known to the Registry.
func (m *Manager) GetAllSyncStatus(ctx context.Context) ([]*TableStatus, error) {
	tables := m.Registry.ListTables()
	out := make([]*TableStatus, 0, len(tables))
	for _, table := range tables {
		st, err := m.GetSyncStatus(ctx, table)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
