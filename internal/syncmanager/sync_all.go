package syncmanager

import (
	"context"
	"sync"
)

// SyncAll synchronizes every registered table with at most maxConcurrent
// syncs running at once, isolating per-table failure the same way
// IntrospectAll isolates per-table introspection failure: one table's
// error never prevents the others from completing.
func (m *Manager) SyncAll(ctx context.Context, maxConcurrent int, progress ProgressFunc) map[string]*Result {
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	tables := m.Registry.ListTables()

	results := make(map[string]*Result, len(tables))
	var mu sync.Mutex
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxConcurrent)

	for _, table := range tables {
		table := table
		wg.Add(1)
		semaphore <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-semaphore }()

			result, err := m.SyncTable(ctx, table, "", false, progress)
			if err != nil {
				result = &Result{TableName: table, Status: StatusFailed, ErrorMessage: err.Error()}
			}

			mu.Lock()
			results[table] = result
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results
}
