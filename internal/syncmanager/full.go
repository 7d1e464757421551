package syncmanager

import (
	"context"
	"time"

	"jsonsqlmirror/internal/catalog"
	"jsonsqlmirror/internal/datastore"
	"jsonsqlmirror/internal/schema"
)

// syncFull clears the table's mirrored data and refetches it page by page,
// reporting progress as it goes. rows_fetched counts every row pulled
// across every chunk; sync_config.Limit, if set, only bounds how many
// rows the loop requests before stopping, not what this counter reports.
func (m *Manager) syncFull(ctx context.Context, table string, s *schema.TableSchema, progress ProgressFunc) (*Result, error) {
	chunkSize := s.SyncConfig.ChunkSize
	if chunkSize <= 0 {
		chunkSize = m.DefaultChunkSize
	}
	orderBy := s.SyncConfig.OrderBy
	if orderBy == "" {
		orderBy = "id"
	}

	if err := m.Store.CreateTable(ctx, s); err != nil {
		return nil, err
	}
	clearedCount, err := m.Store.ClearTable(ctx, table)
	if err != nil {
		return nil, err
	}

	var totalChunks int
	if s.Metadata != nil && s.Metadata.RowCount > 0 {
		totalChunks = int((s.Metadata.RowCount + int64(chunkSize) - 1) / int64(chunkSize))
	}

	offset := 0
	var totalFetched, totalInserted int64
	chunksProcessed := 0
	var bytesTransferred int64
	var minID, maxID *int64
	startTime := time.Now()

	idPosition := -1
	if idField := s.IDField(); idField != nil {
		idPosition = idField.Position
	}

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		rows, err := m.fetchChunk(ctx, table, s.SyncConfig.Where, orderBy, chunkSize, offset)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			break
		}

		converted := datastore.RowsFromResult(rows)
		inserted, err := m.Store.BulkInsert(ctx, s, converted, datastore.ConflictReplace)
		if err != nil {
			return nil, err
		}

		if idPosition >= 0 {
			trackMinMaxID(converted, idPosition, &minID, &maxID)
		}

		totalInserted += int64(inserted)
		totalFetched += int64(len(rows))
		chunksProcessed++
		bytesTransferred += estimateBytes(len(rows))

		if progress != nil {
			elapsed := time.Since(startTime).Seconds()
			p := Progress{
				TableName: table, TotalChunks: maxInt(totalChunks, chunksProcessed),
				CompletedChunks: chunksProcessed, RowsSynced: totalFetched,
				BytesTransferred: bytesTransferred, ElapsedSeconds: elapsed,
			}
			if totalChunks > 0 {
				remaining := estimateRemaining(chunksProcessed, totalChunks, elapsed)
				p.EstimatedRemainingSeconds = &remaining
			}
			progress(p)
		}

		offset += chunkSize
		if s.SyncConfig.Limit != nil && totalFetched >= int64(*s.SyncConfig.Limit) {
			break
		}
	}

	nextSync := m.nowFunc().Add(ttlDuration(s, m.DefaultTTL))
	lastSyncAt := m.nowFunc()
	totalSyncs := int64(1)
	if meta, err := m.Catalog.GetMetadata(ctx, table); err == nil && meta != nil {
		totalSyncs = meta.TotalSyncs + 1
	}
	if err := m.Catalog.UpdateMetadata(ctx, table, catalog.MetadataPatch{
		LastSyncAt: &lastSyncAt, NextSyncAt: &nextSync,
		RowCount: &totalFetched, LocalRowCount: &totalInserted, LastSyncRows: &totalFetched,
		TotalSyncs: &totalSyncs, MaxID: maxID, MinID: minID,
	}); err != nil {
		return nil, err
	}

	return &Result{
		TableName: table, Strategy: schema.CacheStrategyFull,
		RowsFetched: totalFetched, RowsInserted: totalInserted, RowsDeleted: clearedCount,
		ChunksProcessed: chunksProcessed, Status: StatusSuccess,
	}, nil
}

func trackMinMaxID(rows [][]any, idPosition int, minID, maxID **int64) {
	for _, row := range rows {
		if idPosition >= len(row) || row[idPosition] == nil {
			continue
		}
		var v int64
		switch n := row[idPosition].(type) {
		case int64:
			v = n
		case int:
			v = int64(n)
		case float64:
			v = int64(n)
		default:
			continue
		}
		if *minID == nil || v < **minID {
			vv := v
			*minID = &vv
		}
		if *maxID == nil || v > **maxID {
			vv := v
			*maxID = &vv
		}
	}
}

func estimateBytes(rowCount int) int64 {
	return int64(rowCount) * 100
}

func estimateRemaining(completed, total int, elapsed float64) float64 {
	if completed == 0 {
		return 0
	}
	avgPerChunk := elapsed / float64(completed)
	return avgPerChunk * float64(total-completed)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func ttlDuration(s *schema.TableSchema, defaultTTL int) time.Duration {
	ttl := defaultTTL
	if s.SyncConfig.TTLSeconds != nil {
		ttl = *s.SyncConfig.TTLSeconds
	}
	return time.Duration(ttl) * time.Second
}
