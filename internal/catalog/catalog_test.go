package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jsonsqlmirror/internal/schema"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	c, err := Open(context.Background(), path, DefaultPragmaOptions())
	require.NoError(t, err)
	require.NoError(t, c.Initialize(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c
}

func testSchema() *schema.TableSchema {
	s := schema.NewTableSchema("users", 2)
	s.Fields[0] = &schema.FieldDefinition{Position: 0, Name: "id", FieldType: schema.FieldTypeInteger}
	s.Fields[1] = &schema.FieldDefinition{Position: 1, Name: "email", FieldType: schema.FieldTypeString}
	s.SyncConfig = schema.DefaultSyncConfig()
	return s
}

func TestRegisterTableThenGetMetadata(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.RegisterTable(ctx, testSchema()))

	meta, err := c.GetMetadata(ctx, "users")
	require.NoError(t, err)
	require.NotNil(t, meta)
	require.Equal(t, "users", meta.TableName)
	require.Equal(t, "full", meta.Strategy)
	require.Equal(t, 2, meta.TotalFields)
}

func TestGetMetadataUnregisteredReturnsNil(t *testing.T) {
	c := openTestCatalog(t)
	meta, err := c.GetMetadata(context.Background(), "ghost")
	require.NoError(t, err)
	require.Nil(t, meta)
}

func TestIsStaleWithNoNextSyncAt(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.RegisterTable(ctx, testSchema()))

	stale, err := c.IsStale(ctx, "users")
	require.NoError(t, err)
	require.True(t, stale)
}

func TestIsStaleAfterFutureNextSyncAt(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.RegisterTable(ctx, testSchema()))

	future := time.Now().Add(time.Hour)
	require.NoError(t, c.UpdateMetadata(ctx, "users", MetadataPatch{NextSyncAt: &future}))

	stale, err := c.IsStale(ctx, "users")
	require.NoError(t, err)
	require.False(t, stale)
}

func TestUpdateMetadataPartialPatch(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.RegisterTable(ctx, testSchema()))

	rowCount := int64(42)
	require.NoError(t, c.UpdateMetadata(ctx, "users", MetadataPatch{RowCount: &rowCount}))

	meta, err := c.GetMetadata(ctx, "users")
	require.NoError(t, err)
	require.Equal(t, rowCount, meta.RowCount)
}

func TestAppendAndRecentHistory(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.RegisterTable(ctx, testSchema()))

	now := time.Now()
	require.NoError(t, c.AppendHistory(ctx, HistoryEntry{
		TableName: "users", SyncType: "full", StartedAt: now, CompletedAt: now.Add(time.Second),
		RowsFetched: 10, Status: "success",
	}))

	history, err := c.RecentHistory(ctx, "users", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, int64(10), history[0].RowsFetched)
}

func TestStatsReflectsRegisteredTables(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.RegisterTable(ctx, testSchema()))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.TotalTables)
}

func TestVacuumAndAnalyzeDoNotError(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.Vacuum(ctx))
	require.NoError(t, c.Analyze(ctx))
}
