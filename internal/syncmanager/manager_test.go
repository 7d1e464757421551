package syncmanager

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"jsonsqlmirror/internal/catalog"
	"jsonsqlmirror/internal/datastore"
	"jsonsqlmirror/internal/jsonsql"
	"jsonsqlmirror/internal/schema"
)

type fakeClient struct {
	pages   [][]jsonsql.Row
	pageIdx int32
	onCall  func(req jsonsql.Request)
}

func (f *fakeClient) Execute(ctx context.Context, req jsonsql.Request) (jsonsql.Result, error) {
	if f.onCall != nil {
		f.onCall(req)
	}
	idx := int(atomic.AddInt32(&f.pageIdx, 1)) - 1
	if idx >= len(f.pages) {
		return jsonsql.Result{}, nil
	}
	return jsonsql.Result(f.pages[idx]), nil
}

func setup(t *testing.T, client jsonsql.Client) (*Manager, *schema.TableSchema) {
	t.Helper()
	ctx := context.Background()

	cat, err := catalog.Open(ctx, filepath.Join(t.TempDir(), "catalog.db"), catalog.DefaultPragmaOptions())
	require.NoError(t, err)
	require.NoError(t, cat.Initialize(ctx))
	t.Cleanup(func() { cat.Close() })

	store, err := datastore.Open(ctx, filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	registry := schema.NewRegistry()
	s := schema.NewTableSchema("users", 2)
	s.Fields[0] = &schema.FieldDefinition{Position: 0, Name: "id", FieldType: schema.FieldTypeInteger}
	s.Fields[1] = &schema.FieldDefinition{Position: 1, Name: "email", FieldType: schema.FieldTypeString}
	s.SyncConfig = schema.DefaultSyncConfig()
	s.SyncConfig.ChunkSize = 2
	registry.Register(s)
	require.NoError(t, cat.RegisterTable(ctx, s))

	m := New(cat, store, registry, client)
	return m, s
}

func TestSyncTableUnregisteredErrors(t *testing.T) {
	m, _ := setup(t, &fakeClient{})
	_, err := m.SyncTable(context.Background(), "ghost", "", false, nil)
	require.Error(t, err)
}

func TestSyncTableFullFetchesAllChunks(t *testing.T) {
	client := &fakeClient{pages: [][]jsonsql.Row{
		{jsonsql.Row{jsonsql.Int(1), jsonsql.String("a@x.com")}, jsonsql.Row{jsonsql.Int(2), jsonsql.String("b@x.com")}},
		{jsonsql.Row{jsonsql.Int(3), jsonsql.String("c@x.com")}},
	}}
	m, _ := setup(t, client)

	result, err := m.SyncTable(context.Background(), "users", schema.CacheStrategyFull, true, nil)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, result.Status)
	require.EqualValues(t, 3, result.RowsFetched)
	require.Equal(t, 2, result.ChunksProcessed)

	history, err := m.Catalog.RecentHistory(context.Background(), "users", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "success", history[0].Status)
}

func TestSyncTableSkipsWhenFresh(t *testing.T) {
	client := &fakeClient{pages: [][]jsonsql.Row{{jsonsql.Row{jsonsql.Int(1), jsonsql.String("a@x.com")}}}}
	m, _ := setup(t, client)

	first, err := m.SyncTable(context.Background(), "users", schema.CacheStrategyFull, true, nil)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, first.Status)

	second, err := m.SyncTable(context.Background(), "users", schema.CacheStrategyFull, false, nil)
	require.NoError(t, err)
	require.Equal(t, StatusSkipped, second.Status)
}

func TestSyncIncrementalFallsBackToFullWithoutCheckpoint(t *testing.T) {
	client := &fakeClient{pages: [][]jsonsql.Row{{jsonsql.Row{jsonsql.Int(1), jsonsql.String("a@x.com")}}}}
	m, s := setup(t, client)
	s.SyncConfig.IncrementalField = "id"

	result, err := m.SyncTable(context.Background(), "users", schema.CacheStrategyIncremental, true, nil)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, result.Status)
}

func TestSyncIncrementalRequiresIncrementalField(t *testing.T) {
	client := &fakeClient{}
	m, _ := setup(t, client)

	result, err := m.SyncTable(context.Background(), "users", schema.CacheStrategyIncremental, true, nil)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, result.Status)
	require.NotEmpty(t, result.ErrorMessage)

	meta, err := m.Catalog.GetMetadata(context.Background(), "users")
	require.NoError(t, err)
	require.EqualValues(t, 1, meta.FailedSyncs)
	require.NotNil(t, meta.LastError)
	require.Equal(t, result.ErrorMessage, *meta.LastError)
	require.NotNil(t, meta.LastErrorAt)
}

func TestSyncTableDisabledSkipsWithNoRemoteTraffic(t *testing.T) {
	var calls int32
	client := &fakeClient{onCall: func(jsonsql.Request) { atomic.AddInt32(&calls, 1) }}
	m, s := setup(t, client)
	s.SyncConfig.Disabled = true

	result, err := m.SyncTable(context.Background(), "users", "", true, nil)
	require.NoError(t, err)
	require.Equal(t, StatusSkipped, result.Status)
	require.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

func TestSyncAllIsolatesPerTableFailure(t *testing.T) {
	client := &fakeClient{pages: [][]jsonsql.Row{{jsonsql.Row{jsonsql.Int(1), jsonsql.String("a@x.com")}}}}
	m, _ := setup(t, client)

	// "broken" has a where clause with no wire shape, so its run fails
	// before any request is sent.
	broken := schema.NewTableSchema("broken", 1)
	broken.Fields[0] = &schema.FieldDefinition{Position: 0, Name: "id", FieldType: schema.FieldTypeInteger}
	broken.SyncConfig = schema.DefaultSyncConfig()
	broken.SyncConfig.Where = "id < 0"
	m.Registry.Register(broken)

	results := m.SyncAll(context.Background(), 2, nil)
	require.Contains(t, results, "users")
	require.Equal(t, StatusSuccess, results["users"].Status)
	require.Contains(t, results, "broken")
	require.Equal(t, StatusFailed, results["broken"].Status)
}

func TestGetSyncStatusUnregisteredTable(t *testing.T) {
	m, _ := setup(t, &fakeClient{})
	status, err := m.GetSyncStatus(context.Background(), "ghost")
	require.NoError(t, err)
	require.False(t, status.Registered)
}
