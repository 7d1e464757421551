package datastore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"jsonsqlmirror/internal/schema"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func usersSchema() *schema.TableSchema {
	s := schema.NewTableSchema("users", 3)
	s.Fields[0] = &schema.FieldDefinition{Position: 0, Name: "id", FieldType: schema.FieldTypeInteger}
	s.Fields[1] = &schema.FieldDefinition{Position: 1, Name: "email", FieldType: schema.FieldTypeString}
	s.Fields[2] = &schema.FieldDefinition{Position: 2, Name: "updated_at", FieldType: schema.FieldTypeDateTime}
	s.SyncConfig = schema.DefaultSyncConfig()
	s.SyncConfig.IncrementalField = "updated_at"
	return s
}

func TestCreateTableThenBulkInsert(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	sc := usersSchema()
	require.NoError(t, store.CreateTable(ctx, sc))

	rows := [][]any{
		{int64(1), "a@x.com", "2024-01-01T00:00:00Z"},
		{int64(2), "b@x.com", "2024-01-02T00:00:00Z"},
	}
	n, err := store.BulkInsert(ctx, sc, rows, ConflictFail)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	results, err := store.ExecuteQuery(ctx, "users", "SELECT COUNT(*) as c FROM users")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.EqualValues(t, 2, results[0]["c"])
}

func TestBulkInsertConflictReplaceOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	sc := usersSchema()
	require.NoError(t, store.CreateTable(ctx, sc))

	_, err := store.BulkInsert(ctx, sc, [][]any{{int64(1), "a@x.com", "2024-01-01T00:00:00Z"}}, ConflictFail)
	require.NoError(t, err)
	_, err = store.BulkInsert(ctx, sc, [][]any{{int64(1), "new@x.com", "2024-02-01T00:00:00Z"}}, ConflictReplace)
	require.NoError(t, err)

	results, err := store.ExecuteQuery(ctx, "users", "SELECT email FROM users WHERE id = 1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "new@x.com", results[0]["email"])
}

func TestUpsertRowsInsertsThenUpdates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	sc := usersSchema()
	require.NoError(t, store.CreateTable(ctx, sc))

	inserted, updated, err := store.UpsertRows(ctx, sc, [][]any{{int64(1), "a@x.com", "2024-01-01T00:00:00Z"}})
	require.NoError(t, err)
	require.Equal(t, 1, inserted)
	require.Equal(t, 0, updated)

	inserted, updated, err = store.UpsertRows(ctx, sc, [][]any{{int64(1), "changed@x.com", "2024-03-01T00:00:00Z"}})
	require.NoError(t, err)
	require.Equal(t, 0, inserted)
	require.Equal(t, 1, updated)

	results, err := store.ExecuteQuery(ctx, "users", "SELECT email FROM users WHERE id = 1")
	require.NoError(t, err)
	require.Equal(t, "changed@x.com", results[0]["email"])
}

func TestUpsertRowsRequiresIDField(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	sc := schema.NewTableSchema("noids", 1)
	sc.Fields[0] = &schema.FieldDefinition{Position: 0, Name: "name", FieldType: schema.FieldTypeString}
	sc.SyncConfig = schema.DefaultSyncConfig()
	require.NoError(t, store.CreateTable(ctx, sc))

	_, _, err := store.UpsertRows(ctx, sc, [][]any{{"x"}})
	require.Error(t, err)
}

func TestClearTableReturnsPriorCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	sc := usersSchema()
	require.NoError(t, store.CreateTable(ctx, sc))
	_, err := store.BulkInsert(ctx, sc, [][]any{{int64(1), "a@x.com", "2024-01-01T00:00:00Z"}}, ConflictFail)
	require.NoError(t, err)

	count, err := store.ClearTable(ctx, "users")
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestExecuteQueryUnknownTableErrors(t *testing.T) {
	store := openTestStore(t)
	_, err := store.ExecuteQuery(context.Background(), "ghost", "SELECT 1")
	require.Error(t, err)
}
