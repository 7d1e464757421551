package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterGetHas(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Has("users"))

	r.Register(NewTableSchema("users", 1))
	assert.True(t, r.Has("users"))
	require.NotNil(t, r.Get("users"))
	assert.Equal(t, "users", r.Get("users").TableName)
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register(NewTableSchema("users", 1))
	r.Unregister("users")
	assert.False(t, r.Has("users"))
}

func TestRegistryListTablesAndSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Register(NewTableSchema("a", 1))
	r.Register(NewTableSchema("b", 1))

	assert.ElementsMatch(t, []string{"a", "b"}, r.ListTables())

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	snap["c"] = NewTableSchema("c", 1)
	assert.False(t, r.Has("c"))
}
