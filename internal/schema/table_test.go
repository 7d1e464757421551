package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonsqlmirror/internal/jsonsql"
)

func TestResolveSelectStarSentinel(t *testing.T) {
	s := NewTableSchema("users", 0)
	assert.Equal(t, []string{"*"}, s.ResolveSelectStar(false))
}

func TestResolveSelectStarSyntheticAndConfigured(t *testing.T) {
	s := NewTableSchema("users", 3)
	s.Fields[0] = &FieldDefinition{Position: 0, Name: "id", FieldType: FieldTypeInteger}
	names := s.ResolveSelectStar(false)
	require.Len(t, names, 3)
	assert.Equal(t, "id", names[0])
	assert.Equal(t, "Field_1", names[1])
	assert.Equal(t, "Field_2", names[2])
}

func TestResolveSelectStarDedupesCollisions(t *testing.T) {
	s := NewTableSchema("users", 2)
	s.Fields[0] = &FieldDefinition{Position: 0, Name: "dup"}
	s.Fields[1] = &FieldDefinition{Position: 1, Name: "dup"}
	names := s.ResolveSelectStar(false)
	assert.NotEqual(t, names[0], names[1])
}

func TestMapRowAppliesTransformerAndSwallowsFailure(t *testing.T) {
	s := NewTableSchema("users", 2)
	s.Fields[0] = &FieldDefinition{Position: 0, Name: "id"}
	s.Fields[1] = &FieldDefinition{
		Position: 1, Name: "flag",
		Transformer: func(v any) any { panic("boom") },
	}
	row := jsonsql.Row{jsonsql.Int(1), jsonsql.Bool(true)}
	out := s.MapRow(row)
	assert.Equal(t, int64(1), out["id"])
	assert.Equal(t, true, out["flag"]) // transformer panicked, raw value kept
}

func TestMappedNamePrecedence(t *testing.T) {
	f := &FieldDefinition{Name: "n", Alias: "a", PythonName: "p"}
	assert.Equal(t, "p", f.MappedName())
	f.PythonName = ""
	assert.Equal(t, "a", f.MappedName())
	f.Alias = ""
	assert.Equal(t, "n", f.MappedName())
}

func TestFieldByNameMatchesAnyAlias(t *testing.T) {
	s := NewTableSchema("users", 1)
	s.Fields[0] = &FieldDefinition{Position: 0, Name: "n", Alias: "a", PythonName: "p"}
	assert.NotNil(t, s.FieldByName("n"))
	assert.NotNil(t, s.FieldByName("a"))
	assert.NotNil(t, s.FieldByName("p"))
	assert.Nil(t, s.FieldByName("missing"))
}

func TestHashIsOrderIndependent(t *testing.T) {
	a := NewTableSchema("users", 2)
	a.Fields[0] = &FieldDefinition{Position: 0, Name: "id", FieldType: FieldTypeInteger}
	a.Fields[1] = &FieldDefinition{Position: 1, Name: "email", FieldType: FieldTypeString}
	a.SyncConfig = DefaultSyncConfig()

	b := NewTableSchema("users", 2)
	b.Fields[1] = &FieldDefinition{Position: 1, Name: "email", FieldType: FieldTypeString}
	b.Fields[0] = &FieldDefinition{Position: 0, Name: "id", FieldType: FieldTypeInteger}
	b.SyncConfig = DefaultSyncConfig()

	assert.Equal(t, a.Hash(), b.Hash())
}

func TestHashChangesWithContent(t *testing.T) {
	a := NewTableSchema("users", 1)
	a.Fields[0] = &FieldDefinition{Position: 0, Name: "id", FieldType: FieldTypeInteger}

	b := NewTableSchema("users", 1)
	b.Fields[0] = &FieldDefinition{Position: 0, Name: "id", FieldType: FieldTypeString}

	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestIDFieldCaseInsensitive(t *testing.T) {
	s := NewTableSchema("users", 1)
	s.Fields[0] = &FieldDefinition{Position: 0, Name: "ID"}
	require.NotNil(t, s.IDField())
	assert.Equal(t, 0, s.IDField().Position)
}
