package wheresql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEquality(t *testing.T) {
	w, err := Parse("status = 'active'")
	require.NoError(t, err)
	require.NotNil(t, w.Eq)
	assert.Equal(t, "status", w.Eq.Column)
	assert.Equal(t, "active", w.Eq.Value)
}

func TestParseLike(t *testing.T) {
	w, err := Parse("name LIKE '%smith%'")
	require.NoError(t, err)
	require.NotNil(t, w.Like)
	assert.Equal(t, "name", w.Like.Column)
	assert.Equal(t, "%smith%", w.Like.Value)
}

func TestParseGreaterThan(t *testing.T) {
	w, err := Parse("age > 18")
	require.NoError(t, err)
	require.NotNil(t, w.Gt)
	assert.Equal(t, "age", w.Gt.Column)
}

func TestParseAndChain(t *testing.T) {
	w, err := Parse("status = 'active' AND age > 18")
	require.NoError(t, err)
	require.Len(t, w.And, 2)
	assert.NotNil(t, w.And[0].Eq)
	assert.NotNil(t, w.And[1].Gt)
}

func TestParseEmptyIsNoCondition(t *testing.T) {
	w, err := Parse("")
	require.NoError(t, err)
	assert.Nil(t, w.Eq)
	assert.Nil(t, w.And)
}

func TestParseUnsupportedShapeErrors(t *testing.T) {
	_, err := Parse("age < 18")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedShape)
}

func TestParseIsNull(t *testing.T) {
	w, err := Parse("deleted_at IS NULL")
	require.NoError(t, err)
	require.NotNil(t, w.IsNull)
	assert.Equal(t, "deleted_at", *w.IsNull)
}

func TestParseIsNotNullUnsupported(t *testing.T) {
	_, err := Parse("deleted_at IS NOT NULL")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedShape)
}

func TestParseIsNullInAndChain(t *testing.T) {
	w, err := Parse("deleted_at IS NULL AND status = 'active'")
	require.NoError(t, err)
	require.Len(t, w.And, 2)
	assert.NotNil(t, w.And[0].IsNull)
	assert.NotNil(t, w.And[1].Eq)
}

func TestParseColumnLiteralEitherOrder(t *testing.T) {
	w, err := Parse("'active' = status")
	require.NoError(t, err)
	require.NotNil(t, w.Eq)
	assert.Equal(t, "status", w.Eq.Column)

	// `18 > age` means age < 18, which has no wire shape.
	_, err = Parse("18 > age")
	assert.ErrorIs(t, err, ErrUnsupportedShape)
}
