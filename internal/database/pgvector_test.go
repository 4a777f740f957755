package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgVector_String(t *testing.T) {
	v := NewPgVector([]float64{1, 2.5, -3})
	assert.Equal(t, "[1,2.5,-3]", v.String())

	empty := NewPgVector(nil)
	assert.Equal(t, "[]", empty.String())
}

func TestPgVector_Scan(t *testing.T) {
	var v PgVector
	require.NoError(t, v.Scan("[1.0, 2.5, -3]"))
	assert.Equal(t, []float64{1, 2.5, -3}, v.Floats())
	assert.Equal(t, 3, v.Dimension())
}

func TestPgVector_ScanBytes(t *testing.T) {
	var v PgVector
	require.NoError(t, v.Scan([]byte("[0.1,0.2]")))
	assert.Equal(t, []float64{0.1, 0.2}, v.Floats())
}

func TestPgVector_ScanEmpty(t *testing.T) {
	var v PgVector
	require.NoError(t, v.Scan("[]"))
	assert.Empty(t, v.Floats())
	assert.Equal(t, 0, v.Dimension())
}

func TestPgVector_ScanNil(t *testing.T) {
	var v PgVector
	require.NoError(t, v.Scan(nil))
	assert.Nil(t, v.Floats())
}

func TestPgVector_ScanInvalid(t *testing.T) {
	var v PgVector
	assert.Error(t, v.Scan("[1,abc]"))
	assert.Error(t, v.Scan(42))
}

func TestPgVector_RoundTrip(t *testing.T) {
	original := NewPgVector([]float64{0.123456789, -42.5, 0})

	value, err := original.Value()
	require.NoError(t, err)

	var scanned PgVector
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, original.Floats(), scanned.Floats())
}

func TestPgVector_CopiesInput(t *testing.T) {
	source := []float64{1, 2}
	v := NewPgVector(source)

	source[0] = 99
	assert.Equal(t, []float64{1, 2}, v.Floats())
}
