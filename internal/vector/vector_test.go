package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine_IdenticalVectors(t *testing.T) {
	v := []float32{0.5, 0.25, 0.8}

	sim, err := Cosine(v, v)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)
}

func TestCosine_OrthogonalVectors(t *testing.T) {
	sim, err := Cosine([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sim, 1e-9)
}

func TestCosine_OppositeVectors(t *testing.T) {
	sim, err := Cosine([]float32{1, 2}, []float32{-1, -2})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, sim, 1e-9)
}

func TestCosine_ScaleInvariant(t *testing.T) {
	a, err := Cosine([]float32{1, 2, 3}, []float32{2, 1, 0})
	require.NoError(t, err)
	b, err := Cosine([]float32{10, 20, 30}, []float32{2, 1, 0})
	require.NoError(t, err)

	assert.InDelta(t, a, b, 1e-9)
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	assert.Error(t, err)
}

func TestCosine_EmptyVectors(t *testing.T) {
	_, err := Cosine(nil, nil)
	assert.Error(t, err)
}

func TestCosine_ZeroMagnitude(t *testing.T) {
	sim, err := Cosine([]float32{0, 0, 0}, []float32{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestMagnitude(t *testing.T) {
	assert.InDelta(t, 5.0, Magnitude([]float32{3, 4}), 1e-9)
	assert.Equal(t, 0.0, Magnitude(nil))
}
