package testutil

import (
	"testing"

	"github.com/hupe1980/hnswgo/distance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.LessOrEqual(t, v[0][0], float32(1.0))
	assert.GreaterOrEqual(t, v[1][0], float32(0.0))
}

func TestUniformRangeVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformRangeVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.LessOrEqual(t, v[0][0], float32(1.0))
	assert.GreaterOrEqual(t, v[1][0], float32(-1.0))
}

func TestUnitVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UnitVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))

	for _, vec := range v {
		assert.InDelta(t, float32(1.0), distance.Dot(vec, vec), 1e-5)
	}
}

func TestClusteredVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.ClusteredVectors(100, 32, 5, 0.1)

	assert.Equal(t, 100, len(v))
	assert.Equal(t, 32, len(v[0]))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.UniformVectors(1, 10)

	rng.Reset()
	v2 := rng.UniformVectors(1, 10)

	assert.Equal(t, v1, v2)
}

func TestExactTopK(t *testing.T) {
	data := [][]float32{{0, 0}, {3, 0}, {1, 0}, {2, 0}}

	got := ExactTopK([]float32{0, 0}, data, 3, distance.SquaredL2)
	require.Len(t, got, 3)
	assert.Equal(t, []uint32{0, 2, 3}, IDs(got))
	assert.Equal(t, []float32{0, 1, 4}, []float32{got[0].Distance, got[1].Distance, got[2].Distance})

	all := ExactTopK([]float32{0, 0}, data, 10, distance.SquaredL2)
	assert.Len(t, all, 4)
}

func TestComputeRecall(t *testing.T) {
	assert.Equal(t, 1.0, ComputeRecall(nil, nil))
	assert.Equal(t, 0.0, ComputeRecall(nil, []uint32{1}))
	assert.Equal(t, 0.5, ComputeRecall([]uint32{1, 2}, []uint32{2, 3}))
	assert.Equal(t, 1.0, ComputeRecall([]uint32{1, 2}, []uint32{2, 1}))
}
