package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Mixed", []float32{1, -1, 2}, []float32{1, 1, -2}, -4},
		{"Empty", []float32{}, []float32{}, 0},
		{"Single", []float32{2}, []float32{3}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dot(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, 1e-5)
		})
	}
}

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 27},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"Mixed", []float32{1, -1}, []float32{-1, 1}, 8},
		{"Empty", []float32{}, []float32{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SquaredL2(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, 1e-5)
		})
	}
}

func TestSquaredL2_SelfIsZero(t *testing.T) {
	v := []float32{0.3, -1.7, 42, 1e-3}
	assert.Equal(t, float32(0), SquaredL2(v, v))
}

func TestInnerProductDistance_NormalizedSelf(t *testing.T) {
	v := []float32{3, 4, 12}
	NormalizeL2InPlace(v)
	assert.InDelta(t, 0, InnerProductDistance(v, v), 1e-6)
}

func TestNormalizeL2InPlace(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2InPlace(v)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	norm := math.Sqrt(float64(Dot(v, v)))
	assert.InDelta(t, 1.0, norm, 1e-6)
}

func TestNormalizeL2InPlace_ZeroVector(t *testing.T) {
	v := []float32{0, 0, 0}
	NormalizeL2InPlace(v)
	for _, x := range v {
		assert.False(t, math.IsNaN(float64(x)))
		assert.Equal(t, float32(0), x)
	}
}

func TestNormalizeL2Copy(t *testing.T) {
	src := []float32{0, 5}
	dst := NormalizeL2Copy(src)
	assert.Equal(t, []float32{0, 5}, src)
	assert.InDelta(t, 1.0, dst[1], 1e-6)
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in   string
		want Metric
	}{
		{"l2", MetricL2},
		{"Euclidean", MetricL2},
		{"dot", MetricDot},
		{"inner_product", MetricDot},
		{"IP", MetricDot},
		{"cosine", MetricCosine},
		{"angular", MetricCosine},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMetric(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseMetric("manhattan")
	require.ErrorIs(t, err, ErrUnknownMetric)
}

func TestProvider(t *testing.T) {
	fn, err := Provider(MetricL2)
	require.NoError(t, err)
	assert.InDelta(t, 27, fn([]float32{1, 2, 3}, []float32{4, 5, 6}), 1e-5)

	fn, err = Provider(MetricDot)
	require.NoError(t, err)
	assert.InDelta(t, 1-32, fn([]float32{1, 2, 3}, []float32{4, 5, 6}), 1e-5)

	_, err = Provider(Metric(99))
	require.ErrorIs(t, err, ErrUnknownMetric)
	assert.Equal(t, "Unknown(99)", Metric(99).String())
	assert.False(t, Metric(99).Valid())
	assert.True(t, MetricCosine.NeedsNormalization())
	assert.False(t, MetricDot.NeedsNormalization())
}
