package distance

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// normEpsilon keeps normalization finite for the zero vector.
const normEpsilon = 1e-30

// ErrUnknownMetric is returned for metric kinds this package does not implement.
var ErrUnknownMetric = errors.New("unknown distance metric")

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var ret float32
	for i := range a {
		ret += a[i] * b[i]
	}

	return ret
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// The square root is never taken; the value orders the same way.
func SquaredL2(a, b []float32) float32 {
	var dist float32
	for i := range a {
		d := a[i] - b[i]
		dist += d * d
	}

	return dist
}

// InnerProductDistance returns 1 - dot(a, b).
//
// It is not a metric, but it ranks neighbors consistently. For L2-normalized
// inputs it is the cosine distance.
func InnerProductDistance(a, b []float32) float32 {
	return 1 - Dot(a, b)
}

// NormalizeL2InPlace divides every coordinate of v by ‖v‖₂ + ε.
// A zero vector stays zero.
func NormalizeL2InPlace(v []float32) {
	norm := float32(math.Sqrt(float64(Dot(v, v)))) + normEpsilon
	inv := 1 / norm
	for i := range v {
		v[i] *= inv
	}
}

// NormalizeL2Copy returns a normalized copy of src.
func NormalizeL2Copy(src []float32) []float32 {
	dst := make([]float32, len(src))
	copy(dst, src)
	NormalizeL2InPlace(dst)
	return dst
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	// MetricL2 is the squared Euclidean distance.
	MetricL2 Metric = iota
	// MetricDot is the inner-product distance 1 - <a, b>.
	MetricDot
	// MetricCosine is the inner-product distance on L2-normalized vectors.
	MetricCosine
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricDot:
		return "Dot"
	case MetricCosine:
		return "Cosine"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Valid reports whether m is one of the implemented metrics.
func (m Metric) Valid() bool {
	return m >= MetricL2 && m <= MetricCosine
}

// NeedsNormalization reports whether vectors are L2-normalized before storage.
func (m Metric) NeedsNormalization() bool {
	return m == MetricCosine
}

// ParseMetric maps a metric name to its Metric. Matching is case-insensitive.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l2", "euclidean", "sql2":
		return MetricL2, nil
	case "dot", "ip", "inner_product", "innerproduct":
		return MetricDot, nil
	case "cosine", "angular":
		return MetricCosine, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b []float32) float32

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricL2:
		return SquaredL2, nil
	case MetricCosine, MetricDot:
		return InnerProductDistance, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMetric, m)
	}
}
