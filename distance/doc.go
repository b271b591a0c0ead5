// Package distance provides vector distance calculations.
//
// All kernels operate on float32 and sum sequentially, so results are
// deterministic for a given input order.
//
// # Supported Metrics
//
//   - MetricL2: Squared Euclidean distance (default)
//   - MetricDot: Inner-product distance, 1 - <a, b>
//   - MetricCosine: Inner-product distance on L2-normalized vectors
//
// # Usage
//
//	dist := distance.SquaredL2(a, b)
//	sim := distance.Dot(a, b)
//	distance.NormalizeL2InPlace(vec)
package distance
