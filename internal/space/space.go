// Package space owns point storage for the graph: one contiguous float32
// arena addressed by dense ids, plus the configured metric.
package space

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hnswgo/distance"
)

var (
	// ErrCapacityExceeded is returned by Push when every slot is used.
	ErrCapacityExceeded = errors.New("space: capacity exceeded")
	// ErrInvalidCapacity is returned by New for a non-positive capacity.
	ErrInvalidCapacity = errors.New("space: capacity must be positive")
)

// ErrDimensionMismatch reports a vector whose length differs from the space.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidDimension reports a non-positive dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

// Space stores up to capacity points of a fixed dimension.
//
// Space is not safe for concurrent mutation; concurrent reads of stored
// points are safe once Push has returned.
type Space struct {
	dim      int
	capacity int
	count    int
	data     []float32
	metric   distance.Metric
	distFunc distance.Func
}

// New allocates the arena for capacity points of dimension dim.
func New(dim, capacity int, metric distance.Metric) (*Space, error) {
	if dim <= 0 {
		return nil, &ErrInvalidDimension{Dimension: dim}
	}
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	fn, err := distance.Provider(metric)
	if err != nil {
		return nil, err
	}
	return &Space{
		dim:      dim,
		capacity: capacity,
		data:     make([]float32, dim*capacity),
		metric:   metric,
		distFunc: fn,
	}, nil
}

// BytesFor returns the arena size New allocates for the given shape.
func BytesFor(dim, capacity int) int64 {
	return int64(dim) * int64(capacity) * 4
}

// Push copies v into the next free slot, normalizing it first for the cosine
// metric, and returns the assigned id with a view of the stored coordinates.
// Nothing is written when an error is returned.
func (s *Space) Push(v []float32) (uint32, []float32, error) {
	if len(v) != s.dim {
		return 0, nil, &ErrDimensionMismatch{Expected: s.dim, Actual: len(v)}
	}
	if s.count >= s.capacity {
		return 0, nil, ErrCapacityExceeded
	}

	id := s.count
	dst := s.data[id*s.dim : (id+1)*s.dim : (id+1)*s.dim]
	copy(dst, v)
	if s.metric.NeedsNormalization() {
		distance.NormalizeL2InPlace(dst)
	}
	s.count++

	return uint32(id), dst, nil
}

// Truncate drops every point with id >= n. The freed slots are zeroed and
// reused by the next Push.
func (s *Space) Truncate(n int) {
	if n < 0 || n >= s.count {
		return
	}
	clear(s.data[n*s.dim : s.count*s.dim])
	s.count = n
}

// Vector returns a read-only view of the stored point id.
func (s *Space) Vector(id uint32) []float32 {
	i := int(id)
	return s.data[i*s.dim : (i+1)*s.dim : (i+1)*s.dim]
}

// Distance returns the distance between two stored points.
func (s *Space) Distance(a, b uint32) float32 {
	return s.distFunc(s.Vector(a), s.Vector(b))
}

// DistanceTo returns the distance between a prepared query and a stored point.
func (s *Space) DistanceTo(q []float32, id uint32) float32 {
	return s.distFunc(q, s.Vector(id))
}

// PrepareQuery validates q and returns the vector to search with. For the
// cosine metric the query is normalized into dst (reallocated if too small);
// otherwise q is returned as is.
func (s *Space) PrepareQuery(dst, q []float32) ([]float32, error) {
	if len(q) != s.dim {
		return nil, &ErrDimensionMismatch{Expected: s.dim, Actual: len(q)}
	}
	if !s.metric.NeedsNormalization() {
		return q, nil
	}
	if cap(dst) < s.dim {
		dst = make([]float32, s.dim)
	}
	dst = dst[:s.dim]
	copy(dst, q)
	distance.NormalizeL2InPlace(dst)
	return dst, nil
}

// Len returns the number of stored points.
func (s *Space) Len() int { return s.count }

// Cap returns the maximum number of points.
func (s *Space) Cap() int { return s.capacity }

// Dim returns the vector dimension.
func (s *Space) Dim() int { return s.dim }

// Metric returns the configured metric.
func (s *Space) Metric() distance.Metric { return s.metric }

// Bytes returns the size of the point arena.
func (s *Space) Bytes() int64 { return BytesFor(s.dim, s.capacity) }
