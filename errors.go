package hnswgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hnswgo/distance"
	"github.com/hupe1980/hnswgo/internal/hnsw"
	"github.com/hupe1980/hnswgo/internal/resource"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidEF is returned when an ef value is not positive.
	ErrInvalidEF = errors.New("ef must be positive")

	// ErrInvalidCapacity is returned by New when the capacity is not positive.
	ErrInvalidCapacity = errors.New("capacity must be positive")

	// ErrCapacityExceeded is returned when inserting into a full index.
	ErrCapacityExceeded = errors.New("index capacity exceeded")

	// ErrEmptyIndex is returned when searching an index without points.
	ErrEmptyIndex = errors.New("index is empty")

	// ErrInsufficientVectors is returned when k exceeds the number of points.
	ErrInsufficientVectors = errors.New("not enough vectors for k")

	// ErrIncompleteResult is returned when the graph yields fewer than k
	// results although enough points are stored.
	ErrIncompleteResult = errors.New("search returned fewer results than requested")

	// ErrUnknownMetric is returned for unsupported distance metrics.
	ErrUnknownMetric = distance.ErrUnknownMetric

	// ErrMemoryLimitExceeded is returned when the memory budget cannot hold
	// the index.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

	// ErrClosed is returned by operations on a closed index.
	ErrClosed = errors.New("index is closed")
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrInvalidDimension indicates an invalid configured dimension.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidDimension struct {
	Dimension int
	cause     error
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

func (e *ErrInvalidDimension) Unwrap() error { return e.cause }

var sentinels = []struct {
	internal error
	public   error
}{
	{hnsw.ErrInvalidK, ErrInvalidK},
	{hnsw.ErrInvalidEF, ErrInvalidEF},
	{hnsw.ErrInvalidCapacity, ErrInvalidCapacity},
	{hnsw.ErrCapacityExceeded, ErrCapacityExceeded},
	{hnsw.ErrEmptyIndex, ErrEmptyIndex},
	{hnsw.ErrInsufficientVectors, ErrInsufficientVectors},
	{hnsw.ErrIncompleteResult, ErrIncompleteResult},
	{hnsw.ErrClosed, ErrClosed},
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *hnsw.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	var id *hnsw.ErrInvalidDimension
	if errors.As(err, &id) {
		return &ErrInvalidDimension{Dimension: id.Dimension, cause: err}
	}

	for _, s := range sentinels {
		if errors.Is(err, s.internal) {
			return fmt.Errorf("%w: %w", s.public, err)
		}
	}

	return err
}
