package hnsw

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hnswgo/internal/space"
)

var (
	ErrInvalidK            = errors.New("k must be positive")
	ErrInvalidEF           = errors.New("ef must be positive")
	ErrEmptyIndex          = errors.New("index is empty")
	ErrInsufficientVectors = errors.New("not enough vectors for operation")
	ErrIncompleteResult    = errors.New("search returned fewer results than requested")
	ErrClosed              = errors.New("index is closed")

	ErrCapacityExceeded = space.ErrCapacityExceeded
	ErrInvalidCapacity  = space.ErrInvalidCapacity
)

type (
	ErrDimensionMismatch = space.ErrDimensionMismatch
	ErrInvalidDimension  = space.ErrInvalidDimension
)

// ErrInvariant describes a structural violation found by Validate.
type ErrInvariant struct {
	Node   uint32
	Layer  int
	Reason string
}

func (e *ErrInvariant) Error() string {
	return fmt.Sprintf("node %d layer %d: %s", e.Node, e.Layer, e.Reason)
}

type SearchResult struct {
	ID       uint32
	Distance float32
}

type Stats struct {
	Options    map[string]string
	Parameters map[string]string
	Storage    map[string]string
	Levels     []LevelStats
}

type LevelStats struct {
	Level          int
	Nodes          int
	Connections    int
	AvgConnections float64
}
