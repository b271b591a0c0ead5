// Package eval measures search quality against exact ground truth.
package eval

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

var (
	// ErrBatchMismatch is returned when the ground truth and the tested
	// results cover a different number of queries.
	ErrBatchMismatch = errors.New("eval: batch length mismatch")
	// ErrInvalidK is returned by RecallAtK for k < 1.
	ErrInvalidK = errors.New("eval: k must be positive")
)

// Recall returns the fraction of tested ids, over all queries, that appear
// in the ground-truth set of their query. A batch with no tested ids has
// recall 1.
func Recall(correct, tested [][]uint32) (float64, error) {
	if len(correct) != len(tested) {
		return 0, fmt.Errorf("%w: %d ground truth, %d tested", ErrBatchMismatch, len(correct), len(tested))
	}

	var hits, total int
	truth := roaring.New()
	for i := range tested {
		truth.Clear()
		truth.AddMany(correct[i])
		for _, id := range tested[i] {
			if truth.Contains(id) {
				hits++
			}
		}
		total += len(tested[i])
	}

	if total == 0 {
		return 1, nil
	}
	return float64(hits) / float64(total), nil
}

// RecallAtK is Recall with every ground-truth and tested list truncated to
// its first k ids.
func RecallAtK(correct, tested [][]uint32, k int) (float64, error) {
	if k < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	return Recall(truncate(correct, k), truncate(tested, k))
}

// PerQuery returns the recall of every query individually.
func PerQuery(correct, tested [][]uint32) ([]float64, error) {
	if len(correct) != len(tested) {
		return nil, fmt.Errorf("%w: %d ground truth, %d tested", ErrBatchMismatch, len(correct), len(tested))
	}

	out := make([]float64, len(tested))
	for i := range tested {
		r, err := Recall(correct[i:i+1], tested[i:i+1])
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func truncate(lists [][]uint32, k int) [][]uint32 {
	out := make([][]uint32, len(lists))
	for i, l := range lists {
		out[i] = l[:min(k, len(l))]
	}
	return out
}
