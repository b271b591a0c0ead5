package benchmark_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/hnswgo"
	"github.com/hupe1980/hnswgo/distance"
	"github.com/hupe1980/hnswgo/eval"
	"github.com/hupe1980/hnswgo/testutil"
)

func formatDim(dim int) string {
	return fmt.Sprintf("dim=%d", dim)
}

func formatCount(n int) string {
	switch {
	case n >= 1_000_000 && n%1_000_000 == 0:
		return fmt.Sprintf("%dM", n/1_000_000)
	case n >= 1000 && n%1000 == 0:
		return fmt.Sprintf("%dK", n/1000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// setupIndex builds an L2 index over size uniform vectors drawn from rng.
func setupIndex(b *testing.B, dim, size int, rng *testutil.RNG, opts ...hnswgo.Option) (*hnswgo.Index, [][]float32) {
	b.Helper()

	opts = append([]hnswgo.Option{hnswgo.WithCapacity(size)}, opts...)
	idx, err := hnswgo.New(dim, opts...)
	if err != nil {
		b.Fatal(err)
	}

	vectors := rng.UniformVectors(size, dim)
	res := idx.BatchInsert(context.Background(), vectors)
	if res.Failed() > 0 {
		b.Fatalf("%d inserts failed", res.Failed())
	}
	return idx, vectors
}

// measureRecall runs every query once and returns recall@k against exact
// L2 search.
func measureRecall(b *testing.B, idx *hnswgo.Index, vectors, queries [][]float32, k int) float64 {
	b.Helper()

	ctx := context.Background()
	truth := make([][]uint32, len(queries))
	tested := make([][]uint32, len(queries))
	for i, q := range queries {
		truth[i] = testutil.IDs(testutil.ExactTopK(q, vectors, k, distance.SquaredL2))
		res, err := idx.Search(ctx, q, k)
		if err != nil {
			b.Fatal(err)
		}
		for _, r := range res {
			tested[i] = append(tested[i], r.ID)
		}
	}

	recall, err := eval.RecallAtK(truth, tested, k)
	if err != nil {
		b.Fatal(err)
	}
	return recall
}
