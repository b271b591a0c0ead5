package hnswgo_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/hnswgo"
)

func Example() {
	ctx := context.Background()

	idx, err := hnswgo.New(2,
		hnswgo.WithCapacity(100),
		hnswgo.WithEFSearch(32),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer idx.Close()

	for _, v := range [][]float32{{0, 0}, {1, 0}, {0, 2}, {3, 3}} {
		if _, err := idx.Insert(ctx, v); err != nil {
			log.Fatal(err)
		}
	}

	results, err := idx.Search(ctx, []float32{0.9, 0.1}, 2)
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range results {
		fmt.Printf("%d %.2f\n", r.ID, r.Distance)
	}
	// Output:
	// 1 0.02
	// 0 0.82
}
