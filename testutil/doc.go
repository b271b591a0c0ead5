// Package testutil provides testing utilities for hnswgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random vectors, computing exact
// nearest neighbors, and verifying search recall.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	data := rng.UniformVectors(1000, 32) // uniform [0, 1)
//	unit := rng.UnitVectors(1000, 32)    // on the unit sphere
//
// # Exact Search (Ground Truth)
//
//	truth := testutil.ExactTopK(query, data, k, distance.SquaredL2)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(testutil.IDs(truth), approxIDs)
package testutil
