// Package hnsw implements Hierarchical Navigable Small World graphs.
//
// HNSW provides approximate nearest neighbor search with high recall and
// sub-linear query time. Points are stored in a fixed-capacity arena and
// receive dense uint32 ids in insertion order.
//
// # Parameters
//
//   - M: Max connections per node on upper layers (default: 16)
//   - MaxM0: Max connections per node on layer 0 (default: 2*M)
//   - EFConstruction: Candidate list size while inserting (default: 200)
//   - EFSearch: Candidate list size while querying (default: 10, raised to k)
//
// # Concurrency
//
// Insert takes the write lock; Search, SearchWithEF and the read accessors
// share a read lock. Every search borrows its own scratch from a pool, so
// concurrent searches never share heaps or visited-sets.
//
// # Reference
//
// Malkov & Yashunin, "Efficient and robust approximate nearest neighbor search
// using Hierarchical Navigable Small World graphs", IEEE TPAMI 2018.
package hnsw
