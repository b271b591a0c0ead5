// Package resource governs the memory and search budget of an index.
//
// The Controller manages three resource types:
//
//   - Memory: Track and limit arena and adjacency memory (non-blocking, fail-fast)
//   - Concurrency: Limit the searches a batch runs in parallel
//   - Rate: Throttle batch searches with a token bucket
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory is non-blocking and returns immediately
// with ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(arenaBytes); err != nil {
//	    // ErrMemoryLimitExceeded - the index is not built
//	}
//	defer rc.ReleaseMemory(arenaBytes)
//
// # Search Limits
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrentSearches: 4,
//	    SearchesPerSecond:     1000,
//	})
//
//	if err := rc.AcquireSearch(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseSearch()
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
