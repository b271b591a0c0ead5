package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for index memory (point arena and
	// adjacency lists). If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentSearches bounds the searches a batch runs at once.
	// If 0, defaults to 1.
	MaxConcurrentSearches int64

	// SearchesPerSecond throttles batch searches. If 0, unlimited.
	SearchesPerSecond float64
}

// Controller manages index resources (memory, search concurrency, search rate).
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	searchSem *semaphore.Weighted

	// Rate
	searchLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentSearches <= 0 {
		cfg.MaxConcurrentSearches = 1
	}

	c := &Controller{
		cfg:       cfg,
		searchSem: semaphore.NewWeighted(cfg.MaxConcurrentSearches),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.SearchesPerSecond > 0 {
		burst := int(cfg.SearchesPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.searchLimiter = rate.NewLimiter(rate.Limit(cfg.SearchesPerSecond), burst)
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// MaxConcurrentSearches returns the search concurrency bound.
func (c *Controller) MaxConcurrentSearches() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxConcurrentSearches)
}

// AcquireSearch waits for the rate limiter and a free search slot.
func (c *Controller) AcquireSearch(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.searchLimiter != nil {
		if err := c.searchLimiter.Wait(ctx); err != nil {
			return err
		}
	}
	return c.searchSem.Acquire(ctx, 1)
}

// TryAcquireSearch attempts to take a search slot and a rate token without
// blocking. On failure neither is held.
func (c *Controller) TryAcquireSearch() bool {
	if c == nil {
		return true
	}
	if !c.searchSem.TryAcquire(1) {
		return false
	}
	if c.searchLimiter != nil && !c.searchLimiter.AllowN(time.Now(), 1) {
		c.searchSem.Release(1)
		return false
	}
	return true
}

// ReleaseSearch releases a search slot.
func (c *Controller) ReleaseSearch() {
	if c == nil {
		return
	}
	c.searchSem.Release(1)
}
