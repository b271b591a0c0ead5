package hnsw

import (
	"context"
	"fmt"

	"github.com/hupe1980/hnswgo/internal/queue"
)

// Search returns the k approximate nearest neighbors of q in ascending
// distance order, using the configured efSearch.
func (h *HNSW) Search(ctx context.Context, q []float32, k int) ([]SearchResult, error) {
	return h.search(ctx, q, k, 0)
}

// SearchWithEF is like Search but overrides efSearch for this call.
func (h *HNSW) SearchWithEF(ctx context.Context, q []float32, k, ef int) ([]SearchResult, error) {
	if ef <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidEF, ef)
	}
	return h.search(ctx, q, k, ef)
}

func (h *HNSW) search(ctx context.Context, q []float32, k, ef int) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil, ErrClosed
	}
	if h.maxLevel < 0 {
		return nil, ErrEmptyIndex
	}
	if n := h.space.Len(); k > n {
		return nil, fmt.Errorf("%w: k=%d, have %d", ErrInsufficientVectors, k, n)
	}

	s := h.getScratch()
	defer h.putScratch(s)

	query, err := h.space.PrepareQuery(s.query, q)
	if err != nil {
		return nil, err
	}
	if h.space.Metric().NeedsNormalization() {
		s.query = query
	}

	ep := h.entryPoint
	epDist := h.space.DistanceTo(query, ep)
	for lc := h.maxLevel; lc > 0; lc-- {
		ep, epDist = h.greedySearch(query, ep, epDist, lc)
	}

	if ef == 0 {
		ef = h.efSearch
	}
	ef = max(ef, k)

	h.searchLayer(s, query, ep, epDist, 0, ef, true)

	for s.results.Len() > k {
		s.results.PopItem()
	}
	if s.results.Len() < k {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrIncompleteResult, k, s.results.Len())
	}

	// The far heap pops farthest first; fill from the back.
	out := make([]SearchResult, k)
	for i := k - 1; i >= 0; i-- {
		item, _ := s.results.PopItem()
		out[i] = SearchResult{ID: item.Node, Distance: item.Distance}
	}

	return out, nil
}

// greedySearch walks layer lc from ep, moving to any strictly closer
// neighbor until no neighbor improves on the current node.
func (h *HNSW) greedySearch(q []float32, ep uint32, epDist float32, lc int) (uint32, float32) {
	for changed := true; changed; {
		changed = false
		for _, n := range h.links.Neighbors(ep, lc) {
			if d := h.space.DistanceTo(q, n); d < epDist {
				ep, epDist = n, d
				changed = true
			}
		}
	}
	return ep, epDist
}

// searchLayer runs the best-first search of layer lc from ep and leaves the
// ef nearest nodes found in s.results.
//
// The loop stops when the nearest unexpanded candidate is strictly farther
// than the worst retained result. While searching that check always applies;
// during construction it only applies once ef results are held.
func (h *HNSW) searchLayer(s *scratch, q []float32, ep uint32, epDist float32, lc, ef int, searching bool) {
	s.visited.Prepare(h.space.Len(), ep)

	candidates := s.candidates
	results := s.results
	candidates.Reset()
	results.Reset()
	candidates.Reserve(ef + 1)
	results.Reserve(ef + 1)

	entry := queue.Item{Node: ep, Distance: epDist}
	candidates.PushItem(entry)
	results.PushItem(entry)

	for candidates.Len() > 0 {
		c, _ := candidates.PopItem()
		worst, _ := results.TopItem()
		if c.Distance > worst.Distance && (searching || results.Len() >= ef) {
			break
		}

		for _, n := range h.links.Neighbors(c.Node, lc) {
			if !s.visited.Insert(n) {
				continue
			}

			d := h.space.DistanceTo(q, n)
			worst, _ = results.TopItem()
			if results.Len() < ef || d < worst.Distance {
				item := queue.Item{Node: n, Distance: d}
				candidates.PushItem(item)
				results.PushItemBounded(item, ef)
			}
		}
	}
}
