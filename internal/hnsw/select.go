package hnsw

import "github.com/hupe1980/hnswgo/internal/queue"

// selectNeighbors drains the far heap candidates and returns at most m of
// them, nearest first, never including self. The result aliases
// scratch buffers and is valid until the next call.
func (h *HNSW) selectNeighbors(s *scratch, candidates *queue.PriorityQueue, m int, self uint32) []queue.Item {
	s.sorted = candidates.DrainSorted(s.sorted[:0])

	if !h.opts.Heuristic || len(s.sorted) < m {
		return h.selectNeighborsSimple(s, m, self)
	}
	return h.selectNeighborsHeuristic(s, m, self)
}

// selectNeighborsSimple keeps the m nearest candidates.
func (h *HNSW) selectNeighborsSimple(s *scratch, m int, self uint32) []queue.Item {
	result := s.selected[:0]
	for _, c := range s.sorted {
		if len(result) >= m {
			break
		}
		if c.Node == self || containsNode(result, c.Node) {
			continue
		}
		result = append(result, c)
	}
	s.selected = result
	return result
}

// selectNeighborsHeuristic keeps a candidate only if it is closer to the base
// point than to every neighbor already kept. This favors neighbors in
// different directions over a tight cluster.
func (h *HNSW) selectNeighborsHeuristic(s *scratch, m int, self uint32) []queue.Item {
	result := s.selected[:0]

	for _, c := range s.sorted {
		if len(result) >= m {
			break
		}
		if c.Node == self || containsNode(result, c.Node) {
			continue
		}

		good := true
		for _, r := range result {
			if h.space.Distance(c.Node, r.Node) < c.Distance {
				good = false
				break
			}
		}
		if good {
			result = append(result, c)
		}
	}

	if h.opts.KeepPrunedConnections {
		result = fillUpNeighbors(result, s.sorted, m, self)
	}

	s.selected = result
	return result
}

// fillUpNeighbors tops result up to m with the nearest candidates that the
// heuristic rejected.
func fillUpNeighbors(result, candidates []queue.Item, m int, self uint32) []queue.Item {
	for _, c := range candidates {
		if len(result) >= m {
			break
		}
		if c.Node == self || containsNode(result, c.Node) {
			continue
		}
		result = append(result, c)
	}
	return result
}

func containsNode(items []queue.Item, id uint32) bool {
	for _, it := range items {
		if it.Node == id {
			return true
		}
	}
	return false
}
