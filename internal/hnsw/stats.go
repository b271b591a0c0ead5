package hnsw

import (
	"fmt"
	"strconv"
)

// Stats returns statistics about the HNSW graph.
func (h *HNSW) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	levels := make([]LevelStats, h.maxLevel+1)
	for lc := range levels {
		levels[lc].Level = lc
	}

	n := h.space.Len()
	for id := uint32(0); int(id) < n; id++ {
		top := h.links.Level(id)
		for lc := 0; lc <= top && lc < len(levels); lc++ {
			levels[lc].Nodes++
			levels[lc].Connections += h.links.Count(id, lc)
		}
	}
	for i := range levels {
		if levels[i].Nodes > 0 {
			levels[i].AvgConnections = float64(levels[i].Connections) / float64(levels[i].Nodes)
		}
	}

	entry := "none"
	if h.maxLevel >= 0 {
		entry = strconv.FormatUint(uint64(h.entryPoint), 10)
	}

	return Stats{
		Options: map[string]string{
			"Type":                  "HNSW",
			"DistanceType":          h.opts.DistanceType.String(),
			"Heuristic":             strconv.FormatBool(h.opts.Heuristic),
			"KeepPrunedConnections": strconv.FormatBool(h.opts.KeepPrunedConnections),
		},
		Parameters: map[string]string{
			"M":              strconv.Itoa(h.maxConnectionsPerLayer),
			"M0":             strconv.Itoa(h.maxConnectionsLayer0),
			"EFConstruction": strconv.Itoa(h.opts.EFConstruction),
			"EFSearch":       strconv.Itoa(h.efSearch),
			"ML":             strconv.FormatFloat(h.levels.ML(), 'f', 4, 64),
		},
		Storage: map[string]string{
			"Nodes":       strconv.Itoa(n),
			"Capacity":    strconv.Itoa(h.opts.Capacity),
			"Dimension":   strconv.Itoa(h.opts.Dimension),
			"MaxLevel":    strconv.Itoa(h.maxLevel),
			"EntryPoint":  entry,
			"MemoryBytes": strconv.FormatInt(h.space.Bytes()+h.links.Bytes(), 10),
		},
		Levels: levels,
	}
}

// Validate checks the structural invariants of the graph and returns the
// first violation found.
func (h *HNSW) Validate() error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := h.space.Len()
	if n == 0 {
		if h.maxLevel >= 0 {
			return fmt.Errorf("empty graph has top level %d", h.maxLevel)
		}
		return nil
	}
	if got := h.links.Level(h.entryPoint); got != h.maxLevel {
		return &ErrInvariant{Node: h.entryPoint, Layer: h.maxLevel, Reason: fmt.Sprintf("entry point has level %d", got)}
	}

	for id := uint32(0); int(id) < n; id++ {
		top := h.links.Level(id)
		if top < 0 {
			return &ErrInvariant{Node: id, Layer: 0, Reason: "node has no level"}
		}
		if top > h.maxLevel {
			return &ErrInvariant{Node: id, Layer: top, Reason: "level above entry point"}
		}
		for lc := 0; lc <= top; lc++ {
			if err := h.validateList(id, lc, n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *HNSW) validateList(id uint32, lc, n int) error {
	list := h.links.Neighbors(id, lc)
	if len(list) > h.links.MaxDegree(lc) {
		return &ErrInvariant{Node: id, Layer: lc, Reason: fmt.Sprintf("degree %d exceeds %d", len(list), h.links.MaxDegree(lc))}
	}
	for i, nb := range list {
		switch {
		case nb == id:
			return &ErrInvariant{Node: id, Layer: lc, Reason: "self-loop"}
		case int(nb) >= n:
			return &ErrInvariant{Node: id, Layer: lc, Reason: fmt.Sprintf("neighbor %d out of range", nb)}
		case h.links.Level(nb) < lc:
			return &ErrInvariant{Node: id, Layer: lc, Reason: fmt.Sprintf("neighbor %d has level %d", nb, h.links.Level(nb))}
		}
		for _, prev := range list[:i] {
			if prev == nb {
				return &ErrInvariant{Node: id, Layer: lc, Reason: fmt.Sprintf("duplicate neighbor %d", nb)}
			}
		}
	}
	return nil
}
