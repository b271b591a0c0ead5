package hnsw

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/hupe1980/hnswgo/distance"
	"github.com/hupe1980/hnswgo/internal/graph"
	"github.com/hupe1980/hnswgo/internal/level"
	"github.com/hupe1980/hnswgo/internal/queue"
	"github.com/hupe1980/hnswgo/internal/resource"
	"github.com/hupe1980/hnswgo/internal/space"
	"github.com/hupe1980/hnswgo/internal/visited"
)

const (
	// DefaultM is the default number of connections per node on upper layers.
	DefaultM = 16
	// DefaultEFConstruction is the default candidate list size during insert.
	DefaultEFConstruction = 200
	// DefaultEFSearch is the default candidate list size during queries.
	DefaultEFSearch = 10
	// DefaultRandomSeed seeds the level generator unless overridden.
	DefaultRandomSeed = 42

	minimumM        = 2
	mmax0Multiplier = 2
)

// Options configures an HNSW graph.
type Options struct {
	Dimension      int
	Capacity       int
	M              int
	MaxM0          int
	EFConstruction int
	EFSearch       int
	DistanceType   distance.Metric
	RandomSeed     int64

	// Heuristic selects neighbors with the diversity heuristic. When false
	// the M nearest candidates are kept.
	Heuristic bool

	// KeepPrunedConnections fills heuristic selections up to M with the
	// nearest rejected candidates.
	KeepPrunedConnections bool

	// Resources accounts for arena memory. May be nil.
	Resources *resource.Controller
}

// DefaultOptions contains the default configuration.
var DefaultOptions = Options{
	M:              DefaultM,
	EFConstruction: DefaultEFConstruction,
	EFSearch:       DefaultEFSearch,
	DistanceType:   distance.MetricL2,
	RandomSeed:     DefaultRandomSeed,
	Heuristic:      true,
}

// HNSW is a layered proximity graph over a fixed-capacity point arena.
type HNSW struct {
	mu sync.RWMutex

	opts                   Options
	maxConnectionsPerLayer int
	maxConnectionsLayer0   int
	efSearch               int

	space  *space.Space
	links  *graph.Links
	levels *level.Generator

	entryPoint uint32
	maxLevel   int // -1 while empty

	reserved int64
	closed   bool

	scratchPool sync.Pool
}

// scratch holds the per-call buffers of one traversal.
type scratch struct {
	visited    *visited.VisitedSet
	candidates *queue.PriorityQueue // near heap (frontier)
	results    *queue.PriorityQueue // far heap (W)
	pool       *queue.PriorityQueue // far heap for back-edge repair
	sorted     []queue.Item
	selected   []queue.Item
	neighbors  []queue.Item
	ids        []uint32
	query      []float32
}

// New creates a graph with room for opts.Capacity points.
func New(optFns ...func(o *Options)) (*HNSW, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dimension <= 0 {
		return nil, &ErrInvalidDimension{Dimension: opts.Dimension}
	}
	if opts.Capacity <= 0 || uint64(opts.Capacity) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, opts.Capacity)
	}
	if !opts.DistanceType.Valid() {
		return nil, fmt.Errorf("%w: %d", distance.ErrUnknownMetric, opts.DistanceType)
	}
	if opts.M < minimumM {
		opts.M = minimumM
	}
	if opts.MaxM0 <= 0 {
		opts.MaxM0 = mmax0Multiplier * opts.M
	}
	if opts.EFConstruction <= 0 {
		opts.EFConstruction = DefaultEFConstruction
	}
	if opts.EFSearch <= 0 {
		opts.EFSearch = DefaultEFSearch
	}

	reserve := space.BytesFor(opts.Dimension, opts.Capacity) + graph.BaseBytesFor(opts.Capacity, opts.MaxM0)
	if err := opts.Resources.AcquireMemory(reserve); err != nil {
		return nil, fmt.Errorf("reserve %d bytes: %w", reserve, err)
	}

	sp, err := space.New(opts.Dimension, opts.Capacity, opts.DistanceType)
	if err != nil {
		opts.Resources.ReleaseMemory(reserve)
		return nil, err
	}

	h := &HNSW{
		opts:                   opts,
		maxConnectionsPerLayer: opts.M,
		maxConnectionsLayer0:   opts.MaxM0,
		efSearch:               opts.EFSearch,
		space:                  sp,
		links:                  graph.New(opts.Capacity, opts.M, opts.MaxM0),
		levels:                 level.New(opts.M, opts.RandomSeed),
		maxLevel:               -1,
		reserved:               reserve,
	}
	h.initPools()

	return h, nil
}

func (h *HNSW) initPools() {
	h.scratchPool.New = func() any {
		ef := max(h.opts.EFConstruction, h.opts.EFSearch) + 1
		return &scratch{
			visited:    visited.New(h.opts.Capacity),
			candidates: queue.NewMin(ef),
			results:    queue.NewMax(ef),
			pool:       queue.NewMax(h.maxConnectionsLayer0 + 1),
			sorted:     make([]queue.Item, 0, ef),
			selected:   make([]queue.Item, 0, h.maxConnectionsLayer0),
			neighbors:  make([]queue.Item, 0, h.maxConnectionsLayer0),
			ids:        make([]uint32, 0, h.maxConnectionsLayer0),
		}
	}
}

func (h *HNSW) getScratch() *scratch {
	return h.scratchPool.Get().(*scratch)
}

func (h *HNSW) putScratch(s *scratch) {
	s.visited.Reset()
	s.candidates.Reset()
	s.results.Reset()
	s.pool.Reset()
	h.scratchPool.Put(s)
}

// Close releases the memory reserved with the resource controller. The graph
// rejects further operations.
func (h *HNSW) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	h.opts.Resources.ReleaseMemory(h.reserved)
	h.reserved = 0
	return nil
}

// Insert stores v, links it into the graph and returns its id. Ids are dense
// and assigned in insertion order. Dimension and capacity violations are
// rejected before anything is modified.
func (h *HNSW) Insert(ctx context.Context, v []float32) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, ErrClosed
	}
	if len(v) != h.opts.Dimension {
		return 0, &ErrDimensionMismatch{Expected: h.opts.Dimension, Actual: len(v)}
	}
	if h.space.Len() >= h.space.Cap() {
		return 0, fmt.Errorf("%w: capacity %d", ErrCapacityExceeded, h.space.Cap())
	}

	layer := h.levels.Next()

	upper := graph.UpperBytesFor(layer, h.maxConnectionsPerLayer)
	if err := h.opts.Resources.AcquireMemory(upper); err != nil {
		return 0, fmt.Errorf("reserve %d bytes for level %d: %w", upper, layer, err)
	}
	h.reserved += upper

	id, vec, err := h.space.Push(v)
	if err != nil {
		h.opts.Resources.ReleaseMemory(upper)
		h.reserved -= upper
		return 0, err
	}
	if err := h.links.Init(id, layer); err != nil {
		h.space.Truncate(int(id))
		h.opts.Resources.ReleaseMemory(upper)
		h.reserved -= upper
		return 0, err
	}

	if h.maxLevel < 0 {
		h.entryPoint = id
		h.maxLevel = layer
		return id, nil
	}

	s := h.getScratch()
	defer h.putScratch(s)

	h.insertNode(s, id, vec, layer)

	return id, nil
}

// insertNode links an already stored point into every layer up to layer.
func (h *HNSW) insertNode(s *scratch, id uint32, vec []float32, layer int) {
	ep := h.entryPoint
	epDist := h.space.DistanceTo(vec, ep)
	topLevel := h.maxLevel

	for lc := topLevel; lc > layer; lc-- {
		ep, epDist = h.greedySearch(vec, ep, epDist, lc)
	}

	for lc := min(topLevel, layer); lc >= 0; lc-- {
		h.searchLayer(s, vec, ep, epDist, lc, h.opts.EFConstruction, false)

		selected := h.selectNeighbors(s, s.results, h.links.MaxDegree(lc), id)

		// Keep a private copy: back-edge repair reuses the selection buffers.
		s.neighbors = append(s.neighbors[:0], selected...)
		s.ids = s.ids[:0]
		for _, n := range s.neighbors {
			s.ids = append(s.ids, n.Node)
		}
		h.links.Set(id, lc, s.ids)

		if len(s.neighbors) > 0 {
			ep, epDist = s.neighbors[0].Node, s.neighbors[0].Distance
		}

		for _, n := range s.neighbors {
			h.addConnection(s, n.Node, id, lc, n.Distance)
		}
	}

	if layer > topLevel {
		h.entryPoint = id
		h.maxLevel = layer
	}
}

// addConnection adds the edge source -> target at layer lc. When the list of
// source is full its neighbors are re-selected over the old list plus target.
func (h *HNSW) addConnection(s *scratch, source, target uint32, lc int, dist float32) {
	if h.links.Append(source, lc, target) {
		return
	}

	s.pool.Reset()
	for _, n := range h.links.Neighbors(source, lc) {
		s.pool.PushItem(queue.Item{Node: n, Distance: h.space.Distance(source, n)})
	}
	s.pool.PushItem(queue.Item{Node: target, Distance: dist})

	if !h.opts.Heuristic {
		h.links.FillFrom(source, lc, s.pool)
		return
	}

	selected := h.selectNeighbors(s, s.pool, h.links.MaxDegree(lc), source)
	s.ids = s.ids[:0]
	for _, n := range selected {
		s.ids = append(s.ids, n.Node)
	}
	h.links.Set(source, lc, s.ids)
}

// SetEFSearch sets the candidate list size used by Search.
func (h *HNSW) SetEFSearch(ef int) error {
	if ef <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidEF, ef)
	}
	h.mu.Lock()
	h.efSearch = ef
	h.mu.Unlock()
	return nil
}

// EFSearch returns the candidate list size used by Search.
func (h *HNSW) EFSearch() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.efSearch
}

// Len returns the number of stored points.
func (h *HNSW) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.space.Len()
}

// Cap returns the maximum number of points.
func (h *HNSW) Cap() int { return h.opts.Capacity }

// Dimension returns the vector dimension.
func (h *HNSW) Dimension() int { return h.opts.Dimension }

// Metric returns the distance metric.
func (h *HNSW) Metric() distance.Metric { return h.opts.DistanceType }

// Options returns the effective configuration.
func (h *HNSW) Options() Options { return h.opts }

// EntryPoint returns the entry node and the top layer of the graph. ok is
// false while the graph is empty.
func (h *HNSW) EntryPoint() (id uint32, topLevel int, ok bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.maxLevel < 0 {
		return 0, -1, false
	}
	return h.entryPoint, h.maxLevel, true
}

// Level returns the top layer of id, or -1 for unknown ids.
func (h *HNSW) Level(id uint32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.links.Level(id)
}

// Neighbors returns a copy of the neighbor list of id at layer lc, or nil if
// id does not exist on that layer.
func (h *HNSW) Neighbors(id uint32, lc int) []uint32 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if lc < 0 || h.links.Level(id) < lc {
		return nil
	}
	view := h.links.Neighbors(id, lc)
	out := make([]uint32, len(view))
	copy(out, view)
	return out
}

// Vector returns a copy of the stored point id. Cosine points are returned
// normalized.
func (h *HNSW) Vector(id uint32) ([]float32, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if int(id) >= h.space.Len() {
		return nil, false
	}
	v := h.space.Vector(id)
	out := make([]float32, len(v))
	copy(out, v)
	return out, true
}

// MemoryUsage returns the bytes held by the point arena and adjacency store.
func (h *HNSW) MemoryUsage() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.space.Bytes() + h.links.Bytes()
}
