// Package graph stores the bounded per-node, per-layer neighbor lists of a
// layered proximity graph.
//
// Every list is a run of uint32 slots: slot 0 holds the live count and the
// remaining slots hold neighbor ids. The base layer of every node lives in
// one flat array sized at construction. Upper layers of a node are reserved
// on demand as one contiguous run in a shared arena, so nodes never own
// individual heap allocations.
package graph

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hnswgo/internal/queue"
)

var (
	// ErrNodeOutOfRange is returned for ids at or beyond the capacity.
	ErrNodeOutOfRange = errors.New("graph: node id out of range")
	// ErrNodeExists is returned when Init is called twice for the same id.
	ErrNodeExists = errors.New("graph: node already initialized")
)

const uninitialized = -1

// Links is the adjacency store.
//
// Views returned by Neighbors stay valid until the next Init, which may move
// the upper-layer arena. Links is not safe for concurrent mutation.
type Links struct {
	mMax     int
	mMax0    int
	capacity int
	count    int

	base    []uint32
	upper   []uint32
	offsets []int
	levels  []int32
}

// New allocates the base layer for capacity nodes.
func New(capacity, mMax, mMax0 int) *Links {
	levels := make([]int32, capacity)
	for i := range levels {
		levels[i] = uninitialized
	}
	return &Links{
		mMax:     mMax,
		mMax0:    mMax0,
		capacity: capacity,
		base:     make([]uint32, capacity*(mMax0+1)),
		offsets:  make([]int, capacity),
		levels:   levels,
	}
}

// BaseBytesFor returns the bytes New allocates up front.
func BaseBytesFor(capacity, mMax0 int) int64 {
	// base slots + offsets (8) + levels (4) per node
	return int64(capacity)*int64(mMax0+1)*4 + int64(capacity)*12
}

// UpperBytesFor returns the arena bytes reserved by Init for a node of level.
func UpperBytesFor(level, mMax int) int64 {
	if level <= 0 {
		return 0
	}
	return int64(level) * int64(mMax+1) * 4
}

// Init records the level of node id and reserves its upper layers.
func (l *Links) Init(id uint32, level int) error {
	if int(id) >= l.capacity {
		return fmt.Errorf("%w: %d >= %d", ErrNodeOutOfRange, id, l.capacity)
	}
	if l.levels[id] != uninitialized {
		return fmt.Errorf("%w: %d", ErrNodeExists, id)
	}
	if level > 0 {
		l.offsets[id] = len(l.upper)
		l.upper = append(l.upper, make([]uint32, level*(l.mMax+1))...)
	}
	l.levels[id] = int32(level)
	l.count++
	return nil
}

// Len returns the number of initialized nodes.
func (l *Links) Len() int { return l.count }

// Level returns the top layer of id, or -1 if id was never initialized.
func (l *Links) Level(id uint32) int {
	if int(id) >= l.capacity {
		return uninitialized
	}
	return int(l.levels[id])
}

// MaxDegree returns the list capacity of layer lc.
func (l *Links) MaxDegree(lc int) int {
	if lc == 0 {
		return l.mMax0
	}
	return l.mMax
}

// list returns the full slot run (count + ids) of (id, lc).
func (l *Links) list(id uint32, lc int) []uint32 {
	if lc == 0 {
		start := int(id) * (l.mMax0 + 1)
		return l.base[start : start+l.mMax0+1 : start+l.mMax0+1]
	}
	start := l.offsets[id] + (lc-1)*(l.mMax+1)
	return l.upper[start : start+l.mMax+1 : start+l.mMax+1]
}

// Neighbors returns the live neighbor ids of id at layer lc.
// The returned slice aliases the store; callers must not append to it.
func (l *Links) Neighbors(id uint32, lc int) []uint32 {
	s := l.list(id, lc)
	return s[1 : 1+s[0] : 1+s[0]]
}

// Count returns the number of live neighbors of id at layer lc.
func (l *Links) Count(id uint32, lc int) int {
	return int(l.list(id, lc)[0])
}

// Append adds n to the list of id at layer lc. It reports false, leaving the
// list untouched, when the list is full.
func (l *Links) Append(id uint32, lc int, n uint32) bool {
	s := l.list(id, lc)
	c := int(s[0])
	if c >= len(s)-1 {
		return false
	}
	s[1+c] = n
	s[0] = uint32(c + 1)
	return true
}

// Set replaces the list of id at layer lc with ids, truncated to the layer
// capacity. ids may alias the current list.
func (l *Links) Set(id uint32, lc int, ids []uint32) {
	s := l.list(id, lc)
	n := copy(s[1:], ids)
	s[0] = uint32(n)
}

// Clear empties the list of id at layer lc without releasing storage.
func (l *Links) Clear(id uint32, lc int) {
	l.list(id, lc)[0] = 0
}

// FillFrom replaces the list of id at layer lc with the contents of a far
// heap, nearest first. When the heap holds more items than the layer allows,
// the farthest are dropped. The heap is empty afterwards. It returns the
// nearest drained item, or false if the heap was empty.
func (l *Links) FillFrom(id uint32, lc int, far *queue.PriorityQueue) (queue.Item, bool) {
	s := l.list(id, lc)
	s[0] = 0
	if far.Len() == 0 {
		return queue.Item{}, false
	}

	maxDeg := len(s) - 1
	for far.Len() > maxDeg {
		far.PopItem()
	}

	// The far heap pops farthest first; fill from the back.
	n := far.Len()
	var nearest queue.Item
	for i := n - 1; i >= 0; i-- {
		item, _ := far.PopItem()
		s[1+i] = item.Node
		nearest = item
	}
	s[0] = uint32(n)
	return nearest, true
}

// Bytes returns the memory held by the store.
func (l *Links) Bytes() int64 {
	return int64(len(l.base))*4 + int64(cap(l.upper))*4 + int64(len(l.offsets))*8 + int64(len(l.levels))*4
}
