// Package queue provides the binary heaps used by graph traversal.
//
// A min-ordered queue (NewMin) is the "near" heap: its top is the closest
// candidate and it drives nearest-first expansion. A max-ordered queue
// (NewMax) is the "far" heap: its top is the worst retained result and is the
// first to be evicted when the queue grows beyond its bound.
package queue

// Item is a (distance, node) pair. It is a plain value with no ownership.
type Item struct {
	Node     uint32  // Node is the id of the referenced point.
	Distance float32 // Distance is the priority of the item in the queue.
}

// PriorityQueue is a value-based binary heap of Items.
type PriorityQueue struct {
	isMaxHeap bool
	items     []Item
}

// NewMin initializes a new priority queue with minimum priority (near heap).
func NewMin(capacity int) *PriorityQueue {
	return &PriorityQueue{
		isMaxHeap: false,
		items:     make([]Item, 0, capacity),
	}
}

// NewMax initializes a new priority queue with maximum priority (far heap).
func NewMax(capacity int) *PriorityQueue {
	return &PriorityQueue{
		isMaxHeap: true,
		items:     make([]Item, 0, capacity),
	}
}

// Len returns the number of elements in the priority queue.
func (pq *PriorityQueue) Len() int { return len(pq.items) }

// Reset clears the priority queue for reuse without releasing memory.
func (pq *PriorityQueue) Reset() {
	pq.items = pq.items[:0]
}

// Reserve grows the backing storage to hold at least capacity items.
func (pq *PriorityQueue) Reserve(capacity int) {
	if cap(pq.items) >= capacity {
		return
	}
	items := make([]Item, len(pq.items), capacity)
	copy(items, pq.items)
	pq.items = items
}

// TopItem returns the top element of the heap.
func (pq *PriorityQueue) TopItem() (Item, bool) {
	if len(pq.items) == 0 {
		return Item{}, false
	}
	return pq.items[0], true
}

// PushItem inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue) PushItem(item Item) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// PushItemBounded pushes item and then evicts the top while the queue holds
// more than limit items.
func (pq *PriorityQueue) PushItemBounded(item Item, limit int) {
	pq.PushItem(item)
	for len(pq.items) > limit {
		pq.PopItem()
	}
}

// PopItem removes and returns the top element while maintaining the heap invariant.
func (pq *PriorityQueue) PopItem() (Item, bool) {
	n := len(pq.items)
	if n == 0 {
		return Item{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

// LoadFrom drains other into pq. Items are re-ordered by pq's own ordering.
// other is empty afterwards.
func (pq *PriorityQueue) LoadFrom(other *PriorityQueue) {
	pq.Reserve(len(pq.items) + len(other.items))
	for _, it := range other.items {
		pq.PushItem(it)
	}
	other.Reset()
}

// DrainSorted empties the queue into dst in ascending distance order and
// returns the extended slice.
func (pq *PriorityQueue) DrainSorted(dst []Item) []Item {
	start := len(dst)
	for len(pq.items) > 0 {
		item, _ := pq.PopItem()
		dst = append(dst, item)
	}
	if pq.isMaxHeap {
		// Max heap pops farthest first.
		for i, j := start, len(dst)-1; i < j; i, j = i+1, j-1 {
			dst[i], dst[j] = dst[j], dst[i]
		}
	}
	return dst
}

func (pq *PriorityQueue) less(i, j int) bool {
	if pq.isMaxHeap {
		return pq.items[i].Distance > pq.items[j].Distance
	}
	return pq.items[i].Distance < pq.items[j].Distance
}

func (pq *PriorityQueue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(i, p) {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *PriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && pq.less(r, l) {
			best = r
		}
		if !pq.less(best, i) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}
