// Package visited provides the per-traversal scratch set that prevents a
// graph node from being expanded twice.
package visited

import "github.com/bits-and-blooms/bitset"

// dirtyLimitShift bounds the touched-id list to 1/64 of the set size; past
// that a full clear is cheaper than clearing bits one by one.
const dirtyLimitShift = 6

// VisitedSet tracks visited nodes using a bitset and a dirty list for fast reset.
type VisitedSet struct {
	bits     *bitset.BitSet
	dirty    []uint32
	overflow bool
}

// New creates a new visited set sized for capacity nodes.
func New(capacity int) *VisitedSet {
	if capacity < 0 {
		capacity = 0
	}
	return &VisitedSet{
		bits:  bitset.New(uint(capacity)),
		dirty: make([]uint32, 0, 128),
	}
}

// Prepare resets the set for a traversal over count nodes and marks entryID
// as visited.
func (v *VisitedSet) Prepare(count int, entryID uint32) {
	v.Reset()
	v.EnsureCapacity(count)
	v.Insert(entryID)
}

// Insert marks id as visited. It reports true on the first encounter and
// false on every repeat.
func (v *VisitedSet) Insert(id uint32) bool {
	if v.bits.Test(uint(id)) {
		return false
	}
	v.bits.Set(uint(id))
	if !v.overflow {
		if len(v.dirty) >= int(v.bits.Len()>>dirtyLimitShift)+1 {
			v.overflow = true
			v.dirty = v.dirty[:0]
		} else {
			v.dirty = append(v.dirty, id)
		}
	}
	return true
}

// Contains reports whether id was visited since the last reset.
func (v *VisitedSet) Contains(id uint32) bool {
	return v.bits.Test(uint(id))
}

// Reset clears the visited status for all nodes visited in the current session.
func (v *VisitedSet) Reset() {
	if v.overflow {
		v.bits.ClearAll()
		v.overflow = false
		return
	}
	for _, id := range v.dirty {
		v.bits.Clear(uint(id))
	}
	v.dirty = v.dirty[:0]
}

// EnsureCapacity ensures the set can hold ids below capacity without growing
// during traversal.
func (v *VisitedSet) EnsureCapacity(capacity int) {
	if capacity <= 0 || uint(capacity) <= v.bits.Len() {
		return
	}
	// Setting and clearing the last bit extends the underlying words.
	last := uint(capacity - 1)
	was := v.bits.Test(last)
	v.bits.Set(last)
	if !was {
		v.bits.Clear(last)
	}
}
