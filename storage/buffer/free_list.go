/*
The free list is the set of frames holding no resident page.
Such frames can be reused immediately without eviction, so the manager always
searches the free list before asking the replacer for a victim.

At all times the free list is disjoint from the replacer's candidate set and
from the set of pinned frames: a frame is in exactly one of the three.
The set is accessed only under the manager's lock.
*/
package buffer

import mapset "github.com/deckarep/golang-set/v2"

// newFreeFrames initializes the free list with every frame in the arena
func newFreeFrames(capacity int) mapset.Set[FrameID] {
	free := mapset.NewThreadUnsafeSet[FrameID]()
	for i := 0; i < capacity; i++ {
		free.Add(FrameID(i))
	}
	return free
}

// allocateFromFreeList removes and returns a frame from the free list.
// it reports false when the free list is empty.
func (m *Manager) allocateFromFreeList() (FrameID, bool) {
	return m.freeFrames.Pop()
}

// returnToFreeList puts the frame back to the free list.
// the caller must have discarded the frame content beforehand.
func (m *Manager) returnToFreeList(frameID FrameID) {
	m.freeFrames.Add(frameID)
}
