/*
The replacer tracks the frames which are candidates for eviction:
frames which are resident and currently unpinned (pin count 0).

pagoda adopts LRU as the replacement policy. Candidates are kept in strict
recency order of becoming unpinned, and the least-recently-unpinned one is
selected as the victim. Each frame appears at most once, so the order has no ties.

The caller (the buffer pool manager) is responsible for notifying the replacer:
- MarkUnpinned when a frame's pin count reaches 0
- MarkPinned when a resident frame is pinned again

The replacer holds its own lock so that each operation is atomic, which makes it
safe to use standalone. When used under the buffer pool manager, the manager's
lock is always acquired first (manager outer, replacer inner) — the replacer
never calls back into the manager, so the order cannot invert.
*/
package buffer

import (
	"container/list"
	"sync"
)

// Replacer tracks the eviction candidates and selects the LRU victim
type Replacer struct {
	// candidates in recency order.
	// front is the most-recently-unpinned frame, back is the next victim.
	candidates *list.List
	// mapping from frame id to its node in candidates, for O(1) removal
	elems map[FrameID]*list.Element
	// capacity is the number of frames in the pool.
	// the replacer can never track more candidates than this.
	capacity int
	// mu makes each operation atomic with respect to other replacer calls
	mu sync.Mutex
}

// NewReplacer initializes the replacer for a pool with capacity frames
func NewReplacer(capacity int) *Replacer {
	return &Replacer{
		candidates: list.New(),
		elems:      make(map[FrameID]*list.Element, capacity),
		capacity:   capacity,
	}
}

// MarkUnpinned inserts the frame as the most-recently-unpinned candidate.
// re-marking a frame which is already tracked is a no-op, not a reorder.
func (r *Replacer) MarkUnpinned(frameID FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.elems[frameID]; ok {
		return
	}
	// the manager marks each frame at most once before pinning it again,
	// so the tracked count can never exceed the pool capacity.
	// this branch is defensive: evict the oldest entry instead of growing past capacity.
	if r.candidates.Len() >= r.capacity {
		oldest := r.candidates.Back()
		r.candidates.Remove(oldest)
		delete(r.elems, oldest.Value.(FrameID))
	}
	r.elems[frameID] = r.candidates.PushFront(frameID)
}

// MarkPinned removes the frame from the candidates.
// this is a no-op when the frame is not tracked.
func (r *Replacer) MarkPinned(frameID FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	elem, ok := r.elems[frameID]
	if !ok {
		return
	}
	r.candidates.Remove(elem)
	delete(r.elems, frameID)
}

// SelectVictim removes and returns the least-recently-unpinned candidate.
// it returns InvalidFrameID when no candidate exists.
func (r *Replacer) SelectVictim() FrameID {
	r.mu.Lock()
	defer r.mu.Unlock()

	victim := r.candidates.Back()
	if victim == nil {
		return InvalidFrameID
	}
	frameID := victim.Value.(FrameID)
	r.candidates.Remove(victim)
	delete(r.elems, frameID)
	return frameID
}

// Size returns the number of currently tracked candidates
func (r *Replacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.candidates.Len()
}
