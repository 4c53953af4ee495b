/*
The buffer pool manager is the layer between the upper layers and the disk manager.
Disk I/O is expensive, so pages are cached on memory in a fixed-capacity pool of
frames, and the manager decides which resident page to evict when the pool is full.

The manager is the sole owner of the frame arena, the page table and the free list,
and the only component which moves pages between disk and memory.
The flow for acquiring a frame on a miss is:
- search the free list first. a free frame can be reused without eviction.
- if the free list is empty, ask the replacer for the LRU victim.
- if the victim held a dirty page, write it back through the disk manager
  before the frame content is discarded. a dirty page is never silently dropped.
- if the replacer has no candidate either, every frame is pinned and the
  operation fails with ErrPoolExhausted.

Access rule for callers: FetchPage/NewPage return the page pinned, and the caller
has to call UnpinPage after it completes using the page. A page with nonzero pin
count is never evicted.

Locking: one lock serializes every public operation, and disk I/O is issued while
the lock is held. Correctness is prioritized over I/O concurrency here: no caller
ever observes a half-loaded or half-evicted frame. The replacer additionally holds
its own internal lock; it is only ever acquired with the manager's lock already
held (manager outer, replacer inner).

The log manager is injected for future write-ahead-log integration.
No operation here invokes it.
*/
package buffer

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"

	"github.com/pagodadb/pagoda/storage/disk"
	"github.com/pagodadb/pagoda/storage/page"
	"github.com/pagodadb/pagoda/wal"
)

// Manager manages the buffer pool
type Manager struct {
	// disk manager
	dm disk.Manager
	// log manager. held for future wal integration, not invoked by any operation
	lm *wal.Manager
	// the frame arena. its size is the pool capacity, fixed at construction
	pages []Page
	// mapping from resident page id to frame id
	table pageTable
	// the frames holding no resident page
	freeFrames mapset.Set[FrameID]
	// the eviction candidate tracker
	replacer *Replacer
	// mu serializes all public operations
	mu sync.Mutex
}

// NewManager initializes the buffer pool manager with capacity frames.
// initially the page table is empty and every frame is in the free list.
func NewManager(dm disk.Manager, lm *wal.Manager, capacity int) (*Manager, error) {
	if capacity <= 0 {
		return nil, errors.Errorf("invalid pool capacity: %d", capacity)
	}
	return &Manager{
		dm:         dm,
		lm:         lm,
		pages:      newPages(capacity),
		table:      newPageTable(capacity),
		freeFrames: newFreeFrames(capacity),
		replacer:   NewReplacer(capacity),
	}, nil
}

// FetchPage returns the resident page with the given id.
// the returned page has been pinned, so the caller has to call UnpinPage
// after completion of using the page.
//
// when the page is already resident, it is returned without any disk access.
// when it is not, a frame is acquired (free list first, then eviction) and the
// page content is fetched from disk into it.
func (m *Manager) FetchPage(pageID page.PageID) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// when the page is already resident, pin it and return it
	if frameID, ok := m.table.lookup(pageID); ok {
		p := &m.pages[frameID]
		// the frame may have been an eviction candidate. it is pinned now
		m.replacer.MarkPinned(frameID)
		p.pinCount++
		return p, nil
	}

	frameID, err := m.acquireFrame()
	if err != nil {
		return nil, err
	}
	p := &m.pages[frameID]

	m.table.insert(pageID, frameID)
	if err := m.dm.ReadPage(pageID, p.Data()); err != nil {
		// undo the installation so the frame stays free and the table stays consistent.
		// the read may have filled the buffer partially, so discard it again.
		m.table.delete(pageID)
		p.reset()
		m.returnToFreeList(frameID)
		return nil, errors.Wrap(err, "dm.ReadPage failed")
	}
	p.pageID = pageID
	// a freshly fetched frame starts pinned exactly once.
	// it must not be registered as an eviction candidate.
	p.pinCount = 1
	return p, nil
}

// UnpinPage decrements the pin count of the resident page.
// when the pin count reaches 0, the frame becomes an eviction candidate.
// when markDirty is set, the dirty flag is turned on; it is sticky and
// never cleared by this operation.
//
// it fails with ErrPageNotFound when the page is not resident, and with
// ErrInvalidUnpin when the pin count is already 0 (double-unpin guard:
// the pin count never goes negative).
func (m *Manager) UnpinPage(pageID page.PageID, markDirty bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameID, ok := m.table.lookup(pageID)
	if !ok {
		return ErrPageNotFound
	}
	p := &m.pages[frameID]
	if p.pinCount == 0 {
		return ErrInvalidUnpin
	}
	if markDirty {
		p.dirty = true
	}
	p.pinCount--
	if p.pinCount == 0 {
		m.replacer.MarkUnpinned(frameID)
	}
	return nil
}

// FlushPage unconditionally writes the resident page out to disk and clears
// its dirty flag. flush is safe to call on a clean page.
// it fails with ErrPageNotFound when the page is not resident.
func (m *Manager) FlushPage(pageID page.PageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameID, ok := m.table.lookup(pageID)
	if !ok {
		return ErrPageNotFound
	}
	p := &m.pages[frameID]
	if err := m.dm.WritePage(pageID, p.Data()); err != nil {
		return errors.Wrap(err, "dm.WritePage failed")
	}
	p.dirty = false
	return nil
}

// NewPage allocates a fresh page id through the disk manager and returns the
// resident page for it: 0-filled content, pinned exactly once. the caller reads
// the allocated id from the returned page and does not separately fetch it.
// the frame is acquired exactly as the miss path of FetchPage, so it fails with
// ErrPoolExhausted when every frame is pinned.
func (m *Manager) NewPage() (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pageID, err := m.dm.AllocatePage()
	if err != nil {
		return nil, errors.Wrap(err, "dm.AllocatePage failed")
	}
	frameID, err := m.acquireFrame()
	if err != nil {
		// hand the allocated id back so it is not leaked.
		// the acquisition failure is the error the caller cares about.
		_ = m.dm.DeallocatePage(pageID)
		return nil, err
	}
	p := &m.pages[frameID]

	m.table.insert(pageID, frameID)
	p.pageID = pageID
	p.pinCount = 1
	return p, nil
}

// DeletePage removes the page from the pool and deallocates its id.
// the frame content is discarded without writeback and the frame returns to the
// free list, not to the candidate set.
// deleting a page which is not resident is a no-op.
// it fails with ErrPageInUse when the page is pinned.
func (m *Manager) DeletePage(pageID page.PageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameID, ok := m.table.lookup(pageID)
	if !ok {
		return nil
	}
	p := &m.pages[frameID]
	if p.pinCount != 0 {
		return ErrPageInUse
	}
	// pin count is 0, so the frame is currently an eviction candidate
	m.replacer.MarkPinned(frameID)
	m.table.delete(pageID)
	p.reset()
	m.returnToFreeList(frameID)
	if err := m.dm.DeallocatePage(pageID); err != nil {
		return errors.Wrap(err, "dm.DeallocatePage failed")
	}
	return nil
}

// FlushAllPages writes every resident dirty page out to disk and clears its
// dirty flag. clean or non-resident frames are skipped: no I/O is issued for them.
func (m *Manager) FlushAllPages() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.pages {
		p := &m.pages[i]
		if !p.pageID.IsValid() || !p.dirty {
			continue
		}
		if err := m.dm.WritePage(p.pageID, p.Data()); err != nil {
			return errors.Wrap(err, "dm.WritePage failed")
		}
		p.dirty = false
	}
	return nil
}

// acquireFrame acquires a frame for a page to be read/allocated into:
// the free list first, then the LRU victim.
// the returned frame is fully reclaimed: written back when it held a dirty page,
// removed from the page table, and reset to empty. it is in none of
// {free list, candidate set} and the caller must install a page into it
// (or return it to the free list on failure).
func (m *Manager) acquireFrame() (FrameID, error) {
	if frameID, ok := m.allocateFromFreeList(); ok {
		return frameID, nil
	}
	frameID := m.replacer.SelectVictim()
	if frameID == InvalidFrameID {
		return InvalidFrameID, ErrPoolExhausted
	}
	p := &m.pages[frameID]
	if p.dirty {
		// the victim held a dirty page: write it back before the content is discarded
		if err := m.dm.WritePage(p.pageID, p.Data()); err != nil {
			// the victim is left resident and stays an eviction candidate
			m.replacer.MarkUnpinned(frameID)
			return InvalidFrameID, errors.Wrap(err, "dm.WritePage failed")
		}
		p.dirty = false
	}
	m.table.delete(p.pageID)
	p.reset()
	return frameID, nil
}
