package buffer

import (
	"github.com/pagodadb/pagoda/storage/page"
)

// FrameID is the index into the frame arena owned by the buffer pool manager.
// frame identity is positional and distinct from the page id the frame currently holds:
// one frame holds different pages over time.
type FrameID int32

const (
	// first frame id in the arena
	FirstFrameID FrameID = 0
	// InvalidFrameID is returned by the replacer when no eviction candidate exists
	InvalidFrameID FrameID = -1
)

// Page is the content of one frame: the fixed-size buffer where a disk page is
// cached, and the metadata the manager needs for residency bookkeeping.
// one instance per frame slot for the lifetime of the pool.
// all fields are mutated only by the manager while it holds its lock.
type Page struct {
	// page content fetched from disk
	data [page.PageSize]byte
	// id of the resident page. InvalidPageID when the frame is free
	pageID page.PageID
	// dirty indicates the content differs from the on-disk copy.
	// once set, it stays set until writeback/flush clears it.
	dirty bool
	// the number of outstanding holders of this page.
	// the frame must not be evicted while this is nonzero.
	pinCount int
}

// ID returns the id of the resident page
func (p *Page) ID() page.PageID {
	return p.pageID
}

// Data returns the pointer to the page content
func (p *Page) Data() page.PagePtr {
	return page.PagePtr(&p.data)
}

// IsDirty returns whether the content has been updated and not written back yet
func (p *Page) IsDirty() bool {
	return p.dirty
}

// PinCount returns the number of outstanding holders of this page
func (p *Page) PinCount() int {
	return p.pinCount
}

// reset discards the frame content: 0-fills the buffer and clears the metadata
func (p *Page) reset() {
	p.data = [page.PageSize]byte{}
	p.pageID = page.InvalidPageID
	p.dirty = false
	p.pinCount = 0
}

// newPages initializes the frame arena.
// every frame starts empty: invalid page id, clean, pin count 0.
func newPages(capacity int) []Page {
	pages := make([]Page, capacity)
	for i := range pages {
		pages[i].pageID = page.InvalidPageID
	}
	return pages
}
