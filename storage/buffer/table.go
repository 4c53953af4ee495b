/*
This is the page table: the mapping from resident page id to the frame which holds it.

The table is a bijection between resident page ids and the frames outside the free
list: keys are unique and at most one frame holds a given page at any time.
It is owned by the buffer pool manager and always accessed under the manager's lock,
so it needs no lock of its own.
*/
package buffer

import "github.com/pagodadb/pagoda/storage/page"

// pageTable is the mapping from resident page id to frame id
type pageTable struct {
	frames map[page.PageID]FrameID
}

// newPageTable initializes the page table
func newPageTable(capacity int) pageTable {
	return pageTable{
		frames: make(map[page.PageID]FrameID, capacity),
	}
}

// lookup returns the frame which holds the page
func (t pageTable) lookup(pageID page.PageID) (FrameID, bool) {
	frameID, ok := t.frames[pageID]
	return frameID, ok
}

// insert registers the mapping from the page to the frame
func (t pageTable) insert(pageID page.PageID, frameID FrameID) {
	t.frames[pageID] = frameID
}

// delete removes the mapping for the page. no-op when the page is not registered
func (t pageTable) delete(pageID page.PageID) {
	delete(t.frames, pageID)
}
