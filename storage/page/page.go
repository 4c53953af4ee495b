/*
Page is the unit of I/O in pagoda.
The disk manager organizes the database file as a collection of fixed-size pages,
and the buffer pool manager caches pages on memory in fixed-size frames.
This package defines only page identity and the raw page type.
The layout within a page (headers, slots, tuples) is up to the upper layers.
*/
package page

import "math"

// PageSize is the byte size of page. 8KB is the default size in postgres.
const PageSize = 8192

// PageID is the unique identifier given to each page.
// the disk manager allocates page ids, and the page is located at
// the offset calculated from its page id within the database file.
type PageID uint32

const (
	// first page id in the database file
	FirstPageID PageID = 0
	// invalid page id. a frame which holds no resident page has this id.
	InvalidPageID PageID = math.MaxUint32
	// max page id
	MaxPageID PageID = math.MaxUint32 - 1
)

// IsValid checks whether the page id is valid
func (pid PageID) IsValid() bool {
	return pid != InvalidPageID
}

// PagePtr is pointer to page
// pagoda defines page as pointer explicitly
// because page should not be passed by value in many cases (for concurrent access and space-efficiency)
type PagePtr *[PageSize]byte

// NewPagePtr returns 0-filled page pointer
func NewPagePtr() PagePtr {
	p := &[PageSize]byte{}
	return PagePtr(p)
}

// CalculateFileOffset calculates the page's offset within the database file
// the page size is fixed (8KB) so that it is easy to calculate the offset
func CalculateFileOffset(pageID PageID) int64 {
	return int64(pageID) * PageSize
}
