package buffer

import "github.com/pkg/errors"

// every failure of the public operations is returned as one of the errors below,
// or as a wrapped error from the disk manager.
// none of them is fatal to the manager; ErrPoolExhausted in particular is expected
// to be recoverable by the caller (release other pins and retry).
var (
	// ErrPageNotFound is returned when the operation targets a page id which is not resident
	ErrPageNotFound = errors.New("page is not resident in the buffer pool")
	// ErrPageInUse is returned when deletion is attempted while the page is pinned
	ErrPageInUse = errors.New("page is pinned and cannot be deleted")
	// ErrPoolExhausted is returned when no frame can be acquired:
	// the free list is empty and every resident frame is pinned
	ErrPoolExhausted = errors.New("buffer pool exhausted: all frames are pinned")
	// ErrInvalidUnpin is returned when unpin is attempted on a page whose pin count is already 0
	ErrInvalidUnpin = errors.New("page is not pinned")
)
