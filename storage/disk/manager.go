/*
Disk manager deals with the database file.

The database file is organized as a collection of fixed-size pages.
The page whose id is n is located at the offset (n * page size) within the file,
so page id is sufficient to locate the page on disk.

The disk manager is also responsible for the allocation/deallocation of page ids.
Allocation hands out deallocated ids again before extending the file with a new id.

The buffer pool manager is expected to be the only caller of ReadPage/WritePage;
it never touches the database file directly.
*/
package disk

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"

	"github.com/pagodadb/pagoda/storage/page"
)

// Manager is the interface to the disk layer.
// the buffer pool manager consumes this interface so that
// tests can use the on-memory implementation instead of the file one.
type Manager interface {
	// ReadPage reads the page content from disk into p
	ReadPage(pageID page.PageID, p page.PagePtr) error
	// WritePage writes the page content p out to disk
	WritePage(pageID page.PageID, p page.PagePtr) error
	// AllocatePage allocates new page id
	AllocatePage() (page.PageID, error)
	// DeallocatePage deallocates the page id so that it can be reused
	DeallocatePage(pageID page.PageID) error
	// NumReads returns the number of page reads issued so far
	NumReads() uint64
	// NumWrites returns the number of page writes issued so far
	NumWrites() uint64
	// Close closes the underlying storage
	Close() error
}

// manager implements Manager on top of storage
type manager struct {
	// underlying storage. file storage or on-memory storage
	st storage
	// next page id to be allocated when no deallocated id exists
	nextPageID page.PageID
	// deallocated page ids. AllocatePage picks from this set first
	freedPageIDs mapset.Set[page.PageID]
	// the number of page reads/writes. useful for inspecting buffer pool behavior
	numReads  uint64
	numWrites uint64
	// mu protects all the fields above
	mu sync.Mutex
}

// NewFileManager initializes the disk manager with the database file at path
func NewFileManager(path string) (Manager, error) {
	st, err := openFileStorage(path)
	if err != nil {
		return nil, errors.Wrap(err, "openFileStorage failed")
	}
	return newManager(st)
}

// NewMemManager initializes the disk manager with on-memory storage.
// this is mainly for tests which shouldn't execute real disk I/O.
func NewMemManager() Manager {
	// newManager never fails with memStorage
	m, _ := newManager(newMemStorage())
	return m
}

// newManager initializes the manager over the storage.
// when the storage already has some pages, the next page id is derived from its size.
func newManager(st storage) (*manager, error) {
	size, err := st.Size()
	if err != nil {
		return nil, errors.Wrap(err, "st.Size failed")
	}
	return &manager{
		st:           st,
		nextPageID:   page.PageID(size / page.PageSize),
		freedPageIDs: mapset.NewThreadUnsafeSet[page.PageID](),
	}, nil
}

// ReadPage reads the page content from the storage into p
func (m *manager) ReadPage(pageID page.PageID, p page.PagePtr) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !pageID.IsValid() {
		return errors.Errorf("invalid page id: %d", pageID)
	}
	offset := page.CalculateFileOffset(pageID)
	size, err := m.st.Size()
	if err != nil {
		return errors.Wrap(err, "st.Size failed")
	}
	if offset+page.PageSize > size {
		return errors.Errorf("read page %d past end of file", pageID)
	}
	if _, err := m.st.ReadAt(p[:], offset); err != nil {
		return errors.Wrap(err, "st.ReadAt failed")
	}
	m.numReads++
	return nil
}

// WritePage writes the page content p out to the storage.
// when the page is located past the current end of file, the file is extended.
func (m *manager) WritePage(pageID page.PageID, p page.PagePtr) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !pageID.IsValid() {
		return errors.Errorf("invalid page id: %d", pageID)
	}
	offset := page.CalculateFileOffset(pageID)
	if _, err := m.st.WriteAt(p[:], offset); err != nil {
		return errors.Wrap(err, "st.WriteAt failed")
	}
	if err := m.st.Sync(); err != nil {
		return errors.Wrap(err, "st.Sync failed")
	}
	m.numWrites++
	return nil
}

// AllocatePage allocates new page id.
// deallocated ids are reused before the file is extended with a fresh id.
func (m *manager) AllocatePage() (page.PageID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pid, ok := m.freedPageIDs.Pop(); ok {
		return pid, nil
	}
	if m.nextPageID > page.MaxPageID {
		return page.InvalidPageID, errors.New("no page id can be allocated")
	}
	pid := m.nextPageID
	m.nextPageID++
	return pid, nil
}

// DeallocatePage deallocates the page id
// the content of the deallocated page is left as is on disk, and
// the id will be reused by AllocatePage later.
func (m *manager) DeallocatePage(pageID page.PageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !pageID.IsValid() {
		return errors.Errorf("invalid page id: %d", pageID)
	}
	if pageID >= m.nextPageID {
		return errors.Errorf("page %d has not been allocated", pageID)
	}
	m.freedPageIDs.Add(pageID)
	return nil
}

// NumReads returns the number of page reads issued so far
func (m *manager) NumReads() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.numReads
}

// NumWrites returns the number of page writes issued so far
func (m *manager) NumWrites() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.numWrites
}

// Close closes the underlying storage
func (m *manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.st.Close(); err != nil {
		return errors.Wrap(err, "st.Close failed")
	}
	return nil
}
