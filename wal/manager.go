/*
The log manager manages the write-ahead log file.

The log file is a sequence of length-prefixed records. Records are assigned
monotonically increasing LSNs at append time, buffered on memory, and written
out to the log file when a flush is requested (or when an iterator is opened).
The log manager does not interpret record contents; what goes into a record
is up to the caller.

The buffer pool manager holds a reference to the log manager for future
write-ahead-log integration (flush-log-before-writeback); no buffer pool
operation invokes it yet.
*/
package wal

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
)

// LSN is the log sequence number assigned to each record. the first record gets LSN 1.
type LSN int

// InvalidLSN is smaller than any assigned LSN
const InvalidLSN LSN = 0

// lenPrefixSize is the byte size of the record length prefix
const lenPrefixSize = 4

// Manager manages the log file
type Manager struct {
	// underlying storage. file storage or on-memory storage
	st storage
	// records appended but not written out yet
	pending [][]byte
	// the LSN assigned most recently
	latestLSN LSN
	// the LSN up to which records have been written out
	lastFlushedLSN LSN
	// the end offset of the flushed content within the storage
	appendOffset int64
	// mu makes the manager safe for concurrent use
	mu sync.Mutex
}

// NewFileManager initializes the log manager with the log file at path.
// when the file already contains records, LSNs continue after the last one.
func NewFileManager(path string) (*Manager, error) {
	st, err := openFileStorage(path)
	if err != nil {
		return nil, errors.Wrap(err, "openFileStorage failed")
	}
	return newManager(st)
}

// NewMemManager initializes the log manager with on-memory storage.
// this is mainly for tests which shouldn't execute real disk I/O.
func NewMemManager() *Manager {
	m, _ := newManager(newMemStorage())
	return m
}

// newManager initializes the manager and recovers the latest LSN
// by scanning the records already in the storage.
func newManager(st storage) (*Manager, error) {
	size, err := st.Size()
	if err != nil {
		return nil, errors.Wrap(err, "st.Size failed")
	}
	m := &Manager{st: st}
	for m.appendOffset < size {
		_, next, err := readRecordAt(st, m.appendOffset)
		if err != nil {
			return nil, errors.Wrap(err, "readRecordAt failed")
		}
		m.appendOffset = next
		m.latestLSN++
	}
	m.lastFlushedLSN = m.latestLSN
	return m, nil
}

// Append appends the record to the log and returns its LSN.
// the record is only buffered; it is not guaranteed to be on disk until
// Flush with the returned LSN (or a bigger one) completes.
func (m *Manager) Append(record []byte) (LSN, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// own the bytes. the caller may reuse the slice after Append returns
	r := make([]byte, len(record))
	copy(r, record)
	m.pending = append(m.pending, r)
	m.latestLSN++
	return m.latestLSN, nil
}

// Flush writes the buffered records out to the log file, up to and including
// the record with the given LSN. flushing an already-flushed LSN is a no-op.
func (m *Manager) Flush(lsn LSN) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if lsn <= m.lastFlushedLSN {
		return nil
	}
	return m.flush()
}

// LatestLSN returns the LSN assigned most recently
func (m *Manager) LatestLSN() LSN {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latestLSN
}

// LastFlushedLSN returns the LSN up to which records are on the log file
func (m *Manager) LastFlushedLSN() LSN {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastFlushedLSN
}

// Close flushes the buffered records and closes the underlying storage
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.flush(); err != nil {
		return errors.Wrap(err, "flush failed")
	}
	if err := m.st.Close(); err != nil {
		return errors.Wrap(err, "st.Close failed")
	}
	return nil
}

// flush writes out all the buffered records. the caller must hold mu.
// pending records are flushed as a whole: flushing a prefix of them buys nothing
// because they are buffered on memory anyway.
func (m *Manager) flush() error {
	for _, record := range m.pending {
		var prefix [lenPrefixSize]byte
		binary.LittleEndian.PutUint32(prefix[:], uint32(len(record)))
		if _, err := m.st.WriteAt(prefix[:], m.appendOffset); err != nil {
			return errors.Wrap(err, "st.WriteAt failed")
		}
		if _, err := m.st.WriteAt(record, m.appendOffset+lenPrefixSize); err != nil {
			return errors.Wrap(err, "st.WriteAt failed")
		}
		m.appendOffset += lenPrefixSize + int64(len(record))
		m.lastFlushedLSN++
	}
	m.pending = nil
	if err := m.st.Sync(); err != nil {
		return errors.Wrap(err, "st.Sync failed")
	}
	return nil
}

// readRecordAt reads the record at the offset and returns it with the offset of the next record
func readRecordAt(st storage, offset int64) ([]byte, int64, error) {
	var prefix [lenPrefixSize]byte
	if _, err := st.ReadAt(prefix[:], offset); err != nil {
		return nil, 0, errors.Wrap(err, "st.ReadAt failed")
	}
	size := binary.LittleEndian.Uint32(prefix[:])
	record := make([]byte, size)
	if _, err := st.ReadAt(record, offset+lenPrefixSize); err != nil {
		return nil, 0, errors.Wrap(err, "st.ReadAt failed")
	}
	return record, offset + lenPrefixSize + int64(size), nil
}
