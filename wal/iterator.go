package wal

import (
	"github.com/pkg/errors"
)

// Iterator iterates over the flushed records in append order
type Iterator struct {
	st storage
	// offset of the next record to read
	offset int64
	// end offset of the flushed content at the time the iterator was opened
	end int64
}

// Iterator flushes the buffered records and returns an iterator over
// all the records in the log, in append order.
func (m *Manager) Iterator() (*Iterator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.flush(); err != nil {
		return nil, errors.Wrap(err, "flush failed")
	}
	return &Iterator{
		st:  m.st,
		end: m.appendOffset,
	}, nil
}

// HasNext returns whether any record is left
func (it *Iterator) HasNext() bool {
	return it.offset < it.end
}

// Next returns the next record
func (it *Iterator) Next() ([]byte, error) {
	if !it.HasNext() {
		return nil, errors.New("no more log records")
	}
	record, next, err := readRecordAt(it.st, it.offset)
	if err != nil {
		return nil, errors.Wrap(err, "readRecordAt failed")
	}
	it.offset = next
	return record, nil
}
