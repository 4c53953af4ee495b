/*
storage interface for the log file, so that tests use a byte slice
instead of an actual file. the same approach as storage/disk.
*/
package wal

import (
	"io"
	"os"

	"github.com/dsnet/golib/memfile"
	"github.com/pkg/errors"
)

// storage is storage which implements the operations necessary for the log file
type storage interface {
	io.ReaderAt
	io.WriterAt
	Size() (int64, error)
	Sync() error
	Close() error
}

// fileStorage is file storage
type fileStorage struct {
	*os.File
}

// openFileStorage opens (or creates) the log file
func openFileStorage(path string) (*fileStorage, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, errors.Wrap(err, "os.OpenFile failed")
	}
	return &fileStorage{f}, nil
}

// Size returns the storage's size
func (fs *fileStorage) Size() (int64, error) {
	stat, err := fs.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "Stat failed")
	}
	return stat.Size(), nil
}

// memStorage is on-memory storage
type memStorage struct {
	*memfile.File
}

// newMemStorage initializes memStorage
func newMemStorage() *memStorage {
	return &memStorage{memfile.New(make([]byte, 0))}
}

// Size returns the buffer size
func (ms *memStorage) Size() (int64, error) {
	return int64(len(ms.Bytes())), nil
}

// Sync doesn't do anything
func (ms *memStorage) Sync() error {
	return nil
}

// Close doesn't do anything
func (ms *memStorage) Close() error {
	return nil
}
