/*
This file defines storage interface and its implementations.
We don't want to execute disk I/O in test, so it's better to use byte slice instead of actual file in test.
For this reason, storage interface is defined. Possible operation with storage is
read at/write at/sync/get size/close. The implementations are:
- fileStorage: wrapper of os.File
- memStorage: wrapper of memfile.File, intended to be used in test
*/
package disk

import (
	"io"
	"os"

	"github.com/dsnet/golib/memfile"
	"github.com/pkg/errors"
)

// storage is storage which implements multiple operations necessary for the pagoda database file.
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

// openFileStorage opens (or creates) the database file
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
	// on-memory byte slice doesn't need sync
	return nil
}

// Close doesn't do anything
func (ms *memStorage) Close() error {
	return nil
}
