package buffer

import (
	"github.com/pkg/errors"

	"github.com/pagodadb/pagoda/storage/disk"
	"github.com/pagodadb/pagoda/wal"
)

// testingPoolCapacity is a pool capacity large enough for most tests
const testingPoolCapacity = 8

// TestingNewManager initializes the buffer pool manager with on-memory disk/log
// storage instead of files. This prevents unnecessary disk I/O in tests.
func TestingNewManager(capacity int) (*Manager, error) {
	dm := disk.NewMemManager()
	m, err := NewManager(dm, wal.NewMemManager(), capacity)
	if err != nil {
		return nil, errors.Wrap(err, "NewManager failed")
	}
	return m, nil
}
