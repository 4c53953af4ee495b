package disk

import (
	"path/filepath"
	"testing"
)

// TestingNewFileManager initializes the disk manager with a database file under t.TempDir()
// so that the generated file is removed after the test is completed.
func TestingNewFileManager(t *testing.T) (Manager, error) {
	return NewFileManager(filepath.Join(t.TempDir(), "pagoda.db"))
}
