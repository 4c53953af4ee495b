package page

import (
	"math/rand"

	"github.com/pkg/errors"
)

// TestingNewRandomPage returns a page filled with random bytes.
// this is useful for checking whether the page content is actually written/fetched.
func TestingNewRandomPage() (PagePtr, error) {
	p := NewPagePtr()
	if _, err := rand.Read(p[:]); err != nil {
		return nil, errors.Wrap(err, "rand.Read failed")
	}
	return p, nil
}
