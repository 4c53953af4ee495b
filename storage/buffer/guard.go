package buffer

import "github.com/pagodadb/pagoda/storage/page"

// PageGuard is a scope-bound pin on a resident page.
// FetchPage hands out a bare page and makes the caller responsible for a
// matching UnpinPage call; the guard ties the unpin to Release instead,
// which makes pin/unpin imbalance structurally harder to introduce.
type PageGuard struct {
	m        *Manager
	p        *Page
	released bool
}

// FetchPageGuarded fetches the page like FetchPage and wraps the pin in a guard.
// the caller has to call Release after completion of using the page.
func (m *Manager) FetchPageGuarded(pageID page.PageID) (*PageGuard, error) {
	p, err := m.FetchPage(pageID)
	if err != nil {
		return nil, err
	}
	return &PageGuard{m: m, p: p}, nil
}

// Page returns the guarded page. it must not be used after Release.
func (g *PageGuard) Page() *Page {
	return g.p
}

// Release unpins the guarded page, marking it dirty when markDirty is set.
// releasing twice is a no-op, so Release is safe to defer.
func (g *PageGuard) Release(markDirty bool) error {
	if g.released {
		return nil
	}
	g.released = true
	return g.m.UnpinPage(g.p.ID(), markDirty)
}
