package buffer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pagodadb/pagoda/storage/page"
)

func TestNewPage(t *testing.T) {
	m, err := TestingNewManager(testingPoolCapacity)
	assert.Nil(t, err)

	p, err := m.NewPage()
	assert.Nil(t, err)

	// the returned page starts 0-filled and pinned exactly once
	assert.Equal(t, page.FirstPageID, p.ID())
	assert.Equal(t, 1, p.PinCount())
	assert.False(t, p.IsDirty())
	empty := page.NewPagePtr()
	assert.True(t, bytes.Equal(p.Data()[:], empty[:]))
	// allocation issues no disk I/O
	assert.Equal(t, uint64(0), m.dm.NumReads())
	assert.Equal(t, uint64(0), m.dm.NumWrites())
}

func TestFetchPage(t *testing.T) {
	t.Run("fetch a non-resident page from disk", func(t *testing.T) {
		m, err := TestingNewManager(testingPoolCapacity)
		assert.Nil(t, err)

		pid, err := m.dm.AllocatePage()
		assert.Nil(t, err)
		rp, err := page.TestingNewRandomPage()
		assert.Nil(t, err)
		err = m.dm.WritePage(pid, rp)
		assert.Nil(t, err)

		p, err := m.FetchPage(pid)
		assert.Nil(t, err)
		assert.Equal(t, pid, p.ID())
		assert.Equal(t, 1, p.PinCount())
		assert.True(t, bytes.Equal(p.Data()[:], rp[:]))
		assert.Equal(t, uint64(1), m.dm.NumReads())
	})
	t.Run("fetch an already-resident page", func(t *testing.T) {
		m, err := TestingNewManager(testingPoolCapacity)
		assert.Nil(t, err)

		p, err := m.NewPage()
		assert.Nil(t, err)

		// the same frame must be returned, the pin count must be incremented,
		// and no disk read must be issued
		fetched, err := m.FetchPage(p.ID())
		assert.Nil(t, err)
		assert.Same(t, p, fetched)
		assert.Equal(t, 2, fetched.PinCount())
		assert.Equal(t, uint64(0), m.dm.NumReads())
	})
	t.Run("fetch fails when every frame is pinned", func(t *testing.T) {
		m, err := TestingNewManager(2)
		assert.Nil(t, err)

		// write three pages to disk beforehand
		var pids []page.PageID
		for i := 0; i < 3; i++ {
			pid, err := m.dm.AllocatePage()
			assert.Nil(t, err)
			rp, err := page.TestingNewRandomPage()
			assert.Nil(t, err)
			err = m.dm.WritePage(pid, rp)
			assert.Nil(t, err)
			pids = append(pids, pid)
		}

		p1, err := m.FetchPage(pids[0])
		assert.Nil(t, err)
		_, err = m.FetchPage(pids[1])
		assert.Nil(t, err)

		// both frames are pinned, so the third page cannot be fetched
		_, err = m.FetchPage(pids[2])
		assert.ErrorIs(t, err, ErrPoolExhausted)

		// once p1 is unpinned its frame can be evicted and the fetch succeeds
		err = m.UnpinPage(p1.ID(), false)
		assert.Nil(t, err)
		p3, err := m.FetchPage(pids[2])
		assert.Nil(t, err)
		assert.Equal(t, pids[2], p3.ID())

		// p1 is not resident anymore
		_, resident := m.table.lookup(pids[0])
		assert.False(t, resident)
	})
}

func TestUnpinPage(t *testing.T) {
	t.Run("unpin registers the frame as an eviction candidate", func(t *testing.T) {
		m, err := TestingNewManager(testingPoolCapacity)
		assert.Nil(t, err)

		p, err := m.NewPage()
		assert.Nil(t, err)
		assert.Equal(t, 0, m.replacer.Size())

		err = m.UnpinPage(p.ID(), false)
		assert.Nil(t, err)
		assert.Equal(t, 0, p.PinCount())
		assert.Equal(t, 1, m.replacer.Size())
	})
	t.Run("the dirty flag is sticky", func(t *testing.T) {
		m, err := TestingNewManager(testingPoolCapacity)
		assert.Nil(t, err)

		p, err := m.NewPage()
		assert.Nil(t, err)
		_, err = m.FetchPage(p.ID())
		assert.Nil(t, err)

		err = m.UnpinPage(p.ID(), true)
		assert.Nil(t, err)
		assert.True(t, p.IsDirty())
		// unpinning with markDirty false must not clear the flag
		err = m.UnpinPage(p.ID(), false)
		assert.Nil(t, err)
		assert.True(t, p.IsDirty())
	})
	t.Run("unpin fails on a non-resident page", func(t *testing.T) {
		m, err := TestingNewManager(testingPoolCapacity)
		assert.Nil(t, err)

		err = m.UnpinPage(page.FirstPageID, false)
		assert.ErrorIs(t, err, ErrPageNotFound)
	})
	t.Run("unpin fails when the pin count is already 0", func(t *testing.T) {
		m, err := TestingNewManager(testingPoolCapacity)
		assert.Nil(t, err)

		p, err := m.NewPage()
		assert.Nil(t, err)
		err = m.UnpinPage(p.ID(), false)
		assert.Nil(t, err)

		// the pin count must not underflow
		err = m.UnpinPage(p.ID(), false)
		assert.ErrorIs(t, err, ErrInvalidUnpin)
		assert.Equal(t, 0, p.PinCount())
	})
}

func TestFlushPage(t *testing.T) {
	t.Run("flush writes the content and clears the dirty flag", func(t *testing.T) {
		m, err := TestingNewManager(testingPoolCapacity)
		assert.Nil(t, err)

		p, err := m.NewPage()
		assert.Nil(t, err)
		rp, err := page.TestingNewRandomPage()
		assert.Nil(t, err)
		copy(p.Data()[:], rp[:])
		err = m.UnpinPage(p.ID(), true)
		assert.Nil(t, err)

		err = m.FlushPage(p.ID())
		assert.Nil(t, err)
		assert.False(t, p.IsDirty())

		flushed := page.NewPagePtr()
		err = m.dm.ReadPage(p.ID(), flushed)
		assert.Nil(t, err)
		assert.True(t, bytes.Equal(flushed[:], rp[:]))
	})
	t.Run("flush is safe to call on a clean page", func(t *testing.T) {
		m, err := TestingNewManager(testingPoolCapacity)
		assert.Nil(t, err)

		p, err := m.NewPage()
		assert.Nil(t, err)
		err = m.FlushPage(p.ID())
		assert.Nil(t, err)
		assert.Equal(t, uint64(1), m.dm.NumWrites())
	})
	t.Run("flush fails on a non-resident page", func(t *testing.T) {
		m, err := TestingNewManager(testingPoolCapacity)
		assert.Nil(t, err)

		err = m.FlushPage(page.FirstPageID)
		assert.ErrorIs(t, err, ErrPageNotFound)
	})
}

func TestDeletePage(t *testing.T) {
	t.Run("delete a non-resident page is a no-op", func(t *testing.T) {
		m, err := TestingNewManager(testingPoolCapacity)
		assert.Nil(t, err)

		err = m.DeletePage(page.FirstPageID)
		assert.Nil(t, err)
	})
	t.Run("delete fails while the page is pinned", func(t *testing.T) {
		m, err := TestingNewManager(testingPoolCapacity)
		assert.Nil(t, err)

		p, err := m.NewPage()
		assert.Nil(t, err)
		err = m.DeletePage(p.ID())
		assert.ErrorIs(t, err, ErrPageInUse)
	})
	t.Run("delete returns the frame to the free list, not the candidate set", func(t *testing.T) {
		m, err := TestingNewManager(2)
		assert.Nil(t, err)

		p, err := m.NewPage()
		assert.Nil(t, err)
		pid := p.ID()
		err = m.UnpinPage(pid, false)
		assert.Nil(t, err)
		assert.Equal(t, 1, m.replacer.Size())

		frameID, _ := m.table.lookup(pid)
		err = m.DeletePage(pid)
		assert.Nil(t, err)

		assert.True(t, m.freeFrames.Contains(frameID))
		assert.Equal(t, 0, m.replacer.Size())
		_, resident := m.table.lookup(pid)
		assert.False(t, resident)

		// the deallocated page id is handed out again
		reallocated, err := m.NewPage()
		assert.Nil(t, err)
		assert.Equal(t, pid, reallocated.ID())
	})
}

func TestFlushAllPages(t *testing.T) {
	m, err := TestingNewManager(testingPoolCapacity)
	assert.Nil(t, err)

	dirty, err := m.NewPage()
	assert.Nil(t, err)
	err = m.UnpinPage(dirty.ID(), true)
	assert.Nil(t, err)

	clean, err := m.NewPage()
	assert.Nil(t, err)
	err = m.UnpinPage(clean.ID(), false)
	assert.Nil(t, err)

	// a write must be issued only for the resident dirty frame
	err = m.FlushAllPages()
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), m.dm.NumWrites())
	assert.False(t, dirty.IsDirty())

	// every frame is clean now, so flushing again issues no I/O
	err = m.FlushAllPages()
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), m.dm.NumWrites())
}

func TestEvictionWriteback(t *testing.T) {
	m, err := TestingNewManager(1)
	assert.Nil(t, err)

	// write some bytes into a new page and unpin it dirty
	p, err := m.NewPage()
	assert.Nil(t, err)
	pid := p.ID()
	rp, err := page.TestingNewRandomPage()
	assert.Nil(t, err)
	copy(p.Data()[:], rp[:])
	err = m.UnpinPage(pid, true)
	assert.Nil(t, err)

	// prepare another page on disk and fetch it.
	// the pool has one frame, so the dirty page must be written back before reuse
	other, err := m.dm.AllocatePage()
	assert.Nil(t, err)
	op, err := page.TestingNewRandomPage()
	assert.Nil(t, err)
	err = m.dm.WritePage(other, op)
	assert.Nil(t, err)

	fetched, err := m.FetchPage(other)
	assert.Nil(t, err)
	assert.Equal(t, other, fetched.ID())
	assert.False(t, fetched.IsDirty())

	// the evicted content must be on disk, byte for byte
	written := page.NewPagePtr()
	err = m.dm.ReadPage(pid, written)
	assert.Nil(t, err)
	assert.True(t, bytes.Equal(written[:], rp[:]))
}

func TestPageTableBijection(t *testing.T) {
	m, err := TestingNewManager(testingPoolCapacity)
	assert.Nil(t, err)

	seen := make(map[FrameID]page.PageID)
	for i := 0; i < testingPoolCapacity; i++ {
		p, err := m.NewPage()
		assert.Nil(t, err)
		frameID, ok := m.table.lookup(p.ID())
		assert.True(t, ok)
		// no two page ids may map to the same frame
		_, dup := seen[frameID]
		assert.False(t, dup)
		seen[frameID] = p.ID()
	}
	assert.Equal(t, testingPoolCapacity, len(seen))
}
