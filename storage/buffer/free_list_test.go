package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocateFromFreeList(t *testing.T) {
	m, err := TestingNewManager(2)
	assert.Nil(t, err)

	// every frame is free at construction
	assert.Equal(t, 2, m.freeFrames.Cardinality())

	seen := make(map[FrameID]bool)
	for i := 0; i < 2; i++ {
		frameID, ok := m.allocateFromFreeList()
		assert.True(t, ok)
		assert.False(t, seen[frameID])
		seen[frameID] = true
	}

	// the free list is exhausted now
	_, ok := m.allocateFromFreeList()
	assert.False(t, ok)
}

func TestReturnToFreeList(t *testing.T) {
	m, err := TestingNewManager(1)
	assert.Nil(t, err)

	frameID, ok := m.allocateFromFreeList()
	assert.True(t, ok)
	assert.Equal(t, 0, m.freeFrames.Cardinality())

	m.returnToFreeList(frameID)
	assert.True(t, m.freeFrames.Contains(frameID))
}
