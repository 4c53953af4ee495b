package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateFileOffset(t *testing.T) {
	tests := []struct {
		name     string
		pageID   PageID
		expected int64
	}{
		{
			name:     "first page",
			pageID:   FirstPageID,
			expected: 0,
		},
		{
			name:     "second page",
			pageID:   FirstPageID + 1,
			expected: PageSize,
		},
		{
			name:     "tenth page",
			pageID:   FirstPageID + 9,
			expected: PageSize * 9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateFileOffset(tt.pageID)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPageIDIsValid(t *testing.T) {
	assert.True(t, FirstPageID.IsValid())
	assert.True(t, MaxPageID.IsValid())
	assert.False(t, InvalidPageID.IsValid())
}
