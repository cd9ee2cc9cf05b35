package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewParams(t *testing.T) {
	tests := []struct {
		name              string
		page, per, limit  int
		wantPage, wantPer int
	}{
		{"defaults", 0, 0, 0, 1, 15},
		{"limit wins", 2, 10, 25, 2, 25},
		{"capped", 1, 500, 0, 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParams(tt.page, tt.per, tt.limit)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPer, p.PerPage)
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 35)
	assert.Equal(t, 4, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := NewPaginatedResult[int](nil, NewPagination(1, 10, 0))
	assert.NotNil(t, empty.Items)
	assert.False(t, empty.Pagination.HasNext)
}
