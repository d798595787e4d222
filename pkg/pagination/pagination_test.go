package pagination

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateClamps(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 500}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPerPage, p.PerPage)
	assert.Equal(t, 0, p.Offset())

	p = &PaginationParams{Page: 3, PerPage: -1}
	p.Validate()
	assert.Equal(t, DefaultPerPage, p.PerPage)
	assert.Equal(t, 30, p.Offset())
}

func TestNewPagination(t *testing.T) {
	pg := NewPagination(2, 15, 31)
	assert.Equal(t, 3, pg.TotalPages)
	assert.True(t, pg.HasNext)
	assert.True(t, pg.HasPrev)

	pg = NewPagination(1, 0, 0)
	assert.Equal(t, DefaultPerPage, pg.PerPage)
	assert.Equal(t, 0, pg.TotalPages)
	assert.False(t, pg.HasNext)
}

func TestEmptyResultEncodesAsArray(t *testing.T) {
	out, err := json.Marshal(NewPaginatedResult[string](nil, NewPagination(1, 15, 0)))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"items":[]`)
}
