package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationContext(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/posts"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, defaultPageSize},
		{"explicit", "?page=3&limit=10", 3, 10},
		{"zero page clamps to first", "?page=0", 1, defaultPageSize},
		{"negative limit falls back", "?limit=-5", 1, defaultPageSize},
		{"limit capped", "?limit=500", 1, maxPageSize},
		{"garbage falls back", "?page=abc&limit=xyz", 1, defaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := parsePagination(paginationContext(t, tt.query))
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	page1, meta := paginate(items, 1, 3)
	assert.Equal(t, []int{1, 2, 3}, page1)
	assert.Equal(t, Pagination{Page: 1, Limit: 3, Total: 7, TotalPages: 3}, meta)

	page3, meta := paginate(items, 3, 3)
	assert.Equal(t, []int{7}, page3)
	assert.Equal(t, 3, meta.TotalPages)

	beyond, meta := paginate(items, 9, 3)
	assert.Empty(t, beyond)
	assert.Equal(t, int64(7), meta.Total)

	empty, meta := paginate([]int{}, 1, 20)
	assert.Empty(t, empty)
	assert.Equal(t, 0, meta.TotalPages)
}
