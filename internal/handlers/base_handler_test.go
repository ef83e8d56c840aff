package handlers

import (
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestParsePaginationDefaultsAndBounds(t *testing.T) {
	tests := []struct {
		query    string
		page     int
		pageSize int
	}{
		{"", 1, 6},
		{"page=3&limit=10", 3, 10},
		{"page=-4&limit=0", 1, 6},
		{"page=abc&limit=xyz", 1, 6},
		{"limit=5000", 1, 100},
		{fmt.Sprintf("page=%d&limit=100", math.MaxInt64), maxPage, 100},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, size := ParsePagination(newContext("/api/recipes?" + tt.query))
			assert.Equal(t, tt.page, page)
			assert.Equal(t, tt.pageSize, size)
			assert.GreaterOrEqual(t, (page-1)*size, 0)
		})
	}
}

func TestNewPageLinksPastTheEnd(t *testing.T) {
	c := newContext(fmt.Sprintf("/api/recipes?page=%d&limit=100", math.MaxInt64))
	page, size := ParsePagination(c)

	p := NewPage(c, []int(nil), 3, page, size)
	assert.EqualValues(t, 3, p.Count)
	assert.Empty(t, p.Results)
	assert.Nil(t, p.Next)
	require.NotNil(t, p.Previous)
	assert.Contains(t, *p.Previous, fmt.Sprintf("page=%d", maxPage-1))
}

func TestNewPageLinks(t *testing.T) {
	c := newContext("/api/users?page=2&limit=1")
	p := NewPage(c, []string{"b"}, 3, 2, 1)
	require.NotNil(t, p.Next)
	require.NotNil(t, p.Previous)
	assert.Equal(t, "http://example.com/api/users?limit=1&page=3", *p.Next)
	assert.Equal(t, "http://example.com/api/users?limit=1&page=1", *p.Previous)
}
