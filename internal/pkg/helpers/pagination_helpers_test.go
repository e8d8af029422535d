package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 20)
	assert.Equal(t, uint64(40), offset)
	assert.Equal(t, uint64(20), limit)

	offset, limit = CalculateOffsetLimit(0, 1000)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, uint64(DefaultPageSize), limit)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(27, 2, 10)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)

	empty := NewPaginationInfo(0, 4, 10)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Equal(t, 1, empty.CurrentPage)
}

func TestParseListParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/x?page=2&size=500&sortBy=name&sortOrder=asc", nil)

	p := ParseListParams(c)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, DefaultPageSize, p.Size)
	assert.Equal(t, "name", p.SortBy)
	assert.Equal(t, "ASC", p.SortOrder)
}
