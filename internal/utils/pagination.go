package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"github.com/yukikurage/governance-api/internal/constants"
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// GetPaginationParams reads ?page and ?page_size (or the older ?limit).
// Unparsable values fall back to the defaults and oversized pages are capped.
func GetPaginationParams(c *gin.Context) Page {
	number := cast.ToInt(c.Query("page"))
	if number < 1 {
		number = 1
	}

	raw := c.Query("page_size")
	if raw == "" {
		raw = c.Query("limit")
	}
	size := cast.ToInt(raw)
	switch {
	case size < constants.MinPageSize:
		size = constants.DefaultPageSize
	case size > constants.MaxPageSize:
		size = constants.MaxPageSize
	}

	return Page{Number: number, Size: size}
}
