package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLimit is the page size used when the limit query parameter is absent.
	DefaultLimit = 10

	// MaxLimit is the largest accepted page size.
	MaxLimit = 100
)

// ParsePagination parses offset (default 0) and limit (default DefaultLimit, at most MaxLimit).
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	return ParsePaginationWithDefault(c, DefaultLimit)
}

// ParsePaginationWithDefault is ParsePagination with a caller-chosen default limit.
func ParsePaginationWithDefault(c *gin.Context, defaultLimit int) (offset, limit int, err error) {
	offsetStr := c.DefaultQuery("offset", "0")
	offset, err = strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		return 0, 0, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
	}

	limitStr := c.DefaultQuery("limit", strconv.Itoa(defaultLimit))
	limit, err = strconv.Atoi(limitStr)
	if err != nil || limit < 1 || limit > MaxLimit {
		return 0, 0, fmt.Errorf("invalid limit parameter: must be between 1 and %d", MaxLimit)
	}

	return offset, limit, nil
}
