package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ParseLimitParam extracts and bounds the "limit" query parameter.
func ParseLimitParam(c *gin.Context) int {
	limitStr := c.DefaultQuery("limit", strconv.Itoa(DefaultListLimit))
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > MaxListLimit {
		return DefaultListLimit
	}
	return limit
}

// ParseBoolParam extracts a boolean query parameter, defaulting to false.
func ParseBoolParam(c *gin.Context, name string) bool {
	v := c.Query(name)
	return v == "true" || v == "1"
}
