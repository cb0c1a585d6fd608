package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"keygate/internal/shared/constants"
)

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func pagination(c *gin.Context) (page, limit int) {
	page = queryInt(c, "page", constants.DefaultPage)
	limit = queryInt(c, "limit", constants.DefaultPageSize)
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}
	return page, limit
}

// adminID returns the verified admin subject stored by the auth middleware.
func adminID(c *gin.Context) string {
	if v, ok := c.Get(constants.ContextKeyAdmin); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
