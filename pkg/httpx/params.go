package httpx

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// QueryOrDefault — значение query-параметра как есть;
// отсутствующий, пустой или пробельный параметр заменяется на def.
func QueryOrDefault(c *gin.Context, key, def string) string {
	v := c.Query(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// PathParam — параметр пути как есть.
func PathParam(c *gin.Context, key string) string {
	return c.Param(key)
}
