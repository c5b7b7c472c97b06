package httpx

import (
	"github.com/Gunvolt24/movies/pkg/ctxmeta"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"

	// maxRequestIDLen — клиентские идентификаторы длиннее этого заменяются сгенерированными.
	maxRequestIDLen = 128
)

// RequestIDMiddleware — берёт X-Request-ID клиента или генерирует UUID,
// кладёт его в контекст запроса и возвращает в ответном заголовке.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		ctx := ctxmeta.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
