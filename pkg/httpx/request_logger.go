package httpx

import (
	"strconv"
	"time"

	"github.com/Gunvolt24/movies/internal/ports"
	"github.com/Gunvolt24/movies/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// RequestLogger — логирует завершённые запросы и считает их в http_requests_total.
// Служебные маршруты (/metrics, /ping, /ready) не логируются.
func RequestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()

		switch route {
		case "/metrics", "/ping", "/ready":
			return
		}

		// request_id/trace_id/span_id логгер добавит сам из контекста.
		log.Infof(
			c.Request.Context(),
			"request method=%s path=%s route=%s status=%d ip=%s duration=%s size=%d",
			c.Request.Method,
			c.Request.URL.Path,
			route,
			status,
			c.ClientIP(),
			time.Since(start),
			c.Writer.Size(),
		)
	}
}
