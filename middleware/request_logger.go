package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mediafolder/metrics"
	"mediafolder/utils"
)

const RequestIDHeader = "X-Request-Id"

func newRequestID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// RequestLogger tags the request context with a request id, writes one access
// log line per request and records HTTP metrics.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = newRequestID()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(utils.WithRequestID(c.Request.Context(), id))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		latency := time.Since(start)

		if route != "/metrics" {
			code := strconv.Itoa(status)
			metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, code).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, code).Observe(latency.Seconds())
		}

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		slog.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency)
	}
}
