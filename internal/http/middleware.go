package httpserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"access_review/internal/http/handlers"
	"access_review/internal/metrics"
)

// requestLogger logs one line per request and feeds the HTTP metrics.
// Deletions and revoke/reject decisions are logged at warn level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(latency.Seconds())

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"ip", c.ClientIP(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			slog.Error("request failed", append(attrs, "errors", c.Errors.String())...)
		case sensitive(c):
			slog.Warn("sensitive request", attrs...)
		default:
			slog.Info("request", attrs...)
		}
	}
}

func sensitive(c *gin.Context) bool {
	if c.Request.Method == http.MethodDelete {
		return true
	}
	action := strings.ToLower(c.GetString(handlers.ReviewActionKey))
	return action == "revoke" || action == "reject"
}
