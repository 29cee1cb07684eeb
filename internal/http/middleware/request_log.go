package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdataviewer-backend/internal/pkg/ctxutil"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

// quietRoutes are polled by orchestrators and scrapers; they log at debug.
var quietRoutes = map[string]bool{
	"/healthcheck": true,
	"/version":     true,
	"/metrics":     true,
}

// RequestLogger writes one line per request after it completes. 5xx log at
// error, 4xx at warn.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes_out", c.Writer.Size(),
		}
		if route == "" || route != c.Request.URL.Path {
			fields = append(fields, "path", c.Request.URL.Path)
		}
		if c.Request.URL.RawQuery != "" {
			fields = append(fields, "query", c.Request.URL.RawQuery)
		}
		if ct := c.ContentType(); ct == "multipart/form-data" {
			fields = append(fields, "upload_bytes", c.Request.ContentLength)
		}

		ctx := c.Request.Context()
		if td := ctxutil.GetTraceData(ctx); td != nil {
			fields = append(fields, "request_id", td.RequestID)
			if td.TraceID != "" {
				fields = append(fields, "trace_id", td.TraceID)
			}
		}
		if user := ctxutil.GetUserName(ctx); user != "" {
			fields = append(fields, "user", user)
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, "error", errs.String())
		}

		switch {
		case status >= 500:
			log.Error("Request failed", fields...)
		case status >= 400:
			log.Warn("Request rejected", fields...)
		case quietRoutes[route]:
			log.Debug("Request", fields...)
		default:
			log.Info("Request", fields...)
		}
	}
}
