package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/pdataviewer-backend/internal/pkg/ctxutil"
)

const requestIDHeader = "X-Request-Id"

// maxRequestIDLen bounds client supplied ids before they reach the logs.
const maxRequestIDLen = 128

// TraceContext tags the request with a request id (the client's X-Request-Id
// when it is usable, a fresh uuid otherwise) and the otel trace id. Both are
// echoed back so import uploads can be matched to server logs.
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if !usableRequestID(reqID) {
			reqID = uuid.NewString()
		}

		td := &ctxutil.TraceData{RequestID: reqID}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			td.TraceID = sc.TraceID().String()
			c.Header("X-Trace-Id", td.TraceID)
		}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Header(requestIDHeader, reqID)
		c.Next()
	}
}

func usableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if b := id[i]; b < 0x21 || b > 0x7e {
			return false
		}
	}
	return true
}
