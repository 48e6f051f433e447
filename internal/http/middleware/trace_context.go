package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/rateio-sync-backend/internal/platform/ctxutil"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderTraceID   = "X-Trace-Id"
)

// AttachTraceContext tags the request with a request id (client supplied or generated) and the
// active span's trace id, and echoes both back.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := ctxutil.Trace{RequestID: strings.TrimSpace(c.GetHeader(HeaderRequestID))}
		if t.RequestID == "" {
			t.RequestID = uuid.NewString()
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			t.TraceID = sc.TraceID().String()
		} else {
			t.TraceID = t.RequestID
		}

		c.Request = c.Request.WithContext(ctxutil.WithTrace(c.Request.Context(), t))
		h := c.Writer.Header()
		h.Set(HeaderRequestID, t.RequestID)
		h.Set(HeaderTraceID, t.TraceID)
		c.Next()
	}
}
