package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/rateio-sync-backend/internal/platform/ctxutil"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
)

// ActionKey is the gin context key the rateio handler stores the resolved action under.
const ActionKey = "rateio_action"

// RequestLogger writes one line per request once the handler chain is done. Preflights are
// only logged at debug level.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}

		status := c.Writer.Status()
		fields := append([]interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}, ctxutil.LogFields(c.Request.Context())...)
		if action := c.GetString(ActionKey); action != "" {
			fields = append(fields, "action", action)
		}
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.Role != "" {
			fields = append(fields, "role", rd.Role)
		}

		switch {
		case c.Request.Method == "OPTIONS":
			log.Debug("rateio request", fields...)
		case status >= 500:
			log.Error("rateio request", fields...)
		case status >= 400:
			log.Warn("rateio request", fields...)
		default:
			log.Info("rateio request", fields...)
		}
	}
}
