package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/rateio-sync-backend/internal/http/handlers"
	httpMW "github.com/yungbote/rateio-sync-backend/internal/http/middleware"
	"github.com/yungbote/rateio-sync-backend/internal/http/response"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
)

const FunctionPath = "/functions/v1/rateio-claro-sync"

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string

	RateioHandler *httpH.RateioHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	r.NoRoute(func(c *gin.Context) {
		response.RespondError(c, http.StatusNotFound, "not_found", errors.New("not found"))
	})
	r.NoMethod(func(c *gin.Context) {
		httpMW.SetCORSHeaders(c)
		response.RespondError(c, http.StatusMethodNotAllowed, "method_not_allowed", errors.New("method not allowed"))
	})

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	fn := r.Group(FunctionPath)
	{
		fn.OPTIONS("", httpMW.Preflight)
		fn.OPTIONS("/:action", httpMW.Preflight)
		if cfg.RateioHandler != nil {
			fn.POST("", cfg.RateioHandler.Handle)
			fn.POST("/:action", cfg.RateioHandler.Handle)
		}
	}

	return r
}
