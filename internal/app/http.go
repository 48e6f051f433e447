package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/rateio-sync-backend/internal/http"
	httpH "github.com/yungbote/rateio-sync-backend/internal/http/handlers"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
)

func wireServer(db *gorm.DB, log *logger.Logger, cfg Config, s Services) *http.Server {
	log.Info("Wiring router...")
	return http.NewServer(http.RouterConfig{
		Log:           log,
		ServiceName:   cfg.ServiceName,
		RateioHandler: httpH.NewRateioHandler(log, s.Gate, s.Rateio),
		HealthHandler: httpH.NewHealthHandler(db),
	})
}
