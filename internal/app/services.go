package app

import (
	"fmt"

	"gorm.io/gorm"

	rateiomod "github.com/yungbote/rateio-sync-backend/internal/modules/rateio"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
	"github.com/yungbote/rateio-sync-backend/internal/platform/sheets"
	"github.com/yungbote/rateio-sync-backend/internal/services"
)

type Services struct {
	Sessions services.SessionVerifier
	Gate     services.AuthGate
	Sheets   sheets.Reader
	Rateio   rateiomod.Usecases
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) (Services, error) {
	log.Info("Wiring services...")

	var sessions services.SessionVerifier
	if cfg.Auth.JWTSecret != "" {
		sessions = services.NewJWTSessionVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTAudience)
	} else {
		sessions = services.NewRemoteSessionVerifier(log, cfg.Auth.URL, cfg.Auth.APIKey, c.HTTP)
	}

	reader, err := sheets.NewReader(log, cfg.Sheets, c.HTTP, c.TokenCache)
	if err != nil {
		return Services{}, fmt.Errorf("sheets reader: %w", err)
	}

	return Services{
		Sessions: sessions,
		Gate:     services.NewAuthGate(log, sessions, r.Profiles, cfg.Auth.Policy),
		Sheets:   reader,
		Rateio: rateiomod.New(rateiomod.UsecasesDeps{
			DB:        db,
			Log:       log,
			Hub:       r.Hub,
			Overrides: r.Overrides,
			Logs:      r.Logs,
			Source:    reader,
		}),
	}, nil
}
