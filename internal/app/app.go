package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/rateio-sync-backend/internal/data/db"
	"github.com/yungbote/rateio-sync-backend/internal/http"
	"github.com/yungbote/rateio-sync-backend/internal/observability"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *gorm.DB
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *http.Server

	postgres     *db.PostgresService
	otelShutdown func(context.Context) error
}

// Open connects to Postgres and, when AUTO_MIGRATE is set, migrates before anything reads.
func Open(log *logger.Logger, cfg Config) (*db.PostgresService, error) {
	pg, err := db.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	if cfg.AutoMigrate {
		if err := db.AutoMigrateSync(pg.DB(), cfg.MigrateShared); err != nil {
			_ = pg.Close()
			return nil, err
		}
	}
	return pg, nil
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	pg, err := Open(log, cfg)
	if err != nil {
		return nil, err
	}
	a := &App{Log: log, Cfg: cfg, DB: pg.DB(), postgres: pg, otelShutdown: shutdown}

	if a.Clients, err = wireClients(log, cfg); err != nil {
		a.Close()
		return nil, err
	}
	if a.Repos, err = wireRepos(a.DB, log, cfg); err != nil {
		a.Close()
		return nil, err
	}
	if a.Services, err = wireServices(a.DB, log, cfg, a.Repos, a.Clients); err != nil {
		a.Close()
		return nil, err
	}
	a.Server = wireServer(a.DB, log, cfg, a.Services)
	return a, nil
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func (a *App) Run() error {
	addr := ":" + a.Cfg.Port
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("Server listening", "addr", addr)
		errCh <- a.Server.Run(addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-errCh:
		return err
	case s := <-sig:
		a.Log.Info("Shutting down", "signal", s.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.Server.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errCh
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	a.Clients.Close()
	if a.postgres != nil {
		if err := a.postgres.Close(); err != nil {
			a.Log.Warn("postgres close failed", "error", err)
		}
	}
	a.Log.Sync()
}
