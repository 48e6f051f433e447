package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/rateio-sync-backend/internal/data/repos"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
)

type Repos struct {
	Hub       repos.HubLineRepo
	Overrides repos.SyncOverrideRepo
	Logs      repos.SyncLogRepo
	Profiles  repos.ProfileRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger, cfg Config) (Repos, error) {
	log.Info("Wiring repos...")
	hub, err := repos.NewHubLineRepo(db, log, cfg.ApplyFunction)
	if err != nil {
		return Repos{}, err
	}
	return Repos{
		Hub:       hub,
		Overrides: repos.NewSyncOverrideRepo(db, log),
		Logs:      repos.NewSyncLogRepo(db, log),
		Profiles:  repos.NewProfileRepo(db, log),
	}, nil
}
