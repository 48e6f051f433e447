package repos

import (
	"github.com/yungbote/rateio-sync-backend/internal/data/repos/rateio"
	"github.com/yungbote/rateio-sync-backend/internal/data/repos/user"
)

type HubLineRepo = rateio.HubLineRepo
type SyncOverrideRepo = rateio.SyncOverrideRepo
type SyncLogRepo = rateio.SyncLogRepo

type ProfileRepo = user.ProfileRepo

type (
	HubInsert       = rateio.HubInsert
	HubUpdate       = rateio.HubUpdate
	HubInactivation = rateio.HubInactivation
	ApplyBatch      = rateio.ApplyBatch
	ApplyResult     = rateio.ApplyResult
)

var (
	NewHubLineRepo      = rateio.NewHubLineRepo
	NewSyncOverrideRepo = rateio.NewSyncOverrideRepo
	NewSyncLogRepo      = rateio.NewSyncLogRepo
	NewProfileRepo      = user.NewProfileRepo
)
