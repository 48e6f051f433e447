package domain

import (
	"github.com/yungbote/rateio-sync-backend/internal/domain/rateio"
	"github.com/yungbote/rateio-sync-backend/internal/domain/user"
)

type HubLine = rateio.HubLine
type SyncOverride = rateio.SyncOverride
type SyncLog = rateio.SyncLog

type Profile = user.Profile
