package rateio

import (
	"gorm.io/gorm"

	types "github.com/yungbote/rateio-sync-backend/internal/domain"
	"github.com/yungbote/rateio-sync-backend/internal/platform/dbctx"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
)

type SyncLogRepo interface {
	Create(dbc dbctx.Context, entry *types.SyncLog) error
	ListRecent(dbc dbctx.Context, limit int) ([]*types.SyncLog, error)
}

type syncLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSyncLogRepo(db *gorm.DB, baseLog *logger.Logger) SyncLogRepo {
	return &syncLogRepo{db: db, log: baseLog.With("repo", "SyncLogRepo")}
}

func (r *syncLogRepo) Create(dbc dbctx.Context, entry *types.SyncLog) error {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).Create(entry).Error
}

func (r *syncLogRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.SyncLog, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*types.SyncLog
	if err := txx.WithContext(dbc.Ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
