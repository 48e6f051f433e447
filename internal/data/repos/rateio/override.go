package rateio

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/rateio-sync-backend/internal/domain"
	"github.com/yungbote/rateio-sync-backend/internal/platform/dbctx"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
)

type SyncOverrideRepo interface {
	ListByKeys(dbc dbctx.Context, keys []string) ([]*types.SyncOverride, error)
	Upsert(dbc dbctx.Context, rows []*types.SyncOverride) error
	DeleteByKeys(dbc dbctx.Context, keys []string) error
}

type syncOverrideRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSyncOverrideRepo(db *gorm.DB, baseLog *logger.Logger) SyncOverrideRepo {
	return &syncOverrideRepo{db: db, log: baseLog.With("repo", "SyncOverrideRepo")}
}

func (r *syncOverrideRepo) ListByKeys(dbc dbctx.Context, keys []string) ([]*types.SyncOverride, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.SyncOverride
	if len(keys) == 0 {
		return out, nil
	}
	if err := txx.WithContext(dbc.Ctx).
		Where("numero_linha IN ?", keys).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert writes one row per key; an existing row for the key is refreshed in place.
func (r *syncOverrideRepo) Upsert(dbc dbctx.Context, rows []*types.SyncOverride) error {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "numero_linha"}},
			DoUpdates: clause.AssignmentColumns([]string{"planilha_hash", "updated_at", "user_id"}),
		}).
		Create(&rows).Error
}

func (r *syncOverrideRepo) DeleteByKeys(dbc dbctx.Context, keys []string) error {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if len(keys) == 0 {
		return nil
	}
	return txx.WithContext(dbc.Ctx).
		Where("numero_linha IN ?", keys).
		Delete(&types.SyncOverride{}).Error
}
