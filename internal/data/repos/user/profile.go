package user

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/rateio-sync-backend/internal/domain"
	"github.com/yungbote/rateio-sync-backend/internal/platform/dbctx"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
)

type ProfileRepo interface {
	// GetByAuthUserID returns nil without error when no profile is linked to the identity.
	GetByAuthUserID(dbc dbctx.Context, authUserID uuid.UUID) (*types.Profile, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) GetByAuthUserID(dbc dbctx.Context, authUserID uuid.UUID) (*types.Profile, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.Profile
	err := txx.WithContext(dbc.Ctx).
		Where("auth_user_id = ?", authUserID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
