package rateio

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SyncLog is the append-only audit row written once per apply call.
type SyncLog struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;column:user_id;index" json:"user_id"`
	Inserted         int            `gorm:"column:inserted;not null" json:"inserted"`
	Updated          int            `gorm:"column:updated;not null" json:"updated"`
	Inactivated      int            `gorm:"column:inactivated;not null" json:"inactivated"`
	Options          datatypes.JSON `gorm:"column:options" json:"options"`
	ChecksumPlanilha string         `gorm:"column:checksum_planilha" json:"checksum_planilha"`
	Payload          datatypes.JSON `gorm:"column:payload" json:"payload"`
	CreatedAt        time.Time      `gorm:"not null;index" json:"created_at"`
}

func (SyncLog) TableName() string { return "rateio_claro_sync_logs" }

func (l *SyncLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
