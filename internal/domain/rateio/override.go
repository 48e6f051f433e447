package rateio

import (
	"time"

	"github.com/google/uuid"
)

// SyncOverride pins a manually reconciled line to the planilha content hash it was
// dismissed against. It stops matching as soon as the live hash differs.
type SyncOverride struct {
	NumeroLinha  string    `gorm:"column:numero_linha;primaryKey" json:"numero_linha"`
	PlanilhaHash string    `gorm:"column:planilha_hash;not null" json:"planilha_hash"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
	UserID       uuid.UUID `gorm:"type:uuid;column:user_id" json:"user_id"`
}

func (SyncOverride) TableName() string { return "rateio_claro_sync_overrides" }
