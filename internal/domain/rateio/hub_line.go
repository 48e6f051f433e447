package rateio

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// HubLine is one row of the authoritative line inventory. Status is nil on legacy
// schemas that predate the status column.
type HubLine struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Nome        *string    `gorm:"column:nome" json:"nome"`
	NumeroLinha *string    `gorm:"column:numero_linha;index" json:"numero_linha"`
	Status      *string    `gorm:"column:status;index" json:"status"`
	UserID      *uuid.UUID `gorm:"type:uuid;column:user_id" json:"user_id,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (HubLine) TableName() string { return "rateio_claro_linhas" }

func (h *HubLine) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

func (h *HubLine) IsInactive() bool {
	return h != nil && h.Status != nil && *h.Status == StatusInactive
}
