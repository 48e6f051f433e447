package user

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Profile is the dashboard profile joined to an auth identity. It is owned by the
// dashboard and only read here.
type Profile struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AuthUserID uuid.UUID      `gorm:"type:uuid;column:auth_user_id;uniqueIndex" json:"auth_user_id"`
	Nome       string         `gorm:"column:nome" json:"nome"`
	Role       string         `gorm:"column:role" json:"role"`
	Modules    pq.StringArray `gorm:"type:text[];column:modules" json:"modules"`
	IsActive   bool           `gorm:"column:is_active;not null" json:"is_active"`
}

func (Profile) TableName() string { return "profiles" }

func (p *Profile) HasModule(key string) bool {
	if p == nil {
		return false
	}
	for _, m := range p.Modules {
		if m == key {
			return true
		}
	}
	return false
}
