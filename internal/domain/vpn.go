package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VPNAccount is an egress credential pool entry. There is no exclusive
// binding; rotation is constrained only by the AcquiredAt freshness clock.
// The default is applied application-side so sqlite and postgres deployments
// agree on the initial ordering.
type VPNAccount struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username   string    `gorm:"size:128;uniqueIndex;not null" json:"username"`
	Password   string    `gorm:"size:128" json:"password"`
	AcquiredAt time.Time `gorm:"index" json:"acquired_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (VPNAccount) TableName() string { return "vpn_accounts" }

func (v *VPNAccount) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.AcquiredAt.IsZero() {
		v.AcquiredAt = NeverFarmed
	}
	return nil
}
