package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NeverFarmed is the freshness-clock zero value. New accounts and VPN
// credentials start here so they sort to the front of the eligible pool.
var NeverFarmed = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// Account is a credentialed resource to be farmed. FarmedAt is the last
// release time; accounts re-enter the eligible pool once the cooldown has
// elapsed since then.
type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:128;uniqueIndex;not null" json:"username"`
	Password     string    `gorm:"size:128" json:"password"`
	SharedSecret string    `gorm:"size:128" json:"shared_secret"`
	SteamID      int64     `json:"steam_id"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Farmed       bool      `gorm:"default:false;index" json:"farmed"`
	Failed       bool      `gorm:"default:false;index" json:"failed"`
	FarmedAt     time.Time `gorm:"index" json:"farmed_at"`
	PlayedAt     time.Time `gorm:"index" json:"played_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	User    *User    `gorm:"foreignKey:UserID" json:"-"`
	Session *Session `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"session,omitempty"`
}

func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.FarmedAt.IsZero() {
		a.FarmedAt = NeverFarmed
	}
	if a.PlayedAt.IsZero() {
		a.PlayedAt = NeverFarmed
	}
	return nil
}
