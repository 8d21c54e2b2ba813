package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"size:128;uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"size:128" json:"-"`
	Admin     bool      `gorm:"default:false;index" json:"admin"`
	Status    bool      `gorm:"default:true;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Clients  []Client  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Accounts []Account `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
