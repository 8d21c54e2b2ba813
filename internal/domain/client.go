package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is one physical automation endpoint. At most one live Session
// binds it to an Account.
type Client struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	IPAddress string     `gorm:"size:128" json:"ip_address"`
	Name      string     `gorm:"size:128" json:"name"`
	Active    bool       `gorm:"default:true;index" json:"active"`
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	SuccessAt *time.Time `json:"success_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	User    *User    `gorm:"foreignKey:UserID" json:"-"`
	Session *Session `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"session,omitempty"`
	Reports []Report `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (c *Client) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
