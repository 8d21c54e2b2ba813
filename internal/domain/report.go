package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report is a client-submitted failure report.
type Report struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID  uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`
	Error     string    `json:"error"`
	Traceback string    `json:"traceback"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client *Client `gorm:"foreignKey:ClientID" json:"-"`
}

func (r *Report) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Launcher holds the currently published launcher build version. A single
// row, upserted.
type Launcher struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Version   string    `gorm:"size:128" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Launcher) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
