package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRole string

const (
	RoleNone   SessionRole = ""
	RoleLeader SessionRole = "Leader"
	RoleMember SessionRole = "Member"
)

// Session binds one Client to one Account for the duration of a farming
// run, and optionally to a Lobby and a Game as the workflow advances. The
// unique indexes on ClientID and AccountID are the authoritative guards
// against double acquisition: a racing transaction fails the insert and is
// retried, at which point the row is no longer eligible.
type Session struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID  uuid.UUID   `gorm:"type:uuid;uniqueIndex;not null" json:"client_id"`
	AccountID uuid.UUID   `gorm:"type:uuid;uniqueIndex;not null" json:"account_id"`
	LobbyID   *uuid.UUID  `gorm:"type:uuid;index" json:"lobby_id,omitempty"`
	GameID    *string     `gorm:"size:128;index" json:"game_id,omitempty"`
	Accepted  bool        `gorm:"default:false" json:"accepted"`
	Loaded    bool        `gorm:"default:false" json:"loaded"`
	Role      SessionRole `gorm:"size:16;default:''" json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	Client  *Client  `gorm:"foreignKey:ClientID" json:"-"`
	Account *Account `gorm:"foreignKey:AccountID" json:"-"`
	Lobby   *Lobby   `gorm:"foreignKey:LobbyID;constraint:OnDelete:SET NULL" json:"lobby,omitempty"`
	Game    *Game    `gorm:"foreignKey:GameID;constraint:OnDelete:SET NULL" json:"game,omitempty"`
}

func (s *Session) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
