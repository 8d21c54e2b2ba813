package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LobbyState string

const (
	LobbyPreparing       LobbyState = "Preparing"
	LobbyAllJoined       LobbyState = "AllJoined"
	LobbyInvitesSent     LobbyState = "InvitesSent"
	LobbyInvitesAccepted LobbyState = "InvitesAccepted"
	LobbyMembersLoaded   LobbyState = "MembersLoaded"
	LobbySearchStarted   LobbyState = "SearchStarted"
)

// Lobby is a matchmaking group. It stays in Preparing while members join;
// only a Preparing lobby is eligible for reuse by newly acquiring sessions.
type Lobby struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SteamID   *string    `gorm:"size:128;uniqueIndex" json:"steam_id,omitempty"`
	State     LobbyState `gorm:"size:32;default:'Preparing';index" json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Sessions []Session `gorm:"foreignKey:LobbyID" json:"sessions,omitempty"`
}

func (l *Lobby) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.State == "" {
		l.State = LobbyPreparing
	}
	return nil
}

type GameState string

const (
	GamePreparing GameState = "Preparing"
	GameConfirmed GameState = "Confirmed"
)

// Game is an in-progress match keyed by the externally supplied match id.
type Game struct {
	ID        string    `gorm:"size:128;primaryKey" json:"id"`
	State     GameState `gorm:"size:32;default:'Preparing'" json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sessions []Session `gorm:"foreignKey:GameID" json:"sessions,omitempty"`
}

func (g *Game) BeforeCreate(*gorm.DB) error {
	if g.State == "" {
		g.State = GamePreparing
	}
	return nil
}
