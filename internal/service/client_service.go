package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crownfall/farm-coordinator/internal/domain"
	"github.com/crownfall/farm-coordinator/internal/observability"
	"github.com/crownfall/farm-coordinator/internal/repository"
	"github.com/crownfall/farm-coordinator/internal/storage"
)

type SessionFlag string

const (
	SessionAccepted SessionFlag = "Accepted"
	SessionLoaded   SessionFlag = "Loaded"
)

type AccountOutcome string

const (
	AccountFarmed AccountOutcome = "Farmed"
	AccountFailed AccountOutcome = "Failed"
)

type CreateClientInput struct {
	IPAddress string    `json:"ip_address"`
	Name      string    `json:"name"`
	UserID    uuid.UUID `json:"user_id"`
}

type UpdateClientInput struct {
	IPAddress *string `json:"ip_address,omitempty"`
	Name      *string `json:"name,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

type ClientPage struct {
	Data  []domain.Client `json:"data"`
	Total int64           `json:"total"`
	Limit int             `json:"limit"`
	Pages int             `json:"pages"`
}

// ClientService drives the per-client session workflow: account acquire,
// lobby and game binding, the intermediate flag transitions, and release.
// Every operation runs as one transactional unit; the isolation level and
// retry policy per operation reflect its contention risk.
type ClientService struct {
	store        *storage.Store
	logger       *slog.Logger
	farmCooldown time.Duration
	farmWindow   int
}

func NewClientService(store *storage.Store, logger *slog.Logger, farmCooldown time.Duration, farmWindow int) *ClientService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientService{
		store:        store,
		logger:       logger,
		farmCooldown: farmCooldown,
		farmWindow:   farmWindow,
	}
}

func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var client *domain.Client
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		var err error
		client, err = u.Clients.FindWithSession(id)
		return err
	})
	return client, err
}

func (s *ClientService) GetClients(ctx context.Context, limit, offset int) (*ClientPage, error) {
	page := &ClientPage{Limit: limit}
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		clients, err := u.Clients.List(limit, offset)
		if err != nil {
			return err
		}
		total, err := u.Clients.Count()
		if err != nil {
			return err
		}
		page.Data = clients
		page.Total = total
		page.Pages = pageCount(total, limit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *ClientService) CreateClient(ctx context.Context, input CreateClientInput) (*domain.Client, error) {
	client := &domain.Client{
		IPAddress: input.IPAddress,
		Name:      input.Name,
		Active:    true,
		UserID:    input.UserID,
	}
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		if _, err := u.Users.FindByID(input.UserID); err != nil {
			return err
		}
		return u.Clients.Create(client)
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, input UpdateClientInput) error {
	updates := map[string]any{}
	if input.IPAddress != nil {
		updates["ip_address"] = *input.IPAddress
	}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if len(updates) == 0 {
		return nil
	}
	return s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		return u.Clients.Update(id, updates)
	})
}

// RemoveClient deletes the client; the session, if any, goes with it via
// the cascade.
func (s *ClientService) RemoveClient(ctx context.Context, id uuid.UUID) error {
	return s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		return u.Clients.Delete(id)
	})
}

// AcquireSessionAccount binds one eligible account to the client by
// creating its session. The client must have no session yet. Selection and
// binding happen in the same transaction, so the unique account binding is
// the conflict detector: a lost race is retried and the next attempt no
// longer sees the claimed account.
func (s *ClientService) AcquireSessionAccount(ctx context.Context, clientID uuid.UUID) (*domain.Account, error) {
	var account *domain.Account
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.FarmAcquireRetry, func(u *storage.Unit) error {
		client, err := u.Clients.FindWithSession(clientID)
		if err != nil {
			return err
		}
		if client.Session != nil {
			return ErrSessionActionForbidden
		}
		account, err = u.Accounts.SelectForFarming(client.UserID, s.farmCooldown, s.farmWindow)
		if err != nil {
			return err
		}
		return u.Sessions.Create(&domain.Session{
			ClientID:  client.ID,
			AccountID: account.ID,
		})
	})
	if err != nil {
		observability.RecordResourceAcquisition(ctx, "account", acquisitionOutcome(err))
		return nil, err
	}
	observability.RecordResourceAcquisition(ctx, "account", "success")
	s.logger.InfoContext(ctx, "account acquired", "client_id", clientID, "account", account.Username)
	return account, nil
}

// AcquireSessionLobby joins an open lobby or founds a new one. The session
// that creates the lobby becomes its Leader; sessions joining an existing
// Preparing lobby become Members.
func (s *ClientService) AcquireSessionLobby(ctx context.Context, clientID uuid.UUID) (domain.SessionRole, error) {
	var role domain.SessionRole
	err := s.store.RunRetry(ctx, storage.Serializable, storage.AcquireRetry, func(u *storage.Unit) error {
		client, err := u.Clients.FindWithSession(clientID)
		if err != nil {
			return err
		}
		if client.Session == nil {
			return repository.ErrSessionNotFound
		}
		if client.Session.LobbyID != nil {
			return ErrSessionActionForbidden
		}

		role = domain.RoleMember
		lobby, err := u.Lobbies.FindPreparing()
		if errors.Is(err, repository.ErrLobbyNotFound) {
			lobby = &domain.Lobby{State: domain.LobbyPreparing}
			if err := u.Lobbies.Create(lobby); err != nil {
				return err
			}
			role = domain.RoleLeader
		} else if err != nil {
			return err
		}

		return u.Sessions.Update(client.Session.ID, map[string]any{
			"lobby_id": lobby.ID,
			"role":     role,
		})
	})
	if err != nil {
		observability.RecordResourceAcquisition(ctx, "lobby", acquisitionOutcome(err))
		return domain.RoleNone, err
	}
	observability.RecordResourceAcquisition(ctx, "lobby", "success")
	s.logger.InfoContext(ctx, "lobby acquired", "client_id", clientID, "role", string(role))
	return role, nil
}

func (s *ClientService) SetSessionLobbySteamID(ctx context.Context, clientID uuid.UUID, steamID string) error {
	return s.store.RunRetry(ctx, storage.Serializable, storage.DefaultRetry, func(u *storage.Unit) error {
		client, err := u.Clients.FindWithSession(clientID)
		if err != nil {
			return err
		}
		if client.Session == nil {
			return repository.ErrSessionNotFound
		}
		if client.Session.LobbyID == nil {
			return repository.ErrLobbyNotFound
		}
		return u.Lobbies.Update(*client.Session.LobbyID, map[string]any{"steam_id": steamID})
	})
}

// SetSessionLobbyState advances the bound lobby to the caller-specified
// state. Only the forward transitions the clients drive are accepted.
func (s *ClientService) SetSessionLobbyState(ctx context.Context, clientID uuid.UUID, state domain.LobbyState) error {
	if state != domain.LobbyInvitesSent && state != domain.LobbySearchStarted {
		return ErrSessionActionForbidden
	}
	return s.store.RunRetry(ctx, storage.Serializable, storage.DefaultRetry, func(u *storage.Unit) error {
		client, err := u.Clients.FindWithSession(clientID)
		if err != nil {
			return err
		}
		if client.Session == nil {
			return repository.ErrSessionNotFound
		}
		if client.Session.LobbyID == nil {
			return repository.ErrLobbyNotFound
		}
		return u.Lobbies.Update(*client.Session.LobbyID, map[string]any{"state": state})
	})
}

// SetSessionFlag marks the session accepted or loaded. Setting a flag that
// is already set is a no-op, not an error.
func (s *ClientService) SetSessionFlag(ctx context.Context, clientID uuid.UUID, flag SessionFlag) error {
	var updates map[string]any
	switch flag {
	case SessionAccepted:
		updates = map[string]any{"accepted": true}
	case SessionLoaded:
		updates = map[string]any{"loaded": true}
	default:
		return ErrSessionActionForbidden
	}
	return s.store.RunRetry(ctx, storage.Serializable, storage.DefaultRetry, func(u *storage.Unit) error {
		client, err := u.Clients.FindWithSession(clientID)
		if err != nil {
			return err
		}
		if client.Session == nil {
			return repository.ErrSessionNotFound
		}
		return u.Sessions.Update(client.Session.ID, updates)
	})
}

// AcquireSessionGame binds the session to the externally identified match,
// creating the game record the first time any session reports it.
func (s *ClientService) AcquireSessionGame(ctx context.Context, clientID uuid.UUID, gameID string) error {
	err := s.store.RunRetry(ctx, storage.Serializable, storage.AcquireRetry, func(u *storage.Unit) error {
		client, err := u.Clients.FindWithSession(clientID)
		if err != nil {
			return err
		}
		if client.Session == nil {
			return repository.ErrSessionNotFound
		}
		if client.Session.GameID != nil {
			return ErrSessionActionForbidden
		}

		game, err := u.Games.FindByID(gameID)
		if errors.Is(err, repository.ErrGameNotFound) {
			game = &domain.Game{ID: gameID, State: domain.GamePreparing}
			if err := u.Games.Create(game); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		return u.Sessions.Update(client.Session.ID, map[string]any{"game_id": game.ID})
	})
	if err != nil {
		observability.RecordResourceAcquisition(ctx, "game", acquisitionOutcome(err))
		return err
	}
	observability.RecordResourceAcquisition(ctx, "game", "success")
	return nil
}

// SetSessionAccount marks the bound account farmed or failed.
func (s *ClientService) SetSessionAccount(ctx context.Context, clientID uuid.UUID, outcome AccountOutcome) error {
	var updates map[string]any
	switch outcome {
	case AccountFarmed:
		updates = map[string]any{"farmed": true}
	case AccountFailed:
		updates = map[string]any{"failed": true}
	default:
		return ErrSessionActionForbidden
	}
	return s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		client, err := u.Clients.FindWithSession(clientID)
		if err != nil {
			return err
		}
		if client.Session == nil {
			return repository.ErrSessionNotFound
		}
		return u.Accounts.Update(client.Session.AccountID, updates)
	})
}

// ReleaseSession tears down the client's session and restarts the bound
// account's freshness clock so it re-enters the pool after the cooldown.
// A client with no session releases successfully as a no-op.
func (s *ClientService) ReleaseSession(ctx context.Context, clientID uuid.UUID) error {
	return s.store.RunRetry(ctx, storage.RepeatableRead, storage.DefaultRetry, func(u *storage.Unit) error {
		client, err := u.Clients.FindWithSession(clientID)
		if err != nil {
			return err
		}
		if client.Session == nil {
			return nil
		}
		if err := u.Accounts.Update(client.Session.AccountID, map[string]any{"farmed_at": time.Now().UTC()}); err != nil {
			return err
		}
		return u.Sessions.Delete(client.Session.ID)
	})
}

// SetSuccess stamps the client's and the bound account's last-success
// clocks.
func (s *ClientService) SetSuccess(ctx context.Context, clientID uuid.UUID) error {
	now := time.Now().UTC()
	return s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		client, err := u.Clients.FindWithSession(clientID)
		if err != nil {
			return err
		}
		if client.Session == nil {
			return repository.ErrSessionNotFound
		}
		if err := u.Clients.SetSuccessAt(client.ID, now); err != nil {
			return err
		}
		return u.Accounts.Update(client.Session.AccountID, map[string]any{"played_at": now})
	})
}

func (s *ClientService) GetSessionLobby(ctx context.Context, clientID uuid.UUID) (*domain.Lobby, error) {
	var lobby *domain.Lobby
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		client, err := u.Clients.FindWithSession(clientID)
		if err != nil {
			return err
		}
		if client.Session == nil {
			return repository.ErrSessionNotFound
		}
		if client.Session.LobbyID == nil {
			return repository.ErrLobbyNotFound
		}
		lobby, err = u.Lobbies.FindByID(*client.Session.LobbyID)
		return err
	})
	return lobby, err
}

func (s *ClientService) GetSessionGame(ctx context.Context, clientID uuid.UUID) (*domain.Game, error) {
	var game *domain.Game
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		client, err := u.Clients.FindWithSession(clientID)
		if err != nil {
			return err
		}
		if client.Session == nil {
			return repository.ErrSessionNotFound
		}
		if client.Session.GameID == nil {
			return repository.ErrGameNotFound
		}
		game, err = u.Games.FindByID(*client.Session.GameID)
		return err
	})
	return game, err
}

func acquisitionOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, repository.ErrAccountNotFound),
		errors.Is(err, repository.ErrLobbyNotFound),
		errors.Is(err, repository.ErrGameNotFound),
		errors.Is(err, repository.ErrVPNAccountNotFound):
		return "not_found"
	case errors.Is(err, ErrSessionActionForbidden):
		return "forbidden"
	default:
		return "error"
	}
}

func pageCount(total int64, limit int) int {
	if limit <= 0 {
		return 1
	}
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return pages
}
