package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/crownfall/farm-coordinator/internal/domain"
	"github.com/crownfall/farm-coordinator/internal/storage"
)

type CreateAccountInput struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	SharedSecret string `json:"shared_secret"`
	SteamID      int64  `json:"steam_id"`
}

type AccountService struct {
	store  *storage.Store
	logger *slog.Logger
}

func NewAccountService(store *storage.Store, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{store: store, logger: logger}
}

func (s *AccountService) GetAccount(ctx context.Context, username string) (*domain.Account, error) {
	var account *domain.Account
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		var err error
		account, err = u.Accounts.FindByUsername(username)
		return err
	})
	return account, err
}

// CreateAccount registers a farmable account for the owner. Duplicate
// usernames surface as ErrAccountExists, never as a retried conflict.
func (s *AccountService) CreateAccount(ctx context.Context, userID uuid.UUID, input CreateAccountInput) (*domain.Account, error) {
	account := &domain.Account{
		Username:     input.Username,
		Password:     input.Password,
		SharedSecret: input.SharedSecret,
		SteamID:      input.SteamID,
		UserID:       userID,
	}
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		return u.Accounts.Create(account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountService) RemoveAccount(ctx context.Context, username string) error {
	return s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		account, err := u.Accounts.FindByUsername(username)
		if err != nil {
			return err
		}
		return u.Accounts.Delete(account.ID)
	})
}
