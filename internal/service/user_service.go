package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/crownfall/farm-coordinator/internal/domain"
	"github.com/crownfall/farm-coordinator/internal/repository"
	"github.com/crownfall/farm-coordinator/internal/security"
	"github.com/crownfall/farm-coordinator/internal/storage"
)

type CreateUserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateUserInput struct {
	Password *string `json:"password,omitempty"`
	Status   *bool   `json:"status,omitempty"`
}

type TokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UserService struct {
	store    *storage.Store
	logger   *slog.Logger
	jwt      *security.JWTManager
	tokenTTL time.Duration
}

func NewUserService(store *storage.Store, logger *slog.Logger, jwt *security.JWTManager, tokenTTL time.Duration) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &UserService{store: store, logger: logger, jwt: jwt, tokenTTL: tokenTTL}
}

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Username: input.Username,
		Password: string(hash),
		Status:   true,
	}
	err = s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		return u.Users.Create(user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks the password and issues a signed access token.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*TokenResult, error) {
	var user *domain.User
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		var err error
		user, err = u.Users.FindByUsername(username)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrIncorrectPassword
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrIncorrectPassword
	}
	token, err := s.jwt.Sign(user.ID, user.Username, user.Admin, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenResult{AccessToken: token, TokenType: "bearer"}, nil
}

// VerifyToken parses the bearer token and loads the current user record.
func (s *UserService) VerifyToken(ctx context.Context, raw string) (*domain.User, error) {
	claims, err := s.jwt.Parse(raw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	var user *domain.User
	err = s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		var err error
		user, err = u.Users.FindByID(userID)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user *domain.User
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		var err error
		user, err = u.Users.FindByID(id)
		return err
	})
	return user, err
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) error {
	updates := map[string]any{}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		updates["password"] = string(hash)
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return nil
	}
	return s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		if _, err := u.Users.FindByID(id); err != nil {
			return err
		}
		return u.Users.Update(id, updates)
	})
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	var users []domain.User
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		var err error
		users, err = u.Users.List(limit, offset)
		return err
	})
	return users, err
}

// Derived per-user views run at repeatable read so the related rows come
// from one snapshot.

func (s *UserService) GetUserClients(ctx context.Context, userID uuid.UUID) ([]domain.Client, error) {
	var clients []domain.Client
	err := s.store.RunRetry(ctx, storage.RepeatableRead, storage.DefaultRetry, func(u *storage.Unit) error {
		if _, err := u.Users.FindByID(userID); err != nil {
			return err
		}
		var err error
		clients, err = u.Clients.ListByUser(userID)
		return err
	})
	return clients, err
}

func (s *UserService) GetUserAccounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	var accounts []domain.Account
	err := s.store.RunRetry(ctx, storage.RepeatableRead, storage.DefaultRetry, func(u *storage.Unit) error {
		if _, err := u.Users.FindByID(userID); err != nil {
			return err
		}
		var err error
		accounts, err = u.Accounts.ListByUser(userID)
		return err
	})
	return accounts, err
}

// GetUserReports pages through reports filed by any of the user's clients.
func (s *UserService) GetUserReports(ctx context.Context, userID uuid.UUID, limit, offset int) (*ReportPage, error) {
	if limit <= 0 {
		limit = 50
	}
	page := &ReportPage{}
	err := s.store.RunRetry(ctx, storage.RepeatableRead, storage.DefaultRetry, func(u *storage.Unit) error {
		if _, err := u.Users.FindByID(userID); err != nil {
			return err
		}
		reports, err := u.Reports.ListByOwner(userID, limit, offset)
		if err != nil {
			return err
		}
		total, err := u.Reports.CountByOwner(userID)
		if err != nil {
			return err
		}
		page.Reports = reports
		page.Total = total
		page.Pages = pageCount(total, limit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}
