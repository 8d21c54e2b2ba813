package repository

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crownfall/farm-coordinator/internal/domain"
	"github.com/crownfall/farm-coordinator/internal/observability"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

type AccountRepository interface {
	Create(a *domain.Account) error
	FindByID(id uuid.UUID) (*domain.Account, error)
	FindByUsername(username string) (*domain.Account, error)
	List(limit, offset int) ([]domain.Account, error)
	ListByUser(userID uuid.UUID) ([]domain.Account, error)
	Count() (int64, error)
	Update(id uuid.UUID, updates map[string]any) error
	Delete(id uuid.UUID) error
	// SelectForFarming picks one eligible account for the given owner:
	// not farmed, not failed, past the cooldown since last release, not
	// referenced by any live session, and with an active owner. The pick is
	// uniformly random among the `window` least recently released rows so
	// concurrent acquirers fan out across the pool instead of all racing
	// for the single oldest row. Returns ErrAccountNotFound when the
	// eligible set is empty.
	SelectForFarming(userID uuid.UUID, cooldown time.Duration, window int) (*domain.Account, error)
}

type GormAccountRepository struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) AccountRepository { return &GormAccountRepository{db: db} }

func (r *GormAccountRepository) Create(a *domain.Account) error {
	err := r.db.Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAccountExists
	}
	return err
}

func (r *GormAccountRepository) FindByID(id uuid.UUID) (*domain.Account, error) {
	var a domain.Account
	err := r.db.Preload("Session").Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *GormAccountRepository) FindByUsername(username string) (*domain.Account, error) {
	var a domain.Account
	err := r.db.
		Preload("Session").
		Preload("Session.Client").
		Preload("Session.Lobby").
		Preload("Session.Game").
		Where("username = ?", username).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *GormAccountRepository) List(limit, offset int) ([]domain.Account, error) {
	var accounts []domain.Account
	err := r.db.Order("created_at ASC").Limit(limit).Offset(offset).Find(&accounts).Error
	return accounts, err
}

func (r *GormAccountRepository) ListByUser(userID uuid.UUID) ([]domain.Account, error) {
	var accounts []domain.Account
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&accounts).Error
	return accounts, err
}

func (r *GormAccountRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&domain.Account{}).Count(&n).Error
	return n, err
}

func (r *GormAccountRepository) Update(id uuid.UUID, updates map[string]any) error {
	res := r.db.Model(&domain.Account{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *GormAccountRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&domain.Account{}).Error
}

func (r *GormAccountRepository) SelectForFarming(userID uuid.UUID, cooldown time.Duration, window int) (*domain.Account, error) {
	cutoff := time.Now().UTC().Add(-cooldown)

	var accounts []domain.Account
	err := r.db.
		Joins("JOIN users ON users.id = accounts.user_id").
		Where("accounts.user_id = ?", userID).
		Where("accounts.farmed = ?", false).
		Where("accounts.failed = ?", false).
		Where("accounts.farmed_at < ?", cutoff).
		Where("users.status = ?", true).
		Where("NOT EXISTS (SELECT 1 FROM sessions WHERE sessions.account_id = accounts.id)").
		Order("accounts.farmed_at ASC").
		Limit(window).
		Find(&accounts).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "account", "select_for_farming", "error")
		return nil, err
	}
	if len(accounts) == 0 {
		observability.RecordRepositoryOperation(context.Background(), "account", "select_for_farming", "not_found")
		return nil, ErrAccountNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "account", "select_for_farming", "success")
	return &accounts[rand.IntN(len(accounts))], nil
}
