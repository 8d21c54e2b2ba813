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
	ErrVPNAccountNotFound = errors.New("vpn account not found")
	ErrVPNAccountExists   = errors.New("vpn account already exists")
)

type VPNRepository interface {
	Create(v *domain.VPNAccount) error
	List() ([]domain.VPNAccount, error)
	// SelectForRotation picks uniformly at random among the `window` least
	// recently acquired credentials. There is no exclusive binding, only
	// the freshness clock keeps rotation spread out.
	SelectForRotation(window int) (*domain.VPNAccount, error)
	Touch(id uuid.UUID, at time.Time) error
	Delete(id uuid.UUID) error
}

type GormVPNRepository struct{ db *gorm.DB }

func NewVPNRepository(db *gorm.DB) VPNRepository { return &GormVPNRepository{db: db} }

func (r *GormVPNRepository) Create(v *domain.VPNAccount) error {
	err := r.db.Create(v).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrVPNAccountExists
	}
	return err
}

func (r *GormVPNRepository) List() ([]domain.VPNAccount, error) {
	var accounts []domain.VPNAccount
	err := r.db.Order("created_at ASC").Find(&accounts).Error
	return accounts, err
}

func (r *GormVPNRepository) SelectForRotation(window int) (*domain.VPNAccount, error) {
	var accounts []domain.VPNAccount
	err := r.db.Order("acquired_at ASC").Limit(window).Find(&accounts).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "vpn", "select_for_rotation", "error")
		return nil, err
	}
	if len(accounts) == 0 {
		observability.RecordRepositoryOperation(context.Background(), "vpn", "select_for_rotation", "not_found")
		return nil, ErrVPNAccountNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "vpn", "select_for_rotation", "success")
	return &accounts[rand.IntN(len(accounts))], nil
}

func (r *GormVPNRepository) Touch(id uuid.UUID, at time.Time) error {
	res := r.db.Model(&domain.VPNAccount{}).Where("id = ?", id).Update("acquired_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVPNAccountNotFound
	}
	return nil
}

func (r *GormVPNRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&domain.VPNAccount{}).Error
}
