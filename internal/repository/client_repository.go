package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crownfall/farm-coordinator/internal/domain"
)

var ErrClientNotFound = errors.New("client not found")

type ClientRepository interface {
	Create(c *domain.Client) error
	FindByID(id uuid.UUID) (*domain.Client, error)
	// FindWithSession loads the client together with its live session and
	// the session's account, lobby and game, all within the unit's
	// transaction. Callers use it for every state-machine precondition
	// check.
	FindWithSession(id uuid.UUID) (*domain.Client, error)
	List(limit, offset int) ([]domain.Client, error)
	ListByUser(userID uuid.UUID) ([]domain.Client, error)
	Count() (int64, error)
	Update(id uuid.UUID, updates map[string]any) error
	SetSuccessAt(id uuid.UUID, at time.Time) error
	Delete(id uuid.UUID) error
}

type GormClientRepository struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) ClientRepository { return &GormClientRepository{db: db} }

func (r *GormClientRepository) Create(c *domain.Client) error {
	return r.db.Create(c).Error
}

func (r *GormClientRepository) FindByID(id uuid.UUID) (*domain.Client, error) {
	var c domain.Client
	err := r.db.Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormClientRepository) FindWithSession(id uuid.UUID) (*domain.Client, error) {
	var c domain.Client
	err := r.db.
		Preload("Session").
		Preload("Session.Account").
		Preload("Session.Lobby").
		Preload("Session.Game").
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormClientRepository) List(limit, offset int) ([]domain.Client, error) {
	var clients []domain.Client
	err := r.db.
		Preload("Session").
		Preload("Session.Account").
		Preload("Session.Lobby").
		Preload("Session.Game").
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&clients).Error
	return clients, err
}

func (r *GormClientRepository) ListByUser(userID uuid.UUID) ([]domain.Client, error) {
	var clients []domain.Client
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&clients).Error
	return clients, err
}

func (r *GormClientRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&domain.Client{}).Count(&n).Error
	return n, err
}

func (r *GormClientRepository) Update(id uuid.UUID, updates map[string]any) error {
	res := r.db.Model(&domain.Client{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrClientNotFound
	}
	return nil
}

func (r *GormClientRepository) SetSuccessAt(id uuid.UUID, at time.Time) error {
	return r.Update(id, map[string]any{"success_at": at})
}

func (r *GormClientRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&domain.Client{}).Error
}
