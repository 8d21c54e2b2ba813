package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crownfall/farm-coordinator/internal/domain"
	"github.com/crownfall/farm-coordinator/internal/observability"
)

var ErrLobbyNotFound = errors.New("lobby not found")

type LobbyRepository interface {
	Create(l *domain.Lobby) error
	FindByID(id uuid.UUID) (*domain.Lobby, error)
	// FindPreparing returns an open lobby still collecting members, if any.
	// Concurrent acquirers may race to join the same one; correctness comes
	// from serializable isolation plus retry, not locking.
	FindPreparing() (*domain.Lobby, error)
	List(limit, offset int) ([]domain.Lobby, error)
	Update(id uuid.UUID, updates map[string]any) error
	Delete(id uuid.UUID) error
}

type GormLobbyRepository struct{ db *gorm.DB }

func NewLobbyRepository(db *gorm.DB) LobbyRepository { return &GormLobbyRepository{db: db} }

func (r *GormLobbyRepository) Create(l *domain.Lobby) error {
	err := r.db.Create(l).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "lobby", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "lobby", "create", "success")
	return nil
}

func (r *GormLobbyRepository) FindByID(id uuid.UUID) (*domain.Lobby, error) {
	var l domain.Lobby
	err := r.db.
		Preload("Sessions").
		Preload("Sessions.Client").
		Preload("Sessions.Account").
		Where("id = ?", id).
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLobbyNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *GormLobbyRepository) FindPreparing() (*domain.Lobby, error) {
	var l domain.Lobby
	err := r.db.Where("state = ?", domain.LobbyPreparing).Order("created_at ASC").First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLobbyNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *GormLobbyRepository) List(limit, offset int) ([]domain.Lobby, error) {
	var lobbies []domain.Lobby
	err := r.db.
		Preload("Sessions").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&lobbies).Error
	return lobbies, err
}

func (r *GormLobbyRepository) Update(id uuid.UUID, updates map[string]any) error {
	res := r.db.Model(&domain.Lobby{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLobbyNotFound
	}
	return nil
}

func (r *GormLobbyRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&domain.Lobby{}).Error
}
