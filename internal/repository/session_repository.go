package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crownfall/farm-coordinator/internal/domain"
	"github.com/crownfall/farm-coordinator/internal/observability"
)

var (
	ErrSessionNotFound = errors.New("session not found")

	// ErrBindingConflict is returned when a session insert loses the race
	// for an exclusively bound client or account: the unique index rejected
	// the row because a concurrent transaction claimed it first. The retry
	// layer treats it as transient; on the next attempt the claimed row is
	// no longer eligible for selection.
	ErrBindingConflict = errors.New("session binding conflict")
)

type SessionRepository interface {
	// Create inserts the session binding. A duplicate-key failure on the
	// client or account binding surfaces as ErrBindingConflict.
	Create(s *domain.Session) error
	FindByClient(clientID uuid.UUID) (*domain.Session, error)
	Update(id uuid.UUID, updates map[string]any) error
	Delete(id uuid.UUID) error
}

type GormSessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &GormSessionRepository{db: db} }

func (r *GormSessionRepository) Create(s *domain.Session) error {
	err := r.db.Create(s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(context.Background(), "session", "create", "conflict")
			return ErrBindingConflict
		}
		observability.RecordRepositoryOperation(context.Background(), "session", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "create", "success")
	return nil
}

func (r *GormSessionRepository) FindByClient(clientID uuid.UUID) (*domain.Session, error) {
	var s domain.Session
	err := r.db.Where("client_id = ?", clientID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormSessionRepository) Update(id uuid.UUID, updates map[string]any) error {
	res := r.db.Model(&domain.Session{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *GormSessionRepository) Delete(id uuid.UUID) error {
	err := r.db.Where("id = ?", id).Delete(&domain.Session{}).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "delete", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "delete", "success")
	return nil
}
