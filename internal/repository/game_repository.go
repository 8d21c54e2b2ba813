package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/crownfall/farm-coordinator/internal/domain"
)

var ErrGameNotFound = errors.New("game not found")

type GameRepository interface {
	Create(g *domain.Game) error
	FindByID(id string) (*domain.Game, error)
	Update(id string, updates map[string]any) error
	Delete(id string) error
}

type GormGameRepository struct{ db *gorm.DB }

func NewGameRepository(db *gorm.DB) GameRepository { return &GormGameRepository{db: db} }

func (r *GormGameRepository) Create(g *domain.Game) error {
	return r.db.Create(g).Error
}

func (r *GormGameRepository) FindByID(id string) (*domain.Game, error) {
	var g domain.Game
	err := r.db.Preload("Sessions").Where("id = ?", id).First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *GormGameRepository) Update(id string, updates map[string]any) error {
	res := r.db.Model(&domain.Game{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrGameNotFound
	}
	return nil
}

func (r *GormGameRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&domain.Game{}).Error
}
