package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crownfall/farm-coordinator/internal/domain"
)

var ErrLauncherNotFound = errors.New("launcher not found")

type ReportRepository interface {
	Create(rep *domain.Report) error
	ListByClient(clientID uuid.UUID, limit, offset int) ([]domain.Report, error)
	CountByClient(clientID uuid.UUID) (int64, error)
	ListByOwner(userID uuid.UUID, limit, offset int) ([]domain.Report, error)
	CountByOwner(userID uuid.UUID) (int64, error)
}

type GormReportRepository struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &GormReportRepository{db: db} }

func (r *GormReportRepository) Create(rep *domain.Report) error {
	return r.db.Create(rep).Error
}

func (r *GormReportRepository) ListByClient(clientID uuid.UUID, limit, offset int) ([]domain.Report, error) {
	var reports []domain.Report
	err := r.db.
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reports).Error
	return reports, err
}

func (r *GormReportRepository) CountByClient(clientID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.Model(&domain.Report{}).Where("client_id = ?", clientID).Count(&n).Error
	return n, err
}

// Owner-scoped listing spans every client the user operates.

func (r *GormReportRepository) ListByOwner(userID uuid.UUID, limit, offset int) ([]domain.Report, error) {
	var reports []domain.Report
	err := r.db.
		Joins("JOIN clients ON clients.id = reports.client_id").
		Where("clients.user_id = ?", userID).
		Order("reports.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reports).Error
	return reports, err
}

func (r *GormReportRepository) CountByOwner(userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.Model(&domain.Report{}).
		Joins("JOIN clients ON clients.id = reports.client_id").
		Where("clients.user_id = ?", userID).
		Count(&n).Error
	return n, err
}

type LauncherRepository interface {
	Get() (*domain.Launcher, error)
	// SetVersion updates the single launcher row, creating it on first use.
	SetVersion(version string) error
}

type GormLauncherRepository struct{ db *gorm.DB }

func NewLauncherRepository(db *gorm.DB) LauncherRepository { return &GormLauncherRepository{db: db} }

func (r *GormLauncherRepository) Get() (*domain.Launcher, error) {
	var l domain.Launcher
	err := r.db.First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLauncherNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *GormLauncherRepository) SetVersion(version string) error {
	existing, err := r.Get()
	if errors.Is(err, ErrLauncherNotFound) {
		return r.db.Create(&domain.Launcher{Version: version}).Error
	}
	if err != nil {
		return err
	}
	return r.db.Model(&domain.Launcher{}).Where("id = ?", existing.ID).Update("version", version).Error
}
