package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/crownfall/farm-coordinator/internal/domain"
	"github.com/crownfall/farm-coordinator/internal/storage"
)

type CreateReportInput struct {
	Error     string `json:"error"`
	Traceback string `json:"traceback"`
}

type ReportPage struct {
	Reports []domain.Report `json:"reports"`
	Total   int64           `json:"total"`
	Pages   int             `json:"pages"`
}

type ReportService struct {
	store  *storage.Store
	logger *slog.Logger
}

func NewReportService(store *storage.Store, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{store: store, logger: logger}
}

func (s *ReportService) CreateReport(ctx context.Context, clientID uuid.UUID, input CreateReportInput) (*domain.Report, error) {
	report := &domain.Report{
		ClientID:  clientID,
		Error:     input.Error,
		Traceback: input.Traceback,
	}
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		if _, err := u.Clients.FindByID(clientID); err != nil {
			return err
		}
		return u.Reports.Create(report)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("report recorded", "client_id", clientID, "report_id", report.ID)
	return report, nil
}

func (s *ReportService) GetClientReports(ctx context.Context, clientID uuid.UUID, limit, offset int) (*ReportPage, error) {
	if limit <= 0 {
		limit = 50
	}
	page := &ReportPage{}
	err := s.store.RunRetry(ctx, storage.RepeatableRead, storage.DefaultRetry, func(u *storage.Unit) error {
		if _, err := u.Clients.FindByID(clientID); err != nil {
			return err
		}
		reports, err := u.Reports.ListByClient(clientID, limit, offset)
		if err != nil {
			return err
		}
		total, err := u.Reports.CountByClient(clientID)
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
