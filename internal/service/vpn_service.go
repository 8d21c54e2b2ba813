package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/crownfall/farm-coordinator/internal/domain"
	"github.com/crownfall/farm-coordinator/internal/observability"
	"github.com/crownfall/farm-coordinator/internal/storage"
)

type CreateVPNInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// VPNService rotates egress credentials. Unlike accounts there is no
// exclusive binding: acquisition just stamps the freshness clock inside the
// selecting transaction, which is enough to spread concurrent callers over
// the pool.
type VPNService struct {
	store  *storage.Store
	logger *slog.Logger
	window int
}

func NewVPNService(store *storage.Store, logger *slog.Logger, window int) *VPNService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VPNService{store: store, logger: logger, window: window}
}

func (s *VPNService) GetAccounts(ctx context.Context) ([]domain.VPNAccount, error) {
	var accounts []domain.VPNAccount
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		var err error
		accounts, err = u.VPN.List()
		return err
	})
	return accounts, err
}

func (s *VPNService) CreateAccount(ctx context.Context, input CreateVPNInput) (*domain.VPNAccount, error) {
	account := &domain.VPNAccount{Username: input.Username, Password: input.Password}
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		return u.VPN.Create(account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *VPNService) AcquireAccount(ctx context.Context) (*domain.VPNAccount, error) {
	var account *domain.VPNAccount
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.AcquireRetry, func(u *storage.Unit) error {
		var err error
		account, err = u.VPN.SelectForRotation(s.window)
		if err != nil {
			return err
		}
		return u.VPN.Touch(account.ID, time.Now().UTC())
	})
	if err != nil {
		observability.RecordResourceAcquisition(ctx, "vpn", acquisitionOutcome(err))
		return nil, err
	}
	observability.RecordResourceAcquisition(ctx, "vpn", "success")
	return account, nil
}
