package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/crownfall/farm-coordinator/internal/domain"
	"github.com/crownfall/farm-coordinator/internal/storage"
)

// LauncherService tracks the published launcher build and serves its
// archive from a directory on disk.
type LauncherService struct {
	store  *storage.Store
	logger *slog.Logger
	dir    string
}

func NewLauncherService(store *storage.Store, logger *slog.Logger, dir string) *LauncherService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LauncherService{store: store, logger: logger, dir: dir}
}

func (s *LauncherService) GetLauncher(ctx context.Context) (*domain.Launcher, error) {
	var launcher *domain.Launcher
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		var err error
		launcher, err = u.Launcher.Get()
		return err
	})
	if err != nil {
		return nil, err
	}
	return launcher, nil
}

func (s *LauncherService) SetVersion(ctx context.Context, version string) error {
	err := s.store.RunRetry(ctx, storage.ReadCommitted, storage.DefaultRetry, func(u *storage.Unit) error {
		return u.Launcher.SetVersion(version)
	})
	if err != nil {
		return err
	}
	s.logger.Info("launcher version published", "version", version)
	return nil
}

// ArchivePath resolves the on-disk archive for the published version. The
// file is named <version>.zip under the launcher directory.
func (s *LauncherService) ArchivePath(ctx context.Context) (string, error) {
	launcher, err := s.GetLauncher(ctx)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s.zip", launcher.Version))
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("launcher archive %s: %w", launcher.Version, ErrLauncherArchiveNotFound)
		}
		return "", fmt.Errorf("launcher archive %s: %w", launcher.Version, err)
	}
	return path, nil
}
