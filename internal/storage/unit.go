package storage

import (
	"gorm.io/gorm"

	"github.com/crownfall/farm-coordinator/internal/repository"
)

// Unit is one transaction-scoped set of repositories. All repositories share
// the same underlying transaction, so reads and writes made through any of
// them commit or roll back together. Units are constructed per Run call and
// must not outlive it.
type Unit struct {
	Users    repository.UserRepository
	Clients  repository.ClientRepository
	Accounts repository.AccountRepository
	Sessions repository.SessionRepository
	Lobbies  repository.LobbyRepository
	Games    repository.GameRepository
	VPN      repository.VPNRepository
	Reports  repository.ReportRepository
	Launcher repository.LauncherRepository
}

func newUnit(tx *gorm.DB) *Unit {
	return &Unit{
		Users:    repository.NewUserRepository(tx),
		Clients:  repository.NewClientRepository(tx),
		Accounts: repository.NewAccountRepository(tx),
		Sessions: repository.NewSessionRepository(tx),
		Lobbies:  repository.NewLobbyRepository(tx),
		Games:    repository.NewGameRepository(tx),
		VPN:      repository.NewVPNRepository(tx),
		Reports:  repository.NewReportRepository(tx),
		Launcher: repository.NewLauncherRepository(tx),
	}
}
