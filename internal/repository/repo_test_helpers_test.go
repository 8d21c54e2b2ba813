package repository

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crownfall/farm-coordinator/internal/domain"
)

func newDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Client{},
		&domain.Account{},
		&domain.Lobby{},
		&domain.Game{},
		&domain.Session{},
		&domain.VPNAccount{},
		&domain.Report{},
		&domain.Launcher{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string, active bool) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, Password: "x", Status: active}
	if err := NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func seedClient(t *testing.T, db *gorm.DB, user *domain.User, name string) *domain.Client {
	t.Helper()
	client := &domain.Client{Name: name, IPAddress: "127.0.0.1", Active: true, UserID: user.ID}
	if err := NewClientRepository(db).Create(client); err != nil {
		t.Fatalf("seed client %s: %v", name, err)
	}
	return client
}

func seedAccount(t *testing.T, db *gorm.DB, user *domain.User, username string) *domain.Account {
	t.Helper()
	account := &domain.Account{Username: username, Password: "x", UserID: user.ID}
	if err := NewAccountRepository(db).Create(account); err != nil {
		t.Fatalf("seed account %s: %v", username, err)
	}
	return account
}
