package repository

import (
	"errors"
	"testing"

	"github.com/crownfall/farm-coordinator/internal/domain"
)

func TestSessionCreateAndFindByClient(t *testing.T) {
	db := newDBForTest(t)
	user := seedUser(t, db, "owner", true)
	client := seedClient(t, db, user, "rig-1")
	account := seedAccount(t, db, user, "acc-1")

	repo := NewSessionRepository(db)
	session := &domain.Session{ClientID: client.ID, AccountID: account.ID}
	if err := repo.Create(session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	found, err := repo.FindByClient(client.ID)
	if err != nil {
		t.Fatalf("find by client: %v", err)
	}
	if found.AccountID != account.ID {
		t.Fatalf("expected account %s, got %s", account.ID, found.AccountID)
	}
}

func TestSessionFindByClientNotFound(t *testing.T) {
	db := newDBForTest(t)
	user := seedUser(t, db, "owner", true)
	client := seedClient(t, db, user, "rig-1")

	_, err := NewSessionRepository(db).FindByClient(client.ID)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionDoubleClientBindingConflicts(t *testing.T) {
	db := newDBForTest(t)
	user := seedUser(t, db, "owner", true)
	client := seedClient(t, db, user, "rig-1")
	first := seedAccount(t, db, user, "acc-1")
	second := seedAccount(t, db, user, "acc-2")

	repo := NewSessionRepository(db)
	if err := repo.Create(&domain.Session{ClientID: client.ID, AccountID: first.ID}); err != nil {
		t.Fatalf("create first session: %v", err)
	}
	err := repo.Create(&domain.Session{ClientID: client.ID, AccountID: second.ID})
	if !errors.Is(err, ErrBindingConflict) {
		t.Fatalf("expected ErrBindingConflict for double client binding, got %v", err)
	}
}

func TestSessionDoubleAccountBindingConflicts(t *testing.T) {
	db := newDBForTest(t)
	user := seedUser(t, db, "owner", true)
	first := seedClient(t, db, user, "rig-1")
	second := seedClient(t, db, user, "rig-2")
	account := seedAccount(t, db, user, "acc-1")

	repo := NewSessionRepository(db)
	if err := repo.Create(&domain.Session{ClientID: first.ID, AccountID: account.ID}); err != nil {
		t.Fatalf("create first session: %v", err)
	}
	err := repo.Create(&domain.Session{ClientID: second.ID, AccountID: account.ID})
	if !errors.Is(err, ErrBindingConflict) {
		t.Fatalf("expected ErrBindingConflict for double account binding, got %v", err)
	}
}

func TestSessionDeleteReleasesBindings(t *testing.T) {
	db := newDBForTest(t)
	user := seedUser(t, db, "owner", true)
	client := seedClient(t, db, user, "rig-1")
	account := seedAccount(t, db, user, "acc-1")

	repo := NewSessionRepository(db)
	session := &domain.Session{ClientID: client.ID, AccountID: account.ID}
	if err := repo.Create(session); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := repo.Delete(session.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	if err := repo.Create(&domain.Session{ClientID: client.ID, AccountID: account.ID}); err != nil {
		t.Fatalf("rebind after release: %v", err)
	}
}
