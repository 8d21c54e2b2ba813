package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/crownfall/farm-coordinator/internal/domain"
)

const (
	testCooldown = 15 * time.Minute
	testWindow   = 50
)

func TestSelectForFarmingPicksEligibleAccount(t *testing.T) {
	db := newDBForTest(t)
	user := seedUser(t, db, "owner", true)
	account := seedAccount(t, db, user, "acc-1")

	repo := NewAccountRepository(db)
	picked, err := repo.SelectForFarming(user.ID, testCooldown, testWindow)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if picked.ID != account.ID {
		t.Fatalf("expected account %s, got %s", account.ID, picked.ID)
	}
}

func TestSelectForFarmingSkipsFarmedAndFailed(t *testing.T) {
	db := newDBForTest(t)
	user := seedUser(t, db, "owner", true)
	repo := NewAccountRepository(db)

	farmed := seedAccount(t, db, user, "farmed")
	if err := repo.Update(farmed.ID, map[string]any{"farmed": true}); err != nil {
		t.Fatalf("mark farmed: %v", err)
	}
	failed := seedAccount(t, db, user, "failed")
	if err := repo.Update(failed.ID, map[string]any{"failed": true}); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	_, err := repo.SelectForFarming(user.ID, testCooldown, testWindow)
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestSelectForFarmingHonorsCooldown(t *testing.T) {
	db := newDBForTest(t)
	user := seedUser(t, db, "owner", true)
	repo := NewAccountRepository(db)

	recent := seedAccount(t, db, user, "recent")
	if err := repo.Update(recent.ID, map[string]any{"farmed_at": time.Now().Add(-time.Minute)}); err != nil {
		t.Fatalf("stamp recent: %v", err)
	}

	if _, err := repo.SelectForFarming(user.ID, testCooldown, testWindow); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected cooldown to exclude account, got %v", err)
	}

	cooled := seedAccount(t, db, user, "cooled")
	if err := repo.Update(cooled.ID, map[string]any{"farmed_at": time.Now().Add(-time.Hour)}); err != nil {
		t.Fatalf("stamp cooled: %v", err)
	}
	picked, err := repo.SelectForFarming(user.ID, testCooldown, testWindow)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if picked.ID != cooled.ID {
		t.Fatalf("expected cooled account, got %s", picked.Username)
	}
}

func TestSelectForFarmingSkipsInactiveOwner(t *testing.T) {
	db := newDBForTest(t)
	user := seedUser(t, db, "disabled", false)
	seedAccount(t, db, user, "acc-1")

	_, err := NewAccountRepository(db).SelectForFarming(user.ID, testCooldown, testWindow)
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound for inactive owner, got %v", err)
	}
}

func TestSelectForFarmingSkipsBoundAccounts(t *testing.T) {
	db := newDBForTest(t)
	user := seedUser(t, db, "owner", true)
	client := seedClient(t, db, user, "rig-1")
	bound := seedAccount(t, db, user, "bound")

	if err := NewSessionRepository(db).Create(&domain.Session{ClientID: client.ID, AccountID: bound.ID}); err != nil {
		t.Fatalf("bind account: %v", err)
	}

	repo := NewAccountRepository(db)
	if _, err := repo.SelectForFarming(user.ID, testCooldown, testWindow); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected bound account to be excluded, got %v", err)
	}

	free := seedAccount(t, db, user, "free")
	picked, err := repo.SelectForFarming(user.ID, testCooldown, testWindow)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if picked.ID != free.ID {
		t.Fatalf("expected unbound account, got %s", picked.Username)
	}
}

func TestSelectForFarmingWindowPrefersStalest(t *testing.T) {
	db := newDBForTest(t)
	user := seedUser(t, db, "owner", true)
	repo := NewAccountRepository(db)

	stale := seedAccount(t, db, user, "stale")
	fresh := seedAccount(t, db, user, "fresh")
	if err := repo.Update(stale.ID, map[string]any{"farmed_at": time.Now().Add(-48 * time.Hour)}); err != nil {
		t.Fatalf("stamp stale: %v", err)
	}
	if err := repo.Update(fresh.ID, map[string]any{"farmed_at": time.Now().Add(-time.Hour)}); err != nil {
		t.Fatalf("stamp fresh: %v", err)
	}

	// Window of one restricts the random pick to the least recently
	// farmed account.
	picked, err := repo.SelectForFarming(user.ID, testCooldown, 1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if picked.ID != stale.ID {
		t.Fatalf("expected stalest account, got %s", picked.Username)
	}
}

func TestAccountCreateDuplicateUsername(t *testing.T) {
	db := newDBForTest(t)
	user := seedUser(t, db, "owner", true)
	seedAccount(t, db, user, "dup")

	err := NewAccountRepository(db).Create(&domain.Account{Username: "dup", UserID: user.ID})
	if !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}
