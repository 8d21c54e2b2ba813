package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/crownfall/farm-coordinator/internal/domain"
)

func TestSelectForRotationEmptyPool(t *testing.T) {
	db := newDBForTest(t)

	_, err := NewVPNRepository(db).SelectForRotation(3)
	if !errors.Is(err, ErrVPNAccountNotFound) {
		t.Fatalf("expected ErrVPNAccountNotFound, got %v", err)
	}
}

func TestSelectForRotationPrefersLeastRecentlyAcquired(t *testing.T) {
	db := newDBForTest(t)
	repo := NewVPNRepository(db)

	stale := &domain.VPNAccount{Username: "stale", Password: "x"}
	fresh := &domain.VPNAccount{Username: "fresh", Password: "x"}
	if err := repo.Create(stale); err != nil {
		t.Fatalf("create stale: %v", err)
	}
	if err := repo.Create(fresh); err != nil {
		t.Fatalf("create fresh: %v", err)
	}
	if err := repo.Touch(fresh.ID, time.Now()); err != nil {
		t.Fatalf("touch fresh: %v", err)
	}

	picked, err := repo.SelectForRotation(1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if picked.ID != stale.ID {
		t.Fatalf("expected stale credential, got %s", picked.Username)
	}
}

func TestTouchAdvancesFreshnessClock(t *testing.T) {
	db := newDBForTest(t)
	repo := NewVPNRepository(db)

	first := &domain.VPNAccount{Username: "first", Password: "x"}
	second := &domain.VPNAccount{Username: "second", Password: "x"}
	if err := repo.Create(first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if err := repo.Create(second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	// Touching the picked credential rotates it to the back of the pool.
	if err := repo.Touch(first.ID, time.Now()); err != nil {
		t.Fatalf("touch: %v", err)
	}
	picked, err := repo.SelectForRotation(1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if picked.ID != second.ID {
		t.Fatalf("expected rotation to move to second credential, got %s", picked.Username)
	}
}

func TestVPNCreateDuplicateUsername(t *testing.T) {
	db := newDBForTest(t)
	repo := NewVPNRepository(db)

	if err := repo.Create(&domain.VPNAccount{Username: "dup", Password: "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.Create(&domain.VPNAccount{Username: "dup", Password: "y"})
	if !errors.Is(err, ErrVPNAccountExists) {
		t.Fatalf("expected ErrVPNAccountExists, got %v", err)
	}
}
