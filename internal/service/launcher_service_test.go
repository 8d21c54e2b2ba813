package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestArchivePathMissingFile(t *testing.T) {
	store := newStoreForTest(t)
	launcher := NewLauncherService(store, nil, t.TempDir())
	ctx := context.Background()

	if err := launcher.SetVersion(ctx, "1.4.2"); err != nil {
		t.Fatalf("set version: %v", err)
	}
	if _, err := launcher.ArchivePath(ctx); !errors.Is(err, ErrLauncherArchiveNotFound) {
		t.Fatalf("expected ErrLauncherArchiveNotFound, got %v", err)
	}
}

func TestArchivePathResolvesPublishedZip(t *testing.T) {
	store := newStoreForTest(t)
	dir := t.TempDir()
	launcher := NewLauncherService(store, nil, dir)
	ctx := context.Background()

	if err := launcher.SetVersion(ctx, "1.4.2"); err != nil {
		t.Fatalf("set version: %v", err)
	}
	want := filepath.Join(dir, "1.4.2.zip")
	if err := os.WriteFile(want, []byte("zip"), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	got, err := launcher.ArchivePath(ctx)
	if err != nil {
		t.Fatalf("archive path: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
