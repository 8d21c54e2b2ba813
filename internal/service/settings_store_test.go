package service

import (
	"context"
	"testing"
)

func TestSettingsServiceDefaultsOpen(t *testing.T) {
	settings := NewSettingsService(NewInMemorySettingsStore())

	enabled, err := settings.ServiceEnabled(context.Background())
	if err != nil {
		t.Fatalf("service enabled: %v", err)
	}
	if !enabled {
		t.Fatal("expected unset status flag to mean open")
	}
}

func TestSettingsServiceToggle(t *testing.T) {
	settings := NewSettingsService(NewInMemorySettingsStore())
	ctx := context.Background()

	if err := settings.SetServiceEnabled(ctx, false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	enabled, err := settings.ServiceEnabled(ctx)
	if err != nil {
		t.Fatalf("service enabled: %v", err)
	}
	if enabled {
		t.Fatal("expected disabled")
	}

	if err := settings.SetServiceEnabled(ctx, true); err != nil {
		t.Fatalf("enable: %v", err)
	}
	enabled, err = settings.ServiceEnabled(ctx)
	if err != nil {
		t.Fatalf("service enabled: %v", err)
	}
	if !enabled {
		t.Fatal("expected enabled")
	}
}

func TestSettingsServiceMatchmakingServer(t *testing.T) {
	settings := NewSettingsService(NewInMemorySettingsStore())
	ctx := context.Background()

	name, err := settings.MatchmakingServer(ctx)
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	if name != "" {
		t.Fatalf("expected empty default, got %q", name)
	}

	if err := settings.SetMatchmakingServer(ctx, "eu-west"); err != nil {
		t.Fatalf("set server: %v", err)
	}
	name, err = settings.MatchmakingServer(ctx)
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	if name != "eu-west" {
		t.Fatalf("expected eu-west, got %q", name)
	}
}
