package service

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisClientForTest(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

func TestRedisSettingsStoreRoundTrip(t *testing.T) {
	_, client := newRedisClientForTest(t)
	store := NewRedisSettingsStore(client, "")
	ctx := context.Background()

	_, ok, err := store.Get(ctx, SettingServer)
	if err != nil {
		t.Fatalf("get unset: %v", err)
	}
	if ok {
		t.Fatal("expected unset key")
	}

	if err := store.Set(ctx, SettingServer, "eu-west"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := store.Get(ctx, SettingServer)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || value != "eu-west" {
		t.Fatalf("expected eu-west, got %q (ok=%v)", value, ok)
	}
}

func TestRedisSettingsStorePrefixIsolation(t *testing.T) {
	server, client := newRedisClientForTest(t)
	store := NewRedisSettingsStore(client, "settings")
	ctx := context.Background()

	if err := store.Set(ctx, SettingStatus, "1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !server.Exists("settings:status") {
		t.Fatal("expected prefixed key in redis")
	}
}

func TestRedisSettingsStoreDrivesSettingsService(t *testing.T) {
	_, client := newRedisClientForTest(t)
	settings := NewSettingsService(NewRedisSettingsStore(client, ""))
	ctx := context.Background()

	if err := settings.SetServiceEnabled(ctx, false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	enabled, err := settings.ServiceEnabled(ctx)
	if err != nil {
		t.Fatalf("service enabled: %v", err)
	}
	if enabled {
		t.Fatal("expected disabled via redis-backed store")
	}
}
