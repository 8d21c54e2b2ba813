package service

import (
	"context"
	"sync"
)

// Runtime settings that operators flip without a deploy. Status gates
// acquisition endpoints; Server names the matchmaking region clients
// should target.
const (
	SettingStatus = "status"
	SettingServer = "server"
)

type SettingsStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type InMemorySettingsStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewInMemorySettingsStore() *InMemorySettingsStore {
	return &InMemorySettingsStore{values: make(map[string]string)}
}

func (s *InMemorySettingsStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *InMemorySettingsStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// SettingsService exposes the typed accessors handlers use.
type SettingsService struct {
	store SettingsStore
}

func NewSettingsService(store SettingsStore) *SettingsService {
	if store == nil {
		store = NewInMemorySettingsStore()
	}
	return &SettingsService{store: store}
}

// ServiceEnabled reports whether acquisition is open. An unset flag means
// open.
func (s *SettingsService) ServiceEnabled(ctx context.Context) (bool, error) {
	value, ok, err := s.store.Get(ctx, SettingStatus)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return value == "1" || value == "true", nil
}

func (s *SettingsService) SetServiceEnabled(ctx context.Context, enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}
	return s.store.Set(ctx, SettingStatus, value)
}

func (s *SettingsService) MatchmakingServer(ctx context.Context) (string, error) {
	value, _, err := s.store.Get(ctx, SettingServer)
	return value, err
}

func (s *SettingsService) SetMatchmakingServer(ctx context.Context, name string) error {
	return s.store.Set(ctx, SettingServer, name)
}
