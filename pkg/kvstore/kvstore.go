// Package kvstore provides the persistent text store behind the scan history:
// one string value per key, read and overwritten whole.
package kvstore

import (
	"context"
	"fmt"
	"sync"

	"easyfilter/pkg/config"
)

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key. ok is false when the key was never set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set overwrites the value for key.
	Set(ctx context.Context, key, value string) error
	Close() error
}

// New opens the backend selected by cfg.Store.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return NewMemory(), nil
	case config.StoreFile:
		return NewFile(cfg.StorePath)
	case config.StoreSQLite:
		return OpenSQLite(ctx, cfg.StorePath)
	case config.StorePostgres:
		return OpenPostgres(ctx, cfg.StoreDSN)
	case config.StoreRedis:
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown store type specified: %s", cfg.Store)
	}
}

// --- Memory ---

// Memory keeps values in a map. It is used for tests and for -store memory.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Close() error { return nil }
