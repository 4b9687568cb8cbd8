package mocks

import (
	"context"
	"sync"
)

// KVRepositoryMock is an in-memory stand-in for the sqlite-backed blob store.
type KVRepositoryMock struct {
	GetFunc func(ctx context.Context, key string) (string, bool, error)
	SetFunc func(ctx context.Context, key string, value string) error

	mu     sync.Mutex
	values map[string]string
}

func (m *KVRepositoryMock) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *KVRepositoryMock) Set(ctx context.Context, key string, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}
