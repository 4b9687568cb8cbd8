package mocks

import (
	"context"
	"sync"

	"omnichat/internal/models"
)

type SessionListRepositoryMock struct {
	LoadFunc func(ctx context.Context) ([]models.ChatSession, error)
	SaveFunc func(ctx context.Context, sessions []models.ChatSession) error

	mu    sync.Mutex
	saved [][]models.ChatSession
}

func (m *SessionListRepositoryMock) Load(ctx context.Context) ([]models.ChatSession, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return nil, nil
}

func (m *SessionListRepositoryMock) Save(ctx context.Context, sessions []models.ChatSession) error {
	m.mu.Lock()
	m.saved = append(m.saved, sessions)
	m.mu.Unlock()
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, sessions)
	}
	return nil
}

// Saved returns every snapshot handed to Save, in order.
func (m *SessionListRepositoryMock) Saved() [][]models.ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]models.ChatSession, len(m.saved))
	copy(out, m.saved)
	return out
}
