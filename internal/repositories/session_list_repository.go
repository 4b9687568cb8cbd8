package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"omnichat/internal/models"
)

// SessionsKey is the storage key the session list blob lives under.
const SessionsKey = "omnichat_sessions"

type SessionListRepository interface {
	// Load returns the persisted session list, nil when nothing was stored yet.
	Load(ctx context.Context) ([]models.ChatSession, error)
	// Save replaces the stored list with a full snapshot.
	Save(ctx context.Context, sessions []models.ChatSession) error
}

type sessionListRepository struct {
	kv KVRepository
}

func NewSessionListRepository(kv KVRepository) SessionListRepository {
	return &sessionListRepository{kv: kv}
}

func (r *sessionListRepository) Load(ctx context.Context) ([]models.ChatSession, error) {
	raw, ok, err := r.kv.Get(ctx, SessionsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var sessions []models.ChatSession
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		return nil, fmt.Errorf("decode session list: %w", err)
	}
	return sessions, nil
}

func (r *sessionListRepository) Save(ctx context.Context, sessions []models.ChatSession) error {
	if sessions == nil {
		sessions = []models.ChatSession{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encode session list: %w", err)
	}
	return r.kv.Set(ctx, SessionsKey, string(data))
}
