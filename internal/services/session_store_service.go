package services

import (
	"context"
	"log"
	"sync"
	"time"

	"omnichat/internal/models"
	"omnichat/internal/repositories"
)

// SessionStoreService owns the in-memory session list. Every mutation is one
// atomic step under the store lock and is projected to persistence afterwards;
// the in-memory list stays authoritative even when a write fails. Mutations
// addressing an unknown session id are silent no-ops.
type SessionStoreService interface {
	Startup(ctx context.Context)

	// CreateSession inserts a fresh empty session at the front of the list,
	// makes it active and returns its id.
	CreateSession() string
	// DeleteSession removes the session. Deleting the active session activates
	// the new front of the list; deleting the last remaining session replaces
	// it with a fresh one in the same step.
	DeleteSession(id string)
	// SelectSession activates the session if it exists.
	SelectSession(id string)
	// AppendMessages replaces the session's message list with the supplied
	// full next state and bumps UpdatedAt.
	AppendMessages(sessionID string, messages []models.Message)
	// SetTitle sets the session title.
	SetTitle(sessionID string, title string)
	// ReplaceLastMessageContent rewrites the trailing message's content if the
	// trailing message is a model message. It never inserts a message; this is
	// the hook streaming folds chunks through.
	ReplaceLastMessageContent(sessionID string, content string)

	Sessions() []models.ChatSession
	Session(id string) (models.ChatSession, bool)
	CurrentSessionID() string
}

type sessionStoreService struct {
	repo    repositories.SessionListRepository
	context context.Context

	mu        sync.Mutex
	sessions  []models.ChatSession
	currentID string
}

func NewSessionStoreService(repo repositories.SessionListRepository) SessionStoreService {
	return &sessionStoreService{repo: repo}
}

// Startup loads the persisted session list. A missing or empty list, or a
// stored list whose active pointer cannot be restored, self-heals by
// synthesizing one fresh active session.
func (s *sessionStoreService) Startup(ctx context.Context) {
	s.context = ctx

	stored, err := s.repo.Load(context.Background())
	if err != nil {
		log.Printf("session store: failed to load persisted sessions: %v", err)
	}

	s.mu.Lock()
	s.sessions = stored
	if len(s.sessions) == 0 {
		fresh := models.NewChatSession()
		s.sessions = []models.ChatSession{fresh}
	}
	s.currentID = s.sessions[0].ID
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snapshot)
}

func (s *sessionStoreService) CreateSession() string {
	fresh := models.NewChatSession()

	s.mu.Lock()
	s.sessions = append([]models.ChatSession{fresh}, s.sessions...)
	s.currentID = fresh.ID
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snapshot)
	return fresh.ID
}

func (s *sessionStoreService) DeleteSession(id string) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	if s.currentID == id {
		if len(s.sessions) == 0 {
			// Replace in the same step so an empty list is never observable.
			fresh := models.NewChatSession()
			s.sessions = []models.ChatSession{fresh}
		}
		s.currentID = s.sessions[0].ID
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snapshot)
}

func (s *sessionStoreService) SelectSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) >= 0 {
		s.currentID = id
	}
}

func (s *sessionStoreService) AppendMessages(sessionID string, messages []models.Message) {
	s.mu.Lock()
	idx := s.indexLocked(sessionID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	s.sessions[idx].Messages = append([]models.Message(nil), messages...)
	s.sessions[idx].UpdatedAt = time.Now().UnixMilli()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snapshot)
}

func (s *sessionStoreService) SetTitle(sessionID string, title string) {
	s.mu.Lock()
	idx := s.indexLocked(sessionID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	s.sessions[idx].Title = title
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snapshot)
}

func (s *sessionStoreService) ReplaceLastMessageContent(sessionID string, content string) {
	s.mu.Lock()
	idx := s.indexLocked(sessionID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	messages := s.sessions[idx].Messages
	if len(messages) == 0 || messages[len(messages)-1].Role != models.RoleModel {
		s.mu.Unlock()
		return
	}

	messages[len(messages)-1].Content = content
	s.sessions[idx].UpdatedAt = time.Now().UnixMilli()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snapshot)
}

func (s *sessionStoreService) Sessions() []models.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *sessionStoreService) Session(id string) (models.ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return models.ChatSession{}, false
	}
	return cloneSession(s.sessions[idx]), true
}

func (s *sessionStoreService) CurrentSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

func (s *sessionStoreService) indexLocked(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// snapshotLocked deep-copies the list so callers and the persistence write
// never observe in-place streaming mutations.
func (s *sessionStoreService) snapshotLocked() []models.ChatSession {
	snapshot := make([]models.ChatSession, len(s.sessions))
	for i := range s.sessions {
		snapshot[i] = cloneSession(s.sessions[i])
	}
	return snapshot
}

func cloneSession(session models.ChatSession) models.ChatSession {
	clone := session
	clone.Messages = append([]models.Message(nil), session.Messages...)
	return clone
}

func (s *sessionStoreService) persist(snapshot []models.ChatSession) {
	if err := s.repo.Save(context.Background(), snapshot); err != nil {
		log.Printf("session store: failed to persist sessions: %v", err)
	}
}
