package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultSessionTitle = "New Chat"

// ChatSession is one conversation thread. Sessions live in a single list
// ordered newest-first; Messages is append-only except for the in-place
// content rewrite of the trailing model message during streaming.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt int64     `json:"createdAt"` // unix milliseconds
	UpdatedAt int64     `json:"updatedAt"`
}

func NewChatSession() ChatSession {
	now := time.Now().UnixMilli()
	return ChatSession{
		ID:        uuid.NewString(),
		Title:     DefaultSessionTitle,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LastMessage returns the trailing message, if any.
func (s *ChatSession) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}
