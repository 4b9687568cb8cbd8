package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventChunk EventType = "chunk"
	EventDone  EventType = "done"
	EventError EventType = "error"
)

const (
	ChatChunk = "events:chat:chunk"
	ChatDone  = "events:chat:done"
	ChatError = "events:chat:error"
)

// ChatEvent is the payload sent to the frontend while a response streams.
// Content carries the full accumulated text for chunk events so the page can
// render the trailing message without keeping its own buffer.
type ChatEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func newChatEvent(eventType EventType, sessionID, content string) ChatEvent {
	return ChatEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewChunk creates a chunk ChatEvent.
func NewChunk(sessionID, content string) ChatEvent {
	return newChatEvent(EventChunk, sessionID, content)
}

// NewDone creates a done ChatEvent.
func NewDone(sessionID string) ChatEvent {
	return newChatEvent(EventDone, sessionID, "")
}

// NewError creates an error ChatEvent.
func NewError(sessionID, content string) ChatEvent {
	return newChatEvent(EventError, sessionID, content)
}

// EventName maps an event type to the runtime event it is emitted under.
func EventName(eventType EventType) string {
	switch eventType {
	case EventDone:
		return ChatDone
	case EventError:
		return ChatError
	default:
		return ChatChunk
	}
}
