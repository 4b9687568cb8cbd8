package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// Message is one turn in a chat session. Content is the only field that
// changes after creation: the send pipeline rewrites it in place while a
// response is streaming.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	IsError   bool   `json:"isError,omitempty"`
}

func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}
