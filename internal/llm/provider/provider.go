package provider

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"omnichat/internal/models"
)

// ChatRequest is one streaming completion request: the configured model, the
// prior turns of the conversation, and the new user text.
type ChatRequest struct {
	ModelName         string
	SystemInstruction string
	Temperature       float32
	History           []models.Message
	UserText          string
}

// CompletionProvider is the capability a configured provider exposes to the
// send pipeline. The returned reader yields content increments in order and
// terminates with io.EOF; a provider that cannot really stream still speaks
// this interface so switching providers never branches pipeline logic.
type CompletionProvider interface {
	Name() string
	Stream(ctx context.Context, req *ChatRequest) (*schema.StreamReader[*schema.Message], error)
}

// ConvertHistory maps stored chat messages onto the schema the model layer
// understands. Blank and error-flagged messages are dropped; they carry no
// conversational signal for the next turn.
func ConvertHistory(history []models.Message) []*schema.Message {
	if len(history) == 0 {
		return nil
	}

	converted := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		content := strings.TrimSpace(msg.Content)
		if content == "" || msg.IsError {
			continue
		}
		switch msg.Role {
		case models.RoleUser:
			converted = append(converted, schema.UserMessage(content))
		case models.RoleModel:
			converted = append(converted, schema.AssistantMessage(content, nil))
		case models.RoleSystem:
			converted = append(converted, schema.SystemMessage(content))
		}
	}
	if len(converted) == 0 {
		return nil
	}
	return converted
}

// requestMessages assembles the full message sequence for a request: system
// instruction first, then prior turns, then the new user text.
func requestMessages(req *ChatRequest) []*schema.Message {
	messages := make([]*schema.Message, 0, len(req.History)+2)
	if instr := strings.TrimSpace(req.SystemInstruction); instr != "" {
		messages = append(messages, schema.SystemMessage(instr))
	}
	messages = append(messages, ConvertHistory(req.History)...)
	messages = append(messages, schema.UserMessage(req.UserText))
	return messages
}
