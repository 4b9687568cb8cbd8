package provider

import (
	"testing"

	"github.com/cloudwego/eino/schema"

	"omnichat/internal/models"
)

func TestRequestMessagesOrdering(t *testing.T) {
	req := &ChatRequest{
		SystemInstruction: "Be helpful.",
		History: []models.Message{
			{Role: models.RoleUser, Content: "earlier question"},
			{Role: models.RoleModel, Content: "earlier answer"},
		},
		UserText: "new question",
	}

	messages := requestMessages(req)
	if len(messages) != 4 {
		t.Fatalf("requestMessages() len = %d, want 4", len(messages))
	}
	if messages[0].Role != schema.System {
		t.Fatalf("messages[0].Role = %q, want system", messages[0].Role)
	}
	if messages[1].Content != "earlier question" || messages[2].Content != "earlier answer" {
		t.Fatalf("history out of order: %q, %q", messages[1].Content, messages[2].Content)
	}
	last := messages[len(messages)-1]
	if last.Role != schema.User || last.Content != "new question" {
		t.Fatalf("trailing message = %q %q, want user %q", last.Role, last.Content, "new question")
	}
}

func TestRequestMessagesSkipsBlankSystemInstruction(t *testing.T) {
	messages := requestMessages(&ChatRequest{SystemInstruction: "  ", UserText: "hi"})
	if len(messages) != 1 {
		t.Fatalf("requestMessages() len = %d, want 1", len(messages))
	}
	if messages[0].Role != schema.User {
		t.Fatalf("messages[0].Role = %q, want user", messages[0].Role)
	}
}
