package mocks

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"omnichat/internal/llm/provider"
)

// CompletionProviderMock lets tests script the chunk stream a send consumes.
type CompletionProviderMock struct {
	NameValue  string
	StreamFunc func(ctx context.Context, req *provider.ChatRequest) (*schema.StreamReader[*schema.Message], error)
}

func (m *CompletionProviderMock) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return "mock"
}

func (m *CompletionProviderMock) Stream(ctx context.Context, req *provider.ChatRequest) (*schema.StreamReader[*schema.Message], error) {
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, req)
	}
	sr, sw := schema.Pipe[*schema.Message](1)
	sw.Close()
	return sr, nil
}

// ScriptedStream builds a reader that yields the given chunks in order and
// then terminates, with finalErr if non-nil or cleanly otherwise.
func ScriptedStream(chunks []string, finalErr error) *schema.StreamReader[*schema.Message] {
	sr, sw := schema.Pipe[*schema.Message](len(chunks) + 1)
	go func() {
		defer sw.Close()
		for _, chunk := range chunks {
			if sw.Send(schema.AssistantMessage(chunk, nil), nil) {
				return
			}
		}
		if finalErr != nil {
			sw.Send(nil, finalErr)
		}
	}()
	return sr
}
