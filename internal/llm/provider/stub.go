package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
)

const stubResponseDelay = 1 * time.Second

// StubProvider stands in for providers that are selectable in settings but
// not wired to a real backend. After a fixed delay it emits one synthetic
// assistant message and ends the stream.
type StubProvider struct {
	name  string
	delay time.Duration
}

func NewStubProvider(name string) *StubProvider {
	return &StubProvider{name: name, delay: stubResponseDelay}
}

func (p *StubProvider) Name() string {
	return p.name
}

func (p *StubProvider) Stream(ctx context.Context, req *ChatRequest) (*schema.StreamReader[*schema.Message], error) {
	sr, sw := schema.Pipe[*schema.Message](1)

	go func() {
		defer sw.Close()

		select {
		case <-ctx.Done():
			sw.Send(nil, ctx.Err())
			return
		case <-time.After(p.delay):
		}

		content := fmt.Sprintf(
			"[Simulated %s Response]\n\nI am configured to use the **%s** provider, "+
				"but only Gemini is wired to a real backend in this build.\n\n"+
				"Please switch to **Gemini** in settings to see the full streaming integration in action!",
			p.name, p.name,
		)
		sw.Send(schema.AssistantMessage(content, nil), nil)
	}()

	return sr, nil
}
