package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"omnichat/internal/models"
)

// GeminiProvider is the one fully wired provider. It drives a Gemini chat
// model through eino and exposes the raw streaming reader to the pipeline.
type GeminiProvider struct {
	chatModel *gemini.ChatModel
}

func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	defaults := models.DefaultAppSettings()
	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: client,
		Model:  defaults.ModelName,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini chat model: %w", err)
	}

	return &GeminiProvider{chatModel: chatModel}, nil
}

func (p *GeminiProvider) Name() string {
	return models.ProviderGemini
}

func (p *GeminiProvider) Stream(ctx context.Context, req *ChatRequest) (*schema.StreamReader[*schema.Message], error) {
	opts := []model.Option{
		model.WithTemperature(req.Temperature),
	}
	if req.ModelName != "" {
		opts = append(opts, model.WithModel(req.ModelName))
	}
	return p.chatModel.Stream(ctx, requestMessages(req), opts...)
}
