package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// GeminiProvider implements Provider for Google Gemini models.
type GeminiProvider struct {
	chatModel model.ToolCallingChatModel
	models    []types.Model
	config    *GeminiConfig
}

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, config *GeminiConfig) (*GeminiProvider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	modelID := config.Model
	if modelID == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: client,
		Model:  modelID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini model: %w", err)
	}

	return &GeminiProvider{
		chatModel: chatModel,
		models:    geminiModels(),
		config:    config,
	}, nil
}

// ID returns the provider identifier.
func (p *GeminiProvider) ID() string { return "gemini" }

// Name returns the human-readable provider name.
func (p *GeminiProvider) Name() string { return "Google Gemini" }

// Models returns the list of available models.
func (p *GeminiProvider) Models() []types.Model {
	return p.models
}

// Generate starts a streaming generation.
func (p *GeminiProvider) Generate(ctx context.Context, req *Request) (Stream, error) {
	opts := []model.Option{}
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature > 0 {
		opts = append(opts, model.WithTemperature(float32(req.Temperature)))
	}
	if req.Model != "" {
		opts = append(opts, model.WithModel(req.Model))
	}

	stream, err := p.chatModel.Stream(ctx, req.Messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return NewStream(stream), nil
}

func geminiModels() []types.Model {
	return []types.Model{
		{
			ID:              "gemini-2.5-pro",
			Name:            "Gemini 2.5 Pro",
			ProviderID:      "gemini",
			ContextLength:   1048576,
			MaxOutputTokens: 65536,
			SupportsVision:  true,
			InputPrice:      1.25,
			OutputPrice:     10.0,
		},
		{
			ID:              "gemini-2.5-flash",
			Name:            "Gemini 2.5 Flash",
			ProviderID:      "gemini",
			ContextLength:   1048576,
			MaxOutputTokens: 65536,
			SupportsVision:  true,
			InputPrice:      0.3,
			OutputPrice:     2.5,
		},
	}
}
