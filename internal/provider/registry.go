package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sitesmith-ai/sitesmith/internal/logging"
	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// Registry manages all available providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	config    *types.Config
}

// NewRegistry creates a new provider registry.
func NewRegistry(config *types.Config) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		config:    config,
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.ID()] = provider
}

// Get retrieves a provider by ID.
func (r *Registry) Get(providerID string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, ok := r.providers[providerID]
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", providerID)
	}
	return provider, nil
}

// List returns all available providers.
func (r *Registry) List() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		providers = append(providers, p)
	}
	sort.Slice(providers, func(i, j int) bool {
		return providers[i].ID() < providers[j].ID()
	})
	return providers
}

// GetModel retrieves a specific model from a provider.
func (r *Registry) GetModel(providerID, modelID string) (*types.Model, error) {
	provider, err := r.Get(providerID)
	if err != nil {
		return nil, err
	}

	for _, model := range provider.Models() {
		if model.ID == modelID {
			return &model, nil
		}
	}

	return nil, fmt.Errorf("model not found: %s/%s", providerID, modelID)
}

// AllModels returns all models from all providers, best first.
func (r *Registry) AllModels() []types.Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var models []types.Model
	for _, p := range r.providers {
		models = append(models, p.Models()...)
	}

	sort.Slice(models, func(i, j int) bool {
		return modelPriority(models[i].ID) > modelPriority(models[j].ID)
	})

	return models
}

// DefaultModel returns the configured default model, falling back to the
// best available one.
func (r *Registry) DefaultModel() (*types.Model, error) {
	if r.config != nil && r.config.Model != "" {
		providerID, modelID := ParseModelString(r.config.Model)
		if model, err := r.GetModel(providerID, modelID); err == nil {
			return model, nil
		}
	}

	if model, err := r.GetModel("anthropic", "claude-sonnet-4-20250514"); err == nil {
		return model, nil
	}

	models := r.AllModels()
	if len(models) == 0 {
		return nil, fmt.Errorf("no models available")
	}
	return &models[0], nil
}

// ParseModelString parses "provider/model" format.
func ParseModelString(s string) (providerID, modelID string) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", s
}

func modelPriority(modelID string) int {
	switch {
	case strings.Contains(modelID, "claude-sonnet-4"):
		return 90
	case strings.Contains(modelID, "claude-opus"):
		return 85
	case strings.Contains(modelID, "gpt-5"):
		return 80
	case strings.Contains(modelID, "gemini-2.5-pro"):
		return 75
	case strings.Contains(modelID, "gpt-4o"):
		return 70
	case strings.Contains(modelID, "gemini"):
		return 65
	default:
		return 50
	}
}

// InitializeProviders creates and registers all providers from config.
// Providers whose credentials are missing are skipped, not fatal.
func InitializeProviders(ctx context.Context, config *types.Config) (*Registry, error) {
	registry := NewRegistry(config)
	log := logging.Component("provider")

	register := func(id string, p Provider, err error) {
		if err != nil {
			log.Debug().Str("provider", id).Err(err).Msg("Provider not available")
			return
		}
		registry.Register(p)
		log.Info().Str("provider", id).Msg("Provider registered")
	}

	if cfg, ok := config.Provider["anthropic"]; ok && cfg.APIKey != "" && !cfg.Disable {
		p, err := NewAnthropicProvider(ctx, &AnthropicConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		register("anthropic", p, err)
	}

	if cfg, ok := config.Provider["openai"]; ok && cfg.APIKey != "" && !cfg.Disable {
		p, err := NewOpenAIProvider(ctx, &OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		register("openai", p, err)
	}

	if cfg, ok := config.Provider["gemini"]; ok && cfg.APIKey != "" && !cfg.Disable {
		p, err := NewGeminiProvider(ctx, &GeminiConfig{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
		})
		register("gemini", p, err)
	}

	if cfg, ok := config.Provider["ark"]; ok && cfg.APIKey != "" && !cfg.Disable {
		p, err := NewArkProvider(ctx, &ArkConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		register("ark", p, err)
	}

	if cfg, ok := config.Provider["proxy"]; ok && cfg.BaseURL != "" && !cfg.Disable {
		p, err := NewProxyProvider(&ProxyConfig{BaseURL: cfg.BaseURL})
		register("proxy", p, err)
	}

	return registry, nil
}
