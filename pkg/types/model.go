package types

// Model represents an LLM model available from a provider.
type Model struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ProviderID      string  `json:"providerID"`
	ContextLength   int     `json:"contextLength"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	SupportsVision  bool    `json:"supportsVision"`
	InputPrice      float64 `json:"inputPrice,omitempty"`  // per 1M tokens
	OutputPrice     float64 `json:"outputPrice,omitempty"` // per 1M tokens

	// Cacheable marks the designated low-cost tier whose responses may be
	// served from the response cache.
	Cacheable bool `json:"cacheable,omitempty"`
}
