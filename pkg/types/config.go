package types

// Config represents the SiteSmith configuration.
type Config struct {
	// Schema reference (for editor support)
	Schema string `json:"$schema,omitempty"`

	// Default model selection, "provider/model" format,
	// e.g. "anthropic/claude-sonnet-4-20250514".
	Model string `json:"model,omitempty"`

	// Provider configs keyed by provider ID.
	Provider map[string]ProviderConfig `json:"provider,omitempty"`

	// Cache settings for the response cache.
	Cache *CacheConfig `json:"cache,omitempty"`

	// Admin is the privileged-action collaborator endpoint.
	Admin *AdminConfig `json:"admin,omitempty"`

	// LogLevel is the minimum log level (DEBUG|INFO|WARN|ERROR).
	LogLevel string `json:"logLevel,omitempty"`
}

// ProviderConfig holds configuration for a specific provider.
type ProviderConfig struct {
	APIKey  string `json:"apiKey,omitempty"`
	BaseURL string `json:"baseURL,omitempty"`

	// Model/Endpoint ID for providers that require endpoint specification
	// (ARK) or for the proxy adapter's upstream model selection.
	Model string `json:"model,omitempty"`

	// Disable provider
	Disable bool `json:"disable,omitempty"`
}

// CacheConfig holds response cache configuration.
type CacheConfig struct {
	// Backend selects the cache store: "memory" (default) or "redis".
	Backend string `json:"backend,omitempty"`

	// TTLHours overrides the default 24 hour entry lifetime.
	TTLHours int `json:"ttlHours,omitempty"`

	// RedisAddr is the redis host:port when Backend is "redis".
	RedisAddr string `json:"redisAddr,omitempty"`

	// RedisDB selects the redis logical database.
	RedisDB int `json:"redisDB,omitempty"`
}

// AdminConfig holds the privileged-action forwarder configuration.
type AdminConfig struct {
	// Endpoint is the locally-hosted URL privileged actions are POSTed to.
	Endpoint string `json:"endpoint,omitempty"`
}
