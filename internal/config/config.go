// Package config loads layered SiteSmith configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// Load loads configuration from multiple sources (priority order):
// 1. Global config (~/.sitesmith/)
// 2. Global config (~/.config/sitesmith/ - XDG compatible)
// 3. Project config (<directory>/)
// 4. SITESMITH_CONFIG file
// 5. Environment variables
func Load(directory string) (*types.Config, error) {
	config := &types.Config{
		Provider: make(map[string]types.ProviderConfig),
	}

	// Track loaded files to avoid duplicates
	loaded := make(map[string]bool)

	loadOnce := func(path string, baseDir string) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if loaded[absPath] {
			return
		}
		if loadConfigFile(path, config, baseDir) == nil {
			loaded[absPath] = true
		}
	}

	// 1. Home dotdir config (~/.sitesmith/)
	home := os.Getenv("HOME")
	if home != "" {
		dotDir := filepath.Join(home, ".sitesmith")
		loadOnce(filepath.Join(dotDir, "sitesmith.json"), dotDir)
		loadOnce(filepath.Join(dotDir, "sitesmith.jsonc"), dotDir)
	}

	// 2. XDG-compatible global config (~/.config/sitesmith/)
	globalPath := GetPaths().Config
	loadOnce(filepath.Join(globalPath, "sitesmith.json"), globalPath)
	loadOnce(filepath.Join(globalPath, "sitesmith.jsonc"), globalPath)

	// 3. Project config
	if directory != "" {
		loadOnce(filepath.Join(directory, "sitesmith.json"), directory)
		loadOnce(filepath.Join(directory, "sitesmith.jsonc"), directory)
	}

	// 4. SITESMITH_CONFIG file override
	if configPath := os.Getenv("SITESMITH_CONFIG"); configPath != "" {
		loadOnce(configPath, filepath.Dir(configPath))
	}

	// 5. Environment variables (highest priority)
	applyEnvOverrides(config)

	return config, nil
}

// loadConfigFile loads a single config file with interpolation support.
func loadConfigFile(path string, config *types.Config, baseDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err // File doesn't exist, skip
	}

	// Strip JSONC comments using tidwall/jsonc
	data = jsonc.ToJSON(data)

	// Apply interpolation
	data = interpolate(data, baseDir)

	var fileConfig types.Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return err
	}

	mergeConfig(config, &fileConfig)
	return nil
}

// interpolate processes {env:VAR} and {file:path} placeholders.
func interpolate(data []byte, baseDir string) []byte {
	str := string(data)

	envPattern := regexp.MustCompile(`\{env:([^}]+)\}`)
	str = envPattern.ReplaceAllStringFunc(str, func(match string) string {
		varName := envPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})

	filePattern := regexp.MustCompile(`\{file:([^}]+)\}`)
	str = filePattern.ReplaceAllStringFunc(str, func(match string) string {
		filePath := filePattern.FindStringSubmatch(match)[1]

		if strings.HasPrefix(filePath, "~/") {
			home := os.Getenv("HOME")
			filePath = filepath.Join(home, filePath[2:])
		} else if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(baseDir, filePath)
		}

		content, err := os.ReadFile(filePath)
		if err != nil {
			return match // Keep original if file not found
		}

		// Escape for JSON string
		escaped := strings.ReplaceAll(string(content), "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		escaped = strings.ReplaceAll(escaped, "\n", "\\n")
		escaped = strings.ReplaceAll(escaped, "\r", "\\r")
		escaped = strings.ReplaceAll(escaped, "\t", "\\t")

		return escaped
	})

	return []byte(str)
}

// mergeConfig merges source config into target.
func mergeConfig(target, source *types.Config) {
	if source.Schema != "" {
		target.Schema = source.Schema
	}
	if source.Model != "" {
		target.Model = source.Model
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
	}

	if source.Provider != nil {
		if target.Provider == nil {
			target.Provider = make(map[string]types.ProviderConfig)
		}
		for k, v := range source.Provider {
			target.Provider[k] = v
		}
	}

	if source.Cache != nil {
		target.Cache = source.Cache
	}

	if source.Admin != nil {
		target.Admin = source.Admin
	}
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(config *types.Config) {
	providerEnvMap := map[string]string{
		"anthropic": "ANTHROPIC_API_KEY",
		"openai":    "OPENAI_API_KEY",
		"gemini":    "GEMINI_API_KEY",
		"ark":       "ARK_API_KEY",
	}

	for provider, envVar := range providerEnvMap {
		if apiKey := os.Getenv(envVar); apiKey != "" {
			if config.Provider == nil {
				config.Provider = make(map[string]types.ProviderConfig)
			}
			p := config.Provider[provider]
			if p.APIKey == "" {
				p.APIKey = apiKey
				config.Provider[provider] = p
			}
		}
	}

	// Proxy adapter upstream
	if proxyURL := os.Getenv("SITESMITH_PROXY_URL"); proxyURL != "" {
		if config.Provider == nil {
			config.Provider = make(map[string]types.ProviderConfig)
		}
		p := config.Provider["proxy"]
		if p.BaseURL == "" {
			p.BaseURL = proxyURL
			config.Provider["proxy"] = p
		}
	}

	// Default model override
	if model := os.Getenv("SITESMITH_MODEL"); model != "" {
		config.Model = model
	}

	// Privileged-action endpoint override
	if admin := os.Getenv("SITESMITH_ADMIN_ENDPOINT"); admin != "" {
		config.Admin = &types.AdminConfig{Endpoint: admin}
	}
}

// Save saves the configuration to a file.
func Save(config *types.Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
