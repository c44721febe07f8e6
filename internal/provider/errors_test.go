package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantName string
	}{
		{"unauthorized", errors.New("401 unauthorized"), types.ErrAuth},
		{"invalid key", errors.New("invalid api key provided"), types.ErrAuth},
		{"forbidden", errors.New("403 Forbidden"), types.ErrAuth},
		{"rate limited", errors.New("429 rate limit exceeded"), types.ErrQuotaOrSize},
		{"context length", errors.New("maximum context length is 128000 tokens"), types.ErrQuotaOrSize},
		{"payload too large", errors.New("request entity too large"), types.ErrQuotaOrSize},
		{"connection refused", errors.New("dial tcp: connection refused"), types.ErrNetwork},
		{"reset", errors.New("read: connection reset by peer"), types.ErrNetwork},
		{"dns", errors.New("lookup api.example.com: no such host"), types.ErrNetwork},
		{"unknown", errors.New("internal server error"), types.ErrBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("anthropic", tt.err, nil)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, "anthropic", got.Data.ProviderID)
		})
	}
}

func TestClassifyPassthrough(t *testing.T) {
	original := types.NewAuthError("openai", "bad key")
	got := Classify("openai", original, nil)
	assert.Same(t, original, got)
}

func TestClassifyQuotaIncludesEstimateAndGuidance(t *testing.T) {
	req := &types.GenerationRequest{
		Prompt: "Build a site",
		ExistingFiles: []types.ProjectFile{
			{Name: "index.html", Content: "<html><body>Hello world</body></html>"},
		},
	}

	got := Classify("ark", errors.New("429 too many requests"), req)
	require.Equal(t, types.ErrQuotaOrSize, got.Name)
	assert.Greater(t, got.Data.EstimatedTokens, 0)
	assert.NotEmpty(t, got.Data.Guidance)
}

func TestRetryable(t *testing.T) {
	assert.True(t, types.NewNetworkError("x", "timeout").Retryable())
	assert.False(t, types.NewAuthError("x", "bad key").Retryable())
	assert.False(t, types.NewBackendError("x", "boom").Retryable())
	assert.False(t, types.NewQuotaOrSizeError("x", "too big", 100).Retryable())
}

func TestEstimateTokens(t *testing.T) {
	count := EstimateTokens("hello world, this is a token estimate")
	assert.Greater(t, count, 0)
	assert.Less(t, count, 20)
}
