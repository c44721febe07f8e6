package provider

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

var (
	codec     tokenizer.Codec
	codecOnce sync.Once
	codecErr  error
)

func getCodec() (tokenizer.Codec, error) {
	codecOnce.Do(func() {
		codec, codecErr = tokenizer.Get(tokenizer.Cl100kBase)
	})
	return codec, codecErr
}

// EstimateTokens returns an approximate token count for text using the
// cl100k_base encoding, which is close enough across all backends to drive
// the size guidance attached to quota errors. Returns 0 on encoder failure.
func EstimateTokens(text string) int {
	c, err := getCodec()
	if err != nil {
		return 0
	}
	ids, _, err := c.Encode(text)
	if err != nil {
		return 0
	}
	return len(ids)
}

// EstimateRequestTokens estimates the token footprint of a full request:
// prompt plus every existing file's content.
func EstimateRequestTokens(req *types.GenerationRequest) int {
	total := EstimateTokens(req.Prompt)
	for _, f := range req.ExistingFiles {
		total += EstimateTokens(f.Content)
	}
	return total
}

// Classify converts a raw adapter error into a classified GenerationError.
// Already-classified errors pass through unchanged.
func Classify(providerID string, err error, req *types.GenerationRequest) *types.GenerationError {
	var genErr *types.GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}

	if isAuthError(err) {
		return types.NewAuthError(providerID, err.Error())
	}

	if isQuotaOrSizeError(err) {
		estimated := 0
		if req != nil {
			estimated = EstimateRequestTokens(req)
		}
		return types.NewQuotaOrSizeError(providerID, err.Error(), estimated)
	}

	if isNetworkError(err) {
		return types.NewNetworkError(providerID, err.Error())
	}

	return types.NewBackendError(providerID, err.Error())
}

func isAuthError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "401") ||
		strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "forbidden") ||
		strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "invalid x-api-key") ||
		strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "permission denied")
}

func isQuotaOrSizeError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "413") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "too large") ||
		strings.Contains(msg, "too many tokens") ||
		strings.Contains(msg, "context length") ||
		strings.Contains(msg, "context_length") ||
		strings.Contains(msg, "maximum context") ||
		strings.Contains(msg, "overloaded")
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "unexpected eof") ||
		strings.Contains(msg, "i/o timeout") ||
		strings.Contains(msg, "tls handshake")
}
