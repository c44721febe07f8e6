// Package admin forwards privileged-action requests emitted by a generation
// to the locally-hosted admin endpoint. The action payload is opaque; only
// success or failure is recorded.
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sitesmith-ai/sitesmith/internal/logging"
)

// Result is the admin endpoint's response.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Forwarder posts admin actions to a configured endpoint.
type Forwarder struct {
	endpoint string
	client   *http.Client
}

// NewForwarder creates a forwarder for the given endpoint. An empty endpoint
// yields a disabled forwarder whose Forward always fails.
func NewForwarder(endpoint string) *Forwarder {
	return &Forwarder{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether an endpoint is configured.
func (f *Forwarder) Enabled() bool {
	return f.endpoint != ""
}

// Forward posts the action verbatim and returns the endpoint's verdict.
// Transport failures are reported as an unsuccessful Result, not an error;
// the pipeline only records the outcome.
func (f *Forwarder) Forward(ctx context.Context, action json.RawMessage) Result {
	if !f.Enabled() {
		return Result{Success: false, Error: "admin endpoint not configured"}
	}

	body, err := json.Marshal(map[string]json.RawMessage{"action": action})
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("failed to encode action: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		logger := logging.Component("admin")
		logger.Warn().Err(err).Msg("Admin action forwarding failed")
		return Result{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{Success: false, Error: fmt.Sprintf("invalid admin response: %v", err)}
	}

	return result
}
