package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"message": "hello"}

	writeJSON(w, http.StatusOK, data)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	contentType := w.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", contentType)
	}

	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if result["message"] != "hello" {
		t.Errorf("Expected message 'hello', got '%s'", result["message"])
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid input")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	var result ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if result.Error.Code != ErrCodeInvalidRequest {
		t.Errorf("Expected code %s, got %s", ErrCodeInvalidRequest, result.Error.Code)
	}
	if result.Error.Message != "Invalid input" {
		t.Errorf("Expected message 'Invalid input', got '%s'", result.Error.Message)
	}
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	writeSuccess(w)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var result map[string]bool
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if !result["success"] {
		t.Error("Expected success true")
	}
}

func TestWriteGenerationError(t *testing.T) {
	tests := []struct {
		name       string
		err        *types.GenerationError
		wantStatus int
		wantCode   string
	}{
		{
			name:       "auth error",
			err:        types.NewAuthError("anthropic", "invalid api key"),
			wantStatus: http.StatusUnauthorized,
			wantCode:   ErrCodeProviderError,
		},
		{
			name:       "quota or size error",
			err:        types.NewQuotaOrSizeError("openai", "request too large", 120000),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   ErrCodeRateLimited,
		},
		{
			name:       "network error",
			err:        types.NewNetworkError("ark", "connection reset"),
			wantStatus: http.StatusBadGateway,
			wantCode:   ErrCodeProviderError,
		},
		{
			name:       "backend error",
			err:        types.NewBackendError("gemini", "internal server error"),
			wantStatus: http.StatusBadGateway,
			wantCode:   ErrCodeProviderError,
		},
		{
			name:       "no structured payload",
			err:        types.NewNoStructuredPayloadError("no JSON object found"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   ErrCodeProviderError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeGenerationError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}

			var result ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if result.Error.Code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, result.Error.Code)
			}
			if result.Error.Details["generationError"] == nil {
				t.Error("Expected generationError in details")
			}
		})
	}
}
