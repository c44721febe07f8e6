package server

import (
	"encoding/json"
	"net/http"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error codes
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeProviderError  = "PROVIDER_ERROR"
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// writeSuccess writes a success response.
func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// writeGenerationError maps a classified generation error onto an HTTP
// response. The full error value rides in the details so clients keep the
// taxonomy name and any remediation guidance.
func writeGenerationError(w http.ResponseWriter, genErr *types.GenerationError) {
	status := http.StatusBadGateway
	code := ErrCodeProviderError

	switch genErr.Name {
	case types.ErrAuth:
		status = http.StatusUnauthorized
	case types.ErrQuotaOrSize:
		status = http.StatusTooManyRequests
		code = ErrCodeRateLimited
	case types.ErrNoStructuredPayload, types.ErrMalformedPayload:
		status = http.StatusUnprocessableEntity
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: genErr.Data.Message,
			Details: map[string]any{"generationError": genErr},
		},
	})
}
