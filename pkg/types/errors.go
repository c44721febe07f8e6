package types

import "fmt"

// Error taxonomy. Every terminal failure of the pipeline is one of these.
// Format: {"name": "...", "data": {"message": "..."}}
const (
	ErrAuth                = "AuthError"
	ErrQuotaOrSize         = "QuotaOrSizeError"
	ErrNetwork             = "NetworkError"
	ErrBackend             = "BackendError"
	ErrNoStructuredPayload = "NoStructuredPayload"
	ErrMalformedPayload    = "MalformedPayload"
)

// GenerationError is a classified, terminal, non-throwing error value.
type GenerationError struct {
	Name string              `json:"name"`
	Data GenerationErrorData `json:"data"`
}

// GenerationErrorData contains the error details.
type GenerationErrorData struct {
	Message    string `json:"message"`
	ProviderID string `json:"providerID,omitempty"`

	// EstimatedTokens is an approximate size of the rejected request,
	// populated for QuotaOrSizeError.
	EstimatedTokens int `json:"estimatedTokens,omitempty"`

	// Guidance is concrete remediation text surfaced to the user.
	Guidance string `json:"guidance,omitempty"`

	// Detail carries diagnostics only, e.g. the offending payload slice for
	// MalformedPayload. Never shown as the primary user message.
	Detail string `json:"detail,omitempty"`
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Data.Message)
}

// Retryable reports whether retrying the identical request is safe.
func (e *GenerationError) Retryable() bool {
	return e.Name == ErrNetwork
}

// NewAuthError creates an AuthError for a provider.
func NewAuthError(providerID, message string) *GenerationError {
	return &GenerationError{
		Name: ErrAuth,
		Data: GenerationErrorData{Message: message, ProviderID: providerID},
	}
}

// NewQuotaOrSizeError creates a QuotaOrSizeError with remediation guidance.
func NewQuotaOrSizeError(providerID, message string, estimatedTokens int) *GenerationError {
	return &GenerationError{
		Name: ErrQuotaOrSize,
		Data: GenerationErrorData{
			Message:         message,
			ProviderID:      providerID,
			EstimatedTokens: estimatedTokens,
			Guidance:        "The request is too large or rate-limited. Try a more specific prompt, or remove files from the project before regenerating.",
		},
	}
}

// NewNetworkError creates a NetworkError.
func NewNetworkError(providerID, message string) *GenerationError {
	return &GenerationError{
		Name: ErrNetwork,
		Data: GenerationErrorData{Message: message, ProviderID: providerID},
	}
}

// NewBackendError creates a BackendError.
func NewBackendError(providerID, message string) *GenerationError {
	return &GenerationError{
		Name: ErrBackend,
		Data: GenerationErrorData{Message: message, ProviderID: providerID},
	}
}

// NewNoStructuredPayloadError creates a NoStructuredPayload error.
func NewNoStructuredPayloadError(message string) *GenerationError {
	return &GenerationError{
		Name: ErrNoStructuredPayload,
		Data: GenerationErrorData{Message: message},
	}
}

// NewMalformedPayloadError creates a MalformedPayload error carrying the
// offending slice for diagnostics.
func NewMalformedPayloadError(message, slice string) *GenerationError {
	return &GenerationError{
		Name: ErrMalformedPayload,
		Data: GenerationErrorData{Message: message, Detail: slice},
	}
}
