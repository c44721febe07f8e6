package types

import "encoding/json"

// GenerationResult is the structured payload recovered from a completed stream.
// It is either fully present (parse succeeded) or the request resolved with a
// classified error; there is no partially-valid result.
type GenerationResult struct {
	// Message is the user-facing assistant text. Required.
	Message string `json:"message"`

	// Files is the list of files to upsert into the project.
	Files []ProjectFile `json:"files,omitempty"`

	// Summary is optional markdown describing the change.
	Summary string `json:"summary,omitempty"`

	// EnvironmentDelta maps variable names to new values. A nil value deletes
	// the variable; keys absent from the delta are untouched.
	EnvironmentDelta map[string]*string `json:"environment,omitempty"`

	// AdminAction is an opaque privileged side-effect request. The pipeline
	// forwards it verbatim and never interprets it.
	AdminAction json.RawMessage `json:"adminAction,omitempty"`
}

// Outcome is the terminal resolution of a successful generation.
type Outcome struct {
	Result    *GenerationResult `json:"result"`
	Thought   string            `json:"thought,omitempty"`
	FromCache bool              `json:"fromCache"`
}
