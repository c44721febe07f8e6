package types

// Project is the persistent in-memory project model the reconciler mutates.
type Project struct {
	ID          string            `json:"id"`
	Title       string            `json:"title,omitempty"`
	Files       []ProjectFile     `json:"files"`
	Environment map[string]string `json:"environment,omitempty"`
	ActiveFile  string            `json:"activeFile,omitempty"`
	Time        ProjectTime       `json:"time"`
}

// ProjectTime contains project timestamps in unix milliseconds.
type ProjectTime struct {
	Created int64  `json:"created"`
	Updated *int64 `json:"updated,omitempty"`
}

// TranscriptEntry is one chat/history record attached to a project.
type TranscriptEntry struct {
	ID      string `json:"id"`
	Role    string `json:"role"` // "user" | "assistant" | "system"
	Text    string `json:"text"`
	Created int64  `json:"created"`

	// Diffs summarizes the file changes a reconciliation produced, if any.
	Diffs []FileDiff `json:"diffs,omitempty"`

	// Err carries the classified error for failure entries.
	Err *GenerationError `json:"error,omitempty"`
}

// FileDiff summarizes line additions and deletions for one reconciled file.
type FileDiff struct {
	Name      string `json:"name"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Created   bool   `json:"created,omitempty"`
}
