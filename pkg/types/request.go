// Package types provides the core data types for the SiteSmith generation pipeline.
package types

// Mode selects how a generation request is interpreted.
type Mode string

const (
	// ModeChat is the conversational mode: one prompt, one structured reply.
	ModeChat Mode = "chat"
	// ModeAgent is the autonomous mode: the backend is expected to emit many
	// files and progress hints are scanned from the partial stream.
	ModeAgent Mode = "agent"
)

// GenerationRequest is the immutable unit of work for one generation round-trip.
// It is also the input to the cache fingerprint.
type GenerationRequest struct {
	ProjectID     string            `json:"projectID"`
	Prompt        string            `json:"prompt"`
	ExistingFiles []ProjectFile     `json:"existingFiles,omitempty"`
	Environment   map[string]string `json:"environment,omitempty"`
	Mode          Mode              `json:"mode"`
	ProviderID    string            `json:"providerID"`
	ModelID       string            `json:"modelID"`
	Attachments   []Attachment      `json:"attachments,omitempty"`
}

// Attachment is a binary blob with a declared media type.
// Payloads arrive pre-encoded; the pipeline never re-encodes them.
type Attachment struct {
	Name      string `json:"name,omitempty"`
	MediaType string `json:"mediaType"`
	Data      []byte `json:"data"`
}

// ProjectFile is a single generated file. Identity is by Name; there is no
// separate file ID.
type ProjectFile struct {
	Name     string `json:"name"`
	Language string `json:"language,omitempty"`
	Content  string `json:"content"`
}
