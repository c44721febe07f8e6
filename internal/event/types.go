package event

import "github.com/sitesmith-ai/sitesmith/pkg/types"

// GenerationStartedData is the data for generation.started events.
type GenerationStartedData struct {
	ProjectID  string `json:"projectID"`
	RequestID  string `json:"requestID"`
	ProviderID string `json:"providerID"`
	ModelID    string `json:"modelID"`
}

// GenerationChunkData is the data for generation.chunk events. Text is the raw
// fragment exactly as received from the adapter.
type GenerationChunkData struct {
	ProjectID string `json:"projectID"`
	RequestID string `json:"requestID"`
	Text      string `json:"text"`
}

// GenerationThoughtData is the data for generation.thought events.
// Emitted at most once per request.
type GenerationThoughtData struct {
	ProjectID string `json:"projectID"`
	RequestID string `json:"requestID"`
	Thought   string `json:"thought"`
}

// GenerationFileData is the data for generation.file progress events.
type GenerationFileData struct {
	ProjectID string `json:"projectID"`
	RequestID string `json:"requestID"`
	FileName  string `json:"fileName"`
}

// GenerationCompletedData is the data for generation.completed events.
type GenerationCompletedData struct {
	ProjectID string         `json:"projectID"`
	RequestID string         `json:"requestID"`
	Outcome   *types.Outcome `json:"outcome"`
}

// GenerationFailedData is the data for generation.failed events.
type GenerationFailedData struct {
	ProjectID string                 `json:"projectID"`
	RequestID string                 `json:"requestID"`
	Error     *types.GenerationError `json:"error"`
}

// ProjectUpdatedData is the data for project.updated events.
type ProjectUpdatedData struct {
	Info *types.Project `json:"info"`
}

// TranscriptAppendedData is the data for transcript.appended events.
type TranscriptAppendedData struct {
	ProjectID string                 `json:"projectID"`
	Entry     *types.TranscriptEntry `json:"entry"`
}
