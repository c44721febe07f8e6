// Package extract recovers a structured GenerationResult from the raw
// payload text a backend produced.
package extract

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// Parse extracts a single GenerationResult from payload text. Several
// backends wrap their JSON in conversational filler despite instruction, so
// the payload is sliced to the span between the first '{' and the last '}'
// before parsing. Genuinely broken JSON inside that span is rejected, never
// repaired.
func Parse(payload string) (*types.GenerationResult, *types.GenerationError) {
	start := strings.Index(payload, "{")
	end := strings.LastIndex(payload, "}")

	if start < 0 || end < 0 || end < start {
		return nil, types.NewNoStructuredPayloadError("response contains no structured payload")
	}

	slice := payload[start : end+1]

	var result types.GenerationResult
	if err := json.Unmarshal([]byte(slice), &result); err != nil {
		return nil, types.NewMalformedPayloadError(err.Error(), truncate(slice, 2048))
	}

	if result.Message == "" {
		return nil, types.NewMalformedPayloadError("required field \"message\" is missing or empty", truncate(slice, 2048))
	}

	if err := validateFiles(slice); err != nil {
		return nil, types.NewMalformedPayloadError(err.Error(), truncate(slice, 2048))
	}

	return &result, nil
}

// validateFiles checks that "files", when present, is a list of objects each
// carrying name, language, and content as strings.
func validateFiles(slice string) error {
	var shape struct {
		Files []struct {
			Name     *string `json:"name"`
			Language *string `json:"language"`
			Content  *string `json:"content"`
		} `json:"files"`
	}
	if err := json.Unmarshal([]byte(slice), &shape); err != nil {
		return err
	}

	for _, f := range shape.Files {
		if f.Name == nil || f.Language == nil || f.Content == nil {
			return errIncompleteFile
		}
	}
	return nil
}

var errIncompleteFile = errors.New("file entry must contain name, language, and content")

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
