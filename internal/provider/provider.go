// Package provider normalizes LLM backends into a single streaming
// abstraction using the Eino framework.
package provider

import (
	"context"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// Provider represents a single LLM backend. Generate returns a Stream of
// plain text fragments with no framing leakage; errors from Generate and
// from Stream.Recv are classified via Classify before reaching callers.
type Provider interface {
	// ID returns the provider identifier.
	ID() string

	// Name returns the human-readable provider name.
	Name() string

	// Models returns the list of available models.
	Models() []types.Model

	// Generate starts a streaming generation for the request.
	Generate(ctx context.Context, req *Request) (Stream, error)
}

// Request is the provider-agnostic generation request, already translated
// from a GenerationRequest into a message array (see BuildMessages).
type Request struct {
	Model       string
	Messages    []*schema.Message
	MaxTokens   int
	Temperature float64
}

// Stream is an async sequence of text fragments. Recv returns io.EOF when
// the backend has finished; any other error is terminal. Close releases the
// underlying connection and must be safe to call after an error.
type Stream interface {
	Recv() (string, error)
	Close()
}

// einoStream adapts a schema.StreamReader into a Stream of text deltas.
// Some backends send cumulative content in each chunk rather than deltas;
// the accumulated prefix is tracked so callers always see fragments.
type einoStream struct {
	reader *schema.StreamReader[*schema.Message]
	acc    strings.Builder
}

// NewStream wraps an Eino stream reader.
func NewStream(reader *schema.StreamReader[*schema.Message]) Stream {
	return &einoStream{reader: reader}
}

func (s *einoStream) Recv() (string, error) {
	for {
		msg, err := s.reader.Recv()
		if err != nil {
			if err == io.EOF {
				return "", io.EOF
			}
			return "", err
		}

		text := s.delta(msg.Content)
		if text == "" {
			// Tool-call or metadata-only chunk, keep reading
			continue
		}
		return text, nil
	}
}

// delta returns the new portion of content, handling both incremental and
// cumulative chunk conventions.
//
// The prefix check is a heuristic: an incremental fragment that happens to
// restate everything received so far (acc "a", next fragment "ab") is
// indistinguishable from a cumulative chunk and is treated as one, emitting
// only the suffix. The collision needs a fragment to repeat the entire
// accumulated text, which real token streams do not produce, and the cost is
// a shorter transcript rather than corruption.
func (s *einoStream) delta(content string) string {
	if content == "" {
		return ""
	}

	acc := s.acc.String()
	if acc != "" && strings.HasPrefix(content, acc) {
		if len(content) == len(acc) {
			return ""
		}
		fragment := content[len(acc):]
		s.acc.WriteString(fragment)
		return fragment
	}

	s.acc.WriteString(content)
	return content
}

func (s *einoStream) Close() {
	s.reader.Close()
}
