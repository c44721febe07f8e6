package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

func TestThoughtPayloadSplit(t *testing.T) {
	var thoughts []string
	s := NewSession(types.ModeChat, Callbacks{
		OnThought: func(text string) { thoughts = append(thoughts, text) },
	})

	s.Ingest("Doing X.\n---\n{\"message\":\"ok\",\"files\":[]}")

	thought, payload := s.Complete()
	assert.Equal(t, "Doing X.", thought)
	assert.Equal(t, "{\"message\":\"ok\",\"files\":[]}", payload)

	require.Len(t, thoughts, 1)
	assert.Equal(t, "Doing X.", thoughts[0])
}

func TestThoughtEmittedOnceAcrossFragments(t *testing.T) {
	var thoughts []string
	s := NewSession(types.ModeChat, Callbacks{
		OnThought: func(text string) { thoughts = append(thoughts, text) },
	})

	// Sentinel split across fragments
	s.Ingest("Planning the layout.")
	s.Ingest("\n--")
	s.Ingest("-\n{\"message\":")
	s.Ingest("\"done\"}")

	require.Len(t, thoughts, 1)
	assert.Equal(t, "Planning the layout.", thoughts[0])

	thought, payload := s.Complete()
	assert.Equal(t, "Planning the layout.", thought)
	assert.Equal(t, "{\"message\":\"done\"}", payload)
}

func TestNoSentinelFallback(t *testing.T) {
	var thoughts []string
	s := NewSession(types.ModeChat, Callbacks{
		OnThought: func(text string) { thoughts = append(thoughts, text) },
	})

	s.Ingest("{\"message\":\"no preamble here\"}")

	thought, payload := s.Complete()
	assert.Empty(t, thought)
	assert.Equal(t, "{\"message\":\"no preamble here\"}", payload)
	assert.Empty(t, thoughts)
}

func TestRawChunksForwardedVerbatimInOrder(t *testing.T) {
	var chunks []string
	s := NewSession(types.ModeChat, Callbacks{
		OnRawChunk: func(text string) { chunks = append(chunks, text) },
	})

	fragments := []string{"a", "b", "", "c"}
	for _, f := range fragments {
		s.Ingest(f)
	}

	assert.Equal(t, fragments, chunks)
	assert.Equal(t, "abc", s.Buffer())
}

func TestFileProgressAgentMode(t *testing.T) {
	var names []string
	s := NewSession(types.ModeAgent, Callbacks{
		OnFileProgress: func(name string) { names = append(names, name) },
	})

	s.Ingest("Working.\n---\n{\"files\":[{\"name\": \"index.html\", \"content\": \"")
	s.Ingest("...\"},{\"name\": \"style.css\"")
	// Re-ingesting content that adds no new name must not re-emit
	s.Ingest(", \"content\": \"body {}\"}")

	assert.Equal(t, []string{"index.html", "style.css"}, names)
	assert.Equal(t, "style.css", s.LastObservedFile())
}

func TestFileProgressChatModeDisabled(t *testing.T) {
	var names []string
	s := NewSession(types.ModeChat, Callbacks{
		OnFileProgress: func(name string) { names = append(names, name) },
	})

	s.Ingest("{\"files\":[{\"name\": \"index.html\"}]}")

	assert.Empty(t, names)
	assert.Empty(t, s.LastObservedFile())
}

func TestFileProgressTolerantOfPartialJSON(t *testing.T) {
	var names []string
	s := NewSession(types.ModeAgent, Callbacks{
		OnFileProgress: func(name string) { names = append(names, name) },
	})

	// Buffer is nowhere near valid JSON
	s.Ingest("garbage {{{ \"name\":\"app.js\" more garbage")

	assert.Equal(t, []string{"app.js"}, names)
}

func TestCancelDropsSubsequentFragments(t *testing.T) {
	var chunks []string
	s := NewSession(types.ModeChat, Callbacks{
		OnRawChunk: func(text string) { chunks = append(chunks, text) },
	})

	s.Ingest("before")
	s.Cancel()
	s.Ingest("after")

	assert.Equal(t, []string{"before"}, chunks)
	assert.Equal(t, "before", s.Buffer())
	assert.Equal(t, StateCancelled, s.State())
}

func TestStateTransitions(t *testing.T) {
	s := NewSession(types.ModeChat, Callbacks{})
	assert.Equal(t, StateStreaming, s.State())

	s.Complete()
	assert.Equal(t, StateCompleted, s.State())

	// Terminal states are sticky
	s.Fail()
	assert.Equal(t, StateCompleted, s.State())

	f := NewSession(types.ModeChat, Callbacks{})
	f.Fail()
	assert.Equal(t, StateFailed, f.State())
}
