// Package stream consumes provider text fragments, maintaining the
// accumulated buffer and extracting progress observations before the
// response is complete.
package stream

import (
	"regexp"
	"strings"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// thoughtSentinel separates the natural-language preamble from the
// structured payload in the generation protocol.
const thoughtSentinel = "\n---\n"

// fileNamePattern matches a file-name field inside the still-incomplete
// payload. This is a best-effort scan over partial text, not a parse; the
// buffer is rarely valid JSON at the time it runs.
var fileNamePattern = regexp.MustCompile(`"name"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// State is the lifecycle state of a Session.
type State int

const (
	StateStreaming State = iota
	StateCompleted
	StateFailed
	StateCancelled
)

// Callbacks receive progress observations during streaming. All callbacks
// are optional and are invoked synchronously from Ingest, in detection
// order, always before the terminal result.
type Callbacks struct {
	// OnRawChunk receives every fragment verbatim.
	OnRawChunk func(text string)

	// OnThought receives the thought preamble, at most once.
	OnThought func(text string)

	// OnFileProgress receives the most recently named output file each time
	// a better match is found.
	OnFileProgress func(name string)
}

// Session is the request-scoped ingestion state machine. It is single-owner
// and not safe for concurrent use; fragment handling between suspension
// points is deliberately synchronous.
type Session struct {
	buffer           strings.Builder
	thoughtExtracted bool
	lastObservedFile string
	observeProgress  bool
	state            State
	callbacks        Callbacks
}

// NewSession creates a session for one generation request. Progress-file
// observation only applies to agent mode, where files arrive in work order.
func NewSession(mode types.Mode, callbacks Callbacks) *Session {
	return &Session{
		observeProgress: mode == types.ModeAgent,
		callbacks:       callbacks,
	}
}

// Ingest appends a fragment to the buffer and runs the extraction passes.
// Fragments arriving after a terminal transition are dropped.
func (s *Session) Ingest(fragment string) {
	if s.state != StateStreaming {
		return
	}

	s.buffer.WriteString(fragment)

	if s.callbacks.OnRawChunk != nil {
		s.callbacks.OnRawChunk(fragment)
	}

	s.detectThought()

	if s.observeProgress {
		s.scanFileProgress()
	}
}

// detectThought emits the preamble before the first sentinel occurrence,
// once per session.
func (s *Session) detectThought() {
	if s.thoughtExtracted {
		return
	}

	buf := s.buffer.String()
	idx := strings.Index(buf, thoughtSentinel)
	if idx < 0 {
		return
	}

	s.thoughtExtracted = true
	if s.callbacks.OnThought != nil {
		s.callbacks.OnThought(buf[:idx])
	}
}

// scanFileProgress reports the last file name visible in the buffer when it
// changes. Idempotent across calls with an unchanged buffer tail.
func (s *Session) scanFileProgress() {
	matches := fileNamePattern.FindAllStringSubmatch(s.buffer.String(), -1)
	if len(matches) == 0 {
		return
	}

	name := matches[len(matches)-1][1]
	if name == "" || name == s.lastObservedFile {
		return
	}

	s.lastObservedFile = name
	if s.callbacks.OnFileProgress != nil {
		s.callbacks.OnFileProgress(name)
	}
}

// Complete transitions to Completed and returns the thought/payload split.
// If the sentinel never appeared, the whole buffer is payload and thought
// is empty.
func (s *Session) Complete() (thought, payload string) {
	if s.state == StateStreaming {
		s.state = StateCompleted
	}

	buf := s.buffer.String()
	idx := strings.Index(buf, thoughtSentinel)
	if idx < 0 {
		return "", buf
	}
	return buf[:idx], buf[idx+len(thoughtSentinel):]
}

// Fail transitions to Failed. The buffer is discarded by callers; no
// parsing happens after a failed session.
func (s *Session) Fail() {
	if s.state == StateStreaming {
		s.state = StateFailed
	}
}

// Cancel transitions to Cancelled. Subsequent fragments are dropped.
func (s *Session) Cancel() {
	if s.state == StateStreaming {
		s.state = StateCancelled
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Buffer returns the accumulated text so far.
func (s *Session) Buffer() string {
	return s.buffer.String()
}

// ThoughtExtracted reports whether the sentinel was seen.
func (s *Session) ThoughtExtracted() bool {
	return s.thoughtExtracted
}

// LastObservedFile returns the most recent progress file name, or empty.
func (s *Session) LastObservedFile() string {
	return s.lastObservedFile
}
