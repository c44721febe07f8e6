// SSE Implementation Note:
// This file contains a custom Server-Sent Events (SSE) implementation rather
// than using a third-party package like r3labs/sse. The implementation is
// small, integrates directly with the internal event bus, and supports the
// per-project filtering the UI needs; an SSE framework would not carry its
// weight here.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sitesmith-ai/sitesmith/internal/event"
	"github.com/sitesmith-ai/sitesmith/internal/logging"
)

// SDKEvent is the wire shape of a streamed event.
// Clients expect: {"type": "...", "properties": {...}}
type SDKEvent struct {
	Type       event.EventType `json:"type"`
	Properties any             `json:"properties"`
}

const (
	// SSEHeartbeatInterval is the interval for SSE heartbeats.
	SSEHeartbeatInterval = 30 * time.Second
)

// sseWriter wraps http.ResponseWriter for SSE.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	rc      *http.ResponseController
}

// newSSEWriter creates a new SSE writer.
func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	// ResponseController flushes through middleware wrappers (Go 1.20+)
	rc := http.NewResponseController(w)

	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	return &sseWriter{w: w, flusher: flusher, rc: rc}, nil
}

// writeEvent writes one SSE event and flushes it.
func (s *sseWriter) writeEvent(eventType string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", eventType, jsonData)
	if err != nil {
		return err
	}

	if flushErr := s.rc.Flush(); flushErr != nil {
		s.flusher.Flush()
	}

	return nil
}

// writeHeartbeat writes an SSE heartbeat comment.
func (s *sseWriter) writeHeartbeat() {
	fmt.Fprintf(s.w, ": heartbeat\n\n")
	s.flusher.Flush()
}

// globalEvents handles SSE for all events (GET /event).
func (srv *Server) globalEvents(w http.ResponseWriter, r *http.Request) {
	srv.streamEvents(w, r, nil)
}

// projectEvents handles SSE for a single project (GET /project/{projectID}/event).
func (srv *Server) projectEvents(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if projectID == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "projectID required")
		return
	}

	srv.streamEvents(w, r, func(e event.Event) bool {
		return eventBelongsToProject(e, projectID)
	})
}

// streamEvents runs the SSE loop; filter nil means every event is forwarded.
func (srv *Server) streamEvents(w http.ResponseWriter, r *http.Request, filter func(event.Event) bool) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	// Flush headers before waiting for events
	w.WriteHeader(http.StatusOK)
	sse.flusher.Flush()

	connected := SDKEvent{
		Type:       "server.connected",
		Properties: map[string]any{},
	}
	if err := sse.writeEvent("message", connected); err != nil {
		return
	}

	// Small buffer for low-latency streaming; a slow client drops events
	// rather than stalling the bus.
	events := make(chan event.Event, 10)

	unsub := event.SubscribeAll(func(e event.Event) {
		if filter != nil && !filter(e) {
			return
		}
		select {
		case events <- e:
		default:
			logging.Warn().
				Str("eventType", string(e.Type)).
				Msg("SSE event dropped: channel full")
		}
	})
	defer unsub()

	ticker := time.NewTicker(SSEHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-events:
			data := SDKEvent{
				Type:       e.Type,
				Properties: e.Data,
			}
			if err := sse.writeEvent("message", data); err != nil {
				return
			}
		case <-ticker.C:
			sse.writeHeartbeat()
		}
	}
}

// eventBelongsToProject checks if an event belongs to a project.
func eventBelongsToProject(e event.Event, projectID string) bool {
	switch data := e.Data.(type) {
	case event.GenerationStartedData:
		return data.ProjectID == projectID
	case event.GenerationChunkData:
		return data.ProjectID == projectID
	case event.GenerationThoughtData:
		return data.ProjectID == projectID
	case event.GenerationFileData:
		return data.ProjectID == projectID
	case event.GenerationCompletedData:
		return data.ProjectID == projectID
	case event.GenerationFailedData:
		return data.ProjectID == projectID
	case event.ProjectUpdatedData:
		return data.Info != nil && data.Info.ID == projectID
	case event.TranscriptAppendedData:
		return data.ProjectID == projectID
	}
	return false
}
