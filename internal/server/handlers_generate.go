package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sitesmith-ai/sitesmith/internal/project"
	"github.com/sitesmith-ai/sitesmith/internal/stream"
	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// generateProject handles POST /project/{projectID}/generate
//
// The request runs to a terminal resolution and the final outcome is
// returned as JSON. Incremental progress (chunks, thought, file names) is
// published on the event bus and observable through the SSE endpoints.
func (s *Server) generateProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	if _, err := s.projects.Get(r.Context(), projectID); err != nil {
		if errors.Is(err, project.ErrNotFound) {
			writeError(w, http.StatusNotFound, ErrCodeNotFound, "project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	var req types.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "prompt is required")
		return
	}
	req.ProjectID = projectID

	outcome, err := s.generator.Generate(r.Context(), &req, stream.Callbacks{})
	if err != nil {
		if errors.Is(err, project.ErrGenerationInFlight) {
			writeError(w, http.StatusConflict, ErrCodeConflict, "a generation is already running for this project")
			return
		}
		var genErr *types.GenerationError
		if errors.As(err, &genErr) {
			writeGenerationError(w, genErr)
			return
		}
		if r.Context().Err() != nil {
			// Client went away; nothing useful to write.
			return
		}
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}
