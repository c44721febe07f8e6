package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sitesmith-ai/sitesmith/internal/generate"
	"github.com/sitesmith-ai/sitesmith/internal/project"
	"github.com/sitesmith-ai/sitesmith/internal/provider"
	"github.com/sitesmith-ai/sitesmith/internal/storage"
	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// stubStream plays back fragments then ends.
type stubStream struct {
	fragments []string
	pos       int
}

func (s *stubStream) Recv() (string, error) {
	if s.pos < len(s.fragments) {
		text := s.fragments[s.pos]
		s.pos++
		return text, nil
	}
	return "", io.EOF
}

func (s *stubStream) Close() {}

// stubProvider serves a canned stream or fails with err.
type stubProvider struct {
	fragments []string
	err       error
}

func (p *stubProvider) ID() string   { return "stub" }
func (p *stubProvider) Name() string { return "Stub" }
func (p *stubProvider) Models() []types.Model {
	return []types.Model{{ID: "stub-model", ProviderID: "stub"}}
}

func (p *stubProvider) Generate(ctx context.Context, req *provider.Request) (provider.Stream, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &stubStream{fragments: p.fragments}, nil
}

func setupTestServer(t *testing.T, prov provider.Provider) *Server {
	t.Helper()

	store := storage.New(t.TempDir())
	projects := project.NewService(store)

	registry := provider.NewRegistry(nil)
	if prov != nil {
		registry.Register(prov)
	}

	return &Server{
		config:      DefaultConfig(),
		router:      chi.NewRouter(),
		appConfig:   &types.Config{},
		projects:    projects,
		providerReg: registry,
		generator:   generate.New(registry, nil, projects, nil),
	}
}

// withURLParam injects a chi URL parameter into the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestListProjects_Empty(t *testing.T) {
	srv := setupTestServer(t, nil)

	req := httptest.NewRequest("GET", "/project", nil)
	w := httptest.NewRecorder()

	srv.listProjects(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var projects []types.Project
	if err := json.NewDecoder(w.Body).Decode(&projects); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("Expected empty list, got %d projects", len(projects))
	}
}

func TestCreateProject(t *testing.T) {
	srv := setupTestServer(t, nil)

	body, _ := json.Marshal(map[string]string{"title": "Landing Page"})
	req := httptest.NewRequest("POST", "/project", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	srv.createProject(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created types.Project
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if created.ID == "" {
		t.Error("Project ID should not be empty")
	}
	if created.Title != "Landing Page" {
		t.Errorf("Title mismatch: got %s", created.Title)
	}
}

func TestCreateProject_InvalidJSON(t *testing.T) {
	srv := setupTestServer(t, nil)

	req := httptest.NewRequest("POST", "/project", bytes.NewReader([]byte("invalid json")))
	w := httptest.NewRecorder()

	srv.createProject(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestGetProject(t *testing.T) {
	srv := setupTestServer(t, nil)

	created, err := srv.projects.Create(context.Background(), "site")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	req := withURLParam(httptest.NewRequest("GET", "/project/"+created.ID, nil), "projectID", created.ID)
	w := httptest.NewRecorder()

	srv.getProject(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got types.Project
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID mismatch: got %s", got.ID)
	}
}

func TestGetProject_NotFound(t *testing.T) {
	srv := setupTestServer(t, nil)

	req := withURLParam(httptest.NewRequest("GET", "/project/prj_missing", nil), "projectID", "prj_missing")
	w := httptest.NewRecorder()

	srv.getProject(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestDeleteProject(t *testing.T) {
	srv := setupTestServer(t, nil)
	ctx := context.Background()

	created, err := srv.projects.Create(ctx, "site")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	req := withURLParam(httptest.NewRequest("DELETE", "/project/"+created.ID, nil), "projectID", created.ID)
	w := httptest.NewRecorder()

	srv.deleteProject(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	if _, err := srv.projects.Get(ctx, created.ID); !errors.Is(err, project.ErrNotFound) {
		t.Errorf("Expected project to be deleted, got err=%v", err)
	}
}

func TestGetTranscript(t *testing.T) {
	srv := setupTestServer(t, nil)
	ctx := context.Background()

	created, err := srv.projects.Create(ctx, "site")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	if err := srv.projects.AppendTranscript(ctx, created.ID, &types.TranscriptEntry{
		Role: "user", Text: "build a pricing page",
	}); err != nil {
		t.Fatalf("Failed to append transcript: %v", err)
	}

	req := withURLParam(httptest.NewRequest("GET", "/project/"+created.ID+"/transcript", nil), "projectID", created.ID)
	w := httptest.NewRecorder()

	srv.getTranscript(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var entries []types.TranscriptEntry
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if len(entries) != 1 || entries[0].Text != "build a pricing page" {
		t.Errorf("Unexpected transcript: %+v", entries)
	}
}

func generateRequest(t *testing.T, srv *Server, projectID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, _ := json.Marshal(body)
	req := withURLParam(
		httptest.NewRequest("POST", "/project/"+projectID+"/generate", bytes.NewReader(payload)),
		"projectID", projectID,
	)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	srv.generateProject(w, req)
	return w
}

func TestGenerateProject(t *testing.T) {
	srv := setupTestServer(t, &stubProvider{
		fragments: []string{
			"Designing the page.",
			"\n---\n",
			`{"message":"done","files":[{"name":"index.html","language":"html","content":"<h1>Hi</h1>"}]}`,
		},
	})
	ctx := context.Background()

	created, err := srv.projects.Create(ctx, "site")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	w := generateRequest(t, srv, created.ID, map[string]string{
		"prompt":     "build a landing page",
		"providerID": "stub",
		"modelID":    "stub-model",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var outcome types.Outcome
	if err := json.NewDecoder(w.Body).Decode(&outcome); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if outcome.Result == nil || outcome.Result.Message != "done" {
		t.Errorf("Unexpected outcome: %+v", outcome)
	}
	if outcome.Thought != "Designing the page." {
		t.Errorf("Unexpected thought: %q", outcome.Thought)
	}

	got, err := srv.projects.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Failed to get project: %v", err)
	}
	if len(got.Files) != 1 || got.Files[0].Name != "index.html" {
		t.Errorf("Project files not reconciled: %+v", got.Files)
	}
}

func TestGenerateProject_MissingPrompt(t *testing.T) {
	srv := setupTestServer(t, &stubProvider{})

	created, err := srv.projects.Create(context.Background(), "site")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	w := generateRequest(t, srv, created.ID, map[string]string{"providerID": "stub"})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestGenerateProject_Conflict(t *testing.T) {
	srv := setupTestServer(t, &stubProvider{})

	created, err := srv.projects.Create(context.Background(), "site")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	token, err := srv.projects.Begin(created.ID)
	if err != nil {
		t.Fatalf("Failed to begin: %v", err)
	}
	defer srv.projects.End(created.ID, token)

	w := generateRequest(t, srv, created.ID, map[string]string{
		"prompt": "x", "providerID": "stub", "modelID": "stub-model",
	})

	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGenerateProject_AuthErrorMapped(t *testing.T) {
	srv := setupTestServer(t, &stubProvider{err: errors.New("401 unauthorized")})

	created, err := srv.projects.Create(context.Background(), "site")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	w := generateRequest(t, srv, created.ID, map[string]string{
		"prompt": "x", "providerID": "stub", "modelID": "stub-model",
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d: %s", w.Code, w.Body.String())
	}

	var result ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if result.Error.Code != ErrCodeProviderError {
		t.Errorf("Expected code %s, got %s", ErrCodeProviderError, result.Error.Code)
	}
}

func TestGenerateProject_ProjectNotFound(t *testing.T) {
	srv := setupTestServer(t, &stubProvider{})

	w := generateRequest(t, srv, "prj_missing", map[string]string{"prompt": "x"})

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}
