package project

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sitesmith-ai/sitesmith/internal/event"
	"github.com/sitesmith-ai/sitesmith/internal/logging"
	"github.com/sitesmith-ai/sitesmith/internal/storage"
	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// ErrGenerationInFlight is returned when a second generation is started
// against a project that already has one running.
var ErrGenerationInFlight = errors.New("a generation is already in flight for this project")

// ErrStaleToken is returned when a result arrives under a token that no
// longer owns the project, e.g. after cancellation.
var ErrStaleToken = errors.New("generation token is stale")

// ErrNotFound is returned for unknown project IDs.
var ErrNotFound = errors.New("project not found")

// Service owns persistent project state. Each project allows at most one
// in-flight generation, enforced with a per-project token that must match
// for a result to be accepted.
type Service struct {
	store *storage.Store

	mu       sync.Mutex
	inFlight map[string]string // projectID -> token
}

// NewService creates a project service over the given store.
func NewService(store *storage.Store) *Service {
	return &Service{
		store:    store,
		inFlight: make(map[string]string),
	}
}

// Create creates and persists a new empty project.
func (s *Service) Create(ctx context.Context, title string) (*types.Project, error) {
	project := &types.Project{
		ID:    "prj_" + ulid.Make().String(),
		Title: title,
		Files: []types.ProjectFile{},
		Time:  types.ProjectTime{Created: time.Now().UnixMilli()},
	}

	if err := s.store.Write(ctx, "project/"+project.ID, project); err != nil {
		return nil, fmt.Errorf("failed to persist project: %w", err)
	}

	logger := logging.Component("project")
	logger.Info().Str("project", project.ID).Msg("Project created")
	return project, nil
}

// Get loads a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*types.Project, error) {
	var project types.Project
	if err := s.store.Read(ctx, "project/"+id, &project); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// List returns all projects, newest first.
func (s *Service) List(ctx context.Context) ([]*types.Project, error) {
	keys, err := s.store.Keys(ctx, "project")
	if err != nil {
		return nil, err
	}

	projects := make([]*types.Project, 0, len(keys))
	for _, key := range keys {
		var project types.Project
		if err := s.store.Read(ctx, "project/"+key, &project); err != nil {
			continue
		}
		projects = append(projects, &project)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Time.Created > projects[j].Time.Created
	})
	return projects, nil
}

// Delete removes a project and its transcript.
func (s *Service) Delete(ctx context.Context, id string) error {
	entries, _ := s.store.Keys(ctx, "transcript/"+id)
	for _, key := range entries {
		_ = s.store.Remove(ctx, "transcript/"+id+"/"+key)
	}
	return s.store.Remove(ctx, "project/"+id)
}

// Begin acquires the generation token for a project. It fails with
// ErrGenerationInFlight if another generation holds the token.
func (s *Service) Begin(projectID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inFlight[projectID]; ok {
		return "", ErrGenerationInFlight
	}

	token := ulid.Make().String()
	s.inFlight[projectID] = token
	return token, nil
}

// End releases the generation token if it is still held by token.
func (s *Service) End(projectID, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[projectID] == token {
		delete(s.inFlight, projectID)
	}
}

// holdsToken reports whether token currently owns the project.
func (s *Service) holdsToken(projectID, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[projectID] == token
}

// ApplyResult reconciles a successful result into the project under the
// given token, persists the merged state, and publishes a project.updated
// event. A stale token leaves the project untouched.
func (s *Service) ApplyResult(ctx context.Context, projectID, token string, result *types.GenerationResult) (*types.Project, []types.FileDiff, error) {
	if !s.holdsToken(projectID, token) {
		return nil, nil, ErrStaleToken
	}

	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	diffs := Reconcile(project, result)

	now := time.Now().UnixMilli()
	project.Time.Updated = &now

	if err := s.store.Write(ctx, "project/"+projectID, project); err != nil {
		return nil, nil, fmt.Errorf("failed to persist project: %w", err)
	}

	event.Publish(event.Event{
		Type: event.ProjectUpdated,
		Data: event.ProjectUpdatedData{Info: project},
	})

	return project, diffs, nil
}

// AppendTranscript persists a transcript entry and publishes it.
func (s *Service) AppendTranscript(ctx context.Context, projectID string, entry *types.TranscriptEntry) error {
	if entry.ID == "" {
		entry.ID = "msg_" + ulid.Make().String()
	}
	if entry.Created == 0 {
		entry.Created = time.Now().UnixMilli()
	}

	if err := s.store.Write(ctx, "transcript/"+projectID+"/"+entry.ID, entry); err != nil {
		return fmt.Errorf("failed to persist transcript entry: %w", err)
	}

	event.Publish(event.Event{
		Type: event.TranscriptAppended,
		Data: event.TranscriptAppendedData{ProjectID: projectID, Entry: entry},
	})
	return nil
}

// Transcript returns a project's transcript entries in creation order.
// ULIDs sort lexicographically by time, so key order is creation order.
func (s *Service) Transcript(ctx context.Context, projectID string) ([]*types.TranscriptEntry, error) {
	keys, err := s.store.Keys(ctx, "transcript/"+projectID)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	entries := make([]*types.TranscriptEntry, 0, len(keys))
	for _, key := range keys {
		var entry types.TranscriptEntry
		if err := s.store.Read(ctx, "transcript/"+projectID+"/"+key, &entry); err != nil {
			continue
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}
