// Package generate orchestrates a single generation request end to end:
// cache lookup, provider streaming, progress extraction, result recovery,
// and reconciliation into the project.
package generate

import (
	"context"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/sitesmith-ai/sitesmith/internal/admin"
	"github.com/sitesmith-ai/sitesmith/internal/cache"
	"github.com/sitesmith-ai/sitesmith/internal/event"
	"github.com/sitesmith-ai/sitesmith/internal/extract"
	"github.com/sitesmith-ai/sitesmith/internal/logging"
	"github.com/sitesmith-ai/sitesmith/internal/project"
	"github.com/sitesmith-ai/sitesmith/internal/provider"
	"github.com/sitesmith-ai/sitesmith/internal/stream"
	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// maxAttempts bounds live-stream attempts; only NetworkError failures that
// occur before any content arrived are retried.
const maxAttempts = 3

// Generator runs generation requests. Safe for concurrent use across
// independent projects; per-project mutual exclusion is enforced through
// the project service's token.
type Generator struct {
	registry *provider.Registry
	cache    *cache.Cache
	projects *project.Service
	admin    *admin.Forwarder
	log      zerolog.Logger
}

// New creates a Generator. cache and forwarder may be nil to disable the
// response cache and admin forwarding respectively.
func New(registry *provider.Registry, c *cache.Cache, projects *project.Service, forwarder *admin.Forwarder) *Generator {
	return &Generator{
		registry: registry,
		cache:    c,
		projects: projects,
		admin:    forwarder,
		log:      logging.Component("generate"),
	}
}

// Generate runs one request to a terminal resolution. Progress callbacks
// fire in detection order, always before the returned outcome. The error is
// either a *types.GenerationError or a context error when cancelled; on
// cancellation no cache write and no reconciliation happens.
func (g *Generator) Generate(ctx context.Context, req *types.GenerationRequest, callbacks stream.Callbacks) (*types.Outcome, error) {
	token, err := g.projects.Begin(req.ProjectID)
	if err != nil {
		return nil, err
	}
	defer g.projects.End(req.ProjectID, token)

	// An already-cancelled request must not emit progress observations or
	// events, including a cache-hit replay.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	requestID := ulid.Make().String()

	prov, model, genErr := g.resolve(req)
	if genErr != nil {
		g.recordFailure(ctx, req, requestID, genErr)
		return nil, genErr
	}

	event.Publish(event.Event{
		Type: event.GenerationStarted,
		Data: event.GenerationStartedData{
			ProjectID:  req.ProjectID,
			RequestID:  requestID,
			ProviderID: prov.ID(),
			ModelID:    model.ID,
		},
	})

	if err := g.projects.AppendTranscript(ctx, req.ProjectID, &types.TranscriptEntry{
		Role: "user",
		Text: req.Prompt,
	}); err != nil {
		g.log.Warn().Err(err).Msg("Failed to record user transcript entry")
	}

	cb := g.instrument(req, requestID, callbacks)

	fingerprint := cache.Fingerprint(req)
	cacheable := g.cache != nil && g.cache.Eligible(model)

	var session *stream.Session
	fromCache := false

	if cacheable {
		if cached, ok := g.cache.Lookup(ctx, fingerprint); ok {
			// Replay through the same ingestion path as a live stream: one
			// synthetic fragment, then end-of-stream.
			session = stream.NewSession(req.Mode, cb)
			session.Ingest(cached)
			fromCache = true
			g.log.Debug().Str("fingerprint", fingerprint).Msg("Cache hit")
		}
	}

	if session == nil {
		session, genErr = g.streamLive(ctx, prov, model, req, cb)
		if genErr != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			g.recordFailure(ctx, req, requestID, genErr)
			return nil, genErr
		}
	}

	if ctx.Err() != nil {
		session.Cancel()
		return nil, ctx.Err()
	}

	thought, payload := session.Complete()

	result, parseErr := extract.Parse(payload)
	if parseErr != nil {
		g.recordParseFailure(ctx, req, requestID, parseErr, session.Buffer())
		return nil, parseErr
	}

	if cacheable && !fromCache {
		if err := g.cache.Store(ctx, fingerprint, session.Buffer()); err != nil {
			g.log.Warn().Err(err).Msg("Failed to store cache entry")
		}
	}

	_, diffs, err := g.projects.ApplyResult(ctx, req.ProjectID, token, result)
	if err != nil {
		genErr := types.NewBackendError("", "failed to apply result: "+err.Error())
		g.recordFailure(ctx, req, requestID, genErr)
		return nil, genErr
	}

	if len(result.AdminAction) > 0 {
		g.forwardAdminAction(ctx, req.ProjectID, result)
	}

	if err := g.projects.AppendTranscript(ctx, req.ProjectID, &types.TranscriptEntry{
		Role:  "assistant",
		Text:  result.Message,
		Diffs: diffs,
	}); err != nil {
		g.log.Warn().Err(err).Msg("Failed to record assistant transcript entry")
	}

	outcome := &types.Outcome{
		Result:    result,
		Thought:   thought,
		FromCache: fromCache,
	}

	event.Publish(event.Event{
		Type: event.GenerationCompleted,
		Data: event.GenerationCompletedData{
			ProjectID: req.ProjectID,
			RequestID: requestID,
			Outcome:   outcome,
		},
	})

	return outcome, nil
}

// resolve picks the provider and model for the request, falling back to the
// registry default when unspecified.
func (g *Generator) resolve(req *types.GenerationRequest) (provider.Provider, *types.Model, *types.GenerationError) {
	providerID, modelID := req.ProviderID, req.ModelID

	if providerID == "" {
		model, err := g.registry.DefaultModel()
		if err != nil {
			return nil, nil, types.NewBackendError("", err.Error())
		}
		providerID = model.ProviderID
		if modelID == "" {
			modelID = model.ID
		}
	}

	prov, err := g.registry.Get(providerID)
	if err != nil {
		return nil, nil, types.NewBackendError(providerID, err.Error())
	}

	model, err := g.registry.GetModel(providerID, modelID)
	if err != nil {
		// Unknown model IDs pass through to the backend untouched
		model = &types.Model{ID: modelID, ProviderID: providerID}
	}

	return prov, model, nil
}

// streamLive runs the provider stream into a fresh session, retrying
// network failures that happen before any fragment arrived.
func (g *Generator) streamLive(ctx context.Context, prov provider.Provider, model *types.Model, req *types.GenerationRequest, cb stream.Callbacks) (*stream.Session, *types.GenerationError) {
	preq := &provider.Request{
		Model:     model.ID,
		Messages:  provider.BuildMessages(req),
		MaxTokens: model.MaxOutputTokens,
	}

	var session *stream.Session

	attempt := func() error {
		session = stream.NewSession(req.Mode, cb)

		s, err := prov.Generate(ctx, preq)
		if err != nil {
			return g.classifyAttempt(prov, err, req, session)
		}
		defer s.Close()

		for {
			if ctx.Err() != nil {
				session.Cancel()
				return backoff.Permanent(ctx.Err())
			}

			text, err := s.Recv()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return g.classifyAttempt(prov, err, req, session)
			}

			session.Ingest(text)
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(newBackoff(), maxAttempts-1), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		if genErr, ok := err.(*types.GenerationError); ok {
			return nil, genErr
		}
		if ctx.Err() != nil {
			return nil, types.NewNetworkError(prov.ID(), ctx.Err().Error())
		}
		return nil, types.NewBackendError(prov.ID(), err.Error())
	}

	return session, nil
}

// classifyAttempt converts a raw stream error, marking it permanent unless
// a retry is safe. Retrying after fragments reached the caller would replay
// the transcript, so partial streams never retry.
func (g *Generator) classifyAttempt(prov provider.Provider, err error, req *types.GenerationRequest, session *stream.Session) error {
	session.Fail()
	genErr := provider.Classify(prov.ID(), err, req)

	if genErr.Retryable() && session.Buffer() == "" {
		g.log.Debug().Str("provider", prov.ID()).Err(err).Msg("Retrying after network error")
		return genErr
	}
	return backoff.Permanent(genErr)
}

// forwardAdminAction sends the action to the privileged endpoint and
// records the verdict as a system transcript entry.
func (g *Generator) forwardAdminAction(ctx context.Context, projectID string, result *types.GenerationResult) {
	forwarder := g.admin
	if forwarder == nil {
		forwarder = admin.NewForwarder("")
	}

	verdict := forwarder.Forward(ctx, result.AdminAction)

	text := "Admin action completed."
	if !verdict.Success {
		text = "Admin action failed: " + verdict.Error
	}

	if err := g.projects.AppendTranscript(ctx, projectID, &types.TranscriptEntry{
		Role: "system",
		Text: text,
	}); err != nil {
		g.log.Warn().Err(err).Msg("Failed to record admin transcript entry")
	}
}

// recordParseFailure surfaces an unparseable response to the user: the raw
// accumulated text becomes an assistant transcript entry verbatim, so the
// user sees what the backend actually said. Files and environment stay
// untouched.
func (g *Generator) recordParseFailure(ctx context.Context, req *types.GenerationRequest, requestID string, genErr *types.GenerationError, raw string) {
	if err := g.projects.AppendTranscript(ctx, req.ProjectID, &types.TranscriptEntry{
		Role: "assistant",
		Text: raw,
		Err:  genErr,
	}); err != nil {
		g.log.Warn().Err(err).Msg("Failed to record parse failure transcript entry")
	}

	event.Publish(event.Event{
		Type: event.GenerationFailed,
		Data: event.GenerationFailedData{
			ProjectID: req.ProjectID,
			RequestID: requestID,
			Error:     genErr,
		},
	})
}

// recordFailure appends a failure transcript entry and publishes the
// terminal error. Project files and environment are never touched here.
func (g *Generator) recordFailure(ctx context.Context, req *types.GenerationRequest, requestID string, genErr *types.GenerationError) {
	text := genErr.Data.Message
	if genErr.Data.Guidance != "" {
		text += " " + genErr.Data.Guidance
	}

	if err := g.projects.AppendTranscript(ctx, req.ProjectID, &types.TranscriptEntry{
		Role: "system",
		Text: text,
		Err:  genErr,
	}); err != nil {
		g.log.Warn().Err(err).Msg("Failed to record failure transcript entry")
	}

	event.Publish(event.Event{
		Type: event.GenerationFailed,
		Data: event.GenerationFailedData{
			ProjectID: req.ProjectID,
			RequestID: requestID,
			Error:     genErr,
		},
	})
}

// instrument wraps caller callbacks so progress observations also reach the
// event bus, synchronously to preserve ordering.
func (g *Generator) instrument(req *types.GenerationRequest, requestID string, cb stream.Callbacks) stream.Callbacks {
	return stream.Callbacks{
		OnRawChunk: func(text string) {
			event.PublishSync(event.Event{
				Type: event.GenerationChunk,
				Data: event.GenerationChunkData{ProjectID: req.ProjectID, RequestID: requestID, Text: text},
			})
			if cb.OnRawChunk != nil {
				cb.OnRawChunk(text)
			}
		},
		OnThought: func(text string) {
			event.PublishSync(event.Event{
				Type: event.GenerationThought,
				Data: event.GenerationThoughtData{ProjectID: req.ProjectID, RequestID: requestID, Thought: text},
			})
			if cb.OnThought != nil {
				cb.OnThought(text)
			}
		},
		OnFileProgress: func(name string) {
			event.PublishSync(event.Event{
				Type: event.GenerationFile,
				Data: event.GenerationFileData{ProjectID: req.ProjectID, RequestID: requestID, FileName: name},
			})
			if cb.OnFileProgress != nil {
				cb.OnFileProgress(name)
			}
		},
	}
}

func newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return b
}
