package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

func TestLookupMissAndHit(t *testing.T) {
	c := New(NewMemoryBackend())
	ctx := context.Background()

	_, ok := c.Lookup(ctx, "fp1")
	assert.False(t, ok)

	require.NoError(t, c.Store(ctx, "fp1", "raw response text"))

	got, ok := c.Lookup(ctx, "fp1")
	require.True(t, ok)
	assert.Equal(t, "raw response text", got)
}

func TestExpiredEntryIsMissAndPurged(t *testing.T) {
	backend := NewMemoryBackend()
	now := time.Now()
	clock := func() time.Time { return now }
	c := New(backend, WithClock(clock), WithTTL(24*time.Hour))
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "fp1", "old response"))

	// Still valid just under the TTL
	now = now.Add(24*time.Hour - time.Second)
	_, ok := c.Lookup(ctx, "fp1")
	assert.True(t, ok)

	// Expired: treated as a miss even though physically present
	now = now.Add(2 * time.Second)
	assert.Equal(t, 1, backend.Len())
	_, ok = c.Lookup(ctx, "fp1")
	assert.False(t, ok)

	// Purged opportunistically by the lookup
	assert.Equal(t, 0, backend.Len())
}

func TestLastWriterWins(t *testing.T) {
	c := New(NewMemoryBackend())
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "fp1", "first"))
	require.NoError(t, c.Store(ctx, "fp1", "second"))

	got, ok := c.Lookup(ctx, "fp1")
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestEligibility(t *testing.T) {
	c := New(NewMemoryBackend())

	assert.True(t, c.Eligible(&types.Model{ID: "ep-cheap", Cacheable: true}))
	assert.False(t, c.Eligible(&types.Model{ID: "claude-sonnet-4-20250514"}))
	assert.False(t, c.Eligible(nil))
}

func TestFingerprintStability(t *testing.T) {
	base := func() *types.GenerationRequest {
		return &types.GenerationRequest{
			Prompt: "build a landing page",
			Mode:   types.ModeChat,
			ExistingFiles: []types.ProjectFile{
				{Name: "index.html", Language: "html", Content: "<h1>Hi</h1>"},
			},
			Environment: map[string]string{"A": "1", "B": "2"},
			Attachments: []types.Attachment{
				{Name: "logo.png", MediaType: "image/png", Data: []byte("pngdata")},
			},
		}
	}

	assert.Equal(t, Fingerprint(base()), Fingerprint(base()))

	// Changing any one field changes the fingerprint
	mutations := map[string]func(r *types.GenerationRequest){
		"prompt":            func(r *types.GenerationRequest) { r.Prompt = "different" },
		"mode":              func(r *types.GenerationRequest) { r.Mode = types.ModeAgent },
		"file content":      func(r *types.GenerationRequest) { r.ExistingFiles[0].Content = "<h1>Bye</h1>" },
		"file name":         func(r *types.GenerationRequest) { r.ExistingFiles[0].Name = "main.html" },
		"environment value": func(r *types.GenerationRequest) { r.Environment["A"] = "changed" },
		"environment key":   func(r *types.GenerationRequest) { delete(r.Environment, "B"); r.Environment["C"] = "2" },
		"attachment prefix": func(r *types.GenerationRequest) { r.Attachments[0].Data = []byte("otherdata") },
		"attachment type":   func(r *types.GenerationRequest) { r.Attachments[0].MediaType = "image/jpeg" },
	}

	want := Fingerprint(base())
	for name, mutate := range mutations {
		req := base()
		mutate(req)
		assert.NotEqual(t, want, Fingerprint(req), "mutation %q should change the fingerprint", name)
	}
}

func TestFingerprintEnvironmentOrderIndependent(t *testing.T) {
	a := &types.GenerationRequest{
		Prompt:      "x",
		Environment: map[string]string{"A": "1", "B": "2", "C": "3"},
	}
	b := &types.GenerationRequest{
		Prompt:      "x",
		Environment: map[string]string{"C": "3", "B": "2", "A": "1"},
	}
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintIgnoresAttachmentTail(t *testing.T) {
	big := make([]byte, attachmentPrefixLen+100)
	for i := range big {
		big[i] = byte(i % 251)
	}

	a := &types.GenerationRequest{
		Prompt:      "x",
		Attachments: []types.Attachment{{MediaType: "image/png", Data: big}},
	}

	tail := append(append([]byte(nil), big...), 0xFF)
	b := &types.GenerationRequest{
		Prompt:      "x",
		Attachments: []types.Attachment{{MediaType: "image/png", Data: tail}},
	}

	// Only the bounded prefix is hashed
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}
