package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// fakeProvider is a minimal Provider for registry tests.
type fakeProvider struct {
	id     string
	models []types.Model
}

func (f *fakeProvider) ID() string            { return f.id }
func (f *fakeProvider) Name() string          { return f.id }
func (f *fakeProvider) Models() []types.Model { return f.models }
func (f *fakeProvider) Generate(ctx context.Context, req *Request) (Stream, error) {
	return nil, types.NewBackendError(f.id, "not implemented")
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&fakeProvider{id: "anthropic"})

	p, err := r.Get("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.ID())

	_, err = r.Get("missing")
	assert.Error(t, err)
}

func TestRegistryGetModel(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&fakeProvider{
		id: "ark",
		models: []types.Model{
			{ID: "ep-cheap", ProviderID: "ark", Cacheable: true},
		},
	})

	m, err := r.GetModel("ark", "ep-cheap")
	require.NoError(t, err)
	assert.True(t, m.Cacheable)

	_, err = r.GetModel("ark", "missing")
	assert.Error(t, err)
}

func TestRegistryDefaultModel(t *testing.T) {
	cfg := &types.Config{Model: "gemini/gemini-2.5-flash"}
	r := NewRegistry(cfg)
	r.Register(&fakeProvider{
		id: "gemini",
		models: []types.Model{
			{ID: "gemini-2.5-flash", ProviderID: "gemini"},
		},
	})

	m, err := r.DefaultModel()
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", m.ID)
}

func TestRegistryDefaultModelFallsBack(t *testing.T) {
	r := NewRegistry(&types.Config{Model: "nope/missing"})
	r.Register(&fakeProvider{
		id:     "openai",
		models: []types.Model{{ID: "gpt-4o", ProviderID: "openai"}},
	})

	m, err := r.DefaultModel()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", m.ID)
}

func TestRegistryDefaultModelEmpty(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.DefaultModel()
	assert.Error(t, err)
}

func TestParseModelString(t *testing.T) {
	tests := []struct {
		input        string
		wantProvider string
		wantModel    string
	}{
		{"anthropic/claude-sonnet-4-20250514", "anthropic", "claude-sonnet-4-20250514"},
		{"ark/ep-20250101-abcdef", "ark", "ep-20250101-abcdef"},
		{"bare-model", "", "bare-model"},
	}

	for _, tt := range tests {
		providerID, modelID := ParseModelString(tt.input)
		assert.Equal(t, tt.wantProvider, providerID)
		assert.Equal(t, tt.wantModel, modelID)
	}
}

func TestAllModelsSorted(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&fakeProvider{
		id:     "openai",
		models: []types.Model{{ID: "gpt-4o", ProviderID: "openai"}},
	})
	r.Register(&fakeProvider{
		id:     "anthropic",
		models: []types.Model{{ID: "claude-sonnet-4-20250514", ProviderID: "anthropic"}},
	})

	models := r.AllModels()
	require.Len(t, models, 2)
	assert.Equal(t, "claude-sonnet-4-20250514", models[0].ID)
}
