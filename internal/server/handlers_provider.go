package server

import (
	"net/http"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// providerInfo is the wire representation of a registered provider.
type providerInfo struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Models []types.Model `json:"models"`
}

// listProviders handles GET /provider
func (s *Server) listProviders(w http.ResponseWriter, r *http.Request) {
	providers := s.providerReg.List()

	infos := make([]providerInfo, 0, len(providers))
	for _, p := range providers {
		infos = append(infos, providerInfo{
			ID:     p.ID(),
			Name:   p.Name(),
			Models: p.Models(),
		})
	}

	writeJSON(w, http.StatusOK, infos)
}

// listModels handles GET /model
func (s *Server) listModels(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Models  []types.Model `json:"models"`
		Default *types.Model  `json:"default,omitempty"`
	}{
		Models: s.providerReg.AllModels(),
	}

	if model, err := s.providerReg.DefaultModel(); err == nil {
		response.Default = model
	}

	writeJSON(w, http.StatusOK, response)
}

// getConfig handles GET /config
// API keys are redacted; the response only reports whether one is set.
func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	if s.appConfig == nil {
		writeJSON(w, http.StatusOK, &types.Config{})
		return
	}

	redacted := *s.appConfig
	if len(s.appConfig.Provider) > 0 {
		redacted.Provider = make(map[string]types.ProviderConfig, len(s.appConfig.Provider))
		for id, pc := range s.appConfig.Provider {
			if pc.APIKey != "" {
				pc.APIKey = "(set)"
			}
			redacted.Provider[id] = pc
		}
	}

	writeJSON(w, http.StatusOK, &redacted)
}

// health handles GET /health
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
