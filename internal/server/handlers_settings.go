package server

import (
	"encoding/json"
	"net/http"

	"github.com/marisol/atelier/internal/auth"
	"github.com/marisol/atelier/internal/llm"
	"github.com/marisol/atelier/internal/server/middleware"
	"github.com/marisol/atelier/internal/settings"
	"github.com/marisol/atelier/internal/types"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.GetPrincipal(r)
	if err != nil {
		s.errorResponseCode(w, types.CodeUnauthorized, "missing principal")
		return
	}
	if err := auth.Authorize(principal, auth.ActionReadSettings); err != nil {
		s.errorResponse(w, err)
		return
	}

	// Admin reads go straight to the store; the bounded-staleness cache is
	// for the generation path, not the configuration surface.
	current, err := s.settingsStore.Get(r.Context())
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, current)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.GetPrincipal(r)
	if err != nil {
		s.errorResponseCode(w, types.CodeUnauthorized, "missing principal")
		return
	}
	if err := auth.Authorize(principal, auth.ActionWriteSettings); err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.UpdateProviderSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponseCode(w, types.CodeInvalidInput, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponseCode(w, types.CodeInvalidInput, err.Error())
		return
	}

	updated := &settings.Settings{
		PrimaryProvider:  llm.Provider(req.PrimaryProvider),
		FallbackProvider: llm.Provider(req.FallbackProvider),
	}
	if err := s.settingsStore.Update(r.Context(), updated); err != nil {
		s.errorResponse(w, err)
		return
	}

	// Invalidate so the next generation call sees the new settings instead
	// of waiting out the TTL.
	if s.settingsCache != nil {
		s.settingsCache.Invalidate()
	}

	s.log.Info("provider settings updated",
		"primary", updated.PrimaryProvider, "fallback", updated.FallbackProvider, "admin", principal.UserID)

	current, err := s.settingsStore.Get(r.Context())
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, current)
}
