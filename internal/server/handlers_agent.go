package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/marisol/atelier/internal/auth"
	"github.com/marisol/atelier/internal/content"
	"github.com/marisol/atelier/internal/server/middleware"
	"github.com/marisol/atelier/internal/types"
)

// handlePostAgentArtwork posts an AI-authored artwork record under the
// reserved system profile. The job named in the request must have settled
// complete; its metadata is rebuilt and schema-validated here, so a partial
// job can never cross the boundary.
func (s *Server) handlePostAgentArtwork(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.GetPrincipal(r)
	if err != nil {
		s.errorResponseCode(w, types.CodeUnauthorized, "missing principal")
		return
	}
	if err := auth.Authorize(principal, auth.ActionPostAgentArtwork); err != nil {
		s.errorResponse(w, err)
		return
	}
	if s.poster == nil || s.agentCfg == nil {
		s.errorResponseCode(w, types.CodeUnexpectedError, "agent posting is not configured")
		return
	}

	var req types.PostArtworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponseCode(w, types.CodeInvalidInput, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponseCode(w, types.CodeInvalidInput, err.Error())
		return
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		s.errorResponseCode(w, types.CodeInvalidInput, "invalid job id")
		return
	}
	outcome, _, err := s.sessions.Outcome(jobID)
	if err != nil {
		s.errorResponseCode(w, types.CodeInvalidInput, err.Error())
		return
	}

	metadata, err := content.BuildMetadata(outcome)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	params := &content.PostArtworkParams{
		Title:       req.Title,
		Images:      req.Images,
		Description: metadata.Accessibility.Description,
		Tags:        req.Tags,
		AIGenerated: true,
		AIContext:   req.AIContext,
		Metadata:    metadata,
	}
	if outcome != nil {
		params.AnalysisResults = outcome.Results
		if keywords := outcome.Results[types.TaskKeywords]; keywords != nil && keywords.Succeeded && len(params.Tags) == 0 {
			params.Tags = keywords.Tags
		}
	}

	artworkID, err := s.poster.PostArtwork(r.Context(), s.agentCfg.SystemProfileID, params)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.log.Info("agent posted artwork", "artwork", artworkID, "job", jobID)
	s.jsonResponse(w, http.StatusCreated, map[string]string{"id": artworkID.String()})
}
