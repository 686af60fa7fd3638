package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/marisol/atelier/internal/artifact"
	"github.com/marisol/atelier/internal/auth"
	"github.com/marisol/atelier/internal/persona"
	"github.com/marisol/atelier/internal/server/middleware"
	"github.com/marisol/atelier/internal/types"
)

// rateLimitKey identifies a caller for the generation rate limiter.
func rateLimitKey(p auth.Principal) string {
	if p.Kind == auth.KindAgent {
		return "agent:" + p.TokenHash
	}
	return "user:" + p.UserID.String()
}

func (s *Server) handleStartAnalysis(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.GetPrincipal(r)
	if err != nil {
		s.errorResponseCode(w, types.CodeUnauthorized, "missing principal")
		return
	}
	if err := auth.Authorize(principal, auth.ActionRunAnalysis); err != nil {
		s.errorResponse(w, err)
		return
	}
	if !s.limiter.Allow(rateLimitKey(principal)) {
		s.jsonResponse(w, http.StatusTooManyRequests,
			errorBody{Code: types.CodeInvalidInput, Message: "rate limit exceeded"})
		return
	}

	var req types.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponseCode(w, types.CodeInvalidInput, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponseCode(w, types.CodeInvalidInput, err.Error())
		return
	}

	kind := artifact.Kind(req.Kind)
	if kind == "" {
		kind = artifact.KindArtwork
	}
	descriptor := &artifact.Descriptor{
		Ref:     req.ArtifactRef,
		Kind:    kind,
		Title:   req.Title,
		Medium:  req.Medium,
		Text:    req.Text,
		OwnerID: principal.UserID,
	}

	tasks := make([]types.TaskType, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		tasks = append(tasks, types.TaskType(t))
	}

	view, err := s.sessions.Start(r.Context(), descriptor, tasks, persona.Resolve(principal.Role))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, view)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	principal, jobID, ok := s.jobRequest(w, r)
	if !ok {
		return
	}
	if !s.canAccessJob(principal, jobID) {
		s.errorResponseCode(w, types.CodeUnauthorized, "not your analysis job")
		return
	}

	view, err := s.sessions.Get(jobID)
	if err != nil {
		s.errorResponseCode(w, types.CodeInvalidInput, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleCancelAnalysis(w http.ResponseWriter, r *http.Request) {
	principal, jobID, ok := s.jobRequest(w, r)
	if !ok {
		return
	}
	if !s.canAccessJob(principal, jobID) {
		s.errorResponseCode(w, types.CodeUnauthorized, "not your analysis job")
		return
	}

	if err := s.sessions.Cancel(jobID); err != nil {
		s.errorResponse(w, err)
		return
	}
	view, err := s.sessions.Get(jobID)
	if err != nil {
		s.errorResponseCode(w, types.CodeUnexpectedError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleRetryAnalysis(w http.ResponseWriter, r *http.Request) {
	principal, jobID, ok := s.jobRequest(w, r)
	if !ok {
		return
	}
	if err := auth.Authorize(principal, auth.ActionRunAnalysis); err != nil {
		s.errorResponse(w, err)
		return
	}
	if !s.canAccessJob(principal, jobID) {
		s.errorResponseCode(w, types.CodeUnauthorized, "not your analysis job")
		return
	}
	if !s.limiter.Allow(rateLimitKey(principal)) {
		s.jsonResponse(w, http.StatusTooManyRequests,
			errorBody{Code: types.CodeInvalidInput, Message: "rate limit exceeded"})
		return
	}

	var req types.RetryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponseCode(w, types.CodeInvalidInput, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponseCode(w, types.CodeInvalidInput, err.Error())
		return
	}

	tasks := make([]types.TaskType, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		tasks = append(tasks, types.TaskType(t))
	}

	view, err := s.sessions.Retry(r.Context(), jobID, tasks)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, view)
}

// jobRequest extracts the principal and job id common to the per-job routes.
func (s *Server) jobRequest(w http.ResponseWriter, r *http.Request) (auth.Principal, uuid.UUID, bool) {
	principal, err := middleware.GetPrincipal(r)
	if err != nil {
		s.errorResponseCode(w, types.CodeUnauthorized, "missing principal")
		return auth.Principal{}, uuid.Nil, false
	}
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponseCode(w, types.CodeInvalidInput, "invalid job id")
		return auth.Principal{}, uuid.Nil, false
	}
	return principal, jobID, true
}

// canAccessJob enforces artifact ownership for end users. Admins may inspect
// any job.
func (s *Server) canAccessJob(p auth.Principal, jobID uuid.UUID) bool {
	if p.Kind == auth.KindAdmin {
		return true
	}
	owner, err := s.sessions.Owner(jobID)
	if err != nil {
		// Unknown jobs surface as not-accessible; the handler's Get will
		// report the real error for admins.
		return false
	}
	return owner == p.UserID
}
