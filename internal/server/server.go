package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/marisol/atelier/internal/auth"
	"github.com/marisol/atelier/internal/config"
	"github.com/marisol/atelier/internal/content"
	"github.com/marisol/atelier/internal/logging"
	"github.com/marisol/atelier/internal/server/middleware"
	"github.com/marisol/atelier/internal/server/ratelimit"
	"github.com/marisol/atelier/internal/session"
	"github.com/marisol/atelier/internal/settings"
	"github.com/marisol/atelier/internal/types"
)

// SettingsStore is the read/write surface the admin endpoints need.
type SettingsStore interface {
	settings.Reader
	Update(ctx context.Context, in *settings.Settings) error
}

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Sessions      *session.Manager
	SettingsStore SettingsStore
	SettingsCache *settings.Cache
	Poster        content.Poster
	JWT           *JWTService
	Agent         *config.AgentConfig
	Log           *logging.Logger
}

// Server is the HTTP front of the orchestration service.
type Server struct {
	httpServer    *http.Server
	sessions      *session.Manager
	settingsStore SettingsStore
	settingsCache *settings.Cache
	poster        content.Poster
	jwtService    *JWTService
	agentCfg      *config.AgentConfig
	limiter       *ratelimit.Limiter
	log           *logging.Logger
}

// New wires the router and middleware.
func New(port int, deps Deps) (*Server, error) {
	if deps.Sessions == nil || deps.SettingsStore == nil || deps.JWT == nil {
		return nil, fmt.Errorf("missing required server dependencies")
	}
	log := deps.Log
	if log == nil {
		log = logging.NewNop()
	}

	s := &Server{
		sessions:      deps.Sessions,
		settingsStore: deps.SettingsStore,
		settingsCache: deps.SettingsCache,
		poster:        deps.Poster,
		jwtService:    deps.JWT,
		agentCfg:      deps.Agent,
		limiter:       ratelimit.NewLimiter(ratelimit.LoadConfig()),
		log:           log,
	}

	sessionAuth := middleware.SessionAuth(s)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.Handle("POST /analyses", sessionAuth(http.HandlerFunc(s.handleStartAnalysis)))
	mux.Handle("GET /analyses/{id}", sessionAuth(http.HandlerFunc(s.handleGetAnalysis)))
	mux.Handle("POST /analyses/{id}/cancel", sessionAuth(http.HandlerFunc(s.handleCancelAnalysis)))
	mux.Handle("POST /analyses/{id}/retry", sessionAuth(http.HandlerFunc(s.handleRetryAnalysis)))

	mux.Handle("GET /settings/providers", sessionAuth(http.HandlerFunc(s.handleGetSettings)))
	mux.Handle("PUT /settings/providers", sessionAuth(http.HandlerFunc(s.handleUpdateSettings)))

	if deps.Agent != nil {
		agentAuth := middleware.AgentAuth(deps.Agent.Token)
		mux.Handle("POST /agent/artworks", agentAuth(http.HandlerFunc(s.handlePostAgentArtwork)))
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// PrincipalFromToken implements middleware.TokenValidator: a validated JWT
// yields an end-user or admin principal depending on the role claim.
func (s *Server) PrincipalFromToken(tokenString string) (auth.Principal, error) {
	claims, err := s.jwtService.ValidateToken(tokenString)
	if err != nil {
		return auth.Principal{}, err
	}
	if claims.Role == types.RoleAdmin {
		return auth.Admin(claims.ID, claims.UserID), nil
	}
	return auth.EndUser(claims.ID, claims.UserID, claims.Role), nil
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("http server listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
