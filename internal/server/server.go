// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/samplecodes/testkata/internal/config"
	"github.com/samplecodes/testkata/internal/display"
	"github.com/samplecodes/testkata/internal/handlers"
	"github.com/samplecodes/testkata/internal/metrics"
	"github.com/samplecodes/testkata/internal/middleware"
	"github.com/samplecodes/testkata/internal/ratelimit"
	"github.com/samplecodes/testkata/internal/users"
	"github.com/samplecodes/testkata/pkg/logger"
)

// Server represents the HTTP server.
type Server struct {
	cfg             *config.Config
	log             *zap.Logger
	httpServer      *http.Server
	handler         http.Handler
	healthHandler   *handlers.HealthHandler
	calcHandler     *handlers.CalcHandler
	usernameHandler *handlers.UsernameHandler
	userHandler     *handlers.UserHandler
	memberHandler   *handlers.MemberHandler
	profileHandler  *handlers.ProfileHandler
	rateLimiter     ratelimit.Limiter
	listener        net.Listener
	running         bool
	mu              sync.RWMutex
}

// New creates a Server. The user endpoints start out backed by the
// simulated fetcher; members and profiles answer 503 until their handlers
// are set.
func New(cfg *config.Config, log *zap.Logger) *Server {
	log = logger.OrNop(log)

	fetcher := users.NewFetcher(cfg.Fetch)
	s := &Server{
		cfg:             cfg,
		log:             log,
		healthHandler:   handlers.NewHealthHandler(),
		calcHandler:     handlers.NewCalcHandler(),
		usernameHandler: handlers.NewUsernameHandler(),
		userHandler: handlers.NewUserHandler(
			fetcher,
			display.NewFormatter(users.NewNameLookup(fetcher)),
			log,
		),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)
	s.handler = s.buildMiddlewareChain(mux)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) buildMiddlewareChain(handler http.Handler) http.Handler {
	chain := middleware.New(
		middleware.Recover(s.log),
		middleware.Metrics(),
		middleware.RequestID(),
		middleware.ClientIP(middleware.ProxyConfig{}),
		middleware.Logger(s.log),
	)

	if s.cfg.Rate.Enabled {
		rl := ratelimit.FromConfig(s.cfg.Rate)
		s.rateLimiter = ratelimit.NewTokenBucketLimiter(rl)
		chain = chain.Append(middleware.RateLimit(s.rateLimiter, middleware.RateLimitConfig{APIKeyHeader: "X-API-Key"}, s.log))

		s.log.Info("rate limiting enabled",
			zap.Float64("rps", rl.RPS),
			zap.Int("burst", rl.Burst),
		)
	}

	return chain.Then(handler)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.healthHandler.Health)
	mux.HandleFunc("GET /ready", s.healthHandler.Ready)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/v1/calc/{op}", s.calcHandler.Calculate)
	mux.HandleFunc("POST /api/v1/usernames/validate", s.usernameHandler.Validate)
	mux.HandleFunc("GET /api/v1/users/{id}", s.handleGetUser)
	mux.HandleFunc("GET /api/v1/users/{id}/display", s.handleGetDisplay)
	mux.HandleFunc("GET /api/v1/members/active-adults", s.handleActiveAdults)
	mux.HandleFunc("GET /api/v1/profiles/{id}", s.handleGetProfile)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	s.currentUserHandler().GetUser(w, r)
}

func (s *Server) handleGetDisplay(w http.ResponseWriter, r *http.Request) {
	s.currentUserHandler().GetDisplay(w, r)
}

func (s *Server) handleActiveAdults(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	h := s.memberHandler
	s.mu.RUnlock()

	if h == nil {
		writeUnavailable(w, "member directory")
		return
	}
	h.ActiveAdults(w, r)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	h := s.profileHandler
	s.mu.RUnlock()

	if h == nil {
		writeUnavailable(w, "profile API")
		return
	}
	h.GetProfile(w, r)
}

func writeUnavailable(w http.ResponseWriter, what string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_ = json.NewEncoder(w).Encode(handlers.ErrorResponse{
		Error: what + " not configured",
		Code:  "SERVICE_UNAVAILABLE",
	})
}

func (s *Server) currentUserHandler() *handlers.UserHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userHandler
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.Server.Address())
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	s.log.Info("server starting", zap.String("address", listener.Addr().String()))

	err = s.httpServer.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown marks the server not ready, drains connections and stops the
// rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("server shutting down")

	s.healthHandler.SetReady(false)

	err := s.httpServer.Shutdown(ctx)

	if s.rateLimiter != nil {
		if closeErr := s.rateLimiter.Close(); closeErr != nil {
			s.log.Error("failed to close rate limiter", zap.Error(closeErr))
		}
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if err != nil {
		s.log.Error("shutdown error", zap.Error(err))
		return err
	}

	s.log.Info("server stopped")
	return nil
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the listening address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// HealthHandler returns the health handler.
func (s *Server) HealthHandler() *handlers.HealthHandler {
	return s.healthHandler
}

// SetUserHandler replaces the handler behind the user endpoints.
func (s *Server) SetUserHandler(h *handlers.UserHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userHandler = h
}

// SetMemberHandler sets the member handler for the server.
func (s *Server) SetMemberHandler(h *handlers.MemberHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberHandler = h
}

// SetProfileHandler sets the profile handler for the server.
func (s *Server) SetProfileHandler(h *handlers.ProfileHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileHandler = h
}
