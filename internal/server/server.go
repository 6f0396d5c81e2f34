// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = "127.0.0.1:5000"

	// MaxRequestBodySize caps request bodies.
	MaxRequestBodySize = 1 * 1024 * 1024

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// Version is the server version.
	Version = "0.1.0"
)

// ============================================================================
// SERVER
// ============================================================================

// Config configures a Server.
type Config struct {
	Addr             string
	ResetCodeTTL     time.Duration
	ForgotRatePerMin int
}

// Server is the development API server.
type Server struct {
	cfg     Config
	store   *Store
	backend ChatBackend
	logger  *zap.Logger

	sessions *SessionStore
	chats    *Conversations
	codes    *CodeIssuer
	limiter  *EmailLimiter

	router chi.Router
	server *http.Server
}

// New creates a server. backend may be nil, in which case chat reports that
// the model is not configured.
func New(cfg Config, store *Store, backend ChatBackend, logger *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		store:    store,
		backend:  backend,
		logger:   logger,
		sessions: NewSessionStore(),
		chats:    NewConversations(),
		codes:    NewCodeIssuer(cfg.ResetCodeTTL),
		limiter:  NewEmailLimiter(cfg.ForgotRatePerMin),
	}
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(RecoveryMiddleware(s.logger))
	r.Use(LoggingMiddleware(s.logger))
	r.Use(SecurityHeadersMiddleware())
	r.Use(chimw.Heartbeat("/health"))

	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(SessionMiddleware(s.sessions))

		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/forgot_password", s.handleForgotPassword)
		r.Post("/verify_code", s.handleVerifyCode)
		r.Post("/reset_password", s.handleResetPassword)
		r.Get("/check_auth", s.handleCheckAuth)
		r.Post("/logout", s.handleLogout)
		r.Post("/new_chat", s.handleNewChat)
		r.Post("/chat", s.handleChat)
	})

	s.router = r
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()), zap.String("version", Version))
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON body into v. A missing, malformed or oversized
// body leaves v at its zero value, which handlers reject as missing fields.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBodySize)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return
	}
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.Error(err),
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		fields = append(fields, zap.Int64("limit", tooLarge.Limit))
	}
	s.logger.Debug("request body rejected", fields...)
}
