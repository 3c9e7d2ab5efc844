// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const (
	defaultListenAddr = ":8080"
	maxRequestBody    = 1 << 20 // 1 MB

	// AdminHeader carries the caller address checked by
	// admin-gated endpoints.
	AdminHeader = "X-Admin-Address"
)

// ServerConfig holds configuration for the election API
// server.
type ServerConfig struct {
	Logger        *slog.Logger
	Election      Election
	ListenAddress string
}

// Server is the election REST API server.
type Server struct {
	config     ServerConfig
	logger     *slog.Logger
	election   Election
	httpServer *http.Server
	mu         sync.Mutex
}

// NewServer creates a new API server instance. Returns an
// error if required configuration fields are missing.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Election == nil {
		return nil, errors.New(
			"api: Election is required",
		)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger := cfg.Logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = defaultListenAddr
	}
	return &Server{
		config:   cfg,
		logger:   logger,
		election: cfg.Election,
	}, nil
}

// Start starts the HTTP server in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	server := &http.Server{
		Addr: s.config.ListenAddress,
		// Use h2c so we can serve HTTP/2 without TLS
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.httpServer = server

	// Launch context monitor before unlocking so there
	// is no window where Stop() could race with the
	// goroutine not yet existing.
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		srv := s.httpServer
		s.httpServer = nil
		s.mu.Unlock()

		if srv != nil {
			s.logger.Debug(
				"context cancelled, shutting down " +
					"election API server",
			)
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				30*time.Second,
			)
			defer cancel()
			//nolint:contextcheck
			if err := srv.Shutdown(
				shutdownCtx,
			); err != nil {
				s.logger.Error(
					"failed to shutdown election API "+
						"server on context "+
						"cancellation",
					"error", err,
				)
			}
		}
	}()

	s.mu.Unlock()

	if err := s.startServer(server); err != nil {
		s.mu.Lock()
		s.httpServer = nil
		s.mu.Unlock()
		return err
	}

	s.logger.Info(
		"election API listener started on " +
			s.config.ListenAddress,
	)

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv != nil {
		s.logger.Debug("shutting down election API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf(
				"failed to shutdown election API server: %w",
				err,
			)
		}
	}
	return nil
}

// startServer starts the HTTP server with deterministic
// error detection. It binds the listening socket first so
// port conflicts are detected immediately, then serves in
// a background goroutine.
func (s *Server) startServer(
	server *http.Server,
) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf(
			"failed to listen for election API server: %w",
			err,
		)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(
				"election API server error",
				"error", err,
			)
		}
	}()
	return nil
}

// registerRoutes registers all election API endpoints.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc(
		"GET /healthcheck",
		s.handleHealthcheck,
	)

	// Voter API
	mux.HandleFunc(
		"POST /v1/voters",
		s.handleRegisterVoter,
	)
	mux.HandleFunc(
		"GET /v1/voters/{address}",
		s.handleGetVoter,
	)

	// Candidate API
	mux.HandleFunc(
		"POST /v1/candidates",
		s.handleAddCandidate,
	)
	mux.HandleFunc(
		"GET /v1/candidates",
		s.handleListCandidates,
	)
	mux.HandleFunc(
		"GET /v1/candidates/{id}",
		s.handleGetCandidate,
	)

	// Ballot API
	mux.HandleFunc("POST /v1/votes", s.handleVote)
	mux.HandleFunc(
		"POST /v1/delegations",
		s.handleDelegate,
	)

	// Election API
	mux.HandleFunc("PUT /v1/period", s.handleSetPeriod)
	mux.HandleFunc("GET /v1/winners", s.handleWinners)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/audit", s.handleAudit)
}
