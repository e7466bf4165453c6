// Package api exposes the pipeline over a thin HTTP boundary.
// Handlers decode requests, call the driving port and encode results;
// all pipeline semantics live in the core services.
package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/textvault/textvault/internal/core/ports/driven"
	"github.com/textvault/textvault/internal/core/ports/driving"
	"github.com/textvault/textvault/internal/logger"
)

// Server serves the textvault HTTP API.
type Server struct {
	mu       sync.RWMutex
	pipeline driving.Pipeline
	embedder driven.EmbeddingService
	server   *http.Server
	listener net.Listener

	// search defaults, hot-reloadable from configuration
	cutoff float64
	topK   int
}

// NewServer creates a server over the given pipeline. The embedder is
// only used for health checks and may be nil.
func NewServer(pipeline driving.Pipeline, embedder driven.EmbeddingService, cutoff float64, topK int) *Server {
	return &Server{
		pipeline: pipeline,
		embedder: embedder,
		cutoff:   cutoff,
		topK:     topK,
	}
}

// SetSearchDefaults updates the default cutoff and top_k applied to
// search requests that leave them unset.
func (s *Server) SetSearchDefaults(cutoff float64, topK int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoff = cutoff
	s.topK = topK
}

func (s *Server) searchDefaults() (float64, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cutoff, s.topK
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/embeddings", s.handleIngest)
	mux.HandleFunc("POST /v1/search", s.handleSearch)
	mux.HandleFunc("DELETE /v1/embeddings/{id}", s.handleDelete)
	mux.HandleFunc("DELETE /v1/references/{reference_id}", s.handleDeleteByReference)
	mux.HandleFunc("GET /v1/references/{reference_id}", s.handleListByReference)
	mux.HandleFunc("POST /v1/encode", s.handleEncode)
	mux.HandleFunc("POST /v1/encode/query", s.handleEncodeQuery)
	mux.HandleFunc("POST /v1/encode/bulk", s.handleEncodeBulk)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return mux
}

// Start listens on addr and serves until Shutdown.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	logger.Info("HTTP API listening on %s", listener.Addr())
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Warn("HTTP server stopped: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound address, useful when addr had port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
