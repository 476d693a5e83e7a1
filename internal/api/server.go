package api

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	grpcapi "github.com/tidekv/engine/internal/api/grpc"
	httpapi "github.com/tidekv/engine/internal/api/http"
	"github.com/tidekv/engine/internal/logger"
	"github.com/tidekv/engine/internal/storage"
)

// Server manages the storage, gRPC and HTTP servers
type Server struct {
	storage    storage.Backend
	grpcServer *grpcapi.Server
	httpServer *httpapi.Server
	log        zerolog.Logger
	ready      bool
	mu         sync.RWMutex
}

// Config holds configuration for the API server
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	GRPCEnabled bool
	HTTP        httpapi.ServerOptions
}

// NewServer creates a new API server
func NewServer(cfg Config, backend storage.Backend) *Server {
	s := &Server{
		storage:    backend,
		httpServer: httpapi.NewServer(cfg.HTTPAddr, backend, cfg.HTTP),
		log:        logger.WithComponent("api"),
	}

	if cfg.GRPCEnabled {
		s.grpcServer = grpcapi.NewServer(cfg.GRPCAddr, backend)
	}

	return s
}

// Start starts storage, then the gRPC and HTTP servers
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	s.log.Info().Msg("Starting API server")

	// Start storage first
	if err := s.storage.Start(ctx); err != nil {
		return err
	}

	if s.grpcServer != nil {
		if err := s.grpcServer.Start(ctx); err != nil {
			s.storage.Stop(ctx)
			return err
		}
	}

	if err := s.httpServer.Start(ctx); err != nil {
		if s.grpcServer != nil {
			s.grpcServer.Stop(ctx)
		}
		s.storage.Stop(ctx)
		return err
	}

	s.ready = true
	s.log.Info().Msg("API server started")

	return nil
}

// Stop gracefully stops the servers in reverse start order
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}

	s.log.Info().Msg("Stopping API server")

	var firstErr error
	record := func(component string, err error) {
		if err == nil {
			return
		}
		s.log.Warn().Err(err).Str("component", component).Msg("Error stopping component")
		if firstErr == nil {
			firstErr = err
		}
	}

	record("http", s.httpServer.Stop(ctx))
	if s.grpcServer != nil {
		record("grpc", s.grpcServer.Stop(ctx))
	}
	record("storage", s.storage.Stop(ctx))

	s.ready = false
	s.log.Info().Msg("API server stopped")

	return firstErr
}

// Ready returns true if every component is serving
func (s *Server) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grpcReady := s.grpcServer == nil || s.grpcServer.Ready()
	return s.ready && grpcReady && s.httpServer.Ready() && s.storage.Ready()
}

// HTTPAddr returns the bound HTTP address
func (s *Server) HTTPAddr() string {
	return s.httpServer.Addr()
}

// GRPCAddr returns the bound gRPC address, or "" when gRPC is disabled
func (s *Server) GRPCAddr() string {
	if s.grpcServer == nil {
		return ""
	}
	return s.grpcServer.Addr()
}
