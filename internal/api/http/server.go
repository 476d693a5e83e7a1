package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tidekv/engine/internal/logger"
	"github.com/tidekv/engine/internal/storage"
)

// DefaultReadHeaderTimeout bounds how long a client may take to send headers
const DefaultReadHeaderTimeout = 10 * time.Second

// ServerOptions configures the HTTP server
type ServerOptions struct {
	RouterOptions
	// ReadHeaderTimeout bounds header reads (0 = DefaultReadHeaderTimeout)
	ReadHeaderTimeout time.Duration
}

// Server represents an HTTP server
type Server struct {
	httpServer *http.Server
	addr       string
	listener   net.Listener
	log        zerolog.Logger
	ready      bool
	mu         sync.RWMutex
	router     *Router
}

// NewServer creates a new HTTP server
func NewServer(addr string, backend storage.Backend, opts ServerOptions) *Server {
	s := &Server{
		addr: addr,
		log:  logger.WithComponent("http"),
	}

	s.router = NewRouter(backend, opts.RouterOptions)

	readHeaderTimeout := opts.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = DefaultReadHeaderTimeout
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

// Start binds the listen address and serves in the background
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	s.log.Info().Str("addr", s.addr).Msg("Starting HTTP server")

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	s.ready = true
	s.log.Info().Str("addr", listener.Addr().String()).Msg("HTTP server started")

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}

	s.log.Info().Msg("Stopping HTTP server")

	s.ready = false
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.httpServer.Close()
		return err
	}

	s.log.Info().Msg("HTTP server stopped")

	return nil
}

// Ready returns true if the server is ready
func (s *Server) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Addr returns the bound address, or the configured one before Start
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}
