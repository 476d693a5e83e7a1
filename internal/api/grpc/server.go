package grpc

import (
	"context"
	"net"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/tidekv/engine/internal/logger"
	"github.com/tidekv/engine/internal/storage"
)

// Server represents a gRPC server
type Server struct {
	grpcServer *grpc.Server
	addr       string
	listener   net.Listener
	log        zerolog.Logger
	ready      bool
	mu         sync.RWMutex
	healthSvc  *HealthService
}

// NewServer creates a new gRPC server
func NewServer(addr string, storage storage.Lifecycle) *Server {
	s := &Server{
		addr:      addr,
		log:       logger.WithComponent("grpc"),
		healthSvc: NewHealthService(storage),
	}

	s.grpcServer = grpc.NewServer(
		grpc.UnaryInterceptor(s.unaryInterceptorChain()),
		grpc.StreamInterceptor(s.streamLoggingInterceptor()),
	)
	s.registerServices()

	return s
}

// Start starts the gRPC server
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.log.Info().Str("addr", listener.Addr().String()).Msg("Starting gRPC server")

	go func() {
		if err := s.grpcServer.Serve(listener); err != nil {
			s.log.Error().Err(err).Msg("gRPC server error")
		}
	}()

	s.ready = true
	s.log.Info().Str("addr", listener.Addr().String()).Msg("gRPC server started")

	return nil
}

// Stop gracefully stops the gRPC server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}

	s.log.Info().Msg("Stopping gRPC server")
	s.ready = false

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		// Context expired, force stop
		s.grpcServer.Stop()
		return ctx.Err()
	case <-stopped:
	}

	s.log.Info().Msg("gRPC server stopped")

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

// registerServices registers all gRPC services
func (s *Server) registerServices() {
	healthpb.RegisterHealthServer(s.grpcServer, s.healthSvc)
}
