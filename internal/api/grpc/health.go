package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/tidekv/engine/internal/storage"
)

// KVServiceName is the health-checkable name of the key-value service
const KVServiceName = "tidekv.v1.KV"

// DefaultWatchInterval is how often Watch re-evaluates readiness
const DefaultWatchInterval = time.Second

// HealthService implements grpc.health.v1.Health. A service is SERVING
// while the storage is ready.
type HealthService struct {
	healthpb.UnimplementedHealthServer
	storage       storage.Lifecycle
	watchInterval time.Duration
}

// NewHealthService creates a new health service
func NewHealthService(storage storage.Lifecycle) *HealthService {
	return &HealthService{
		storage:       storage,
		watchInterval: DefaultWatchInterval,
	}
}

// Check reports the serving status of the server ("") or of KVServiceName
func (s *HealthService) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	st, ok := s.statusOf(req.GetService())
	if !ok {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}
	return &healthpb.HealthCheckResponse{Status: st}, nil
}

// Watch streams the serving status, sending an update whenever it changes
func (s *HealthService) Watch(req *healthpb.HealthCheckRequest, stream healthpb.Health_WatchServer) error {
	last, ok := s.statusOf(req.GetService())
	if !ok {
		last = healthpb.HealthCheckResponse_SERVICE_UNKNOWN
	}
	if err := stream.Send(&healthpb.HealthCheckResponse{Status: last}); err != nil {
		return err
	}

	ticker := time.NewTicker(s.watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stream.Context().Done():
			return status.FromContextError(stream.Context().Err()).Err()
		case <-ticker.C:
			st, ok := s.statusOf(req.GetService())
			if !ok {
				st = healthpb.HealthCheckResponse_SERVICE_UNKNOWN
			}
			if st == last {
				continue
			}
			if err := stream.Send(&healthpb.HealthCheckResponse{Status: st}); err != nil {
				return err
			}
			last = st
		}
	}
}

func (s *HealthService) statusOf(service string) (healthpb.HealthCheckResponse_ServingStatus, bool) {
	switch service {
	case "", KVServiceName:
		return s.current(), true
	default:
		return healthpb.HealthCheckResponse_SERVICE_UNKNOWN, false
	}
}

func (s *HealthService) current() healthpb.HealthCheckResponse_ServingStatus {
	if s.storage != nil && s.storage.Ready() {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}
