package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// unaryInterceptorChain creates a chain of unary interceptors
func (s *Server) unaryInterceptorChain() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		// tracing, then logging, then error conversion
		loggingHandler := s.loggingInterceptor(info.FullMethod, s.errorInterceptor(handler))
		return s.tracingInterceptor(ctx, req, info, loggingHandler)
	}
}

// loggingInterceptor logs requests and responses
func (s *Server) loggingInterceptor(method string, handler grpc.UnaryHandler) grpc.UnaryHandler {
	return func(ctx context.Context, req interface{}) (interface{}, error) {
		start := time.Now()

		log := s.log.With().Str("method", method).Logger()
		log.Debug().Msg("gRPC request started")

		resp, err := handler(ctx, req)

		log = log.With().Dur("duration", time.Since(start)).Logger()
		if err != nil {
			log.Err(err).Str("code", status.Code(err).String()).Msg("gRPC request failed")
		} else {
			log.Debug().Msg("gRPC request completed")
		}

		return resp, err
	}
}

// streamLoggingInterceptor logs stream lifetimes
func (s *Server) streamLoggingInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		log := s.log.With().Str("method", info.FullMethod).Logger()
		log.Debug().Msg("gRPC stream started")

		err := handler(srv, ss)

		log = log.With().Dur("duration", time.Since(start)).Logger()
		if err != nil && status.Code(err) != codes.Canceled {
			log.Err(err).Msg("gRPC stream failed")
		} else {
			log.Debug().Msg("gRPC stream closed")
		}
		return err
	}
}

// errorInterceptor converts errors to gRPC status
func (s *Server) errorInterceptor(handler grpc.UnaryHandler) grpc.UnaryHandler {
	return func(ctx context.Context, req interface{}) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			return nil, convertToGRPCStatus(err)
		}
		return resp, nil
	}
}

// convertToGRPCStatus converts an error to a gRPC status
func convertToGRPCStatus(err error) error {
	if err == nil {
		return nil
	}

	// Already a gRPC status
	if st, ok := status.FromError(err); ok {
		return st.Err()
	}

	if ctxErr := status.FromContextError(err); ctxErr.Code() != codes.Unknown {
		return ctxErr.Err()
	}

	return status.Error(codes.Internal, err.Error())
}
