package grpcapi

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server wraps the gRPC health surface exposed alongside the HTTP API.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

// New builds a gRPC server exposing the standard health service.
func New() *Server {
	s := &Server{
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.SetReady(true)
	return s
}

// SetReady flips the reported serving status.
func (s *Server) SetReady(ready bool) {
	status := healthpb.HealthCheckResponse_SERVING
	if !ready {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
}

// GRPC exposes the underlying server for Serve/GracefulStop.
func (s *Server) GRPC() *grpc.Server {
	return s.grpc
}
