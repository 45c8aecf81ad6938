// Package grpc exposes the standard gRPC health service so orchestrators can
// probe the auth server without going through HTTP.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/outreach/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall ("") status.
const ServiceName = "outreach.auth"

const defaultProbeInterval = 15 * time.Second

type HealthServer struct {
	address  string
	probe    func(context.Context) error
	interval time.Duration
	health   *health.Server
	logger   logging.Logger
}

// NewHealthServer returns a server that reports SERVING while probe succeeds.
// A nil probe always reports SERVING.
func NewHealthServer(address string, l logging.Logger, probe func(context.Context) error) *HealthServer {
	return &HealthServer{
		address:  address,
		probe:    probe,
		interval: defaultProbeInterval,
		health:   health.NewServer(),
		logger:   l.With("module", "grpc_health"),
	}
}

func (s *HealthServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves the health service on lis until ctx is done.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.requestIDInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.check(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}

func (s *HealthServer) watch(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.check(ctx)
		}
	}
}

func (s *HealthServer) check(ctx context.Context) {
	st := healthpb.HealthCheckResponse_SERVING
	if s.probe != nil {
		if err := s.probe(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn(ctx, "health probe failed", "error", err)
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}
