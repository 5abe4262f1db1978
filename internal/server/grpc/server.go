// Package grpc exposes the session-authenticated gRPC boundary: an identity
// service for signed-in clients and the standard health service, which
// reports the reachability of the database.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const defaultHealthInterval = 10 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionTerminator ends a session. Unknown ids are not an error.
type SessionTerminator interface {
	Delete(ctx context.Context, id string) error
}

type GRPCServer struct {
	address  string
	authn    *auth.Authenticator
	sessions SessionTerminator
	store    Pinger
	logger   logging.Logger

	health         *health.Server
	healthInterval time.Duration
}

func NewGRPCServer(a string, l logging.Logger, authn *auth.Authenticator, sessions SessionTerminator, store Pinger) *GRPCServer {
	return &GRPCServer{
		address:        a,
		authn:          authn,
		sessions:       sessions,
		store:          store,
		logger:         l.With("module", "grpc_server"),
		health:         health.NewServer(),
		healthInterval: defaultHealthInterval,
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.sessionInterceptor))

	srv.RegisterService(&identityServiceDesc, s)
	healthpb.RegisterHealthServer(srv, s.health)

	s.updateHealth(ctx)

	go s.watchHealth(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

func (s *GRPCServer) watchHealth(ctx context.Context) {
	ticker := time.NewTicker(s.healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.updateHealth(ctx)
		}
	}
}

func (s *GRPCServer) updateHealth(ctx context.Context) {
	st := healthpb.HealthCheckResponse_SERVING
	if err := s.store.Ping(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn(ctx, "store unreachable", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(identityServiceName, st)
}
