// Package handlers provides the HTTP and gRPC servers for the company
// directory, bridging the transport layer and business logic and
// translating between JSON bodies and domain models.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const defaultHealthInterval = 15 * time.Second

// Server holds an HTTP server for the REST surface and, when a gRPC port is
// configured, a gRPC server exposing the standard health service.
type Server struct {
	grpcServer     *grpc.Server
	health         *health.Server
	httpServer     *http.Server
	logger         *zap.Logger
	grpcEndpoint   string
	httpEndpoint   string
	pinger         Pinger
	healthInterval time.Duration

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewServer constructs a Server. A grpcPort of 0 disables the gRPC server.
func NewServer(
	httpPort int,
	grpcPort int,
	logger *zap.Logger,
	grpcOpts ...grpc.ServerOption,
) *Server {
	s := &Server{
		httpServer: &http.Server{
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:         logger.Named("server"),
		httpEndpoint:   fmt.Sprintf(":%d", httpPort),
		healthInterval: defaultHealthInterval,
	}
	if grpcPort != 0 {
		s.grpcServer = grpc.NewServer(grpcOpts...)
		s.grpcEndpoint = fmt.Sprintf(":%d", grpcPort)
	}
	return s
}

// RegisterHTTPHandler installs the root HTTP handler.
func (s *Server) RegisterHTTPHandler(h http.Handler) {
	s.httpServer.Handler = h
	s.httpServer.Addr = s.httpEndpoint
}

// RegisterHealth registers the gRPC health service, whose status follows
// periodic pings of p while the server runs.
func (s *Server) RegisterHealth(p Pinger) {
	s.pinger = p
	if s.grpcServer == nil {
		return
	}
	s.health = health.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
}

// Start runs the servers until Stop is called or one of them fails, and
// returns the first failure.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()
	defer close(done)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if s.grpcServer != nil {
		lis, err := net.Listen("tcp", s.grpcEndpoint)
		if err != nil {
			return fmt.Errorf("gRPC listen error: %w", err)
		}
		g.Go(func() error {
			s.logger.Info("Starting gRPC server", zap.String("endpoint", s.grpcEndpoint))
			if err := s.grpcServer.Serve(lis); err != nil {
				return fmt.Errorf("gRPC serve error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP serve error: %w", err)
		}
		return nil
	})

	if s.health != nil && s.pinger != nil {
		g.Go(func() error {
			s.monitorHealth(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		s.shutdown()
		return nil
	})

	return g.Wait()
}

// Stop gracefully shuts down both servers and waits for Start to return.
func (s *Server) Stop() {
	s.logger.Info("Shutting down servers...")

	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		s.shutdown()
		return
	}
	cancel()
	<-done
	s.logger.Info("Servers stopped")
}

func (s *Server) shutdown() {
	s.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if s.health != nil {
			s.health.Shutdown()
		}
		if s.grpcServer != nil {
			s.grpcServer.GracefulStop()
		}
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	})
}

func (s *Server) monitorHealth(ctx context.Context) {
	ticker := time.NewTicker(s.healthInterval)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		status := healthpb.HealthCheckResponse_SERVING
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := s.pinger.Ping(pingCtx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			if ctx.Err() == nil {
				s.logger.Warn("Store ping failed", zap.Error(err))
			}
		}
		cancel()

		if ctx.Err() != nil {
			return
		}
		if status != last {
			s.health.SetServingStatus("", status)
			s.logger.Info("Health status changed", zap.String("status", status.String()))
			last = status
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
