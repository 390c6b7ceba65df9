package rpc

import (
	"context"
	"net"

	"github.com/spooky-finn/cryptobridge/domain"
	gen "github.com/spooky-finn/cryptobridge/gen"
	"github.com/spooky-finn/cryptobridge/infrastructure/logger"
	promclient "github.com/spooky-finn/cryptobridge/infrastructure/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

var log = logger.WithComponent("rpc")

type OrderBookSnapshotUseCase interface {
	GetOrderBookSnapshot(ctx context.Context, provider, market, maxDepth string) (*domain.OrderBookSnapshot, error)
}

type server struct {
	orderbookSnapshotUseCase OrderBookSnapshotUseCase
	gen.UnimplementedMarketDataServiceServer
	validationService *ValidationService
}

func NewServer(useCase OrderBookSnapshotUseCase, conf *ValidationServiceConfig) *server {
	return &server{
		orderbookSnapshotUseCase: useCase,
		validationService:        NewValidationService(conf),
	}
}

type ServerConfig struct {
	Addr                 string
	CertFile             string
	KeyFile              string
	Reflection           bool
	MaxConcurrentStreams uint32
	Providers            []string
	// Debug adds request bodies to the rpc log.
	Debug bool
}

// GRPCServer hosts the market data service next to the standard health service.
type GRPCServer struct {
	addr   string
	grpc   *grpc.Server
	health *health.Server
}

func NewGRPCServer(cfg ServerConfig, useCase OrderBookSnapshotUseCase, metrics *promclient.Metrics) (*GRPCServer, error) {
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			loggingInterceptor(cfg.Debug),
			metricsInterceptor(metrics),
			recoveryInterceptor,
		),
	}
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.Creds(creds))
	}
	if cfg.MaxConcurrentStreams > 0 {
		opts = append(opts, grpc.MaxConcurrentStreams(cfg.MaxConcurrentStreams))
	}

	s := grpc.NewServer(opts...)
	gen.RegisterMarketDataServiceServer(s, NewServer(useCase, &ValidationServiceConfig{
		AvailableProviders: cfg.Providers,
	}))

	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.SetServingStatus(gen.MarketDataService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	if cfg.Reflection {
		reflection.Register(s)
	}

	return &GRPCServer{addr: cfg.Addr, grpc: s, health: h}, nil
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	log.Infof("grpc server listening at %v", lis.Addr())
	return s.grpc.Serve(lis)
}

func (s *GRPCServer) ListenAndServe() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Shutdown reports NOT_SERVING and drains in-flight calls until ctx ends, then closes what is left.
func (s *GRPCServer) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("graceful stop timed out, closing remaining connections")
		s.grpc.Stop()
		<-done
	}
}
