package rpc

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spooky-finn/cryptobridge/cache"
	"github.com/spooky-finn/cryptobridge/domain"
	gen "github.com/spooky-finn/cryptobridge/gen"
	promclient "github.com/spooky-finn/cryptobridge/infrastructure/prometheus"
	"github.com/spooky-finn/cryptobridge/provider"
	"github.com/spooky-finn/cryptobridge/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeAdapter struct {
	name  string
	err   error
	calls atomic.Int64
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) FetchOrderBook(
	_ context.Context, symbol *domain.MarketSymbol, maxDepth int,
) (*domain.OrderBookSnapshot, error) {
	a.calls.Add(1)
	if a.err != nil {
		return nil, domain.NewFetchError(a.name, symbol, a.err, "")
	}

	var bids, asks []domain.PriceLevel
	for i := 0; i < 5; i++ {
		bid, _ := domain.NewPriceLevel(fmt.Sprintf("6500.%d", 9-i), "0.5")
		ask, _ := domain.NewPriceLevel(fmt.Sprintf("6501.%d", i), "1.25")
		bids = append(bids, bid)
		asks = append(asks, ask)
	}
	return domain.NewOrderBookSnapshot(a.name, symbol, bids, asks, 1, maxDepth)
}

type panickingUseCase struct{}

func (panickingUseCase) GetOrderBookSnapshot(context.Context, string, string, string) (*domain.OrderBookSnapshot, error) {
	panic("boom")
}

func startServer(t *testing.T, useCase OrderBookSnapshotUseCase, providers []string) *grpc.ClientConn {
	t.Helper()
	s, err := NewGRPCServer(ServerConfig{Providers: providers}, useCase, promclient.NewMetrics())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newGateway(t *testing.T, adapters ...domain.ProviderAdapter) gen.MarketDataServiceClient {
	t.Helper()
	registry, err := provider.NewRegistry(adapters...)
	require.NoError(t, err)

	uc := usecase.NewOrderBookSnapshotUseCase(registry, cache.NewSnapshotCache(cache.Options{}), nil, usecase.Config{
		FetchDepth:      100,
		UpstreamTimeout: time.Second,
		CacheTTL:        time.Minute,
	})
	return gen.NewMarketDataServiceClient(startServer(t, uc, registry.Names()))
}

func TestGetOrderBookSnapshot_Healthy(t *testing.T) {
	kucoin := &fakeAdapter{name: "kucoin"}
	client := newGateway(t, kucoin)

	var header metadata.MD
	res, err := client.GetOrderBookSnapshot(context.Background(), &gen.GetOrderBookSnapshotRequest{
		Provider: "kucoin",
		Market:   "btc/usdt",
		MaxDepth: "2",
	}, grpc.Header(&header))
	require.NoError(t, err)

	assert.Equal(t, "kucoin", res.Source)
	assert.Equal(t, gen.OrderBookStatus_Ok, res.Status)
	require.Len(t, res.Bids, 2)
	require.Len(t, res.Asks, 2)
	assert.Equal(t, "6500.9", res.Bids[0].Price)
	assert.Equal(t, "6500.8", res.Bids[1].Price)
	assert.Equal(t, "6501", res.Asks[0].Price)
	assert.Equal(t, "1.25", res.Asks[0].Qty)
	assert.NotZero(t, res.FetchedAt)
	assert.NotEmpty(t, header.Get(requestIDHeader))
}

func TestGetOrderBookSnapshot_UnknownProvider(t *testing.T) {
	kucoin := &fakeAdapter{name: "kucoin"}
	client := newGateway(t, kucoin)

	_, err := client.GetOrderBookSnapshot(context.Background(), &gen.GetOrderBookSnapshotRequest{
		Provider: "ghost",
		Market:   "btc/usdt",
		MaxDepth: "2",
	})
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "unknown provider")
	assert.Equal(t, int64(0), kucoin.calls.Load())
}

func TestGetOrderBookSnapshot_InvalidArgument(t *testing.T) {
	client := newGateway(t, &fakeAdapter{name: "kucoin"})

	tests := []struct {
		name string
		req  *gen.GetOrderBookSnapshotRequest
	}{
		{"MissingProvider", &gen.GetOrderBookSnapshotRequest{Market: "btc/usdt", MaxDepth: "2"}},
		{"MissingMarket", &gen.GetOrderBookSnapshotRequest{Provider: "kucoin", MaxDepth: "2"}},
		{"MissingDepth", &gen.GetOrderBookSnapshotRequest{Provider: "kucoin", Market: "btc/usdt"}},
		{"BadDepth", &gen.GetOrderBookSnapshotRequest{Provider: "kucoin", Market: "btc/usdt", MaxDepth: "many"}},
		{"ZeroDepth", &gen.GetOrderBookSnapshotRequest{Provider: "kucoin", Market: "btc/usdt", MaxDepth: "0"}},
		{"BadMarket", &gen.GetOrderBookSnapshotRequest{Provider: "kucoin", Market: "btc-usdt", MaxDepth: "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.GetOrderBookSnapshot(context.Background(), tt.req)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestGetOrderBookSnapshot_UpstreamFailure(t *testing.T) {
	huobi := &fakeAdapter{name: "huobi", err: domain.ErrUnsupportedMarket}
	client := newGateway(t, huobi)

	res, err := client.GetOrderBookSnapshot(context.Background(), &gen.GetOrderBookSnapshotRequest{
		Provider: "huobi",
		Market:   "abc_xyz",
		MaxDepth: "10",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.UnknownSource, res.Source)
	assert.Equal(t, gen.OrderBookStatus_Unavailable, res.Status)
	assert.NotEmpty(t, res.Reason)
	assert.Empty(t, res.Bids)
	assert.Empty(t, res.Asks)
}

func TestGetOrderBookSnapshot_PanicIsInternal(t *testing.T) {
	client := gen.NewMarketDataServiceClient(startServer(t, panickingUseCase{}, []string{"kucoin"}))

	_, err := client.GetOrderBookSnapshot(context.Background(), &gen.GetOrderBookSnapshotRequest{
		Provider: "kucoin",
		Market:   "btc/usdt",
		MaxDepth: "2",
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestHealth(t *testing.T) {
	conn := startServer(t, panickingUseCase{}, []string{"kucoin"})

	res, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{
		Service: gen.MarketDataService_ServiceDesc.ServiceName,
	})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, res.Status)
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err      error
		expected codes.Code
	}{
		{fmt.Errorf("%w: x", domain.ErrInvalidArgument), codes.InvalidArgument},
		{fmt.Errorf("%w: ghost", domain.ErrUnknownProvider), codes.NotFound},
		{context.Canceled, codes.Canceled},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{status.Error(codes.Unavailable, "down"), codes.Unavailable},
		{fmt.Errorf("something else"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, status.Code(toStatus(tt.err)))
		})
	}
	assert.NoError(t, toStatus(nil))
}
