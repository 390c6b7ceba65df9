package kucoin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spooky-finn/cryptobridge/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bookResponse = `{"code":"200000","data":{"sequence":"3262786978","time":1700000000000,
"bids":[["6500.12","0.45054140"],["6500.11","0.45054140"],["6500.5","1"],["6500.12","0.5"],["6499","2"],["6498","3"]],
"asks":[["6500.16","0.57753524"],["6500.15","0.57753524"],["6501","1"],["6502","1"],["6503","1"]]}}`

func newTestAPI(t *testing.T, handler http.HandlerFunc) *KucoinSyncAPI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewKucoinSyncAPI(Config{BaseURL: server.URL, MaxWait: time.Second})
}

func btcusdt(t *testing.T) *domain.MarketSymbol {
	symbol, err := domain.NewMarketSymbol("BTC", "USDT")
	require.NoError(t, err)
	return symbol
}

func TestGetOrderBookSnapshot(t *testing.T) {
	var path, querySymbol string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		querySymbol = r.URL.Query().Get("symbol")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bookResponse))
	})

	snapshot, err := api.FetchOrderBook(context.Background(), btcusdt(t), 2)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/market/orderbook/level2_20", path)
	assert.Equal(t, "BTC-USDT", querySymbol)
	assert.Equal(t, Name, snapshot.Source)
	assert.Equal(t, int64(3262786978), snapshot.LastUpdateId)
	assert.Equal(t, [][]string{{"6500.5", "1"}, {"6500.12", "0.9505414"}}, domain.SerializePriceLevels(snapshot.Bids))
	assert.Equal(t, [][]string{{"6500.15", "0.57753524"}, {"6500.16", "0.57753524"}}, domain.SerializePriceLevels(snapshot.Asks))
	assert.NoError(t, snapshot.Validate())
}

func TestGetOrderBookSnapshot_DeepTier(t *testing.T) {
	var path string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(bookResponse))
	})

	_, err := api.FetchOrderBook(context.Background(), btcusdt(t), 50)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/market/orderbook/level2_100", path)
}

func TestGetOrderBookSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected error
	}{
		{"RateLimited", http.StatusTooManyRequests, `{"code":"429000","msg":"Too Many Requests"}`, domain.ErrUpstreamRateLimited},
		{"InvalidSymbol", http.StatusOK, `{"code":"400100","msg":"symbol invalid"}`, domain.ErrUnsupportedMarket},
		{"EmptyBook", http.StatusOK, `{"code":"200000","data":{"time":1700000000000,"sequence":null,"bids":null,"asks":null}}`, domain.ErrUnsupportedMarket},
		{"UnknownCode", http.StatusOK, `{"code":"500000","msg":"internal"}`, domain.ErrUpstreamMalformedResponse},
		{"BadLevel", http.StatusOK, `{"code":"200000","data":{"sequence":"1","bids":[["x","1"]],"asks":[]}}`, domain.ErrUpstreamMalformedResponse},
		{"NotJSON", http.StatusBadGateway, `<html>bad gateway</html>`, domain.ErrUpstreamMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := api.FetchOrderBook(context.Background(), btcusdt(t), 5)

			var fetchErr *domain.FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, Name, fetchErr.Provider)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestGetOrderBookSnapshot_AbandonsOnContextDone(t *testing.T) {
	release := make(chan struct{})
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(bookResponse))
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := api.FetchOrderBook(ctx, btcusdt(t), 5)
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestGetOrderBookSnapshot_Throttled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(bookResponse))
	}))
	t.Cleanup(server.Close)
	api := NewKucoinSyncAPI(Config{BaseURL: server.URL, RPS: 0.1, Burst: 1, MaxWait: time.Millisecond})

	_, err := api.FetchOrderBook(context.Background(), btcusdt(t), 5)
	require.NoError(t, err)

	_, err = api.FetchOrderBook(context.Background(), btcusdt(t), 5)
	assert.ErrorIs(t, err, domain.ErrUpstreamRateLimited)
}
