package binance

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

const depthResponse = `{"lastUpdateId":1027024,
"bids":[["4.00000000","431.00000000"],["4.10000000","1.00000000"],["3.90000000","2.00000000"],["4.00000000","9.00000000"]],
"asks":[["4.00000200","12.00000000"],["4.00000100","3.00000000"],["5.00000000","1.00000000"]]}`

func newTestAPI(t *testing.T, handler http.HandlerFunc) *BinanceSyncAPI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewBinanceSyncAPI(Config{BaseURL: server.URL, MaxWait: time.Second})
}

func xmrbtc(t *testing.T) *domain.MarketSymbol {
	symbol, err := domain.NewMarketSymbol("xmr", "btc")
	require.NoError(t, err)
	return symbol
}

func TestBinanceSyncAPI_FetchOrderBook(t *testing.T) {
	var path, symbol, limit string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		symbol = r.URL.Query().Get("symbol")
		limit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(depthResponse))
	})

	snapshot, err := api.FetchOrderBook(context.Background(), xmrbtc(t), 3)
	require.NoError(t, err)

	assert.Equal(t, "/api/v3/depth", path)
	assert.Equal(t, "XMRBTC", symbol)
	assert.Equal(t, "5", limit)
	assert.Equal(t, Name, snapshot.Source)
	assert.Equal(t, int64(1027024), snapshot.LastUpdateId)
	assert.Equal(t, [][]string{{"4.1", "1"}, {"4", "440"}, {"3.9", "2"}}, domain.SerializePriceLevels(snapshot.Bids))
	assert.Equal(t, [][]string{{"4.000001", "3"}, {"4.000002", "12"}, {"5", "1"}}, domain.SerializePriceLevels(snapshot.Asks))
}

func TestBinanceSyncAPI_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected error
	}{
		{"InvalidSymbol", http.StatusBadRequest, `{"code":-1121,"msg":"Invalid symbol."}`, domain.ErrUnsupportedMarket},
		{"TooManyRequests", http.StatusTooManyRequests, `{"code":-1003,"msg":"Too many requests."}`, domain.ErrUpstreamRateLimited},
		{"ServerError", http.StatusInternalServerError, `{"code":-1000,"msg":"unknown"}`, domain.ErrUpstreamMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := api.FetchOrderBook(context.Background(), xmrbtc(t), 5)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestBinanceSyncAPI_Timeout(t *testing.T) {
	release := make(chan struct{})
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := api.FetchOrderBook(ctx, xmrbtc(t), 5)
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestDepthLimit(t *testing.T) {
	assert.Equal(t, 5, depthLimit(1))
	assert.Equal(t, 5, depthLimit(5))
	assert.Equal(t, 10, depthLimit(6))
	assert.Equal(t, 100, depthLimit(100))
	assert.Equal(t, 5000, depthLimit(9000))
}
