package gateio

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

const bookResponse = `{"id":123456,"current":1623898993123,"update":1623898993121,
"asks":[["1.52","1.151"],["1.53","1.218"],["1.52","0.049"]],
"bids":[["1.17","201.863"],["1.16","153.02"],["1.171","1"]]}`

func newTestAPI(t *testing.T, handler http.HandlerFunc) *GateioSyncAPI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewGateioSyncAPI(Config{BaseURL: server.URL, MaxWait: time.Second})
}

func btcusdt(t *testing.T) *domain.MarketSymbol {
	symbol, err := domain.NewMarketSymbol("btc", "usdt")
	require.NoError(t, err)
	return symbol
}

func TestGateioSyncAPI_FetchOrderBook(t *testing.T) {
	var r *http.Request
	api := newTestAPI(t, func(w http.ResponseWriter, req *http.Request) {
		r = req
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bookResponse))
	})

	snapshot, err := api.FetchOrderBook(context.Background(), btcusdt(t), 2)
	require.NoError(t, err)

	assert.Equal(t, "/api/v4/spot/order_book", r.URL.Path)
	assert.Equal(t, "BTC_USDT", r.URL.Query().Get("currency_pair"))
	assert.Equal(t, "2", r.URL.Query().Get("limit"))
	assert.Equal(t, "true", r.URL.Query().Get("with_id"))

	assert.Equal(t, Name, snapshot.Source)
	assert.Equal(t, int64(123456), snapshot.LastUpdateId)
	assert.Equal(t, [][]string{{"1.171", "1"}, {"1.17", "201.863"}}, domain.SerializePriceLevels(snapshot.Bids))
	assert.Equal(t, [][]string{{"1.52", "1.2"}, {"1.53", "1.218"}}, domain.SerializePriceLevels(snapshot.Asks))
}

func TestGateioSyncAPI_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected error
	}{
		{"InvalidPair", http.StatusBadRequest, `{"label":"INVALID_CURRENCY_PAIR","message":"Invalid currency pair BTC_XXX"}`, domain.ErrUnsupportedMarket},
		{"TooManyRequests", http.StatusTooManyRequests, `{"label":"TOO_MANY_REQUESTS","message":"slow down"}`, domain.ErrUpstreamRateLimited},
		{"TooFast", http.StatusBadRequest, `{"label":"TOO_FAST","message":"slow down"}`, domain.ErrUpstreamRateLimited},
		{"GatewayTimeout", http.StatusGatewayTimeout, ``, domain.ErrUpstreamTimeout},
		{"ServerError", http.StatusInternalServerError, `{"label":"SERVER_ERROR"}`, domain.ErrUpstreamMalformedResponse},
		{"NotJSON", http.StatusOK, `not json`, domain.ErrUpstreamMalformedResponse},
		{"BadLevel", http.StatusOK, `{"id":1,"bids":[["1.1"]],"asks":[]}`, domain.ErrUpstreamMalformedResponse},
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

func TestGateioSyncAPI_Timeout(t *testing.T) {
	release := make(chan struct{})
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := api.FetchOrderBook(ctx, btcusdt(t), 5)
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestPageLimit(t *testing.T) {
	assert.Equal(t, 1, pageLimit(1))
	assert.Equal(t, 100, pageLimit(100))
	assert.Equal(t, maxLimit, pageLimit(0))
	assert.Equal(t, maxLimit, pageLimit(5000))
}
