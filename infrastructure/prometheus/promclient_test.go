package promclient

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.ObserveFetch("kucoin", "ok", 20*time.Millisecond)
	m.ObserveFetch("kucoin", "ok", 30*time.Millisecond)
	m.ObserveFetch("kucoin", "timeout", time.Second)
	m.CacheResult("hit")
	m.Unavailable("huobi")
	m.RPCRequest("OK")
	m.LiveBookEvent("binance", "started")
	m.LiveBookEvent("binance", "gap")
	m.LiveBookEvent("binance", "gap")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.upstreamFetch.WithLabelValues("kucoin", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.upstreamFetch.WithLabelValues("kucoin", "timeout")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheRequests.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.unavailableSnapshots.WithLabelValues("huobi")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rpcRequests.WithLabelValues("OK")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.liveBookEvents.WithLabelValues("binance", "gap")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch("kucoin", "ok", time.Millisecond)
		m.CacheResult("miss")
		m.Unavailable("kucoin")
		m.RPCRequest("OK")
		m.WatchCacheEntries(func() int { return 1 })
		m.WatchLiveBooks(func() int { return 1 })
		m.LiveBookEvent("binance", "started")
	})
}

func TestStartPromClientServer(t *testing.T) {
	m := NewMetrics()
	m.WatchCacheEntries(func() int { return 3 })
	m.WatchLiveBooks(func() int { return 2 })
	m.CacheResult("miss")

	s, err := StartPromClientServer("127.0.0.1:0", m)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	res, err := http.Get("http://" + s.Addr() + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "cryptobridge_cache_entries 3")
	assert.Contains(t, string(body), "cryptobridge_live_books 2")
	assert.Contains(t, string(body), `cryptobridge_cache_requests_total{result="miss"} 1`)
}
