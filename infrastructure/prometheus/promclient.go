package promclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spooky-finn/cryptobridge/infrastructure/logger"
)

var log = logger.WithComponent("promclient")

// Metrics owns its registry so tests can build as many as they like.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	upstreamFetch         *prometheus.CounterVec
	upstreamFetchDuration *prometheus.HistogramVec
	cacheRequests         *prometheus.CounterVec
	unavailableSnapshots  *prometheus.CounterVec
	rpcRequests           *prometheus.CounterVec
	liveBookEvents        *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upstreamFetch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptobridge_upstream_fetch_total",
			Help: "upstream order book fetches by provider and outcome",
		}, []string{"provider", "outcome"}),
		upstreamFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cryptobridge_upstream_fetch_duration_seconds",
			Help:    "upstream order book fetch latency",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptobridge_cache_requests_total",
			Help: "snapshot cache lookups by result",
		}, []string{"result"}),
		unavailableSnapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptobridge_unavailable_snapshots_total",
			Help: "snapshots answered with the Unknown source",
		}, []string{"provider"}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptobridge_rpc_requests_total",
			Help: "rpc requests by status code",
		}, []string{"code"}),
		liveBookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptobridge_live_book_events_total",
			Help: "live order book lifecycle events by provider",
		}, []string{"provider", "event"}),
	}

	m.registry.MustRegister(
		m.upstreamFetch,
		m.upstreamFetchDuration,
		m.cacheRequests,
		m.unavailableSnapshots,
		m.rpcRequests,
		m.liveBookEvents,
		collectors.NewGoCollector(),
	)
	return m
}

// WatchCacheEntries exposes the current snapshot cache size.
func (m *Metrics) WatchCacheEntries(entries func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "cryptobridge_cache_entries",
		Help: "markets tracked by the snapshot cache",
	}, func() float64 { return float64(entries()) }))
}

// WatchLiveBooks exposes how many live order books are running.
func (m *Metrics) WatchLiveBooks(books func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "cryptobridge_live_books",
		Help: "order books maintained from depth streams",
	}, func() float64 { return float64(books()) }))
}

func (m *Metrics) LiveBookEvent(provider, event string) {
	if m == nil {
		return
	}
	m.liveBookEvents.WithLabelValues(provider, event).Inc()
}

func (m *Metrics) ObserveFetch(provider, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamFetch.WithLabelValues(provider, outcome).Inc()
	m.upstreamFetchDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *Metrics) CacheResult(result string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) Unavailable(provider string) {
	if m == nil {
		return
	}
	m.unavailableSnapshots.WithLabelValues(provider).Inc()
}

func (m *Metrics) RPCRequest(code string) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(code).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type Server struct {
	srv *http.Server
	ln  net.Listener
}

// StartPromClientServer serves /metrics on addr in the background.
func StartPromClientServer(addr string, m *Metrics) (*Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}
	go func() {
		log.Infof("prometheus server listening at %s", ln.Addr())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("prometheus server stopped")
		}
	}()
	return s, nil
}

func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
