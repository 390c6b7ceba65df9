package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"github.com/spooky-finn/cryptobridge/cache"
	"github.com/spooky-finn/cryptobridge/domain"
	"github.com/spooky-finn/cryptobridge/helpers"
	"github.com/spooky-finn/cryptobridge/infrastructure/logger"
	promclient "github.com/spooky-finn/cryptobridge/infrastructure/prometheus"
)

var log = logger.WithComponent("orderbook-snapshot-usecase")

// upstream timeouts and rate limits get one more attempt
const maxRetries = 1

type ProviderRegistry interface {
	Lookup(name string) (domain.ProviderAdapter, bool)
}

type Config struct {
	// FetchDepth is the depth requested from adapters and the cap on maxDepth.
	FetchDepth      int
	UpstreamTimeout time.Duration
	CacheTTL        time.Duration
	ProviderTTL     map[string]time.Duration
	RetryBackoffMin time.Duration
	RetryBackoffMax time.Duration
}

type OrderBookSnapshotUseCase struct {
	registry  ProviderRegistry
	cache     *cache.SnapshotCache
	metrics   *promclient.Metrics
	config    Config
	liveBooks *domain.OrderBookStorage
}

func NewOrderBookSnapshotUseCase(
	registry ProviderRegistry, snapshotCache *cache.SnapshotCache, metrics *promclient.Metrics, config Config,
) *OrderBookSnapshotUseCase {
	if config.FetchDepth <= 0 {
		config.FetchDepth = 100
	}
	if config.UpstreamTimeout <= 0 {
		config.UpstreamTimeout = 5 * time.Second
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = time.Second
	}

	return &OrderBookSnapshotUseCase{
		registry: registry,
		cache:    snapshotCache,
		metrics:  metrics,
		config:   config,
	}
}

// EnableLiveBooks lets requests for providers with a depth stream start live order books.
// Their snapshots replace the cache entry of the market as the book changes, markets
// without one keep being populated from snapshot fetches.
func (o *OrderBookSnapshotUseCase) EnableLiveBooks(storage *domain.OrderBookStorage) {
	o.liveBooks = storage
}

// GetOrderBookSnapshot returns the book of market on provider, at most maxDepth levels per side.
// Caller mistakes and unknown providers are returned as errors. Upstream failures are not:
// they produce an unavailable snapshot with the Unknown source.
func (o *OrderBookSnapshotUseCase) GetOrderBookSnapshot(
	ctx context.Context, provider, market, maxDepth string,
) (*domain.OrderBookSnapshot, error) {
	depth, err := helpers.ParsePositiveInt(maxDepth)
	if err != nil {
		return nil, fmt.Errorf("%w: maxDepth: %s", domain.ErrInvalidArgument, err)
	}
	if depth > o.config.FetchDepth {
		depth = o.config.FetchDepth
	}

	adapter, ok := o.registry.Lookup(provider)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, provider)
	}

	symbol, err := domain.NewMarketSymbolFromString(market)
	if err != nil {
		return nil, err
	}

	key := domain.NewMarketKey(adapter.Name(), symbol)
	o.touchLiveBook(adapter, key)

	snapshot, err := o.cache.GetOrPopulate(ctx, key, o.ttl(key.Provider), o.populate(adapter, symbol))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}

		log.WithField("market", key.String()).WithError(err).Warn("order book unavailable, answering with the Unknown source")
		o.metrics.Unavailable(key.Provider)
		return domain.NewUnavailableSnapshot(key.Provider, symbol, err.Error()), nil
	}

	return snapshot.TakeSnapshot(depth), nil
}

func (o *OrderBookSnapshotUseCase) touchLiveBook(adapter domain.ProviderAdapter, key domain.MarketKey) {
	if o.liveBooks == nil {
		return
	}
	stream, ok := adapter.(domain.ProviderStreamAPI)
	if !ok {
		return
	}

	ttl := o.ttl(key.Provider)
	o.liveBooks.Touch(key, adapter, stream, func(snapshot *domain.OrderBookSnapshot) {
		o.cache.Store(key, snapshot, ttl)
	})
}

func (o *OrderBookSnapshotUseCase) ttl(provider string) time.Duration {
	if ttl, ok := o.config.ProviderTTL[provider]; ok && ttl > 0 {
		return ttl
	}
	return o.config.CacheTTL
}

// populate runs detached from the requesting caller, every attempt gets its own upstream timeout.
func (o *OrderBookSnapshotUseCase) populate(adapter domain.ProviderAdapter, symbol *domain.MarketSymbol) cache.Populate {
	return func(ctx context.Context) (*domain.OrderBookSnapshot, error) {
		b := &backoff.Backoff{
			Min:    o.config.RetryBackoffMin,
			Max:    o.config.RetryBackoffMax,
			Factor: 2,
			Jitter: true,
		}

		for attempt := 0; ; attempt++ {
			snapshot, err := o.fetch(ctx, adapter, symbol)
			if err == nil || attempt >= maxRetries || !domain.IsRetryable(err) {
				return snapshot, err
			}

			delay := b.Duration()
			log.WithFields(logger.Fields{
				"provider": adapter.Name(),
				"market":   symbol.String(),
				"delay":    delay,
			}).WithError(err).Debug("retrying upstream fetch")

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, err
			}
		}
	}
}

func (o *OrderBookSnapshotUseCase) fetch(
	ctx context.Context, adapter domain.ProviderAdapter, symbol *domain.MarketSymbol,
) (*domain.OrderBookSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.UpstreamTimeout)
	defer cancel()

	start := time.Now()
	snapshot, err := adapter.FetchOrderBook(ctx, symbol, o.config.FetchDepth)
	if err == nil {
		if snapshot == nil {
			err = fmt.Errorf("%w: adapter returned no book", domain.ErrUpstreamMalformedResponse)
		} else if vErr := snapshot.Validate(); vErr != nil {
			err = fmt.Errorf("%w: %s", domain.ErrUpstreamMalformedResponse, vErr)
		}
	}
	o.metrics.ObserveFetch(adapter.Name(), outcome(err), time.Since(start))

	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUnsupportedMarket):
		return "unsupported_market"
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrUpstreamRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrUpstreamMalformedResponse):
		return "malformed"
	default:
		return "error"
	}
}
