package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/spooky-finn/cryptobridge/domain"
	"github.com/spooky-finn/cryptobridge/infrastructure/logger"
	"github.com/spooky-finn/cryptobridge/provider/upstream"
)

const Name = "binance"

const (
	codeTooManyRequests = -1003
	codeInvalidSymbol   = -1121
	codeBadSymbol       = -1100
)

// limits accepted by GET /api/v3/depth
var depthLimits = []int{5, 10, 20, 50, 100, 500, 1000, 5000}

var log = logger.WithComponent(Name)

type Config struct {
	BaseURL string
	Timeout time.Duration
	// StreamURL is the combined stream endpoint used by live order books.
	StreamURL string

	RPS     float64
	Burst   int
	MaxWait time.Duration
}

// BinanceSyncAPI fetches depth snapshots over REST. It also exposes the diff depth
// stream, which is only dialled once a live order book subscribes.
type BinanceSyncAPI struct {
	client   *binance.Client
	throttle *upstream.Throttle
	stream   *BinanceStreamAPI
}

func NewBinanceSyncAPI(cfg Config) *BinanceSyncAPI {
	client := binance.NewClient("", "")
	if cfg.BaseURL != "" {
		client.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client.HTTPClient = &http.Client{Timeout: timeout}

	return &BinanceSyncAPI{
		client:   client,
		throttle: upstream.NewThrottle(cfg.RPS, cfg.Burst, cfg.MaxWait),
		stream:   NewBinanceStreamAPI(NewBinanceStreamClient(StreamConfig{Endpoint: cfg.StreamURL})),
	}
}

func (api *BinanceSyncAPI) Name() string {
	return Name
}

func (api *BinanceSyncAPI) FetchOrderBook(
	ctx context.Context, symbol *domain.MarketSymbol, maxDepth int,
) (*domain.OrderBookSnapshot, error) {
	if err := api.throttle.Wait(ctx); err != nil {
		return nil, domain.NewFetchError(Name, symbol, err, "")
	}

	res, err := api.client.NewDepthService().
		Symbol(strings.ToUpper(symbol.Join(""))).
		Limit(depthLimit(maxDepth)).
		Do(ctx)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, classify(err), "")
	}

	bids := make([]domain.PriceLevel, 0, len(res.Bids))
	for _, b := range res.Bids {
		level, err := domain.NewPriceLevel(b.Price, b.Quantity)
		if err != nil {
			return nil, domain.NewFetchError(Name, symbol, err, "bids")
		}
		bids = append(bids, level)
	}

	asks := make([]domain.PriceLevel, 0, len(res.Asks))
	for _, a := range res.Asks {
		level, err := domain.NewPriceLevel(a.Price, a.Quantity)
		if err != nil {
			return nil, domain.NewFetchError(Name, symbol, err, "asks")
		}
		asks = append(asks, level)
	}

	snapshot, err := domain.NewOrderBookSnapshot(Name, symbol, bids, asks, res.LastUpdateID, maxDepth)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, err, "")
	}

	log.WithField("market", symbol.String()).WithField("lastUpdateId", res.LastUpdateID).Debug("order book fetched")
	return snapshot, nil
}

func (api *BinanceSyncAPI) DepthDiffStream(
	ctx context.Context, symbol *domain.MarketSymbol,
) (*domain.Subscription[*domain.OrderBookUpdate], error) {
	return api.stream.DepthDiffStream(ctx, symbol)
}

func (api *BinanceSyncAPI) IsValidUpd(update *domain.OrderBookUpdate, lastUpdateId int64) error {
	return api.stream.IsValidUpd(update, lastUpdateId)
}

// Close drops the stream connection, if one was opened.
func (api *BinanceSyncAPI) Close() error {
	return api.stream.streamClient.Close()
}

func classify(err error) error {
	var apiErr *common.APIError
	if !errors.As(err, &apiErr) {
		return upstream.ClassifyError(err)
	}

	switch apiErr.Code {
	case codeTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrUpstreamRateLimited, apiErr.Message)
	case codeInvalidSymbol, codeBadSymbol:
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedMarket, apiErr.Message)
	default:
		return fmt.Errorf("%w: code %d: %s", domain.ErrUpstreamMalformedResponse, apiErr.Code, apiErr.Message)
	}
}

func depthLimit(maxDepth int) int {
	for _, limit := range depthLimits {
		if maxDepth <= limit {
			return limit
		}
	}
	return depthLimits[len(depthLimits)-1]
}
