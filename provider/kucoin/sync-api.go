package kucoin

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/Kucoin/kucoin-go-sdk"
	"github.com/spooky-finn/cryptobridge/domain"
	"github.com/spooky-finn/cryptobridge/infrastructure/logger"
	"github.com/spooky-finn/cryptobridge/provider/upstream"
)

const Name = "kucoin"

const (
	codeSuccess       = "200000"
	codeTooMany       = "429000"
	codeInvalidParams = "400100"
	codeNoSymbol      = "900001"
)

var log = logger.WithComponent(Name)

type Config struct {
	BaseURL       string
	ApiKey        string
	ApiSecret     string
	ApiPassphrase string

	RPS     float64
	Burst   int
	MaxWait time.Duration
}

type KucoinSyncAPI struct {
	apiService *kucoin.ApiService
	throttle   *upstream.Throttle
}

type orderBookModel struct {
	Sequence string     `json:"sequence"`
	Time     int64      `json:"time"`
	Bids     [][]string `json:"bids"`
	Asks     [][]string `json:"asks"`
}

func NewKucoinSyncAPI(cfg Config) *KucoinSyncAPI {
	opts := []kucoin.ApiServiceOption{
		kucoin.ApiKeyOption(cfg.ApiKey),
		kucoin.ApiSecretOption(cfg.ApiSecret),
		kucoin.ApiPassPhraseOption(cfg.ApiPassphrase),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, kucoin.ApiBaseURIOption(cfg.BaseURL))
	}

	return &KucoinSyncAPI{
		apiService: kucoin.NewApiService(opts...),
		throttle:   upstream.NewThrottle(cfg.RPS, cfg.Burst, cfg.MaxWait),
	}
}

func (api *KucoinSyncAPI) Name() string {
	return Name
}

// FetchOrderBook reads the public aggregated level2 book. The sdk call has no context,
// when ctx is done first the call is left to finish on its own.
func (api *KucoinSyncAPI) FetchOrderBook(
	ctx context.Context, symbol *domain.MarketSymbol, maxDepth int,
) (*domain.OrderBookSnapshot, error) {
	if err := api.throttle.Wait(ctx); err != nil {
		return nil, domain.NewFetchError(Name, symbol, err, "")
	}

	type result struct {
		resp *kucoin.ApiResponse
		err  error
	}
	done := make(chan result, 1)
	s := strings.ToUpper(symbol.Join("-"))
	go func() {
		resp, err := api.apiService.AggregatedPartOrderBook(s, depthTier(maxDepth))
		done <- result{resp, err}
	}()

	var r result
	select {
	case r = <-done:
	case <-ctx.Done():
		return nil, domain.NewFetchError(Name, symbol, upstream.ClassifyError(ctx.Err()), "")
	}

	if r.err != nil {
		return nil, domain.NewFetchError(Name, symbol, upstream.ClassifyError(r.err), "")
	}

	return api.parseOrderBook(symbol, r.resp, maxDepth)
}

func (api *KucoinSyncAPI) parseOrderBook(
	symbol *domain.MarketSymbol, resp *kucoin.ApiResponse, maxDepth int,
) (*domain.OrderBookSnapshot, error) {
	switch resp.Code {
	case codeSuccess:
	case codeTooMany:
		return nil, domain.NewFetchError(Name, symbol, domain.ErrUpstreamRateLimited, resp.Message)
	case codeInvalidParams, codeNoSymbol:
		return nil, domain.NewFetchError(Name, symbol, domain.ErrUnsupportedMarket, resp.Message)
	default:
		return nil, domain.NewFetchError(Name, symbol, domain.ErrUpstreamMalformedResponse,
			"code "+resp.Code+": "+resp.Message)
	}

	data := &orderBookModel{}
	if err := json.Unmarshal(resp.RawData, data); err != nil {
		return nil, domain.NewFetchError(Name, symbol, domain.ErrUpstreamMalformedResponse, err.Error())
	}
	// kucoin answers unknown pairs with an empty book and no sequence
	if data.Sequence == "" && len(data.Bids) == 0 && len(data.Asks) == 0 {
		return nil, domain.NewFetchError(Name, symbol, domain.ErrUnsupportedMarket, "empty book")
	}

	lastUpdId, err := strconv.ParseInt(data.Sequence, 10, 64)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, domain.ErrUpstreamMalformedResponse, "sequence "+data.Sequence)
	}

	bids, err := domain.ParsePriceLevels(data.Bids)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, err, "bids")
	}
	asks, err := domain.ParsePriceLevels(data.Asks)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, err, "asks")
	}

	snapshot, err := domain.NewOrderBookSnapshot(Name, symbol, bids, asks, lastUpdId, maxDepth)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, err, "")
	}

	log.WithField("market", symbol.String()).WithField("sequence", lastUpdId).Debug("order book fetched")
	return snapshot, nil
}

// depthTier picks the smallest published level2 depth covering maxDepth.
func depthTier(maxDepth int) int64 {
	if maxDepth <= 20 {
		return 20
	}
	return 100
}
