package gateio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spooky-finn/cryptobridge/domain"
	"github.com/spooky-finn/cryptobridge/infrastructure/logger"
	"github.com/spooky-finn/cryptobridge/provider/upstream"
)

const Name = "gateio"

const (
	defaultBaseURL = "https://api.gateio.ws"
	orderBookPath  = "/api/v4/spot/order_book"

	labelInvalidPair = "INVALID_CURRENCY_PAIR"
	labelTooFast     = "TOO_FAST"

	// largest page the order_book endpoint hands out
	maxLimit = 1000
)

var log = logger.WithComponent(Name)

type Config struct {
	BaseURL string
	Timeout time.Duration

	RPS     float64
	Burst   int
	MaxWait time.Duration
}

type GateioSyncAPI struct {
	baseURL  string
	client   *http.Client
	throttle *upstream.Throttle
}

type orderBookModel struct {
	ID      int64      `json:"id"`
	Current int64      `json:"current"`
	Update  int64      `json:"update"`
	Bids    [][]string `json:"bids"`
	Asks    [][]string `json:"asks"`
}

type errorModel struct {
	Label   string `json:"label"`
	Message string `json:"message"`
}

func NewGateioSyncAPI(cfg Config) *GateioSyncAPI {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &GateioSyncAPI{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: timeout},
		throttle: upstream.NewThrottle(cfg.RPS, cfg.Burst, cfg.MaxWait),
	}
}

func (api *GateioSyncAPI) Name() string {
	return Name
}

func (api *GateioSyncAPI) FetchOrderBook(
	ctx context.Context, symbol *domain.MarketSymbol, maxDepth int,
) (*domain.OrderBookSnapshot, error) {
	if err := api.throttle.Wait(ctx); err != nil {
		return nil, domain.NewFetchError(Name, symbol, err, "")
	}

	query := url.Values{}
	query.Set("currency_pair", strings.ToUpper(symbol.Join("_")))
	query.Set("limit", strconv.Itoa(pageLimit(maxDepth)))
	query.Set("with_id", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.baseURL+orderBookPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, domain.ErrUpstreamMalformedResponse, err.Error())
	}
	req.Header.Set("Accept", "application/json")

	res, err := api.client.Do(req)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, upstream.ClassifyError(err), "")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, upstream.ClassifyError(err), "read body")
	}

	if res.StatusCode != http.StatusOK {
		return nil, domain.NewFetchError(Name, symbol, classifyStatus(res.StatusCode, body), string(body))
	}

	data := &orderBookModel{}
	if err := json.Unmarshal(body, data); err != nil {
		return nil, domain.NewFetchError(Name, symbol, domain.ErrUpstreamMalformedResponse, err.Error())
	}

	bids, err := domain.ParsePriceLevels(data.Bids)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, err, "bids")
	}
	asks, err := domain.ParsePriceLevels(data.Asks)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, err, "asks")
	}

	snapshot, err := domain.NewOrderBookSnapshot(Name, symbol, bids, asks, data.ID, maxDepth)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, err, "")
	}

	log.WithField("market", symbol.String()).WithField("id", data.ID).Debug("order book fetched")
	return snapshot, nil
}

func classifyStatus(status int, body []byte) error {
	apiErr := errorModel{}
	_ = json.Unmarshal(body, &apiErr)

	switch {
	case status == http.StatusTooManyRequests || apiErr.Label == labelTooFast:
		return domain.ErrUpstreamRateLimited
	case apiErr.Label == labelInvalidPair:
		return domain.ErrUnsupportedMarket
	case status == http.StatusGatewayTimeout:
		return domain.ErrUpstreamTimeout
	default:
		return fmt.Errorf("%w: status %d", domain.ErrUpstreamMalformedResponse, status)
	}
}

func pageLimit(maxDepth int) int {
	if maxDepth <= 0 || maxDepth > maxLimit {
		return maxLimit
	}
	return maxDepth
}
