package huobi

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/spooky-finn/cryptobridge/domain"
	"github.com/spooky-finn/cryptobridge/infrastructure/logger"
	"github.com/spooky-finn/cryptobridge/provider/upstream"
)

const Name = "huobi"

const defaultEndpoint = "wss://api.huobi.pro/ws"

var log = logger.WithComponent(Name)

var errConnectionLost = errors.New("websocket connection lost")

type Config struct {
	Endpoint         string
	HandshakeTimeout time.Duration

	RPS     float64
	Burst   int
	MaxWait time.Duration
}

// HuobiSyncAPI requests depth snapshots over one shared market websocket.
// The connection is dialled on first use and again after it drops.
type HuobiSyncAPI struct {
	endpoint string
	dialer   websocket.Dialer
	throttle *upstream.Throttle

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]chan response

	writeMutex sync.Mutex
}

type envelope struct {
	Ping    int64           `json:"ping"`
	ID      string          `json:"id"`
	Rep     string          `json:"rep"`
	Status  string          `json:"status"`
	ErrCode string          `json:"err-code"`
	ErrMsg  string          `json:"err-msg"`
	Data    json.RawMessage `json:"data"`
}

type depthData struct {
	Version int64               `json:"version"`
	Ts      int64               `json:"ts"`
	Bids    [][]decimal.Decimal `json:"bids"`
	Asks    [][]decimal.Decimal `json:"asks"`
}

type response struct {
	envelope envelope
	err      error
}

func NewHuobiSyncAPI(cfg Config) *HuobiSyncAPI {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	handshakeTimeout := cfg.HandshakeTimeout
	if handshakeTimeout <= 0 {
		handshakeTimeout = 5 * time.Second
	}

	return &HuobiSyncAPI{
		endpoint: endpoint,
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		throttle: upstream.NewThrottle(cfg.RPS, cfg.Burst, cfg.MaxWait),
		pending:  make(map[string]chan response),
	}
}

func (api *HuobiSyncAPI) Name() string {
	return Name
}

func (api *HuobiSyncAPI) FetchOrderBook(
	ctx context.Context, symbol *domain.MarketSymbol, maxDepth int,
) (*domain.OrderBookSnapshot, error) {
	if err := api.throttle.Wait(ctx); err != nil {
		return nil, domain.NewFetchError(Name, symbol, err, "")
	}

	reqID := uuid.NewString()
	ch := make(chan response, 1)
	conn, err := api.register(ctx, reqID, ch)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, upstream.ClassifyError(err), "dial")
	}
	defer func() {
		api.mu.Lock()
		delete(api.pending, reqID)
		api.mu.Unlock()
	}()

	topic := fmt.Sprintf("market.%s.depth.step0", symbol.Join(""))
	api.writeMutex.Lock()
	err = conn.WriteJSON(map[string]string{"req": topic, "id": reqID})
	api.writeMutex.Unlock()
	if err != nil {
		api.drop(conn, err)
		return nil, domain.NewFetchError(Name, symbol, upstream.ClassifyError(err), "write")
	}

	var resp response
	select {
	case resp = <-ch:
	case <-ctx.Done():
		return nil, domain.NewFetchError(Name, symbol, upstream.ClassifyError(ctx.Err()), "")
	}
	if resp.err != nil {
		return nil, domain.NewFetchError(Name, symbol, domain.ErrUpstreamTimeout, resp.err.Error())
	}

	return parseDepth(symbol, resp.envelope, maxDepth)
}

// Close drops the websocket. A later fetch dials again.
func (api *HuobiSyncAPI) Close() error {
	api.mu.Lock()
	conn := api.conn
	api.mu.Unlock()

	if conn == nil {
		return nil
	}
	api.drop(conn, errConnectionLost)
	return nil
}

func parseDepth(symbol *domain.MarketSymbol, env envelope, maxDepth int) (*domain.OrderBookSnapshot, error) {
	if env.Status != "ok" {
		return nil, domain.NewFetchError(Name, symbol, classifyErrCode(env.ErrCode), env.ErrCode+": "+env.ErrMsg)
	}

	data := &depthData{}
	if err := json.Unmarshal(env.Data, data); err != nil {
		return nil, domain.NewFetchError(Name, symbol, domain.ErrUpstreamMalformedResponse, err.Error())
	}

	bids, err := toPriceLevels(data.Bids)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, err, "bids")
	}
	asks, err := toPriceLevels(data.Asks)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, err, "asks")
	}

	snapshot, err := domain.NewOrderBookSnapshot(Name, symbol, bids, asks, data.Version, maxDepth)
	if err != nil {
		return nil, domain.NewFetchError(Name, symbol, err, "")
	}
	return snapshot, nil
}

func classifyErrCode(code string) error {
	switch code {
	case "bad-request", "invalid-parameter", "invalid-symbol":
		return domain.ErrUnsupportedMarket
	case "too-many-request", "too-many-requests":
		return domain.ErrUpstreamRateLimited
	default:
		return domain.ErrUpstreamMalformedResponse
	}
}

func toPriceLevels(depth [][]decimal.Decimal) ([]domain.PriceLevel, error) {
	result := make([]domain.PriceLevel, 0, len(depth))
	for _, level := range depth {
		if len(level) < 2 {
			return nil, fmt.Errorf("%w: price level has %d fields", domain.ErrUpstreamMalformedResponse, len(level))
		}
		result = append(result, domain.PriceLevel{Price: level[0], Quantity: level[1]})
	}
	return result, nil
}

// register adds ch as the receiver of reqID on the current connection, dialling it if needed.
func (api *HuobiSyncAPI) register(ctx context.Context, reqID string, ch chan response) (*websocket.Conn, error) {
	api.mu.Lock()
	defer api.mu.Unlock()

	if api.conn == nil {
		conn, _, err := api.dialer.DialContext(ctx, api.endpoint, nil)
		if err != nil {
			return nil, err
		}
		api.conn = conn
		log.WithField("endpoint", api.endpoint).Info("connected to the huobi market websocket")

		go api.listener(conn)
	}

	api.pending[reqID] = ch
	return api.conn, nil
}

// drop forgets conn and fails every request still waiting on it.
func (api *HuobiSyncAPI) drop(conn *websocket.Conn, cause error) {
	api.mu.Lock()
	if api.conn != conn {
		api.mu.Unlock()
		return
	}
	api.conn = nil
	waiting := api.pending
	api.pending = make(map[string]chan response)
	api.mu.Unlock()

	_ = conn.Close()
	for _, ch := range waiting {
		ch <- response{err: cause}
	}
	log.WithError(cause).Warn("huobi websocket dropped")
}

func (api *HuobiSyncAPI) listener(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			api.drop(conn, fmt.Errorf("%w: %s", errConnectionLost, err))
			return
		}

		payload, err := gunzip(message)
		if err != nil {
			log.WithError(err).Warn("dropping undecodable frame")
			continue
		}

		var env envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			log.WithError(err).Warn("dropping malformed frame")
			continue
		}

		if env.Ping != 0 {
			api.writeMutex.Lock()
			err = conn.WriteJSON(map[string]int64{"pong": env.Ping})
			api.writeMutex.Unlock()
			if err != nil {
				api.drop(conn, err)
				return
			}
			continue
		}

		if env.ID == "" {
			continue
		}

		api.mu.Lock()
		ch, ok := api.pending[env.ID]
		if ok {
			delete(api.pending, env.ID)
		}
		api.mu.Unlock()

		if ok {
			ch <- response{envelope: env}
		}
	}
}

func gunzip(message []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(message))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
