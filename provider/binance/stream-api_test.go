package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spooky-finn/cryptobridge/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStreamServer speaks the combined stream protocol: it acks requests and lets the
// test push frames to the connected client.
type fakeStreamServer struct {
	url      string
	requests chan streamRequest

	mu   sync.Mutex
	conn *websocket.Conn
}

func newFakeStreamServer(t *testing.T) *fakeStreamServer {
	t.Helper()
	fs := &fakeStreamServer{requests: make(chan streamRequest, 16)}
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		fs.mu.Lock()
		fs.conn = conn
		fs.mu.Unlock()

		for {
			var req streamRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			fs.requests <- req

			fs.mu.Lock()
			err := conn.WriteJSON(map[string]interface{}{"result": nil, "id": req.ID})
			fs.mu.Unlock()
			if err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	fs.url = "ws" + strings.TrimPrefix(server.URL, "http")
	return fs
}

func (fs *fakeStreamServer) nextRequest(t *testing.T, method string) streamRequest {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case req := <-fs.requests:
			if req.Method == method {
				return req
			}
		case <-deadline:
			t.Fatalf("no %s request received", method)
			return streamRequest{}
		}
	}
}

func (fs *fakeStreamServer) push(t *testing.T, frame string) {
	t.Helper()
	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.NotNil(t, fs.conn)
	require.NoError(t, fs.conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func TestBinanceStreamAPI_DepthDiffStream(t *testing.T) {
	fs := newFakeStreamServer(t)
	client := NewBinanceStreamClient(StreamConfig{Endpoint: fs.url, HandshakeTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })
	api := NewBinanceStreamAPI(client)

	sub, err := api.DepthDiffStream(context.Background(), xmrbtc(t))
	require.NoError(t, err)
	assert.Equal(t, "xmrbtc@depth@100ms", sub.Topic)

	req := fs.nextRequest(t, "SUBSCRIBE")
	assert.Equal(t, []string{"xmrbtc@depth@100ms"}, req.Params)

	fs.push(t, `{"stream":"ethbtc@depth@100ms","data":{"U":1,"u":2,"b":[],"a":[]}}`)
	fs.push(t, `{"stream":"xmrbtc@depth@100ms","data":{"e":"depthUpdate","E":1672515782136,"s":"XMRBTC",`+
		`"U":157,"u":160,"b":[["0.0024","10"]],"a":[["0.0026","0"]]}}`)

	var update *domain.OrderBookUpdate
	select {
	case update = <-sub.Stream:
	case <-time.After(3 * time.Second):
		t.Fatal("no depth update received")
	}
	assert.Equal(t, int64(157), update.SequenceStart)
	assert.Equal(t, int64(160), update.SequenceEnd)
	assert.Equal(t, [][]string{{"0.0024", "10"}}, domain.SerializePriceLevels(update.Bids))
	assert.True(t, update.Asks[0].Quantity.IsZero())
	assert.True(t, update.Symbol.Equal(xmrbtc(t)))

	sub.Unsubscribe()
	req = fs.nextRequest(t, "UNSUBSCRIBE")
	assert.Equal(t, []string{"xmrbtc@depth@100ms"}, req.Params)

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.Stream:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBinanceStreamClient_Closed(t *testing.T) {
	client := NewBinanceStreamClient(StreamConfig{})
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, _, err := client.Subscribe("btcusdt@depth@100ms")
	assert.ErrorIs(t, err, errStreamClosed)
}

func TestBinanceSyncAPI_IsStreamAPI(t *testing.T) {
	var api domain.ProviderAdapter = NewBinanceSyncAPI(Config{})
	_, ok := api.(domain.ProviderStreamAPI)
	assert.True(t, ok)
	assert.NoError(t, api.(interface{ Close() error }).Close())
}
