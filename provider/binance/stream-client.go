package binance

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/recws-org/recws"
)

const (
	defaultStreamEndpoint = "wss://stream.binance.com:9443/stream"
	readRetryDelay        = 100 * time.Millisecond
	topicBuffer           = 256
)

var errStreamClosed = errors.New("stream client is closed")

type StreamConfig struct {
	Endpoint         string
	HandshakeTimeout time.Duration
	ReconnectMin     time.Duration
	ReconnectMax     time.Duration
}

type streamRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

type streamFrame struct {
	Stream string `json:"stream"`
	Error  *struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"error"`
}

type streamEntry struct {
	ch          chan []byte
	subscribers int
}

// BinanceStreamClient multiplexes topics over one combined stream connection.
// recws redials a dropped connection and every live topic is subscribed again.
type BinanceStreamClient struct {
	cfg  StreamConfig
	conn *recws.RecConn

	connectOnce sync.Once
	writeMutex  sync.Mutex
	nextID      atomic.Int64

	mu            sync.Mutex
	subscriptions map[string]*streamEntry
	closed        bool

	done chan struct{}
	wg   sync.WaitGroup
}

func NewBinanceStreamClient(cfg StreamConfig) *BinanceStreamClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultStreamEndpoint
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 5 * time.Second
	}
	if cfg.ReconnectMin <= 0 {
		cfg.ReconnectMin = time.Second
	}
	if cfg.ReconnectMax <= 0 {
		cfg.ReconnectMax = 30 * time.Second
	}

	return &BinanceStreamClient{
		cfg:           cfg,
		subscriptions: make(map[string]*streamEntry),
		done:          make(chan struct{}),
	}
}

func (c *BinanceStreamClient) connect() {
	c.connectOnce.Do(func() {
		conn := &recws.RecConn{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: c.cfg.HandshakeTimeout,
			RecIntvlMin:      c.cfg.ReconnectMin,
			RecIntvlMax:      c.cfg.ReconnectMax,
			NonVerbose:       true,
			SubscribeHandler: c.resubscribe,
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.conn = conn
		c.wg.Add(1)
		c.mu.Unlock()

		// Dial returns after the handshake timeout, connected or still retrying
		conn.Dial(c.cfg.Endpoint, nil)
		go c.read()
		log.WithField("endpoint", c.cfg.Endpoint).Info("binance stream client started")
	})
}

// Subscribe returns the raw frames of topic. Subscribers of the same topic share one
// upstream subscription, the returned func releases it.
func (c *BinanceStreamClient) Subscribe(topic string) (<-chan []byte, func(), error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, nil, errStreamClosed
	}
	c.mu.Unlock()

	c.connect()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, nil, errStreamClosed
	}
	entry, ok := c.subscriptions[topic]
	if ok {
		entry.subscribers++
		c.mu.Unlock()
		return entry.ch, c.unsubscriber(topic), nil
	}
	entry = &streamEntry{ch: make(chan []byte, topicBuffer), subscribers: 1}
	c.subscriptions[topic] = entry
	c.mu.Unlock()

	// while disconnected the subscribe handler sends it on reconnect
	if c.conn.IsConnected() {
		if err := c.send("SUBSCRIBE", topic); err != nil {
			log.WithField("topic", topic).WithError(err).Warn("subscribe request failed, retrying on reconnect")
		}
	}
	log.WithField("topic", topic).Debug("subscribed")
	return entry.ch, c.unsubscriber(topic), nil
}

func (c *BinanceStreamClient) unsubscriber(topic string) func() {
	var once sync.Once
	return func() {
		once.Do(func() { c.unsubscribe(topic) })
	}
}

func (c *BinanceStreamClient) unsubscribe(topic string) {
	c.mu.Lock()
	entry, ok := c.subscriptions[topic]
	if !ok {
		c.mu.Unlock()
		return
	}
	entry.subscribers--
	if entry.subscribers > 0 {
		c.mu.Unlock()
		return
	}
	close(entry.ch)
	delete(c.subscriptions, topic)
	c.mu.Unlock()

	if c.conn.IsConnected() {
		if err := c.send("UNSUBSCRIBE", topic); err != nil {
			log.WithField("topic", topic).WithError(err).Warn("unsubscribe request failed")
		}
	}
	log.WithField("topic", topic).Debug("unsubscribed")
}

// resubscribe runs after every (re)connect. recws treats an error as fatal, so it only logs.
func (c *BinanceStreamClient) resubscribe() error {
	c.mu.Lock()
	closed := c.closed
	topics := make([]string, 0, len(c.subscriptions))
	for topic := range c.subscriptions {
		topics = append(topics, topic)
	}
	c.mu.Unlock()

	if closed {
		go c.conn.Close()
		return nil
	}
	if len(topics) == 0 {
		return nil
	}

	if err := c.send("SUBSCRIBE", topics...); err != nil {
		log.WithField("topics", topics).WithError(err).Warn("resubscribe failed")
	}
	return nil
}

func (c *BinanceStreamClient) send(method string, topics ...string) error {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	return c.conn.WriteJSON(streamRequest{
		Method: method,
		Params: topics,
		ID:     c.nextID.Add(1),
	})
}

func (c *BinanceStreamClient) read() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			// recws is redialling
			select {
			case <-c.done:
				return
			case <-time.After(readRetryDelay):
			}
			continue
		}

		var frame streamFrame
		if err := json.Unmarshal(msg, &frame); err != nil {
			log.WithError(err).Warn("dropping malformed stream frame")
			continue
		}
		if frame.Stream == "" {
			if frame.Error != nil {
				log.WithField("code", frame.Error.Code).WithField("msg", frame.Error.Msg).Warn("stream request rejected")
			}
			continue
		}

		c.dispatch(frame.Stream, msg)
	}
}

// dispatch never blocks the read loop, a frame for a full subscriber is dropped and
// shows up downstream as a sequence gap.
func (c *BinanceStreamClient) dispatch(topic string, msg []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.subscriptions[topic]
	if !ok {
		return
	}
	select {
	case entry.ch <- msg:
	default:
		log.WithField("topic", topic).Warn("subscriber is behind, frame dropped")
	}
}

// Close ends every subscription and the connection.
func (c *BinanceStreamClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	for topic, entry := range c.subscriptions {
		close(entry.ch)
		delete(c.subscriptions, topic)
	}
	conn := c.conn
	c.mu.Unlock()

	close(c.done)
	if conn != nil {
		conn.Close()
	}
	c.wg.Wait()
	return nil
}
