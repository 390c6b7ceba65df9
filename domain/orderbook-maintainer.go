package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gammazero/deque"
	"github.com/jpillora/backoff"
	"github.com/spooky-finn/cryptobridge/infrastructure/logger"
)

var log = logger.WithComponent("orderbook-maintainer")

var (
	ErrResyncLimit       = errors.New("too many sequence gaps")
	errDepthStreamClosed = errors.New("depth stream closed")
)

const (
	MaintainerEventSynced = "synced"
	MaintainerEventGap    = "gap"
)

const defaultFirstUpdateWait = time.Second

type MaintainerConfig struct {
	// Depth is requested for every resync snapshot and kept in every published snapshot.
	Depth           int
	SnapshotTimeout time.Duration
	PublishInterval time.Duration
	// ResyncLimit stops the maintainer after that many gaps in a row. Zero means no limit.
	ResyncLimit int
	// BufferSize bounds the updates held while the book is being resynced, oldest go first.
	BufferSize      int
	RetryBackoffMin time.Duration
	RetryBackoffMax time.Duration
	// FirstUpdateWait is how long the first snapshot waits for the stream to start.
	FirstUpdateWait time.Duration
	OnEvent         func(event string)
}

// OrderBookMaintainer keeps a LocalOrderBook in sync with a depth stream and hands a
// snapshot of it to publish whenever it changed, at most once per PublishInterval.
type OrderBookMaintainer struct {
	key       MarketKey
	syncAPI   ProviderAdapter
	streamAPI ProviderStreamAPI
	publish   func(*OrderBookSnapshot)
	cfg       MaintainerConfig

	mu               sync.Mutex
	depthUpdateQueue deque.Deque[*OrderBookUpdate]
	wake             chan struct{}

	// book is owned by the Run goroutine
	book    *LocalOrderBook
	synced  atomic.Bool
	resyncs int

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewOrderBookMaintainer(
	key MarketKey,
	syncAPI ProviderAdapter,
	streamAPI ProviderStreamAPI,
	publish func(*OrderBookSnapshot),
	cfg MaintainerConfig,
) *OrderBookMaintainer {
	if cfg.Depth <= 0 {
		cfg.Depth = 100
	}
	if cfg.SnapshotTimeout <= 0 {
		cfg.SnapshotTimeout = 5 * time.Second
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = 100 * time.Millisecond
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.FirstUpdateWait <= 0 {
		cfg.FirstUpdateWait = defaultFirstUpdateWait
	}
	if cfg.OnEvent == nil {
		cfg.OnEvent = func(string) {}
	}

	return &OrderBookMaintainer{
		key:       key,
		syncAPI:   syncAPI,
		streamAPI: streamAPI,
		publish:   publish,
		cfg:       cfg,
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Synced reports whether the book currently follows the stream without gaps.
func (m *OrderBookMaintainer) Synced() bool {
	return m.synced.Load()
}

func (m *OrderBookMaintainer) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
}

// Done is closed when Run returns.
func (m *OrderBookMaintainer) Done() <-chan struct{} {
	return m.done
}

// Run subscribes to the depth stream and maintains the book until ctx ends, Stop is
// called, the stream closes or ResyncLimit is exceeded. It returns why it stopped,
// nil after Stop.
func (m *OrderBookMaintainer) Run(ctx context.Context) error {
	defer close(m.done)

	symbol := m.key.Symbol
	subscription, err := m.streamAPI.DepthDiffStream(ctx, &symbol)
	if err != nil {
		return fmt.Errorf("subscribe to depth stream: %w", err)
	}
	defer subscription.Unsubscribe()

	streamDone := make(chan struct{})
	go m.runStreamSubscriber(subscription, streamDone)

	// the snapshot has to be newer than the first buffered update, give the stream a moment
	firstUpdate := time.NewTimer(m.cfg.FirstUpdateWait)
	select {
	case <-m.wake:
		m.signal()
	case <-firstUpdate.C:
	case <-ctx.Done():
	case <-m.stop:
	}
	firstUpdate.Stop()

	b := &backoff.Backoff{
		Min:    m.cfg.RetryBackoffMin,
		Max:    m.cfg.RetryBackoffMax,
		Factor: 2,
		Jitter: true,
	}

	ticker := time.NewTicker(m.cfg.PublishInterval)
	defer ticker.Stop()
	dirty := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.stop:
			return nil
		default:
		}

		if !m.synced.Load() {
			if err := m.resync(ctx); err != nil {
				delay := b.Duration()
				log.WithField("market", m.key.String()).WithField("delay", delay).WithError(err).Warn("resync failed")
				if !m.sleep(ctx, streamDone, delay) {
					return m.stopReason(ctx, streamDone)
				}
				continue
			}
			b.Reset()

			if _, err := m.applyQueued(); err != nil {
				return err
			}
			if m.synced.Load() {
				m.publishSnapshot()
				dirty = false
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.stop:
			return nil
		case <-streamDone:
			return errDepthStreamClosed
		case <-m.wake:
			applied, err := m.applyQueued()
			if err != nil {
				return err
			}
			dirty = dirty || applied
		case <-ticker.C:
			if dirty && m.synced.Load() {
				m.publishSnapshot()
				dirty = false
			}
		}
	}
}

func (m *OrderBookMaintainer) resync(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.SnapshotTimeout)
	defer cancel()

	symbol := m.key.Symbol
	snapshot, err := m.syncAPI.FetchOrderBook(ctx, &symbol, m.cfg.Depth)
	if err != nil {
		return err
	}

	m.book = NewLocalOrderBook(m.key.Provider, &symbol, snapshot)
	m.synced.Store(true)
	m.cfg.OnEvent(MaintainerEventSynced)
	log.WithField("market", m.key.String()).WithField("lastUpdateId", snapshot.LastUpdateId).Debug("local order book synced")
	return nil
}

// applyQueued applies buffered updates until the queue is empty or a gap is found.
// On a gap the offending update goes back to the front of the queue and the book is marked unsynced.
func (m *OrderBookMaintainer) applyQueued() (applied bool, err error) {
	for m.synced.Load() {
		m.mu.Lock()
		if m.depthUpdateQueue.Len() == 0 {
			m.mu.Unlock()
			return applied, nil
		}
		update := m.depthUpdateQueue.PopFront()
		m.mu.Unlock()

		err := m.streamAPI.IsValidUpd(update, m.book.LastUpdateID())
		switch {
		case err == nil:
			m.book.ApplyUpdate(update)
			m.resyncs = 0
			applied = true
		case errors.Is(err, ErrOrderBookUpdateIsOutdated):
		case errors.Is(err, ErrOrderBookUpdateIsOutOfSequence):
			m.mu.Lock()
			m.depthUpdateQueue.PushFront(update)
			m.mu.Unlock()

			m.synced.Store(false)
			m.resyncs++
			m.cfg.OnEvent(MaintainerEventGap)
			log.WithFields(logger.Fields{
				"market":       m.key.String(),
				"lastUpdateId": m.book.LastUpdateID(),
				"first":        update.SequenceStart,
			}).Info("gap in depth stream, resyncing")

			if m.cfg.ResyncLimit > 0 && m.resyncs > m.cfg.ResyncLimit {
				return applied, fmt.Errorf("%w: %d", ErrResyncLimit, m.resyncs)
			}
			return applied, nil
		default:
			return applied, err
		}
	}
	return applied, nil
}

func (m *OrderBookMaintainer) publishSnapshot() {
	snapshot, err := m.book.TakeSnapshot(m.cfg.Depth)
	if err != nil {
		log.WithField("market", m.key.String()).WithError(err).Warn("local order book is broken, resyncing")
		m.synced.Store(false)
		return
	}
	m.publish(snapshot)
}

func (m *OrderBookMaintainer) runStreamSubscriber(subscription *Subscription[*OrderBookUpdate], streamDone chan struct{}) {
	defer close(streamDone)

	for update := range subscription.Stream {
		m.mu.Lock()
		m.depthUpdateQueue.PushBack(update)
		for m.depthUpdateQueue.Len() > m.cfg.BufferSize {
			m.depthUpdateQueue.PopFront()
		}
		m.mu.Unlock()
		m.signal()
	}
}

func (m *OrderBookMaintainer) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *OrderBookMaintainer) sleep(ctx context.Context, streamDone <-chan struct{}, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
	case <-m.stop:
	case <-streamDone:
	}
	return false
}

func (m *OrderBookMaintainer) stopReason(ctx context.Context, streamDone <-chan struct{}) error {
	select {
	case <-m.stop:
		return nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-streamDone:
		return errDepthStreamClosed
	default:
	}
	return nil
}
