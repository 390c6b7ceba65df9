package domain

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	LiveBookEventStarted = "started"
	LiveBookEventStopped = "stopped"
	LiveBookEventIdle    = "idle"
)

type OrderBookStorageConfig struct {
	// HotAfter is how many requests within one idle window start a live book for a market.
	HotAfter int
	// MaxBooks caps the live books, further markets keep being served from snapshots.
	MaxBooks    int
	IdleTimeout time.Duration
	Maintainer  MaintainerConfig
	OnEvent     func(provider, event string)
	Clock       func() time.Time
}

type liveBook struct {
	maintainer *OrderBookMaintainer
	lastUsed   time.Time
}

// OrderBookStorage owns the live order books. A book is started for a market once it is
// requested often enough and stopped once nobody asked for it during IdleTimeout.
type OrderBookStorage struct {
	cfg OrderBookStorageConfig
	now func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	books map[MarketKey]*liveBook
	hits  map[MarketKey]int
}

func NewOrderBookStorage(cfg OrderBookStorageConfig) *OrderBookStorage {
	if cfg.HotAfter <= 0 {
		cfg.HotAfter = 1
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}
	if cfg.OnEvent == nil {
		cfg.OnEvent = func(string, string) {}
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &OrderBookStorage{
		cfg:    cfg,
		now:    now,
		ctx:    ctx,
		cancel: cancel,
		books:  make(map[MarketKey]*liveBook),
		hits:   make(map[MarketKey]int),
	}
}

// Touch records a request for key. Once the market is hot a maintainer is started in the
// background and publish receives its snapshots. Touch reports whether a live book exists.
func (s *OrderBookStorage) Touch(
	key MarketKey, syncAPI ProviderAdapter, streamAPI ProviderStreamAPI, publish func(*OrderBookSnapshot),
) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return false
	}

	now := s.now()
	if book, ok := s.books[key]; ok {
		book.lastUsed = now
		return true
	}

	s.hits[key]++
	if s.hits[key] < s.cfg.HotAfter {
		return false
	}
	if s.cfg.MaxBooks > 0 && len(s.books) >= s.cfg.MaxBooks {
		return false
	}
	delete(s.hits, key)

	maintainerCfg := s.cfg.Maintainer
	onEvent := s.cfg.OnEvent
	maintainerCfg.OnEvent = func(event string) { onEvent(key.Provider, event) }
	m := NewOrderBookMaintainer(key, syncAPI, streamAPI, publish, maintainerCfg)
	s.books[key] = &liveBook{maintainer: m, lastUsed: now}

	s.wg.Add(1)
	go s.run(key, m)

	onEvent(key.Provider, LiveBookEventStarted)
	log.WithField("market", key.String()).Info("starting live order book")
	return true
}

func (s *OrderBookStorage) run(key MarketKey, m *OrderBookMaintainer) {
	defer s.wg.Done()

	err := m.Run(s.ctx)

	s.mu.Lock()
	if book, ok := s.books[key]; ok && book.maintainer == m {
		delete(s.books, key)
	}
	s.mu.Unlock()

	s.cfg.OnEvent(key.Provider, LiveBookEventStopped)
	entry := log.WithField("market", key.String())
	if err != nil && !errors.Is(err, context.Canceled) {
		entry.WithError(err).Warn("live order book stopped")
		return
	}
	entry.Info("live order book stopped")
}

// Synced reports whether key has a live book that currently follows its stream.
func (s *OrderBookStorage) Synced(key MarketKey) bool {
	s.mu.Lock()
	book, ok := s.books[key]
	s.mu.Unlock()
	return ok && book.maintainer.Synced()
}

func (s *OrderBookStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}

// StopIdle stops the books nobody asked for during IdleTimeout and starts a new request
// counting window. It returns how many books were stopped.
func (s *OrderBookStorage) StopIdle() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	stopped := 0
	for key, book := range s.books {
		if now.Sub(book.lastUsed) < s.cfg.IdleTimeout {
			continue
		}
		book.maintainer.Stop()
		delete(s.books, key)
		s.cfg.OnEvent(key.Provider, LiveBookEventIdle)
		stopped++
	}
	s.hits = make(map[MarketKey]int)
	return stopped
}

// StartReaper calls StopIdle every interval until Close.
func (s *OrderBookStorage) StartReaper(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if n := s.StopIdle(); n > 0 {
					log.WithField("stopped", n).Debug("stopped idle live order books")
				}
			}
		}
	}()
}

// Close stops every live book and waits for them to unsubscribe.
func (s *OrderBookStorage) Close() {
	// under mu so no Touch adds to wg once Wait has started
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
}
