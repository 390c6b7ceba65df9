// Package cache keeps the latest normalised order book per market and collapses
// concurrent fetches of the same market into one upstream call.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spooky-finn/cryptobridge/domain"
	"github.com/spooky-finn/cryptobridge/infrastructure/logger"
)

var log = logger.WithComponent("snapshot-cache")

var errEmptyPopulate = errors.New("populate returned no snapshot")

type Result string

const (
	ResultHit    Result = "hit"
	ResultMiss   Result = "miss"
	ResultShared Result = "shared"
)

// Populate fetches a fresh snapshot. It runs detached from the caller that triggered it.
type Populate func(ctx context.Context) (*domain.OrderBookSnapshot, error)

type Options struct {
	// Grace is how long an expired entry is kept before the sweeper drops it.
	Grace time.Duration
	// OnResult is called once per GetOrPopulate with how the request was served.
	OnResult func(Result)
	Clock    func() time.Time
}

type SnapshotCache struct {
	slots   sync.Map // MarketKey -> *slot
	entries atomic.Int64

	grace    time.Duration
	onResult func(Result)
	now      func() time.Time

	evictions evictionQueue
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

type slot struct {
	mu        sync.Mutex
	snapshot  *domain.OrderBookSnapshot
	expiresAt time.Time
	inflight  *flight
	evicted   bool
	// queued is set while the eviction heap holds an entry for this slot.
	queued bool
}

type flight struct {
	done     chan struct{}
	snapshot *domain.OrderBookSnapshot
	err      error
}

func NewSnapshotCache(opts Options) *SnapshotCache {
	c := &SnapshotCache{
		grace:    opts.Grace,
		onResult: opts.OnResult,
		now:      opts.Clock,
		done:     make(chan struct{}),
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.onResult == nil {
		c.onResult = func(Result) {}
	}
	return c
}

// GetOrPopulate returns the cached snapshot for key while it is younger than ttl.
// Otherwise it runs populate, or attaches to the populate already running for key.
// Failed populates are not cached. Cancelling ctx only abandons the wait of this caller.
func (c *SnapshotCache) GetOrPopulate(
	ctx context.Context, key domain.MarketKey, ttl time.Duration, populate Populate,
) (*domain.OrderBookSnapshot, error) {
	for {
		s := c.slotFor(key)

		s.mu.Lock()
		if s.evicted {
			s.mu.Unlock()
			continue
		}

		if s.snapshot != nil && c.now().Before(s.expiresAt) {
			snapshot := s.snapshot
			s.mu.Unlock()
			c.onResult(ResultHit)
			return snapshot, nil
		}

		f := s.inflight
		result := ResultShared
		if f == nil {
			f = &flight{done: make(chan struct{})}
			s.inflight = f
			result = ResultMiss
			go c.populate(context.WithoutCancel(ctx), key, s, f, ttl, populate)
		}
		s.mu.Unlock()

		c.onResult(result)
		return c.wait(ctx, f)
	}
}

// Invalidate drops the cached snapshot of key. A populate in flight is left alone.
func (c *SnapshotCache) Invalidate(key domain.MarketKey) {
	v, ok := c.slots.Load(key)
	if !ok {
		return
	}

	s := v.(*slot)
	s.mu.Lock()
	s.snapshot = nil
	s.expiresAt = time.Time{}
	schedule := c.markQueued(s)
	s.mu.Unlock()

	if schedule {
		c.evictions.push(key, s, c.now().Add(c.grace))
	}
}

// Store replaces the snapshot of key with one produced outside GetOrPopulate, a live
// order book for instance. A populate already in flight still overwrites it on completion.
func (c *SnapshotCache) Store(key domain.MarketKey, snapshot *domain.OrderBookSnapshot, ttl time.Duration) {
	if snapshot == nil {
		return
	}

	for {
		s := c.slotFor(key)

		s.mu.Lock()
		if s.evicted {
			s.mu.Unlock()
			continue
		}
		s.snapshot = snapshot
		s.expiresAt = c.now().Add(ttl)
		deadline := s.expiresAt.Add(c.grace)
		schedule := c.markQueued(s)
		s.mu.Unlock()

		if schedule {
			c.evictions.push(key, s, deadline)
		}
		return
	}
}

// Len returns the number of markets currently tracked.
func (c *SnapshotCache) Len() int {
	return int(c.entries.Load())
}

func (c *SnapshotCache) slotFor(key domain.MarketKey) *slot {
	if v, ok := c.slots.Load(key); ok {
		return v.(*slot)
	}

	v, loaded := c.slots.LoadOrStore(key, &slot{})
	if !loaded {
		c.entries.Add(1)
	}
	return v.(*slot)
}

// markQueued reports whether s still needs an eviction entry and marks it as having one.
// Callers hold s.mu.
func (c *SnapshotCache) markQueued(s *slot) bool {
	if s.queued {
		return false
	}
	s.queued = true
	return true
}

func (c *SnapshotCache) wait(ctx context.Context, f *flight) (*domain.OrderBookSnapshot, error) {
	select {
	case <-f.done:
		return f.snapshot, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *SnapshotCache) populate(
	ctx context.Context, key domain.MarketKey, s *slot, f *flight, ttl time.Duration, populate Populate,
) {
	snapshot, err := c.runPopulate(ctx, populate)
	if err == nil && snapshot == nil {
		err = errEmptyPopulate
	}

	now := c.now()
	s.mu.Lock()
	if err == nil {
		s.snapshot = snapshot
		s.expiresAt = now.Add(ttl)
	}
	s.inflight = nil
	deadline := s.expiresAt.Add(c.grace)
	if err != nil {
		deadline = now.Add(c.grace)
	}
	schedule := c.markQueued(s)
	s.mu.Unlock()

	if err != nil {
		snapshot = nil
		log.WithField("market", key.String()).WithError(err).Debug("populate failed, nothing cached")
	}

	if schedule {
		c.evictions.push(key, s, deadline)
	}

	f.snapshot, f.err = snapshot, err
	close(f.done)
}

func (c *SnapshotCache) runPopulate(ctx context.Context, populate Populate) (snapshot *domain.OrderBookSnapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("populate panicked: %v", r)
		}
	}()
	return populate(ctx)
}
