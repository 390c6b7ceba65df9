package cache

import (
	"container/heap"
	"sync"
	"time"

	"github.com/spooky-finn/cryptobridge/domain"
)

type eviction struct {
	key      domain.MarketKey
	slot     *slot
	deadline time.Time
}

// evictionHeap is a min-heap on deadline. Keys with different TTLs interleave freely.
type evictionHeap []eviction

func (h evictionHeap) Len() int           { return len(h) }
func (h evictionHeap) Less(i, j int) bool { return h[i].deadline.Before(h[j].deadline) }
func (h evictionHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *evictionHeap) Push(x any) { *h = append(*h, x.(eviction)) }

func (h *evictionHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = eviction{}
	*h = old[:n-1]
	return e
}

type evictionQueue struct {
	mu    sync.Mutex
	items evictionHeap
}

func (q *evictionQueue) push(key domain.MarketKey, s *slot, deadline time.Time) {
	q.mu.Lock()
	heap.Push(&q.items, eviction{key: key, slot: s, deadline: deadline})
	q.mu.Unlock()
}

func (q *evictionQueue) popDue(now time.Time) []eviction {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []eviction
	for q.items.Len() > 0 && !q.items[0].deadline.After(now) {
		due = append(due, heap.Pop(&q.items).(eviction))
	}
	return due
}

func (q *evictionQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// StartSweeper removes entries that expired more than Grace ago, every interval.
func (c *SnapshotCache) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-c.done:
				return
			case <-ticker.C:
				if n := c.Sweep(); n > 0 {
					log.WithField("evicted", n).Debug("swept expired snapshots")
				}
			}
		}
	}()
}

// Stop terminates the sweeper goroutine.
func (c *SnapshotCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
	c.wg.Wait()
}

// Sweep evicts due entries and returns how many markets were dropped.
// Entries refreshed since they were queued go back on the heap at their new deadline.
func (c *SnapshotCache) Sweep() int {
	now := c.now()
	evicted := 0

	for _, e := range c.evictions.popDue(now) {
		s := e.slot

		s.mu.Lock()
		s.queued = false
		if s.evicted {
			s.mu.Unlock()
			continue
		}

		deadline := s.expiresAt.Add(c.grace)
		if s.inflight != nil {
			deadline = now.Add(c.grace)
		}
		expired := !deadline.After(now)
		if expired {
			s.evicted = true
		} else {
			s.queued = true
		}
		s.mu.Unlock()

		if !expired {
			c.evictions.push(e.key, s, deadline)
			continue
		}
		if c.slots.CompareAndDelete(e.key, s) {
			c.entries.Add(-1)
			evicted++
		}
	}

	return evicted
}
