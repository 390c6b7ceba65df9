package domain

import (
	"sync"
	"time"
)

// LocalOrderBook is the full book of one market, built from a snapshot and kept current
// by applying depth updates on top of it.
type LocalOrderBook struct {
	provider string
	symbol   *MarketSymbol

	updateMx     sync.RWMutex
	bids         map[string]PriceLevel
	asks         map[string]PriceLevel
	lastUpdateId int64
	updatedAt    time.Time
}

func NewLocalOrderBook(provider string, symbol *MarketSymbol, snapshot *OrderBookSnapshot) *LocalOrderBook {
	ob := &LocalOrderBook{
		provider:     provider,
		symbol:       symbol,
		bids:         make(map[string]PriceLevel, len(snapshot.Bids)),
		asks:         make(map[string]PriceLevel, len(snapshot.Asks)),
		lastUpdateId: snapshot.LastUpdateId,
		updatedAt:    snapshot.FetchedAt,
	}
	updateDepth(ob.bids, snapshot.Bids)
	updateDepth(ob.asks, snapshot.Asks)
	return ob
}

func (ob *LocalOrderBook) LastUpdateID() int64 {
	ob.updateMx.RLock()
	defer ob.updateMx.RUnlock()
	return ob.lastUpdateId
}

// ApplyUpdate overwrites every level named in update. Updates the book already holds are ignored.
func (ob *LocalOrderBook) ApplyUpdate(update *OrderBookUpdate) {
	ob.updateMx.Lock()
	defer ob.updateMx.Unlock()

	if update.SequenceEnd <= ob.lastUpdateId {
		return
	}

	updateDepth(ob.bids, update.Bids)
	updateDepth(ob.asks, update.Asks)
	ob.lastUpdateId = update.SequenceEnd
	ob.updatedAt = time.Now()
}

// Depth returns how many levels each side holds.
func (ob *LocalOrderBook) Depth() (bids, asks int) {
	ob.updateMx.RLock()
	defer ob.updateMx.RUnlock()
	return len(ob.bids), len(ob.asks)
}

// TakeSnapshot returns the best limit levels per side, normalised like a fetched book.
func (ob *LocalOrderBook) TakeSnapshot(limit int) (*OrderBookSnapshot, error) {
	ob.updateMx.RLock()
	bids := levelsOf(ob.bids)
	asks := levelsOf(ob.asks)
	lastUpdateId := ob.lastUpdateId
	updatedAt := ob.updatedAt
	ob.updateMx.RUnlock()

	snapshot, err := NewOrderBookSnapshot(ob.provider, ob.symbol, bids, asks, lastUpdateId, limit)
	if err != nil {
		return nil, err
	}
	snapshot.FetchedAt = updatedAt
	return snapshot, nil
}

// levels are keyed by the canonical price string, so 1.10 and 1.1 are the same level
func updateDepth(depth map[string]PriceLevel, levels []PriceLevel) {
	for _, level := range levels {
		key := level.Price.String()
		if level.Quantity.IsZero() {
			delete(depth, key)
			continue
		}
		depth[key] = level
	}
}

func levelsOf(depth map[string]PriceLevel) []PriceLevel {
	result := make([]PriceLevel, 0, len(depth))
	for _, level := range depth {
		result = append(result, level)
	}
	return result
}
