package domain

import "context"

type Subscription[T any] struct {
	Stream      <-chan T
	Unsubscribe func()
	Topic       string
}

// OrderBookUpdate carries the levels changed between two sequence numbers, both inclusive.
// A zero quantity removes the level.
type OrderBookUpdate struct {
	Symbol        *MarketSymbol
	SequenceStart int64
	SequenceEnd   int64
	Bids          []PriceLevel
	Asks          []PriceLevel
}

// ProviderStreamAPI is implemented by adapters that push incremental depth updates.
type ProviderStreamAPI interface {
	// DepthDiffStream delivers updates for symbol. Stream is closed once Unsubscribe is
	// called or the upstream subscription ends.
	DepthDiffStream(ctx context.Context, symbol *MarketSymbol) (*Subscription[*OrderBookUpdate], error)
	DepthUpdateValidator
}
