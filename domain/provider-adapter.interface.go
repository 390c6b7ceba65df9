package domain

import "context"

// ProviderAdapter fetches and normalises order books from one upstream exchange.
type ProviderAdapter interface {
	Name() string
	// FetchOrderBook returns at most maxDepth levels per side or a *FetchError.
	FetchOrderBook(ctx context.Context, symbol *MarketSymbol, maxDepth int) (*OrderBookSnapshot, error)
}
