package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// UnknownSource is reported instead of a provider name when no data could be fetched.
const UnknownSource = "Unknown"

type OrderBookStatus string

const (
	OrderBookStatus_Ok          OrderBookStatus = "Ok"
	OrderBookStatus_Unavailable OrderBookStatus = "Unavailable"
)

type Side int

const (
	SideBids Side = iota
	SideAsks
)

func (s Side) String() string {
	if s == SideAsks {
		return "asks"
	}
	return "bids"
}

type PriceLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

func NewPriceLevel(price, quantity string) (PriceLevel, error) {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return PriceLevel{}, fmt.Errorf("%w: price %q: %s", ErrUpstreamMalformedResponse, price, err)
	}
	q, err := decimal.NewFromString(quantity)
	if err != nil {
		return PriceLevel{}, fmt.Errorf("%w: quantity %q: %s", ErrUpstreamMalformedResponse, quantity, err)
	}
	return PriceLevel{Price: p, Quantity: q}, nil
}

type OrderBookSnapshot struct {
	Provider     string
	Market       string
	Source       string
	Status       OrderBookStatus
	Reason       string
	LastUpdateId int64
	Bids         []PriceLevel
	Asks         []PriceLevel
	FetchedAt    time.Time
}

// NewOrderBookSnapshot normalises both sides of a freshly fetched book.
func NewOrderBookSnapshot(
	provider string, symbol *MarketSymbol, bids, asks []PriceLevel, lastUpdateId int64, maxDepth int,
) (*OrderBookSnapshot, error) {
	normBids, err := NormalizeLevels(bids, SideBids, maxDepth)
	if err != nil {
		return nil, err
	}
	normAsks, err := NormalizeLevels(asks, SideAsks, maxDepth)
	if err != nil {
		return nil, err
	}

	return &OrderBookSnapshot{
		Provider:     provider,
		Market:       symbol.String(),
		Source:       provider,
		Status:       OrderBookStatus_Ok,
		LastUpdateId: lastUpdateId,
		Bids:         normBids,
		Asks:         normAsks,
		FetchedAt:    time.Now(),
	}, nil
}

// NewUnavailableSnapshot builds the empty book returned when every fetch attempt failed.
func NewUnavailableSnapshot(provider string, symbol *MarketSymbol, reason string) *OrderBookSnapshot {
	return &OrderBookSnapshot{
		Provider:  provider,
		Market:    symbol.String(),
		Source:    UnknownSource,
		Status:    OrderBookStatus_Unavailable,
		Reason:    reason,
		Bids:      []PriceLevel{},
		Asks:      []PriceLevel{},
		FetchedAt: time.Now(),
	}
}

func (s *OrderBookSnapshot) IsAvailable() bool {
	return s.Status == OrderBookStatus_Ok
}

// TakeSnapshot returns a copy holding at most limit levels per side. A limit <= 0 keeps every level.
func (s *OrderBookSnapshot) TakeSnapshot(limit int) *OrderBookSnapshot {
	out := *s
	out.Bids = copyLevels(limitDepth(s.Bids, limit))
	out.Asks = copyLevels(limitDepth(s.Asks, limit))
	return &out
}

// Validate checks the ordering invariant of both sides.
func (s *OrderBookSnapshot) Validate() error {
	if err := validateSide(s.Bids, SideBids); err != nil {
		return err
	}
	return validateSide(s.Asks, SideAsks)
}

// ParsePriceLevels parses [price, quantity, ...] string tuples as exchanges return them.
func ParsePriceLevels(depth [][]string) ([]PriceLevel, error) {
	result := make([]PriceLevel, 0, len(depth))
	for _, level := range depth {
		if len(level) < 2 {
			return nil, fmt.Errorf("%w: price level %v has %d fields", ErrUpstreamMalformedResponse, level, len(level))
		}
		pl, err := NewPriceLevel(level[0], level[1])
		if err != nil {
			return nil, err
		}
		result = append(result, pl)
	}

	return result, nil
}

// NormalizeLevels sorts levels into side order (bids descending, asks ascending),
// merges duplicate prices by summing quantity and keeps the first maxDepth levels.
func NormalizeLevels(levels []PriceLevel, side Side, maxDepth int) ([]PriceLevel, error) {
	depth := make([]PriceLevel, 0, len(levels))
	for _, level := range levels {
		if !level.Price.IsPositive() {
			return nil, fmt.Errorf("%w: non positive price %s", ErrUpstreamMalformedResponse, level.Price)
		}
		if level.Quantity.IsNegative() {
			return nil, fmt.Errorf("%w: negative quantity %s", ErrUpstreamMalformedResponse, level.Quantity)
		}
		depth = append(depth, level)
	}

	sort.SliceStable(depth, func(i, j int) bool {
		return before(side, depth[i].Price, depth[j].Price)
	})

	merged := depth[:0]
	for _, level := range depth {
		last := len(merged) - 1
		if last >= 0 && merged[last].Price.Equal(level.Price) {
			merged[last].Quantity = merged[last].Quantity.Add(level.Quantity)
			continue
		}
		merged = append(merged, level)
	}

	return limitDepth(merged, maxDepth), nil
}

func before(side Side, a, b decimal.Decimal) bool {
	if side == SideAsks {
		return a.LessThan(b)
	}
	return a.GreaterThan(b)
}

func validateSide(depth []PriceLevel, side Side) error {
	for i := 1; i < len(depth); i++ {
		if !before(side, depth[i-1].Price, depth[i].Price) {
			return fmt.Errorf("%s are not strictly ordered at level %d: %s then %s",
				side, i, depth[i-1].Price, depth[i].Price)
		}
	}
	return nil
}

func limitDepth(depth []PriceLevel, limit int) []PriceLevel {
	if limit > 0 && len(depth) > limit {
		return depth[:limit]
	}

	return depth
}

func copyLevels(depth []PriceLevel) []PriceLevel {
	out := make([]PriceLevel, len(depth))
	copy(out, depth)
	return out
}

// SerializePriceLevels renders levels as [price, quantity] strings.
func SerializePriceLevels(depth []PriceLevel) [][]string {
	result := make([][]string, len(depth))
	for i, level := range depth {
		result[i] = []string{level.Price.String(), level.Quantity.String()}
	}

	return result
}
