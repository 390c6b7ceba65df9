package domain

import (
	"fmt"
	"strings"
)

var marketSeparators = []string{"/", "_"}

type MarketSymbol struct {
	BaseAsset  string
	QuoteAsset string
}

func NewMarketSymbol(base string, quote string) (*MarketSymbol, error) {
	base = strings.ToLower(strings.TrimSpace(base))
	quote = strings.ToLower(strings.TrimSpace(quote))
	if base == "" || quote == "" {
		return nil, fmt.Errorf("%w: base and quote must not be empty", ErrInvalidArgument)
	}
	if base == quote {
		return nil, fmt.Errorf("%w: base and quote must be different", ErrInvalidArgument)
	}
	return &MarketSymbol{
		BaseAsset:  base,
		QuoteAsset: quote,
	}, nil
}

// NewMarketSymbolFromString parses pair notation such as "btc/usdt" or "BTC_USDT".
func NewMarketSymbolFromString(s string) (*MarketSymbol, error) {
	for _, sep := range marketSeparators {
		if !strings.Contains(s, sep) {
			continue
		}

		split := strings.Split(s, sep)
		if len(split) != 2 {
			return nil, fmt.Errorf("%w: invalid market symbol %q", ErrInvalidArgument, s)
		}
		return NewMarketSymbol(split[0], split[1])
	}

	return nil, fmt.Errorf("%w: invalid market symbol %q, use / or _ as a separator", ErrInvalidArgument, s)
}

func (ms *MarketSymbol) Join(separator string) string {
	return fmt.Sprintf("%s%s%s", ms.BaseAsset, separator, ms.QuoteAsset)
}

func (ms *MarketSymbol) String() string {
	return ms.Join("_")
}

func (ms *MarketSymbol) Equal(other *MarketSymbol) bool {
	return ms.BaseAsset == other.BaseAsset && ms.QuoteAsset == other.QuoteAsset
}

// MarketKey identifies one market on one provider.
type MarketKey struct {
	Provider string
	Symbol   MarketSymbol
}

func NewMarketKey(provider string, symbol *MarketSymbol) MarketKey {
	return MarketKey{Provider: strings.ToLower(provider), Symbol: *symbol}
}

func (k MarketKey) String() string {
	return fmt.Sprintf("%s-%s", k.Provider, k.Symbol.String())
}
