package domain_test

import (
	"testing"

	"github.com/spooky-finn/cryptobridge/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewMarketSymbol(t *testing.T) {
	tests := []struct {
		name        string
		base, quote string
		expectError bool
	}{
		{"ValidSymbol", "BTC", "USDT", false},
		{"EqualBaseQuote", "ETH", "ETH", true},
		{"EqualIgnoringCase", "eth", "ETH", true},
		{"EmptyBase", "", "USDT", true},
		{"EmptyQuote", "BTC", "", true},
		{"BlankBase", "  ", "USDT", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewMarketSymbol(tt.base, tt.quote)

			if tt.expectError {
				assert.ErrorIs(t, err, domain.ErrInvalidArgument, "NewMarketSymbol() should return an error")
			} else {
				assert.NoError(t, err, "NewMarketSymbol() should not return an error")
			}
		})
	}
}

func TestNewSymbolFromString(t *testing.T) {
	tests := []struct {
		name        string
		symbol      string
		expected    string
		expectError bool
	}{
		{"Underscore", "BTC_USDT", "btc_usdt", false},
		{"Slash", "btc/usdt", "btc_usdt", false},
		{"MixedCase", "Trx/BTC", "trx_btc", false},
		{"Dash", "ETH-USD", "", true},
		{"TooManyParts", "eth/usd/t", "", true},
		{"MissingQuote", "eth/", "", true},
		{"EmptyString", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms, err := domain.NewMarketSymbolFromString(tt.symbol)

			if tt.expectError {
				assert.ErrorIs(t, err, domain.ErrInvalidArgument, "NewSymbolFromString() should return an error")
				return
			}
			assert.NoError(t, err, "NewSymbolFromString() should not return an error")
			assert.Equal(t, tt.expected, ms.String())
		})
	}
}

func TestMarketSymbol_Join(t *testing.T) {
	ms := domain.MarketSymbol{BaseAsset: "btc", QuoteAsset: "usdt"}

	assert.Equal(t, "btc-usdt", ms.Join("-"), "Join() result should be equal to expected")
	assert.Equal(t, "btcusdt", ms.Join(""), "Join() result should be equal to expected")
}

func TestMarketSymbol_Equal(t *testing.T) {
	ms1 := domain.MarketSymbol{BaseAsset: "btc", QuoteAsset: "usdt"}
	ms2 := domain.MarketSymbol{BaseAsset: "btc", QuoteAsset: "usdt"}
	ms3 := domain.MarketSymbol{BaseAsset: "eth", QuoteAsset: "usdt"}

	assert.True(t, ms1.Equal(&ms2), "Equal() should return true for equal symbols")
	assert.False(t, ms1.Equal(&ms3), "Equal() should return false for different symbols")
}

func TestMarketKey_String(t *testing.T) {
	ms, err := domain.NewMarketSymbol("BTC", "USDT")
	assert.NoError(t, err)

	key := domain.NewMarketKey("KuCoin", ms)

	assert.Equal(t, "kucoin-btc_usdt", key.String())
	assert.Equal(t, key, domain.NewMarketKey("kucoin", ms), "keys built from equal input should be comparable")
}
