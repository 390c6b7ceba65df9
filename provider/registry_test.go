package provider

import (
	"context"
	"testing"

	"github.com/spooky-finn/cryptobridge/config"
	"github.com/spooky-finn/cryptobridge/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedAdapter struct {
	name   string
	closed bool
}

func (a *namedAdapter) Name() string { return a.name }

func (a *namedAdapter) FetchOrderBook(context.Context, *domain.MarketSymbol, int) (*domain.OrderBookSnapshot, error) {
	return nil, domain.ErrUnsupportedMarket
}

func (a *namedAdapter) Close() error {
	a.closed = true
	return nil
}

func TestRegistry_Lookup(t *testing.T) {
	kucoin := &namedAdapter{name: "kucoin"}
	binance := &namedAdapter{name: "binance"}
	r, err := NewRegistry(kucoin, binance)
	require.NoError(t, err)

	adapter, ok := r.Lookup("KuCoin ")
	require.True(t, ok)
	assert.Same(t, kucoin, adapter)

	_, ok = r.Lookup("ghost")
	assert.False(t, ok)

	assert.Equal(t, []string{"binance", "kucoin"}, r.Names())
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(&namedAdapter{name: "kucoin"}, &namedAdapter{name: "KUCOIN"})
	assert.Error(t, err)

	_, err = NewRegistry(&namedAdapter{})
	assert.Error(t, err)
}

func TestRegistry_Close(t *testing.T) {
	a := &namedAdapter{name: "huobi"}
	r, err := NewRegistry(a)
	require.NoError(t, err)

	r.Close()
	assert.True(t, a.closed)
}

func TestNewRegistryFromConfig(t *testing.T) {
	r, err := NewRegistryFromConfig(config.ProvidersConfig{Enabled: config.KnownProviders})
	require.NoError(t, err)
	assert.Equal(t, []string{"binance", "gateio", "huobi", "kucoin"}, r.Names())

	for _, name := range config.KnownProviders {
		adapter, ok := r.Lookup(name)
		require.True(t, ok)
		assert.Equal(t, name, adapter.Name())
	}

	_, err = NewRegistryFromConfig(config.ProvidersConfig{Enabled: []string{"ghost"}})
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}
