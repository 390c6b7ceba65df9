package provider

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spooky-finn/cryptobridge/config"
	"github.com/spooky-finn/cryptobridge/domain"
	"github.com/spooky-finn/cryptobridge/infrastructure/logger"
	"github.com/spooky-finn/cryptobridge/provider/binance"
	"github.com/spooky-finn/cryptobridge/provider/gateio"
	"github.com/spooky-finn/cryptobridge/provider/huobi"
	"github.com/spooky-finn/cryptobridge/provider/kucoin"
)

var log = logger.WithComponent("provider-registry")

// Registry maps provider identifiers to adapters. It is filled once and never mutated.
type Registry struct {
	adapters map[string]domain.ProviderAdapter
	names    []string
}

func NewRegistry(adapters ...domain.ProviderAdapter) (*Registry, error) {
	r := &Registry{adapters: make(map[string]domain.ProviderAdapter, len(adapters))}
	for _, adapter := range adapters {
		name := strings.ToLower(adapter.Name())
		if name == "" {
			return nil, fmt.Errorf("provider adapter without a name")
		}
		if _, ok := r.adapters[name]; ok {
			return nil, fmt.Errorf("provider %q registered twice", name)
		}
		r.adapters[name] = adapter
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

type factory func(cfg config.ProviderConfig) domain.ProviderAdapter

var factories = map[string]factory{
	kucoin.Name: func(cfg config.ProviderConfig) domain.ProviderAdapter {
		return kucoin.NewKucoinSyncAPI(kucoin.Config{
			BaseURL:       cfg.BaseURL,
			ApiKey:        cfg.ApiKey,
			ApiSecret:     cfg.ApiSecret,
			ApiPassphrase: cfg.ApiPassphrase,
			RPS:           cfg.RPS,
			Burst:         cfg.Burst,
			MaxWait:       cfg.MaxWait,
		})
	},
	binance.Name: func(cfg config.ProviderConfig) domain.ProviderAdapter {
		return binance.NewBinanceSyncAPI(binance.Config{
			BaseURL:   cfg.BaseURL,
			StreamURL: cfg.StreamURL,
			RPS:       cfg.RPS,
			Burst:     cfg.Burst,
			MaxWait:   cfg.MaxWait,
		})
	},
	huobi.Name: func(cfg config.ProviderConfig) domain.ProviderAdapter {
		return huobi.NewHuobiSyncAPI(huobi.Config{
			Endpoint: cfg.BaseURL,
			RPS:      cfg.RPS,
			Burst:    cfg.Burst,
			MaxWait:  cfg.MaxWait,
		})
	},
	gateio.Name: func(cfg config.ProviderConfig) domain.ProviderAdapter {
		return gateio.NewGateioSyncAPI(gateio.Config{
			BaseURL: cfg.BaseURL,
			RPS:     cfg.RPS,
			Burst:   cfg.Burst,
			MaxWait: cfg.MaxWait,
		})
	},
}

// NewRegistryFromConfig builds the adapters listed in providers.enabled.
func NewRegistryFromConfig(cfg config.ProvidersConfig) (*Registry, error) {
	adapters := make([]domain.ProviderAdapter, 0, len(cfg.Enabled))
	for _, name := range cfg.Enabled {
		build, ok := factories[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
		}
		providerCfg, _ := cfg.Get(name)
		adapters = append(adapters, build(providerCfg))
	}

	r, err := NewRegistry(adapters...)
	if err != nil {
		return nil, err
	}
	log.WithField("providers", r.Names()).Info("provider adapters ready")
	return r, nil
}

// Lookup resolves a caller supplied provider identifier, case-insensitively.
func (r *Registry) Lookup(name string) (domain.ProviderAdapter, bool) {
	adapter, ok := r.adapters[strings.ToLower(strings.TrimSpace(name))]
	return adapter, ok
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Close releases adapters holding long lived connections.
func (r *Registry) Close() {
	for name, adapter := range r.adapters {
		closer, ok := adapter.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			log.WithField("provider", name).WithError(err).Warn("failed to close provider adapter")
		}
	}
}
