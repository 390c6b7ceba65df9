package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Provider identifiers the gateway knows how to build.
var KnownProviders = []string{"kucoin", "binance", "huobi", "gateio"}

type Config struct {
	Debug     bool
	Log       LogConfig
	RPC       RPCConfig
	Metrics   MetricsConfig
	Cache     CacheConfig
	Router    RouterConfig
	Live      LiveConfig
	Providers ProvidersConfig
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxAgeDays int
}

type RPCConfig struct {
	Addr        string
	CertFile    string
	KeyFile     string
	Reflection  bool
	MaxInFlight uint32
}

func (c RPCConfig) TLSEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

type MetricsConfig struct {
	Enabled bool
	Addr    string
}

type CacheConfig struct {
	TTL           time.Duration
	Grace         time.Duration
	SweepInterval time.Duration
}

type RouterConfig struct {
	FetchDepth      int
	UpstreamTimeout time.Duration
	RetryBackoffMin time.Duration
	RetryBackoffMax time.Duration
}

// LiveConfig controls the order books maintained from depth streams for hot markets.
type LiveConfig struct {
	Enabled         bool
	HotAfter        int
	MaxBooks        int
	IdleTimeout     time.Duration
	PublishInterval time.Duration
	ResyncLimit     int
	BufferSize      int
}

type ProvidersConfig struct {
	Enabled []string
	Kucoin  ProviderConfig
	Binance ProviderConfig
	Huobi   ProviderConfig
	Gateio  ProviderConfig
}

// Get returns the settings of the named provider.
func (c ProvidersConfig) Get(name string) (ProviderConfig, bool) {
	switch name {
	case "kucoin":
		return c.Kucoin, true
	case "binance":
		return c.Binance, true
	case "huobi":
		return c.Huobi, true
	case "gateio":
		return c.Gateio, true
	}
	return ProviderConfig{}, false
}

type ProviderConfig struct {
	BaseURL string
	// StreamURL is the depth stream endpoint of providers that have one.
	StreamURL string
	RPS     float64
	Burst   int
	MaxWait time.Duration
	// TTL overrides cache.ttl for this provider when set.
	TTL time.Duration

	ApiKey        string
	ApiSecret     string
	ApiPassphrase string
}

// Load reads .env (when present), the optional YAML file and CRYPTOBRIDGE_ prefixed
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("CRYPTOBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	path := os.Getenv("CRYPTOBRIDGE_CONFIG")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_age_days", 7)

	v.SetDefault("rpc.addr", ":50051")
	v.SetDefault("rpc.reflection", false)
	v.SetDefault("rpc.max_in_flight", 0)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":8080")

	v.SetDefault("cache.ttl", time.Second)
	v.SetDefault("cache.grace", 30*time.Second)
	v.SetDefault("cache.sweep_interval", 10*time.Second)

	v.SetDefault("router.fetch_depth", 100)
	v.SetDefault("router.upstream_timeout", 5*time.Second)
	v.SetDefault("router.retry_backoff_min", 100*time.Millisecond)
	v.SetDefault("router.retry_backoff_max", time.Second)

	v.SetDefault("live.enabled", true)
	v.SetDefault("live.hot_after", 1)
	v.SetDefault("live.max_books", 50)
	v.SetDefault("live.idle_timeout", 5*time.Minute)
	v.SetDefault("live.publish_interval", 100*time.Millisecond)
	v.SetDefault("live.resync_limit", 10)
	v.SetDefault("live.buffer_size", 1000)

	v.SetDefault("providers.enabled", KnownProviders)
	for _, name := range KnownProviders {
		v.SetDefault("providers."+name+".rps", 10)
		v.SetDefault("providers."+name+".burst", 10)
		v.SetDefault("providers."+name+".max_wait", 200*time.Millisecond)
	}
}

func fromViper(v *viper.Viper) *Config {
	provider := func(name string) ProviderConfig {
		prefix := "providers." + name + "."
		return ProviderConfig{
			BaseURL:       v.GetString(prefix + "base_url"),
			StreamURL:     v.GetString(prefix + "stream_url"),
			RPS:           v.GetFloat64(prefix + "rps"),
			Burst:         v.GetInt(prefix + "burst"),
			MaxWait:       v.GetDuration(prefix + "max_wait"),
			TTL:           v.GetDuration(prefix + "ttl"),
			ApiKey:        v.GetString(prefix + "api_key"),
			ApiSecret:     v.GetString(prefix + "api_secret"),
			ApiPassphrase: v.GetString(prefix + "api_passphrase"),
		}
	}

	return &Config{
		Debug: v.GetBool("debug"),
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
		},
		RPC: RPCConfig{
			Addr:        v.GetString("rpc.addr"),
			CertFile:    v.GetString("rpc.tls.cert_file"),
			KeyFile:     v.GetString("rpc.tls.key_file"),
			Reflection:  v.GetBool("rpc.reflection"),
			MaxInFlight: v.GetUint32("rpc.max_in_flight"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
			Addr:    v.GetString("metrics.addr"),
		},
		Cache: CacheConfig{
			TTL:           v.GetDuration("cache.ttl"),
			Grace:         v.GetDuration("cache.grace"),
			SweepInterval: v.GetDuration("cache.sweep_interval"),
		},
		Router: RouterConfig{
			FetchDepth:      v.GetInt("router.fetch_depth"),
			UpstreamTimeout: v.GetDuration("router.upstream_timeout"),
			RetryBackoffMin: v.GetDuration("router.retry_backoff_min"),
			RetryBackoffMax: v.GetDuration("router.retry_backoff_max"),
		},
		Live: LiveConfig{
			Enabled:         v.GetBool("live.enabled"),
			HotAfter:        v.GetInt("live.hot_after"),
			MaxBooks:        v.GetInt("live.max_books"),
			IdleTimeout:     v.GetDuration("live.idle_timeout"),
			PublishInterval: v.GetDuration("live.publish_interval"),
			ResyncLimit:     v.GetInt("live.resync_limit"),
			BufferSize:      v.GetInt("live.buffer_size"),
		},
		Providers: ProvidersConfig{
			Enabled: splitList(v.GetStringSlice("providers.enabled")),
			Kucoin:  provider("kucoin"),
			Binance: provider("binance"),
			Huobi:   provider("huobi"),
			Gateio:  provider("gateio"),
		},
	}
}

// splitList accepts both a YAML list and a comma separated environment value.
func splitList(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			item = strings.ToLower(strings.TrimSpace(item))
			if item != "" {
				result = append(result, item)
			}
		}
	}
	return result
}

func (c *Config) Validate() error {
	if c.RPC.Addr == "" {
		return errors.New("config: rpc.addr is empty")
	}
	if c.RPC.CertFile != "" && c.RPC.KeyFile == "" || c.RPC.CertFile == "" && c.RPC.KeyFile != "" {
		return errors.New("config: rpc.tls needs both cert_file and key_file")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New("config: metrics.addr is empty")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("config: cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.Grace < 0 {
		return fmt.Errorf("config: cache.grace must not be negative, got %s", c.Cache.Grace)
	}
	if c.Router.FetchDepth < 1 {
		return fmt.Errorf("config: router.fetch_depth must be at least 1, got %d", c.Router.FetchDepth)
	}
	if c.Router.UpstreamTimeout <= 0 {
		return fmt.Errorf("config: router.upstream_timeout must be positive, got %s", c.Router.UpstreamTimeout)
	}
	if c.Live.Enabled {
		if c.Live.HotAfter < 1 {
			return fmt.Errorf("config: live.hot_after must be at least 1, got %d", c.Live.HotAfter)
		}
		if c.Live.PublishInterval <= 0 {
			return fmt.Errorf("config: live.publish_interval must be positive, got %s", c.Live.PublishInterval)
		}
		if c.Live.IdleTimeout <= 0 {
			return fmt.Errorf("config: live.idle_timeout must be positive, got %s", c.Live.IdleTimeout)
		}
	}
	if len(c.Providers.Enabled) == 0 {
		return errors.New("config: providers.enabled is empty")
	}
	for _, name := range c.Providers.Enabled {
		if _, ok := c.Providers.Get(name); !ok {
			return fmt.Errorf("config: unknown provider %q in providers.enabled", name)
		}
	}
	return nil
}
