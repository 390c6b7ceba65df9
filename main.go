package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spooky-finn/cryptobridge/cache"
	"github.com/spooky-finn/cryptobridge/config"
	"github.com/spooky-finn/cryptobridge/domain"
	"github.com/spooky-finn/cryptobridge/infrastructure/logger"
	promclient "github.com/spooky-finn/cryptobridge/infrastructure/prometheus"
	"github.com/spooky-finn/cryptobridge/provider"
	"github.com/spooky-finn/cryptobridge/rpc"
	"github.com/spooky-finn/cryptobridge/usecase"
)

const shutdownTimeout = 10 * time.Second

var log = logger.WithComponent("main")

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	if err := logger.Setup(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		log.WithError(err).Fatal("failed to set up logging")
	}
	if cfg.Debug {
		logger.Logger().SetLevel(logrus.DebugLevel)
	}

	registry, err := provider.NewRegistryFromConfig(cfg.Providers)
	if err != nil {
		log.WithError(err).Fatal("failed to build provider adapters")
	}
	defer registry.Close()

	metrics := promclient.NewMetrics()

	snapshotCache := cache.NewSnapshotCache(cache.Options{
		Grace:    cfg.Cache.Grace,
		OnResult: func(r cache.Result) { metrics.CacheResult(string(r)) },
	})
	metrics.WatchCacheEntries(snapshotCache.Len)
	snapshotCache.StartSweeper(cfg.Cache.SweepInterval)
	defer snapshotCache.Stop()

	providerTTL := make(map[string]time.Duration, len(cfg.Providers.Enabled))
	for _, name := range cfg.Providers.Enabled {
		if p, ok := cfg.Providers.Get(name); ok && p.TTL > 0 {
			providerTTL[name] = p.TTL
		}
	}

	useCase := usecase.NewOrderBookSnapshotUseCase(registry, snapshotCache, metrics, usecase.Config{
		FetchDepth:      cfg.Router.FetchDepth,
		UpstreamTimeout: cfg.Router.UpstreamTimeout,
		CacheTTL:        cfg.Cache.TTL,
		ProviderTTL:     providerTTL,
		RetryBackoffMin: cfg.Router.RetryBackoffMin,
		RetryBackoffMax: cfg.Router.RetryBackoffMax,
	})

	if cfg.Live.Enabled {
		liveBooks := domain.NewOrderBookStorage(domain.OrderBookStorageConfig{
			HotAfter:    cfg.Live.HotAfter,
			MaxBooks:    cfg.Live.MaxBooks,
			IdleTimeout: cfg.Live.IdleTimeout,
			Maintainer: domain.MaintainerConfig{
				Depth:           cfg.Router.FetchDepth,
				SnapshotTimeout: cfg.Router.UpstreamTimeout,
				PublishInterval: cfg.Live.PublishInterval,
				ResyncLimit:     cfg.Live.ResyncLimit,
				BufferSize:      cfg.Live.BufferSize,
				RetryBackoffMin: cfg.Router.RetryBackoffMin,
				RetryBackoffMax: cfg.Router.RetryBackoffMax,
			},
			OnEvent: metrics.LiveBookEvent,
		})
		metrics.WatchLiveBooks(liveBooks.Len)
		liveBooks.StartReaper(cfg.Cache.SweepInterval)
		defer liveBooks.Close()

		useCase.EnableLiveBooks(liveBooks)
	}

	if cfg.Metrics.Enabled {
		promServer, err := promclient.StartPromClientServer(cfg.Metrics.Addr, metrics)
		if err != nil {
			log.WithError(err).Fatal("failed to start prometheus server")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = promServer.Shutdown(ctx)
		}()
	}

	grpcServer, err := rpc.NewGRPCServer(rpc.ServerConfig{
		Addr:                 cfg.RPC.Addr,
		CertFile:             cfg.RPC.CertFile,
		KeyFile:              cfg.RPC.KeyFile,
		Reflection:           cfg.RPC.Reflection,
		MaxConcurrentStreams: cfg.RPC.MaxInFlight,
		Providers:            registry.Names(),
		Debug:                cfg.Debug,
	}, useCase, metrics)
	if err != nil {
		log.WithError(err).Fatal("failed to create grpc server")
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			log.WithError(err).Error("grpc server stopped")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	grpcServer.Shutdown(ctx)
}
