package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"solana-liquidity-watch/internal/adapters"
	"solana-liquidity-watch/internal/collector"
	"solana-liquidity-watch/internal/config"
	"solana-liquidity-watch/internal/observability"
	"solana-liquidity-watch/internal/solana"
	"solana-liquidity-watch/internal/storage"
	chstore "solana-liquidity-watch/internal/storage/clickhouse"
	"solana-liquidity-watch/internal/storage/memory"
	pgstore "solana-liquidity-watch/internal/storage/postgres"
)

func main() {
	interval := flag.Duration("interval", collector.DefaultInterval, "Spacing between cycle starts")
	backend := flag.String("storage", config.BackendPostgres, "Storage backend: postgres, clickhouse, or memory")
	marketsPath := flag.String("markets", "config/markets.yaml", "Market descriptor file")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Setup logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Configuration problems are the only errors allowed to kill the
	// process; everything past this point is retried cycle by cycle.
	env, err := config.LoadEnv()
	if err != nil {
		logger.WithError(err).Fatal("configuration error")
	}

	dsn, err := env.RequireDSN(*backend)
	if err != nil {
		logger.WithError(err).Fatal("configuration error")
	}

	descriptors, warnings, err := config.LoadMarkets(*marketsPath)
	if err != nil {
		logger.WithError(err).Fatal("configuration error")
	}
	for _, w := range warnings {
		logger.Warn(w)
	}
	logger.WithField("markets", len(descriptors)).Info("loaded market descriptors")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals; a second signal forces immediate exit.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.WithField("signal", sig).Info("shutting down...")
		cancel()

		select {
		case sig := <-sigCh:
			logger.WithField("signal", sig).Warn("forcing immediate shutdown")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	// Start metrics server if enabled
	metrics := observability.NewMetrics("")
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.WithField("addr", *metricsAddr).Info("starting metrics server")
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("metrics server error")
			}
		}()
	}

	// Create RPC client and probe connectivity. A failed probe is logged,
	// not fatal: a transient RPC outage self-heals on the next cycle.
	rpc := solana.NewHTTPClient(env.RPCURL)
	if slot, err := rpc.GetSlot(ctx); err != nil {
		logger.WithError(err).Warn("RPC connectivity probe failed")
	} else {
		logger.WithField("slot", slot).Info("connected to Solana RPC")
	}

	store, closeStore, err := openStore(ctx, *backend, dsn)
	if err != nil {
		logger.WithError(err).Fatal("connect to storage")
	}
	defer closeStore()

	ads, err := adapters.FromDescriptors(rpc, descriptors, nil)
	if err != nil {
		logger.WithError(err).Fatal("configuration error")
	}
	for _, a := range ads {
		logger.WithField("source", a.Source().String()).Info("registered adapter")
	}

	col := collector.New(collector.Options{
		Adapters: ads,
		Store:    store,
		Interval: *interval,
		Logger:   logger,
		Metrics:  metrics,
	})

	if err := col.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("collector stopped")
	}

	logger.Info("shutdown complete")
}

// openStore connects the chosen storage backend.
func openStore(ctx context.Context, backend, dsn string) (storage.SampleStore, func(), error) {
	switch backend {
	case config.BackendPostgres:
		pool, err := pgstore.NewPool(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return pgstore.NewSampleStore(pool), pool.Close, nil

	case config.BackendClickHouse:
		conn, err := chstore.NewConn(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		return chstore.NewSampleStore(conn), func() { conn.Close() }, nil

	case config.BackendMemory:
		return memory.NewSampleStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
