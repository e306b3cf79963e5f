package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"PriceLens/internal/collector"
	"PriceLens/internal/config"
	"PriceLens/internal/dashboard"
	"PriceLens/internal/metrics"
	"PriceLens/internal/pipeline"
	"PriceLens/internal/predictor"
	"PriceLens/internal/recorder"
)

// app holds the long-lived components shared by every command.
type app struct {
	cfg      *config.Config
	builder  *dashboard.Builder
	recorder recorder.Recorder
	cache    *collector.CachingFetcher
	registry *prometheus.Registry
	closers  []func() error
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// newApp wires the components. Optional backends (Redis, SQLite, the model)
// degrade with a warning instead of failing start-up.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(a.registry)
	m.TrackSymbols(cfg.Schedule.Watchlist...)

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	if rdb := a.openRedis(ctx); rdb != nil {
		a.cache = collector.NewCachingFetcher(rdb, cfg.Redis.TTL, fetcher, "prices")
		fetcher = a.cache
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	a.recorder = a.openRecorder()

	params := pipeline.Params{
		SplitFraction: cfg.Pipeline.SplitFraction,
		WindowLength:  cfg.Pipeline.WindowLength,
	}
	pred, err := predictor.Load(ctx, cfg.Model.Path)
	if err != nil {
		log.Printf("[WARN] model not loaded, forecasts disabled: %v", err)
		pred = nil
	} else {
		log.Printf("[INFO] model loaded: %s (window %d)", pred.Name(), pred.InputLength())
		if pred.InputLength() != params.WindowLength {
			log.Printf("[WARN] pipeline.window_length %d does not match the model, using %d",
				params.WindowLength, pred.InputLength())
			params.WindowLength = pred.InputLength()
		}
	}

	a.builder = dashboard.NewBuilder(collector.NewCollector(fetcher), fetcher.Name(), pred, params,
		cfg.MovingAverages, a.recorder, m)
	return a, nil
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	switch cfg.DataSource.Kind {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy), nil
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy), nil
	case "mock":
		return &collector.MockFetcher{Price: 100}, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource.Kind)
	}
}

func (a *app) openRedis(ctx context.Context) *redis.Client {
	if a.cfg.Redis.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("[WARN] redis %s unreachable, caching disabled: %v", a.cfg.Redis.Addr, err)
		_ = rdb.Close()
		return nil
	}
	a.closers = append(a.closers, rdb.Close)
	log.Printf("[INFO] redis cache enabled: %s (ttl %s)", a.cfg.Redis.Addr, a.cfg.Redis.TTL)
	return rdb
}

func (a *app) openRecorder() recorder.Recorder {
	if a.cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(a.cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	a.closers = append(a.closers, sr.Close)
	return sr
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("[WARN] close: %v", err)
		}
	}
}
