package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/searchagent/config"
	"github.com/mohammad-safakhou/searchagent/internal/acquisition"
	"github.com/mohammad-safakhou/searchagent/internal/agent"
	"github.com/mohammad-safakhou/searchagent/internal/cache"
	"github.com/mohammad-safakhou/searchagent/internal/history"
	"github.com/mohammad-safakhou/searchagent/internal/logging"
	"github.com/mohammad-safakhou/searchagent/internal/query"
	"github.com/mohammad-safakhou/searchagent/internal/recent"
	"github.com/mohammad-safakhou/searchagent/internal/store"
	"github.com/mohammad-safakhou/searchagent/internal/summarizer"
	"github.com/mohammad-safakhou/searchagent/internal/telemetry"
	"github.com/mohammad-safakhou/searchagent/provider"
	"github.com/mohammad-safakhou/searchagent/tools/browser"
	"github.com/mohammad-safakhou/searchagent/tools/embedding"
	"github.com/mohammad-safakhou/searchagent/tools/web_fetch"
	"github.com/mohammad-safakhou/searchagent/tools/web_search"
)

// app holds every wired component of one process.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *telemetry.Metrics
	store   store.RecordStore
	history *history.Index
	recent  recent.List
	agent   *agent.Orchestrator

	closers []func()
}

// Close releases components in reverse construction order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// loadApp reads the config at path and builds the agent with every backing
// service. Logs go to logOut so stdout stays free for answers and protocols.
func loadApp(ctx context.Context, path string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return buildApp(ctx, cfg, logOut)
}

func buildApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (_ *app, err error) {
	a, err := openBase(ctx, cfg, logOut)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()
	logger := a.logger

	cacheOpts := []cache.Option{cache.WithDimensions(cfg.Embedding.Dimensions), cache.WithLogger(logger)}
	if cfg.Cache.UseIndex {
		cacheOpts = append(cacheOpts, cache.WithIndex())
	}
	simCache := cache.New(a.store, cacheOpts...)

	backend, err := provider.NewEmbedder(ctx, cfg.Embedding)
	if err != nil {
		return nil, err
	}
	embedder := embedding.NewEmbedding(backend, cfg.Embedding.Dimensions)

	model, err := provider.NewSummarizer(ctx, cfg.Summarizer)
	if err != nil {
		return nil, err
	}
	summ := summarizer.New(model, cfg.Summarizer.MaxInputChars)

	acq, err := newAcquirer(cfg.Acquisition, logger, a.metrics)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, acq.Close)

	a.agent = agent.New(query.Validator{}, embedder, simCache, acq, summ,
		agent.WithThreshold(cfg.Cache.Threshold),
		agent.WithRecent(a.recent),
		agent.WithIndexer(a.history),
		agent.WithLogger(logger),
		agent.WithMetrics(a.metrics),
	)
	return a, nil
}

// openBase wires logging, telemetry and the persistence side: the record
// store, the history index and the recent list. Commands that never ask a
// question stop here and need no model credentials.
func openBase(ctx context.Context, cfg *config.Config, logOut io.Writer) (_ *app, err error) {
	logger := logging.New(cfg.General.LogLevel, logOut)
	logging.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.closers = append(a.closers, telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Telemetry.SentryDSN,
		Environment:      cfg.General.Environment,
		Release:          "searchagent@" + version,
		TracesSampleRate: cfg.Telemetry.SentrySampleRate,
	}, logger))

	if cfg.Telemetry.MetricsEnabled {
		a.metrics = telemetry.NewMetrics()
	}

	if a.store, err = openStore(ctx, cfg, logger); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		if cerr := a.store.Close(); cerr != nil {
			logger.Warn("close record store", "error", cerr)
		}
	})

	if a.history, err = history.Rebuild(ctx, a.store); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = a.history.Close() })

	if a.recent, err = openRecent(ctx, cfg, a); err != nil {
		return nil, err
	}
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.RecordStore, error) {
	switch cfg.Cache.Backend {
	case config.BackendMemory:
		return store.NewMemory(), nil
	case config.BackendBadger:
		return store.OpenBadger(cfg.Storage.Badger.Dir, cfg.Storage.Badger.InMemory, logger)
	case config.BackendPostgres:
		dsn := cfg.Storage.Postgres.DSN()
		if err := store.Migrate("", dsn, "up", 0); err != nil {
			return nil, err
		}
		return store.NewPostgres(ctx, dsn, cfg.Storage.Postgres.Timeout)
	default:
		return nil, goerr.New("unsupported cache backend", goerr.V("backend", cfg.Cache.Backend))
	}
}

func openRecent(ctx context.Context, cfg *config.Config, a *app) (recent.List, error) {
	if cfg.Recent.Backend != config.BackendRedis {
		return recent.NewDeque(cfg.Recent.Capacity), nil
	}
	rc := cfg.Storage.Redis
	client := redis.NewClient(&redis.Options{
		Addr:        rc.Addr(),
		Password:    rc.Password,
		DB:          rc.DB,
		DialTimeout: rc.Timeout,
	})
	a.closers = append(a.closers, func() { _ = client.Close() })
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, goerr.Wrap(err, "ping redis", goerr.V("addr", rc.Addr()))
	}
	return recent.NewRedis(client, cfg.Recent.Key, cfg.Recent.Capacity), nil
}

func newAcquirer(cfg config.AcquisitionConfig, logger *slog.Logger, m *telemetry.Metrics) (*acquisition.Acquirer, error) {
	cfg = cfg.Normalize()
	searchOpts := web_search.Options{
		Wait:         cfg.SearchTimeout,
		BraveAPIKey:  cfg.BraveAPIKey,
		SerperAPIKey: cfg.SerperAPIKey,
	}
	primary, err := web_search.NewWebSearcher(web_search.Provider(cfg.Primary), searchOpts)
	if err != nil {
		return nil, err
	}

	launcher := browser.Chrome{Headless: cfg.Headless, UserAgent: cfg.UserAgent}
	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Fetcher), web_fetch.Options{
		Timeout:   cfg.FetchTimeout,
		UserAgent: cfg.UserAgent,
		Launcher:  launcher,
	})
	if err != nil {
		return nil, err
	}

	opts := []acquisition.Option{
		acquisition.WithLauncher(launcher),
		acquisition.WithMaxResults(cfg.MaxResults),
		acquisition.WithMaxChars(cfg.MaxChars),
		acquisition.WithDisallow(cfg.SourcePolicy.Disallow),
		acquisition.WithLogger(logger),
		acquisition.WithMetrics(m),
	}
	if cfg.Fallback != "" && cfg.Fallback != cfg.Primary {
		fallback, err := web_search.NewWebSearcher(web_search.Provider(cfg.Fallback), searchOpts)
		if err != nil {
			return nil, err
		}
		opts = append(opts, acquisition.WithFallback(fallback))
	}
	return acquisition.New(primary, fetcher, cfg.Workers, opts...)
}
