package main

import (
	"fmt"

	"gncollector/config"
	"gncollector/internal/glassnode/catalog"
	"gncollector/internal/glassnode/collector"
	"gncollector/internal/glassnode/responsestore"
	"gncollector/pkg/glassnode"
	"gncollector/pkg/storage/postgres"

	"go.uber.org/zap"
)

// app holds what every command builds from the loaded config.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client *glassnode.RESTClient
}

func newApp(cfg *config.Config, logger *zap.Logger) *app {
	// pacer and collector must agree on the batch size
	if cfg.Glassnode.BatchSize <= 0 {
		cfg.Glassnode.BatchSize = collector.DefaultBatchSize
	}
	return &app{
		cfg:    cfg,
		logger: logger,
		client: glassnode.NewRESTClient(cfg.Glassnode.BaseURL, cfg.Glassnode.APIKey, cfg.Glassnode.Timeout),
	}
}

func (a *app) loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		path = a.cfg.Glassnode.CatalogFile
	}
	return catalog.Load(path, a.cfg.Glassnode.BaseURL)
}

func newPacer(cfg config.GlassnodeConfig, logger *zap.Logger) (collector.Pacer, error) {
	switch cfg.Pacer {
	case "", "batch":
		return collector.NewBatchPacer(cfg.BatchSize, cfg.BatchPause, logger), nil
	case "token_bucket":
		return collector.NewTokenBucketPacer(cfg.Rate, cfg.RateInterval), nil
	default:
		return nil, fmt.Errorf("unknown pacer %q", cfg.Pacer)
	}
}

// collectorOptions builds the collector options. The returned close func
// releases the postgres connection when the postgres sink is enabled.
func (a *app) collectorOptions() (collector.Options, func(), error) {
	noop := func() {}

	pacer, err := newPacer(a.cfg.Glassnode, a.logger)
	if err != nil {
		return collector.Options{}, noop, err
	}

	policy, err := responsestore.ParseConflictPolicy(a.cfg.Glassnode.OnConflict)
	if err != nil {
		return collector.Options{}, noop, err
	}

	opts := collector.Options{
		BatchSize:  a.cfg.Glassnode.BatchSize,
		Pacer:      pacer,
		OnConflict: policy,
		Sinks:      []collector.Sink{collector.CSVSink{Root: a.cfg.Output.Dir}},
	}

	if !a.cfg.Postgres.Enabled {
		return opts, noop, nil
	}

	pg, err := postgres.InitializeAndMigrate(a.cfg.Postgres, a.cfg.Environment, true)
	if err != nil {
		return collector.Options{}, noop, fmt.Errorf("failed to connect to DB: %w", err)
	}
	opts.Sinks = append(opts.Sinks, pg)

	return opts, func() {
		if err := pg.Close(); err != nil {
			a.logger.Warn("failed to close postgres client", zap.Error(err))
		}
	}, nil
}
