package collector

import (
	"context"
	"encoding/json"
	"fmt"

	"gncollector/internal/glassnode/metrics"
	"gncollector/internal/glassnode/responsestore"

	"go.uber.org/zap"
)

// DefaultBatchSize is the number of requests sent between two pauses.
const DefaultBatchSize = 120

// MetricFetcher issues one GET for a metric URL and asset and returns the raw body.
type MetricFetcher interface {
	GetMetric(ctx context.Context, metricURL, asset string) ([]byte, error)
}

type Options struct {
	BatchSize  int
	Pacer      Pacer
	OnConflict responsestore.ConflictPolicy
	Sinks      []Sink
}

// Collector fetches metric URLs for one coin, normalizes every response and
// hands the tables to its sinks.
type Collector struct {
	client     MetricFetcher
	batchSize  int
	pacer      Pacer
	onConflict responsestore.ConflictPolicy
	sinks      []Sink
	logger     *zap.Logger
}

func New(client MetricFetcher, opts Options, logger *zap.Logger) *Collector {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Pacer == nil {
		opts.Pacer = NewBatchPacer(opts.BatchSize, DefaultBatchPause, logger)
	}
	if opts.OnConflict == "" {
		opts.OnConflict = responsestore.Overwrite
	}
	return &Collector{
		client:     client,
		batchSize:  opts.BatchSize,
		pacer:      opts.Pacer,
		onConflict: opts.OnConflict,
		sinks:      opts.Sinks,
		logger:     logger,
	}
}

// Fetch requests every URL in order, batchSize at a time, and returns the
// bodies keyed by endpoint name. Bodies that are not valid JSON are logged and
// skipped. Transport errors and non-2xx responses abort the fetch.
func (c *Collector) Fetch(ctx context.Context, urls []string, coin string) (map[string][]byte, error) {
	store, err := c.fetch(ctx, urls, coin)
	if err != nil {
		return nil, err
	}
	return store.Bodies(), nil
}

func (c *Collector) fetch(ctx context.Context, urls []string, coin string) (*responsestore.MemoryResponseStore, error) {
	store := responsestore.New(c.onConflict)
	batches := Batches(urls, c.batchSize)

	sent := 0
	for i, batch := range batches {
		c.logger.Info("fetching batch",
			zap.String("coin", coin),
			zap.Int("batch", i+1),
			zap.Int("batches", len(batches)),
			zap.Int("size", len(batch)))

		for _, u := range batch {
			if sent > 0 {
				if err := c.pacer.Wait(ctx, sent); err != nil {
					return nil, err
				}
			}

			body, err := c.client.GetMetric(ctx, u, coin)
			sent++
			if err != nil {
				return nil, fmt.Errorf("fetch %s: %w", u, err)
			}

			if !json.Valid(body) {
				c.logger.Error("error decoding JSON response", zap.String("url", u))
				continue
			}

			stored, err := store.Add(u, body)
			if err != nil {
				return nil, err
			}
			if stored.Replaced != "" {
				c.logger.Warn("endpoint name collision, keeping later response",
					zap.String("endpoint", stored.Name),
					zap.String("replaced", stored.Replaced),
					zap.String("url", u))
			}
		}
	}

	c.logger.Info("fetch finished",
		zap.String("coin", coin),
		zap.Int("requested", len(urls)),
		zap.Int("stored", store.CountAll()))

	return store, nil
}

// Normalize turns one response body into a metric table.
func (c *Collector) Normalize(body []byte, endpoint, coin string) (*metrics.Table, error) {
	return metrics.Normalize(body, endpoint, coin)
}

// Run fetches urls and persists one table per endpoint, in endpoint name
// order. An unsupported response shape stops the run; tables already
// persisted stay on disk.
func (c *Collector) Run(ctx context.Context, urls []string, coin string) error {
	store, err := c.fetch(ctx, urls, coin)
	if err != nil {
		return err
	}

	for _, name := range store.Names() {
		entry, _ := store.Get(name)
		table, err := c.Normalize(entry.Body, name, coin)
		if err != nil {
			c.logger.Error("failed to normalize response", zap.String("endpoint", name), zap.String("url", entry.URL), zap.Error(err))
			return fmt.Errorf("normalize %s: %w", name, err)
		}

		for _, sink := range c.sinks {
			if err := sink.Save(ctx, coin, name, table); err != nil {
				return fmt.Errorf("save %s: %w", name, err)
			}
		}

		c.logger.Info("metric saved",
			zap.String("coin", coin),
			zap.String("endpoint", name),
			zap.Int("rows", table.Len()),
			zap.Int("columns", len(table.Columns)))
	}

	return nil
}
