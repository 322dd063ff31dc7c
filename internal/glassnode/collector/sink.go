package collector

import (
	"context"

	"gncollector/internal/glassnode/metrics"
	"gncollector/pkg/storage/csvfile"
)

// Sink persists one normalized metric table.
type Sink interface {
	Save(ctx context.Context, coin, endpoint string, table *metrics.Table) error
}

// CSVSink writes <Root>/<coin>-metrics/<coin>-<endpoint>.csv, overwriting
// the file of a previous run.
type CSVSink struct {
	Root string
}

func (s CSVSink) Save(_ context.Context, coin, endpoint string, table *metrics.Table) error {
	return csvfile.Write(metrics.TablePath(s.Root, coin, endpoint), table)
}
