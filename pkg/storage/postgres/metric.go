package postgres

import (
	"context"
	"fmt"
	"time"

	"gncollector/internal/glassnode/metrics"

	"gorm.io/gorm/clause"
)

const insertBatchSize = 500

// Save upserts every non-null cell of table. A re-run replaces the values
// stored by a previous run for the same coin, endpoint, column and date.
func (p *PostgresClient) Save(ctx context.Context, coin, endpoint string, table *metrics.Table) error {
	records, err := ToMetricRecords(coin, endpoint, table)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "coin"},
			{Name: "endpoint"},
			{Name: "metric_column"},
			{Name: "date"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"value", "recorded_at"}),
	}).CreateInBatches(records, insertBatchSize)

	if tx.Error != nil {
		return fmt.Errorf("upsert %s %s: %w", coin, endpoint, tx.Error)
	}
	return nil
}

func (p *PostgresClient) GetMetric(ctx context.Context, coin, endpoint, column string, date time.Time) (*MetricRecord, error) {
	var record MetricRecord
	err := p.DB.WithContext(ctx).
		Where("coin = ? AND endpoint = ? AND metric_column = ? AND date = ?", coin, endpoint, column, date).
		First(&record).Error

	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteEndpoint removes every stored value of one coin endpoint.
func (p *PostgresClient) DeleteEndpoint(ctx context.Context, coin, endpoint string) error {
	return p.DB.WithContext(ctx).
		Where("coin = ? AND endpoint = ?", coin, endpoint).
		Delete(&MetricRecord{}).Error
}

// ToMetricRecords flattens a table into one record per non-null cell. When a
// date occurs more than once the last row wins, since one upsert statement
// cannot touch the same key twice.
func ToMetricRecords(coin, endpoint string, table *metrics.Table) ([]MetricRecord, error) {
	var records []MetricRecord
	seen := make(map[string]int)
	for _, row := range table.Rows {
		date, err := time.Parse(time.DateOnly, row.Date)
		if err != nil {
			return nil, fmt.Errorf("row date %q: %w", row.Date, err)
		}
		if len(row.Values) != len(table.Columns) {
			return nil, fmt.Errorf("row %s has %d values for %d columns", row.Date, len(row.Values), len(table.Columns))
		}
		for i, v := range row.Values {
			if v == "" {
				continue
			}
			record := MetricRecord{
				Coin:     coin,
				Endpoint: endpoint,
				Column:   table.Columns[i],
				Date:     date,
				Value:    v,
			}
			key := row.Date + "\x00" + record.Column
			if idx, ok := seen[key]; ok {
				records[idx] = record
				continue
			}
			seen[key] = len(records)
			records = append(records, record)
		}
	}
	return records, nil
}
