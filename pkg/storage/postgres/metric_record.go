package postgres

import "time"

// MetricRecord is one non-null cell of a normalized metric table, stored in
// long format so that tables with different columns share one schema.
type MetricRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	Coin     string    `gorm:"type:varchar(20);not null;index:idx_metric_coin;index:idx_coin_endpoint_column_date,unique"`
	Endpoint string    `gorm:"type:text;not null;index:idx_coin_endpoint_column_date,unique"`
	Column   string    `gorm:"column:metric_column;type:text;not null;index:idx_coin_endpoint_column_date,unique"`
	Date     time.Time `gorm:"type:date;not null;index:idx_coin_endpoint_column_date,unique"`

	// Value is kept verbatim; some endpoints return strings or nested arrays.
	Value string `gorm:"type:text;not null"`

	RecordedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the default table name for GORM.
func (MetricRecord) TableName() string {
	return "metric_record"
}
