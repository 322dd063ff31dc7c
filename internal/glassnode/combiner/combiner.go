package combiner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gncollector/internal/glassnode/metrics"
	"gncollector/pkg/storage/csvfile"

	"go.uber.org/zap"
)

// DefaultStart is the first day of every merged calendar.
var DefaultStart = time.Date(2008, 12, 31, 0, 0, 0, 0, time.UTC)

var ErrDuplicateColumn = errors.New("duplicate column")

type Options struct {
	Start     time.Time        // zero means DefaultStart
	OutputDir string           // where merged tables are written
	Now       func() time.Time // last calendar day; defaults to time.Now
}

// Combiner joins per-metric tables onto a continuous daily calendar.
type Combiner struct {
	start     time.Time
	outputDir string
	now       func() time.Time
	logger    *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Combiner {
	if opts.Start.IsZero() {
		opts.Start = DefaultStart
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Combiner{
		start:     opts.Start,
		outputDir: opts.OutputDir,
		now:       opts.Now,
		logger:    logger,
	}
}

// LoadTables reads every metric table in dir, in file name order. Merged
// outputs are skipped. An empty directory yields no tables.
func LoadTables(dir string) ([]*metrics.Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var tables []*metrics.Table
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, metrics.MergedSuffix) {
			continue
		}

		table, err := csvfile.Read(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// Calendar returns an empty table indexed by every UTC day in [start, end].
func Calendar(start, end time.Time) *metrics.Table {
	first := day(start)
	last := day(end)

	table := &metrics.Table{Name: "calendar"}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		table.Rows = append(table.Rows, metrics.Row{Date: d.Format(time.DateOnly), Values: []string{}})
	}
	return table
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Merge outer-joins every table found in dirs onto the calendar from the
// configured start through today, writes the result to
// <OutputDir>/<name>-metrics-concatenated.csv and returns it with its path.
//
// Column order follows directory, file and column order. A date appearing
// twice in one table keeps its last row. With dropAllNullRows, rows whose
// every value is empty are removed.
func (c *Combiner) Merge(dirs []string, dropAllNullRows bool) (*metrics.Table, string, error) {
	if len(dirs) == 0 {
		return nil, "", errors.New("no input directories")
	}

	var tables []*metrics.Table
	for _, dir := range dirs {
		loaded, err := LoadTables(dir)
		if err != nil {
			return nil, "", err
		}
		c.logger.Debug("loaded tables", zap.String("dir", dir), zap.Int("tables", len(loaded)))
		tables = append(tables, loaded...)
	}

	merged, err := join(Calendar(c.start, c.now()), tables)
	if err != nil {
		return nil, "", err
	}
	merged.Name = metrics.MergedName(dirs)

	if dropAllNullRows {
		merged.Rows = dropNullRows(merged.Rows)
	}

	path := filepath.Join(c.outputDir, metrics.MergedFileName(dirs))
	if err := csvfile.Write(path, merged); err != nil {
		return nil, "", err
	}

	c.logger.Info("merged tables",
		zap.String("file", path),
		zap.Int("tables", len(tables)),
		zap.Int("columns", len(merged.Columns)),
		zap.Int("rows", merged.Len()))

	return merged, path, nil
}

// join concatenates the columns of tables and aligns their rows on the union
// of the calendar dates and every table date.
func join(calendar *metrics.Table, tables []*metrics.Table) (*metrics.Table, error) {
	var columns []string
	seen := make(map[string]string)
	offsets := make([]int, len(tables))
	for i, t := range tables {
		offsets[i] = len(columns)
		for _, col := range t.Columns {
			if owner, dup := seen[col]; dup {
				return nil, fmt.Errorf("%w %q in %s and %s", ErrDuplicateColumn, col, owner, t.Name)
			}
			seen[col] = t.Name
			columns = append(columns, col)
		}
	}

	cells := make(map[string][]string, calendar.Len())
	var dates []string
	rowFor := func(date string) []string {
		row, ok := cells[date]
		if !ok {
			row = make([]string, len(columns))
			cells[date] = row
			dates = append(dates, date)
		}
		return row
	}

	for _, r := range calendar.Rows {
		rowFor(r.Date)
	}
	for i, t := range tables {
		width := len(t.Columns)
		for _, r := range t.Rows {
			copy(rowFor(r.Date)[offsets[i]:offsets[i]+width], r.Values)
		}
	}

	sort.Strings(dates)

	merged := &metrics.Table{Columns: columns, Rows: make([]metrics.Row, 0, len(dates))}
	for _, d := range dates {
		merged.Rows = append(merged.Rows, metrics.Row{Date: d, Values: cells[d]})
	}
	return merged, nil
}

func dropNullRows(rows []metrics.Row) []metrics.Row {
	kept := rows[:0]
	for _, r := range rows {
		for _, v := range r.Values {
			if v != "" {
				kept = append(kept, r)
				break
			}
		}
	}
	return kept
}
