package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gncollector/internal/glassnode/metrics"
)

// ErrMissingIndex is returned when a file's first header column is not "timestamp".
var ErrMissingIndex = errors.New("first column is not " + metrics.IndexColumn)

// Write stores table at path, creating parent directories and replacing any
// existing file.
func Write(path string, table *metrics.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := Encode(f, table); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Encode writes table as CSV, index column first.
func Encode(w io.Writer, table *metrics.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header()); err != nil {
		return err
	}

	line := make([]string, len(table.Columns)+1)
	for _, row := range table.Rows {
		line[0] = row.Date
		copy(line[1:], row.Values)
		if err := cw.Write(line); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read loads a table written by Write. The table is named after the file
// base name without extension.
func Read(path string) (*metrics.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	table, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	table.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return table, nil
}

// Decode parses CSV with a leading timestamp column. Index values may be
// dates or datetimes; both are reduced to the calendar day.
func Decode(r io.Reader) (*metrics.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingIndex
	}
	if err != nil {
		return nil, err
	}
	if len(header) == 0 || strings.TrimPrefix(header[0], "\ufeff") != metrics.IndexColumn {
		return nil, ErrMissingIndex
	}

	table := &metrics.Table{Columns: header[1:]}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := cr.FieldPos(0)
		if len(rec) != len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(header), len(rec))
		}
		date, err := ParseDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		table.Rows = append(table.Rows, metrics.Row{Date: date, Values: rec[1:]})
	}

	return table, nil
}

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
}

// ParseDate normalizes a date index value to YYYY-MM-DD.
func ParseDate(s string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", s)
}
