package metrics

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrInvalidTimestamp is returned when the first column of a row is not a
// Unix timestamp in seconds.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Unix seconds of 0001-01-01 and 10000-01-01, the bounds of a four-digit year.
const (
	minUnixSeconds = -62135596800
	maxUnixSeconds = 253402300800
)

// Normalize flattens a metric body into a Table for (coin, endpoint).
//
// The first flattened column (the API's "t") becomes the date index, a UTC
// calendar day. Every other column is renamed with ColumnName. Bodies that
// are not object-of-objects or array-of-objects fail with *ShapeError.
func Normalize(body []byte, endpoint, coin string) (*Table, error) {
	resp, err := Decode(body)
	if err != nil {
		return nil, err
	}
	return NormalizeResponse(resp, endpoint, coin)
}

// NormalizeResponse is Normalize for an already decoded Response. Records
// sharing a timestamp collapse into one row at the position of the first,
// holding the values of the last.
func NormalizeResponse(resp Response, endpoint, coin string) (*Table, error) {
	records, err := flatten(resp)
	if err != nil {
		return nil, err
	}

	fields := columnsOf(records)
	if len(fields) == 0 {
		return nil, &ShapeError{Type: resp.Shape.String(), Reason: "no fields to tabulate"}
	}

	tsField, valueFields := fields[0], fields[1:]

	table := &Table{
		Name:    coin + "-" + endpoint,
		Columns: make([]string, len(valueFields)),
		Rows:    make([]Row, 0, len(records)),
	}
	rowIndex := make(map[string]int, len(records))
	for i, f := range valueFields {
		table.Columns[i] = ColumnName(coin, endpoint, f)
	}

	for i, rec := range records {
		date, err := UnixDate(rec.values[tsField])
		if err != nil {
			return nil, fmt.Errorf("row %d field %q: %w", i, tsField, err)
		}

		values := make([]string, len(valueFields))
		for j, f := range valueFields {
			values[j] = rec.values[f]
		}
		ts := rec.values[tsField]
		if idx, ok := rowIndex[ts]; ok {
			table.Rows[idx].Values = values
			continue
		}
		rowIndex[ts] = len(table.Rows)
		table.Rows = append(table.Rows, Row{Date: date, Values: values})
	}

	return table, nil
}

// UnixDate formats Unix seconds as a UTC YYYY-MM-DD string, flooring to the day.
func UnixDate(raw string) (string, error) {
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(secs) || secs < minUnixSeconds || secs >= maxUnixSeconds {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
	}
	return time.Unix(int64(math.Floor(secs)), 0).UTC().Format(time.DateOnly), nil
}
