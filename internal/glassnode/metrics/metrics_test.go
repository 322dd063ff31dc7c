package metrics

import (
	"errors"
	"reflect"
	"testing"
)

// go test -v --run TestDecodeShapes
func TestDecodeShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want Shape
	}{
		{"array of objects", `[{"t":1,"v":2}]`, ShapeArray},
		{"mixed array", `[1, {"t":1,"v":2}]`, ShapeArray},
		{"object of objects", `{"t":1,"o":{"a":1}}`, ShapeObject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := Decode([]byte(tc.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Shape != tc.want {
				t.Fatalf("got %s, want %s", resp.Shape, tc.want)
			}
		})
	}
}

// go test -v --run TestDecodeRejectsShapes
func TestDecodeRejectsShapes(t *testing.T) {
	bodies := map[string]string{
		"plain scalar":    `42`,
		"string scalar":   `"hello"`,
		"empty object":    `{}`,
		"scalar mapping":  `{"t":1,"v":2}`,
		"empty list":      `[]`,
		"list of scalars": `[1,2,3]`,
		"list of lists":   `[[1,2],[3,4]]`,
		"null":            `null`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(body))
			var shapeErr *ShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("expected *ShapeError, got %v", err)
			}
		})
	}
}

// go test -v --run TestDecodeMalformed
func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`[{"t":1,`))
	if !errors.Is(err, ErrMalformedJSON) {
		t.Fatalf("expected ErrMalformedJSON, got %v", err)
	}
}

// go test -v --run TestNormalizeArray
func TestNormalizeArray(t *testing.T) {
	body := []byte(`[
		{"t":1577836800,"v":1.0123},
		{"t":1577923200,"v":0.99},
		{"t":1578009600.5,"v":null}
	]`)

	table, err := Normalize(body, "sopr", "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Name != "BTC-sopr" {
		t.Errorf("unexpected name %q", table.Name)
	}
	if !reflect.DeepEqual(table.Columns, []string{"BTC sopr v"}) {
		t.Errorf("unexpected columns %v", table.Columns)
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.Len())
	}

	want := []Row{
		{Date: "2020-01-01", Values: []string{"1.0123"}},
		{Date: "2020-01-02", Values: []string{"0.99"}},
		{Date: "2020-01-03", Values: []string{""}},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("rows:\n got %v\nwant %v", table.Rows, want)
	}
}

// go test -v --run TestNormalizeNestedColumns
func TestNormalizeNestedColumns(t *testing.T) {
	body := []byte(`[
		{"t":1577836800,"o":{"a":{"b":1},"c":"x"}},
		{"t":1577923200,"o":{"a":{"b":2},"d":[1,2]}}
	]`)

	table, err := Normalize(body, "sopr", "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCols := []string{"BTC sopr o a b", "BTC sopr o c", "BTC sopr o d"}
	if !reflect.DeepEqual(table.Columns, wantCols) {
		t.Fatalf("columns:\n got %v\nwant %v", table.Columns, wantCols)
	}
	if !reflect.DeepEqual(table.Rows[0].Values, []string{"1", "x", ""}) {
		t.Errorf("row 0: %v", table.Rows[0].Values)
	}
	if !reflect.DeepEqual(table.Rows[1].Values, []string{"2", "", "[1,2]"}) {
		t.Errorf("row 1: %v", table.Rows[1].Values)
	}
}

// go test -v --run TestNormalizeObject
func TestNormalizeObject(t *testing.T) {
	body := []byte(`{"t":1609459200,"o":{"p50":10,"p90":20}}`)

	table, err := Normalize(body, "price_distribution", "ETH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("expected a single row, got %d", table.Len())
	}
	if table.Rows[0].Date != "2021-01-01" {
		t.Errorf("unexpected date %q", table.Rows[0].Date)
	}
	wantCols := []string{"ETH price_distribution o p50", "ETH price_distribution o p90"}
	if !reflect.DeepEqual(table.Columns, wantCols) {
		t.Errorf("columns: %v", table.Columns)
	}
}

// go test -v --run TestNormalizeBadTimestamp
func TestNormalizeBadTimestamp(t *testing.T) {
	_, err := Normalize([]byte(`[{"t":"yesterday","v":1}]`), "sopr", "BTC")
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}

// go test -v --run TestColumnName
func TestColumnName(t *testing.T) {
	if got := ColumnName("BTC", "sopr", "a.b"); got != "BTC sopr a b" {
		t.Fatalf("got %q", got)
	}
}

// go test -v --run TestUnixDate
func TestUnixDate(t *testing.T) {
	cases := map[string]string{
		"0":          "1970-01-01",
		"1577836799": "2019-12-31",
		"1577836800": "2020-01-01",
		"1577923199": "2020-01-01",
	}
	for in, want := range cases {
		got, err := UnixDate(in)
		if err != nil {
			t.Errorf("UnixDate(%s): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("UnixDate(%s) = %s, want %s", in, got, want)
		}
	}
	if _, err := UnixDate(""); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("empty timestamp should fail, got %v", err)
	}

	// only four-digit years fit the index format
	for _, in := range []string{"1e20", "-1e20", "9.3e18", "253402300800", "-62135596801"} {
		if got, err := UnixDate(in); !errors.Is(err, ErrInvalidTimestamp) {
			t.Errorf("UnixDate(%s) = %q, %v; want ErrInvalidTimestamp", in, got, err)
		}
	}
	if got, err := UnixDate("253402300799"); err != nil || got != "9999-12-31" {
		t.Errorf("UnixDate(253402300799) = %q, %v", got, err)
	}
	if got, err := UnixDate("-62135596800"); err != nil || got != "0001-01-01" {
		t.Errorf("UnixDate(-62135596800) = %q, %v", got, err)
	}
}

// go test -v --run TestNormalizeOutOfRangeTimestamp
func TestNormalizeOutOfRangeTimestamp(t *testing.T) {
	_, err := Normalize([]byte(`[{"t":1e20,"v":1}]`), "sopr", "BTC")
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}

// go test -v --run TestNormalizeRepeatedTimestamp
func TestNormalizeRepeatedTimestamp(t *testing.T) {
	body := []byte(`[{"t":1577836800,"v":1},{"t":1577923200,"v":5},{"t":1577836800,"v":2}]`)
	table, err := Normalize(body, "sopr", "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("expected one row per distinct timestamp, got %d", table.Len())
	}
	if r := table.Rows[0]; r.Date != "2020-01-01" || r.Values[0] != "2" {
		t.Errorf("first row should hold the last value for 2020-01-01, got %+v", r)
	}
	if r := table.Rows[1]; r.Date != "2020-01-02" || r.Values[0] != "5" {
		t.Errorf("unexpected second row %+v", r)
	}
}

// go test -v --run TestNaming
func TestNaming(t *testing.T) {
	url := "https://api.glassnode.com/v1/metrics/indicators/sopr?i=24h"
	if got := EndpointName(url); got != "sopr" {
		t.Errorf("EndpointName: %q", got)
	}
	if got := QualifiedEndpointName(url); got != "indicators_sopr" {
		t.Errorf("QualifiedEndpointName: %q", got)
	}
	if got := TablePath("out", "BTC", "sopr"); got != "out/BTC-metrics/BTC-sopr.csv" {
		t.Errorf("TablePath: %q", got)
	}
	if got := MergedFileName([]string{"out/BTC-metrics", "ETH-metrics/"}); got != "BTC-ETH-metrics-concatenated.csv" {
		t.Errorf("MergedFileName: %q", got)
	}
}
