package metrics

import (
	"fmt"

	"github.com/buger/jsonparser"
)

// record is one flattened JSON object: dotted field paths in first-seen order.
type record struct {
	keys   []string
	values map[string]string
}

func newRecord() *record {
	return &record{values: make(map[string]string)}
}

func (r *record) set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// flattenObject walks a JSON object and stores every leaf under its dotted
// path. Arrays are leaves and keep their raw JSON text.
func flattenObject(data []byte, prefix string, rec *record) error {
	return jsonparser.ObjectEach(data, func(key []byte, value []byte, vt jsonparser.ValueType, _ int) error {
		name := string(key) // already unescaped by ObjectEach
		if prefix != "" {
			name = prefix + "." + name
		}

		switch vt {
		case jsonparser.Object:
			return flattenObject(value, name, rec)
		case jsonparser.String:
			s, err := jsonparser.ParseString(value)
			if err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
			rec.set(name, s)
		case jsonparser.Null:
			rec.set(name, "")
		default: // Number, Boolean, Array
			rec.set(name, string(value))
		}
		return nil
	})
}

// flatten turns a decoded Response into records. An object becomes a single
// record; an array yields one record per object element, scalar elements are skipped.
func flatten(resp Response) ([]*record, error) {
	switch resp.Shape {
	case ShapeObject:
		rec := newRecord()
		if err := flattenObject(resp.Body, "", rec); err != nil {
			return nil, err
		}
		return []*record{rec}, nil

	case ShapeArray:
		var (
			records []*record
			walkErr error
		)
		_, err := jsonparser.ArrayEach(resp.Body, func(value []byte, vt jsonparser.ValueType, _ int, _ error) {
			if walkErr != nil || vt != jsonparser.Object {
				return
			}
			rec := newRecord()
			if err := flattenObject(value, "", rec); err != nil {
				walkErr = err
				return
			}
			records = append(records, rec)
		})
		if err != nil {
			return nil, err
		}
		if walkErr != nil {
			return nil, walkErr
		}
		return records, nil

	default:
		return nil, &ShapeError{Type: "unknown", Reason: "response was not decoded"}
	}
}

// columnsOf returns the union of record keys in first-appearance order.
func columnsOf(records []*record) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, rec := range records {
		for _, k := range rec.keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	return columns
}
