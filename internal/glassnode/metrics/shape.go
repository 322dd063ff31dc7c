package metrics

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// Shape is the structural pattern of a metric response body.
type Shape int

const (
	ShapeObject Shape = iota + 1 // object whose values include at least one object
	ShapeArray                   // array whose elements include at least one object
)

func (s Shape) String() string {
	switch s {
	case ShapeObject:
		return "object-of-objects"
	case ShapeArray:
		return "array-of-objects"
	default:
		return "unknown"
	}
}

// ErrMalformedJSON is returned by Decode for bodies that are not valid JSON.
var ErrMalformedJSON = errors.New("malformed JSON")

// Response is a metric body whose shape has been checked once.
type Response struct {
	Shape Shape
	Body  []byte
}

// ShapeError reports a body that is valid JSON but neither
// object-of-objects nor array-of-objects.
type ShapeError struct {
	Type   string // top-level JSON type
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unsupported response shape (%s): %s", e.Type, e.Reason)
}

// Decode classifies body into a Response. It fails with ErrMalformedJSON or
// a *ShapeError.
func Decode(body []byte) (Response, error) {
	if !json.Valid(body) {
		return Response{}, ErrMalformedJSON
	}

	_, dataType, _, err := jsonparser.Get(body)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	switch dataType {
	case jsonparser.Object:
		nested := false
		err := jsonparser.ObjectEach(body, func(_ []byte, _ []byte, vt jsonparser.ValueType, _ int) error {
			if vt == jsonparser.Object {
				nested = true
			}
			return nil
		})
		if err != nil {
			return Response{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
		if !nested {
			return Response{}, &ShapeError{Type: dataType.String(), Reason: "no value is an object"}
		}
		return Response{Shape: ShapeObject, Body: body}, nil

	case jsonparser.Array:
		hasObject := false
		_, err := jsonparser.ArrayEach(body, func(_ []byte, vt jsonparser.ValueType, _ int, _ error) {
			if vt == jsonparser.Object {
				hasObject = true
			}
		})
		if err != nil {
			return Response{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
		if !hasObject {
			return Response{}, &ShapeError{Type: dataType.String(), Reason: "no element is an object"}
		}
		return Response{Shape: ShapeArray, Body: body}, nil

	default:
		return Response{}, &ShapeError{Type: dataType.String(), Reason: "top level is a scalar"}
	}
}
