package placesapi

import (
	"encoding/json"
	"fmt"
)

// Node is a coordinate structure: either a single Pair or a Nested sequence
// of nodes. Pairs are stored in (lat, lon) order.
type Node interface {
	// Validate checks every leaf pair against the latitude/longitude bounds.
	Validate() error
	// SwapAxes returns a copy with every leaf pair's elements exchanged.
	SwapAxes() Node
	// Raw renders the node as plain JSON-compatible values, keeping the
	// stored element order.
	Raw() interface{}
}

// Pair is a leaf: two numbers.
type Pair [2]float64

// LatLon builds a pair in the canonical (lat, lon) order.
func LatLon(lat, lon float64) Pair {
	return Pair{lat, lon}
}

func (p Pair) Lat() float64 { return p[0] }
func (p Pair) Lon() float64 { return p[1] }

func (p Pair) Validate() error {
	if !IsValidLat(p[0]) || !IsValidLon(p[1]) {
		return &BoundsError{Pair: p}
	}
	return nil
}

func (p Pair) SwapAxes() Node {
	return Pair{p[1], p[0]}
}

func (p Pair) Raw() interface{} {
	return []interface{}{p[0], p[1]}
}

// Nested is a container level: a ring of pairs, a polygon of rings and so on.
type Nested []Node

func (n Nested) Validate() error {
	for _, child := range n {
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (n Nested) SwapAxes() Node {
	out := make(Nested, len(n))
	for i, child := range n {
		out[i] = child.SwapAxes()
	}
	return out
}

func (n Nested) Raw() interface{} {
	out := make([]interface{}, len(n))
	for i, child := range n {
		out[i] = child.Raw()
	}
	return out
}

// Ring is a shorthand for a Nested level holding only pairs.
func Ring(pairs ...Pair) Nested {
	out := make(Nested, len(pairs))
	for i, p := range pairs {
		out[i] = p
	}
	return out
}

// Polygon builds a Nested level of rings.
func Polygon(rings ...Nested) Nested {
	out := make(Nested, len(rings))
	for i, r := range rings {
		out[i] = r
	}
	return out
}

func IsValidLat(v float64) bool {
	return v >= -90 && v <= 90
}

func IsValidLon(v float64) bool {
	return v >= -180 && v <= 180
}

// ValidateCoordinates parses raw decoded JSON and validates it.
func ValidateCoordinates(raw interface{}) error {
	node, err := ParseCoordinates(raw)
	if err != nil {
		return err
	}
	return node.Validate()
}

// ParseCoordinates converts a decoded JSON tree into a Node. A level whose
// first element is a number is a leaf and must hold exactly two numbers;
// any other level must be a sequence.
func ParseCoordinates(raw interface{}) (Node, error) {
	items, ok := asSequence(raw)
	if !ok {
		return nil, malformed("coordinates level is not a sequence: %#v", raw)
	}

	if len(items) > 0 {
		if first, isNum := toFloat(items[0]); isNum {
			if len(items) != 2 {
				return nil, malformed("coordinate pair must have 2 elements, got %d", len(items))
			}
			second, isNum := toFloat(items[1])
			if !isNum {
				return nil, malformed("coordinate pair element is not numeric: %#v", items[1])
			}
			return Pair{first, second}, nil
		}
	}

	out := make(Nested, 0, len(items))
	for _, item := range items {
		child, err := ParseCoordinates(item)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

// SwapAxes swaps leaf pairs of a raw decoded JSON tree. The result is built
// from []interface{} regardless of the input container types.
func SwapAxes(raw interface{}) (interface{}, error) {
	items, ok := asSequence(raw)
	if !ok {
		return nil, malformed("coordinates level is not a sequence: %#v", raw)
	}

	if len(items) > 0 {
		if _, isNum := toFloat(items[0]); isNum {
			if len(items) != 2 {
				return nil, malformed("coordinate pair must have 2 elements, got %d", len(items))
			}
			if _, isNum := toFloat(items[1]); !isNum {
				return nil, malformed("coordinate pair element is not numeric: %#v", items[1])
			}
			return []interface{}{items[1], items[0]}, nil
		}
	}

	out := make([]interface{}, len(items))
	for i, item := range items {
		swapped, err := SwapAxes(item)
		if err != nil {
			return nil, err
		}
		out[i] = swapped
	}
	return out, nil
}

func asSequence(raw interface{}) ([]interface{}, bool) {
	switch v := raw.(type) {
	case []interface{}:
		return v, true
	case []float64:
		out := make([]interface{}, len(v))
		for i, f := range v {
			out[i] = f
		}
		return out, true
	case [2]float64:
		return []interface{}{v[0], v[1]}, true
	case Pair:
		return []interface{}{v[0], v[1]}, true
	case Nested:
		out := make([]interface{}, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	}
	return nil, false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func describe(n Node) string {
	b, err := json.Marshal(n.Raw())
	if err != nil {
		return fmt.Sprintf("%v", n)
	}
	return string(b)
}
