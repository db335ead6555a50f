package placesapi

import (
	"time"

	"github.com/google/uuid"
)

type GeomType string

const (
	GeomPoint        GeomType = "Point"
	GeomPolygon      GeomType = "Polygon"
	GeomMultiPolygon GeomType = "MultiPolygon"
)

func (g GeomType) Known() bool {
	switch g {
	case GeomPoint, GeomPolygon, GeomMultiPolygon:
		return true
	}
	return false
}

const RecordIDKey = "record_id"

// Properties holds free-form feature attributes. Values are whatever
// encoding/json produces: string, float64, bool, nil, []interface{} and
// map[string]interface{}.
type Properties map[string]interface{}

// RecordID returns the caller-chosen idempotency token, if one is set.
func (p Properties) RecordID() (string, bool) {
	v, ok := p[RecordIDKey]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (p Properties) SetRecordID(id string) {
	p[RecordIDKey] = id
}

// NewRecordID returns a fresh random record_id token.
func NewRecordID() string {
	return uuid.NewString()
}

// Feature is a geographic feature known (or about to be known) to the
// places service. Coordinates are kept in (lat, lon) order.
type Feature struct {
	ID          string
	GeomType    GeomType
	Coordinates Node
	Created     int64
	Properties  Properties
}

type featureOptions struct {
	geomType   GeomType
	handle     string
	created    *int64
	properties map[string]interface{}
}

type Option func(*featureOptions)

// WithGeomType sets the geometry kind. Point is used when omitted.
func WithGeomType(g GeomType) Option {
	return func(o *featureOptions) {
		o.geomType = g
	}
}

// WithHandle sets a previously issued handle.
func WithHandle(handle string) Option {
	return func(o *featureOptions) {
		o.handle = handle
	}
}

func WithCreated(unix int64) Option {
	return func(o *featureOptions) {
		o.created = &unix
	}
}

// WithProperties merges props over the default (empty) property set.
func WithProperties(props map[string]interface{}) Option {
	return func(o *featureOptions) {
		o.properties = props
	}
}

var now = time.Now

// NewFeature validates its arguments and builds a Feature. Nothing is
// returned unless every check passes.
func NewFeature(coords Node, opts ...Option) (*Feature, error) {
	o := featureOptions{geomType: GeomPoint}
	for _, opt := range opts {
		opt(&o)
	}

	if o.handle != "" && !IsValidHandle(o.handle) {
		return nil, malformed("invalid handle %q", o.handle)
	}

	props := Properties{}
	for k, v := range o.properties {
		props[k] = copyValue(v)
	}
	if v, ok := props[RecordIDKey]; ok && v != nil {
		if _, isString := v.(string); !isString {
			return nil, malformed("record_id must be a string, got %T", v)
		}
	}

	if !o.geomType.Known() {
		return nil, malformed("unknown geometry type %q", o.geomType)
	}

	if coords == nil {
		return nil, malformed("missing coordinates")
	}
	if err := checkShape(o.geomType, coords); err != nil {
		return nil, err
	}
	if err := coords.Validate(); err != nil {
		return nil, err
	}

	created := now().Unix()
	if o.created != nil {
		created = *o.created
	}

	return &Feature{
		ID:          o.handle,
		GeomType:    o.geomType,
		Coordinates: cloneNode(coords),
		Created:     created,
		Properties:  props,
	}, nil
}

func checkShape(g GeomType, coords Node) error {
	switch g {
	case GeomPoint:
		if _, ok := coords.(Pair); !ok {
			return malformed("Point needs a single coordinate pair, got %s", describe(coords))
		}
	case GeomPolygon:
		rings, ok := coords.(Nested)
		if !ok {
			return malformed("Polygon needs a sequence of rings, got %s", describe(coords))
		}
		for _, r := range rings {
			ring, ok := r.(Nested)
			if !ok {
				return malformed("Polygon ring must be a sequence of pairs, got %s", describe(r))
			}
			for _, p := range ring {
				if _, ok := p.(Pair); !ok {
					return malformed("Polygon ring must be a sequence of pairs, got %s", describe(p))
				}
			}
		}
	}
	return nil
}

func cloneNode(n Node) Node {
	switch t := n.(type) {
	case Nested:
		out := make(Nested, len(t))
		for i, child := range t {
			out[i] = cloneNode(child)
		}
		return out
	}
	return n
}

func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, inner := range t {
			out[k] = copyValue(inner)
		}
		return out
	case Properties:
		out := make(map[string]interface{}, len(t))
		for k, inner := range t {
			out[k] = copyValue(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, inner := range t {
			out[i] = copyValue(inner)
		}
		return out
	}
	return v
}
