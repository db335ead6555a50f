package placesapi

import (
	"encoding/json"
	"math"
)

// FeatureFromJSON decodes a GeoJSON Feature document as sent by the service.
func FeatureFromJSON(body []byte) (*Feature, error) {
	doc, err := decodeJSON(body)
	if err != nil {
		return nil, err
	}
	m, ok := doc.(map[string]interface{})
	if !ok {
		return nil, malformed("feature document is not an object")
	}
	return FeatureFromMap(m)
}

// FeatureFromMap builds a Feature from an already decoded GeoJSON document.
// Coordinates arrive in (lon, lat) order and are swapped before validation.
func FeatureFromMap(doc map[string]interface{}) (*Feature, error) {
	geometry, ok := doc["geometry"].(map[string]interface{})
	if !ok {
		return nil, malformed("feature document has no geometry object")
	}
	geomType, ok := geometry["type"].(string)
	if !ok {
		return nil, malformed("geometry has no type")
	}
	rawCoords, ok := geometry["coordinates"]
	if !ok {
		return nil, malformed("geometry has no coordinates")
	}

	swapped, err := SwapAxes(rawCoords)
	if err != nil {
		return nil, err
	}
	coords, err := ParseCoordinates(swapped)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithGeomType(GeomType(geomType))}

	switch id := doc["id"].(type) {
	case nil:
	case string:
		opts = append(opts, WithHandle(id))
	default:
		return nil, malformed("feature id must be a string, got %T", id)
	}

	switch props := doc["properties"].(type) {
	case nil:
	case map[string]interface{}:
		opts = append(opts, WithProperties(props))
	default:
		return nil, malformed("feature properties must be an object, got %T", props)
	}

	if v, present := doc["created"]; present && v != nil {
		created, isNum := toFloat(v)
		if !isNum {
			return nil, malformed("feature created must be a number, got %T", v)
		}
		opts = append(opts, WithCreated(int64(math.Floor(created))))
	}

	return NewFeature(coords, opts...)
}

// ToMap renders the feature as a GeoJSON document. Properties are deep
// copied so the returned map never aliases the feature.
func (f *Feature) ToMap() map[string]interface{} {
	var id interface{}
	if f.ID != "" {
		id = f.ID
	}
	return map[string]interface{}{
		"type":    "Feature",
		"id":      id,
		"created": f.Created,
		"geometry": map[string]interface{}{
			"type":        string(f.GeomType),
			"coordinates": f.Coordinates.SwapAxes().Raw(),
		},
		"properties": copyValue(map[string]interface{}(f.Properties)),
	}
}

func (f *Feature) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.ToMap())
}

func (f *Feature) UnmarshalJSON(data []byte) error {
	decoded, err := FeatureFromJSON(data)
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}

func decodeJSON(body []byte) (interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &DecodeError{Body: string(body), Err: err}
	}
	return doc, nil
}
