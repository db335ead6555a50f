package placesapi

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/twpayne/go-kml"
)

// Features fetches every handle in order and stops at the first failure.
func Features(ctx context.Context, c *Client, handles []string) ([]*Feature, error) {
	features := make([]*Feature, 0, len(handles))
	for _, h := range handles {
		f, err := c.Feature(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("fetch feature %s: %w", h, err)
		}
		features = append(features, f)
	}
	return features, nil
}

// BuildKML lays the features out as placemarks, one folder per geometry type.
func BuildKML(features []*Feature) *kml.CompoundElement {
	folders := make(map[GeomType]*kml.CompoundElement)

	k := kml.KML()
	d := kml.Document()

	for _, f := range features {
		folder := folders[f.GeomType]
		if folder == nil {
			folder = kml.Folder(kml.Name(string(f.GeomType)))
			folders[f.GeomType] = folder
		}
		folder.Add(placemark(f))
	}

	names := make([]string, 0, len(folders))
	for g := range folders {
		names = append(names, string(g))
	}
	sort.Strings(names)
	for _, name := range names {
		d.Add(folders[GeomType(name)])
	}

	k.Add(d)
	return k
}

func placemark(f *Feature) *kml.CompoundElement {
	return kml.Placemark(
		kml.Name(placemarkName(f)),
		kml.Description(describeProperties(f.Properties)),
		kmlGeometry(f.Coordinates),
	)
}

func placemarkName(f *Feature) string {
	if name, ok := f.Properties["name"].(string); ok && name != "" {
		return name
	}
	if id, ok := f.Properties.RecordID(); ok && id != "" {
		return id
	}
	if f.ID != "" {
		return f.ID
	}
	return "Undefined"
}

func describeProperties(p Properties) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, p[k]))
	}
	return strings.Join(lines, "\n")
}

// kmlGeometry picks the KML element by nesting depth: a pair is a Point, a
// level of rings a Polygon, anything deeper a MultiGeometry of polygons.
func kmlGeometry(n Node) kml.Element {
	switch depth(n) {
	case 0:
		p := n.(Pair)
		return kml.Point(kml.Coordinates(kmlCoordinate(p)))
	case 1:
		return kml.LineString(kml.Coordinates(kmlRing(n.(Nested))...))
	case 2:
		return kmlPolygon(n.(Nested))
	}

	multi := kml.MultiGeometry()
	for _, child := range n.(Nested) {
		multi.Add(kmlGeometry(child))
	}
	return multi
}

func kmlPolygon(rings Nested) *kml.CompoundElement {
	polygon := kml.Polygon()
	for i, r := range rings {
		ring, ok := r.(Nested)
		if !ok {
			continue
		}
		lr := kml.LinearRing(kml.Coordinates(kmlRing(ring)...))
		if i == 0 {
			polygon.Add(kml.OuterBoundaryIs(lr))
		} else {
			polygon.Add(kml.InnerBoundaryIs(lr))
		}
	}
	return polygon
}

func kmlRing(ring Nested) []kml.Coordinate {
	coords := make([]kml.Coordinate, 0, len(ring))
	for _, n := range ring {
		if p, ok := n.(Pair); ok {
			coords = append(coords, kmlCoordinate(p))
		}
	}
	return coords
}

func kmlCoordinate(p Pair) kml.Coordinate {
	return kml.Coordinate{Lon: p.Lon(), Lat: p.Lat()}
}

// depth counts container levels above the first leaf; an empty container
// counts as one level.
func depth(n Node) int {
	nested, ok := n.(Nested)
	if !ok {
		return 0
	}
	if len(nested) == 0 {
		return 1
	}
	return 1 + depth(nested[0])
}
