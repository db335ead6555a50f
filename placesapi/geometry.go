package placesapi

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Geometry converts the feature's coordinates to an orb geometry. orb
// points are (lon, lat).
func (f *Feature) Geometry() orb.Geometry {
	return orbGeometry(f.Coordinates)
}

// Bound is the feature's bounding box.
func (f *Feature) Bound() orb.Bound {
	return f.Geometry().Bound()
}

// Centroid is the planar centroid of the feature's geometry.
func (f *Feature) Centroid() orb.Point {
	c, _ := planar.CentroidArea(f.Geometry())
	return c
}

func orbGeometry(n Node) orb.Geometry {
	switch depth(n) {
	case 0:
		return orbPoint(n.(Pair))
	case 1:
		return orb.LineString(orbRing(n.(Nested)))
	case 2:
		return orbPolygon(n.(Nested))
	case 3:
		nested := n.(Nested)
		mp := make(orb.MultiPolygon, 0, len(nested))
		for _, child := range nested {
			if poly, ok := child.(Nested); ok {
				mp = append(mp, orbPolygon(poly))
			}
		}
		return mp
	}

	collection := orb.Collection{}
	for _, child := range n.(Nested) {
		collection = append(collection, orbGeometry(child))
	}
	return collection
}

func orbPolygon(rings Nested) orb.Polygon {
	poly := make(orb.Polygon, 0, len(rings))
	for _, r := range rings {
		if ring, ok := r.(Nested); ok {
			poly = append(poly, orbRing(ring))
		}
	}
	return poly
}

func orbRing(ring Nested) orb.Ring {
	out := make(orb.Ring, 0, len(ring))
	for _, n := range ring {
		if p, ok := n.(Pair); ok {
			out = append(out, orbPoint(p))
		}
	}
	return out
}

func orbPoint(p Pair) orb.Point {
	return orb.Point{p.Lon(), p.Lat()}
}
