package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// PlanarDistance is the Euclidean distance between a and b measured directly
// on (lon, lat) degrees. It is not a ground distance and grows less accurate
// away from the equator.
func PlanarDistance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// Endpoints returns the first and last recorded coordinate of g. For polygons
// only the outer ring is considered; for a MultiPolygon the first point comes
// from the first polygon and the last point from the last one.
func Endpoints(g orb.Geometry) (first, last orb.Point, ok bool) {
	switch v := g.(type) {
	case orb.Point:
		return v, v, true
	case orb.LineString:
		if len(v) == 0 {
			return
		}
		return v[0], v[len(v)-1], true
	case orb.Polygon:
		if len(v) == 0 || len(v[0]) == 0 {
			return
		}
		return v[0][0], v[0][len(v[0])-1], true
	case orb.MultiPolygon:
		if len(v) == 0 {
			return
		}
		f, _, okF := Endpoints(v[0])
		_, l, okL := Endpoints(v[len(v)-1])
		if !okF || !okL {
			return
		}
		return f, l, true
	}
	return
}

// EndpointDistance treats g as the single segment joining its first and last
// coordinate and returns the smaller planar distance from p to either end.
// Interior vertices are ignored.
func EndpointDistance(g orb.Geometry, p orb.Point) (float64, bool) {
	first, last, ok := Endpoints(g)
	if !ok {
		return 0, false
	}
	return math.Min(PlanarDistance(p, first), PlanarDistance(p, last)), true
}

// PolylineDistance is the planar distance from p to the nearest point on any
// segment of g, interior vertices included.
func PolylineDistance(g orb.Geometry, p orb.Point) (float64, bool) {
	if _, _, ok := Endpoints(g); !ok {
		return 0, false
	}
	return planar.DistanceFrom(g, p), true
}
