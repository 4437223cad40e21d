package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// SRID is the only coordinate reference system stored: WGS 84.
const SRID = 4326

// EncodeWKT renders g as WKT text.
//
// Coordinates are written in (lon, lat) order with full float64 precision and
// are never reprojected. Polygons keep only their outer ring; a MultiPolygon
// keeps the outer ring of each member polygon.
func EncodeWKT(g orb.Geometry) (string, error) {
	var b strings.Builder
	switch v := g.(type) {
	case orb.LineString:
		if len(v) < 2 {
			return "", Malformed(KindLineString, fmt.Sprintf("need at least 2 points, got %d", len(v)), nil)
		}
		b.WriteString("LINESTRING")
		writeRing(&b, v)
	case orb.Polygon:
		if err := checkOuterRing(KindPolygon, v); err != nil {
			return "", err
		}
		b.WriteString("POLYGON(")
		writeRing(&b, v[0])
		b.WriteByte(')')
	case orb.MultiPolygon:
		if len(v) == 0 {
			return "", Malformed(KindMultiPolygon, "no polygons", nil)
		}
		for i, p := range v {
			if err := checkOuterRing(KindMultiPolygon, p); err != nil {
				err.Reason = fmt.Sprintf("polygon %d: %s", i, err.Reason)
				return "", err
			}
		}
		b.WriteString("MULTIPOLYGON(")
		for i, p := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('(')
			writeRing(&b, p[0])
			b.WriteByte(')')
		}
		b.WriteByte(')')
	case nil:
		return "", Malformed("", "no geometry", nil)
	default:
		return "", &UnsupportedKindError{Kind: g.GeoJSONType()}
	}
	return b.String(), nil
}

func checkOuterRing(kind string, p orb.Polygon) *MalformedError {
	if len(p) == 0 {
		return Malformed(kind, "no rings", nil)
	}
	if len(p[0]) == 0 {
		return Malformed(kind, "empty outer ring", nil)
	}
	return nil
}

func writeRing[P ~[]orb.Point](b *strings.Builder, pts P) {
	b.WriteByte('(')
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(p[0], 'f', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p[1], 'f', -1, 64))
	}
	b.WriteByte(')')
}

// ParseWKT decodes text previously produced by EncodeWKT, or returned by
// ST_AsText, back into an orb geometry.
func ParseWKT(s string) (orb.Geometry, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, Malformed("", "cannot parse stored WKT", err)
	}
	return g, nil
}
