package geo_test

import (
	"errors"
	"testing"

	"github.com/EmpoweredVote/roadgeo/internal/geo"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWKT_LineStringKeepsOrderAndPrecision(t *testing.T) {
	line := orb.LineString{
		{174.729309123456, -36.75811001},
		{174.7301, -36.7582},
		{174.706054955572, -36.8833799173764},
	}

	got, err := geo.EncodeWKT(line)
	require.NoError(t, err)
	assert.Equal(t,
		"LINESTRING(174.729309123456 -36.75811001,174.7301 -36.7582,174.706054955572 -36.8833799173764)",
		got)

	back, err := geo.ParseWKT(got)
	require.NoError(t, err)
	decoded, ok := back.(orb.LineString)
	require.True(t, ok, "decoded %T", back)
	require.Len(t, decoded, len(line))
	for i := range line {
		assert.Equal(t, line[i], decoded[i], "point %d", i)
	}
}

func TestEncodeWKT_LineStringRoundTripForManySizes(t *testing.T) {
	for k := 2; k <= 40; k++ {
		line := make(orb.LineString, k)
		for i := range line {
			line[i] = orb.Point{170 + float64(i)*0.013, -40 + float64(i*i)*0.0007}
		}
		text, err := geo.EncodeWKT(line)
		require.NoError(t, err)

		back, err := geo.ParseWKT(text)
		require.NoError(t, err)
		decoded := back.(orb.LineString)
		require.Len(t, decoded, k)
		assert.Equal(t, line[0], decoded[0])
		assert.Equal(t, line[k-1], decoded[k-1])
	}
}

func TestEncodeWKT_PolygonDropsInnerRings(t *testing.T) {
	poly := orb.Polygon{
		{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}},
		{{1, 1}, {2, 1}, {2, 2}, {1, 1}},
	}

	got, err := geo.EncodeWKT(poly)
	require.NoError(t, err)
	assert.Equal(t, "POLYGON((0 0,4 0,4 4,0 4,0 0))", got)
}

func TestEncodeWKT_MultiPolygonUsesFirstRingOfEach(t *testing.T) {
	mp := orb.MultiPolygon{
		{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}, {{0.2, 0.2}, {0.3, 0.2}, {0.2, 0.2}}},
		{{{5, 5}, {6, 5}, {6, 6}, {5, 5}}},
	}

	got, err := geo.EncodeWKT(mp)
	require.NoError(t, err)
	assert.Equal(t, "MULTIPOLYGON(((0 0,1 0,1 1,0 0)),((5 5,6 5,6 6,5 5)))", got)
}

func TestEncodeWKT_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		geom        orb.Geometry
		unsupported bool
	}{
		{name: "point", geom: orb.Point{1, 2}, unsupported: true},
		{name: "multilinestring", geom: orb.MultiLineString{{{0, 0}, {1, 1}}}, unsupported: true},
		{name: "single point line", geom: orb.LineString{{1, 2}}},
		{name: "polygon without rings", geom: orb.Polygon{}},
		{name: "polygon with empty ring", geom: orb.Polygon{{}}},
		{name: "empty multipolygon", geom: orb.MultiPolygon{}},
		{name: "multipolygon member without rings", geom: orb.MultiPolygon{{{{0, 0}, {1, 1}, {0, 0}}}, {}}},
		{name: "nil", geom: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := geo.EncodeWKT(tc.geom)
			require.Error(t, err)
			assert.Empty(t, got)
			if tc.unsupported {
				var kindErr *geo.UnsupportedKindError
				assert.True(t, errors.As(err, &kindErr))
				assert.ErrorIs(t, err, geo.ErrUnsupportedKind)
			} else {
				assert.ErrorIs(t, err, geo.ErrMalformed)
			}
		})
	}
}
