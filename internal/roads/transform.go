package roads

import (
	"github.com/EmpoweredVote/roadgeo/internal/attrs"
	"github.com/EmpoweredVote/roadgeo/internal/feature"
	"github.com/EmpoweredVote/roadgeo/internal/geo"
)

// Source property keys.
const (
	propRoadID      = "road_id"
	propRoadName    = "road_name"
	propShapeLength = "Shape__Length"
	propSpeedLimit  = "ns_speed_limit"
)

// Transform turns a road feature into a Segment. Only LineString geometries
// are accepted. Absent ids, names and lengths take their zero defaults; a
// speed limit that is present but carries no number rejects the feature.
func Transform(raw feature.Raw) (Segment, error) {
	props, err := raw.Props()
	if err != nil {
		return Segment{}, err
	}
	g, err := raw.Geom(geo.KindLineString)
	if err != nil {
		return Segment{}, err
	}
	wkt, err := geo.EncodeWKT(g)
	if err != nil {
		return Segment{}, err
	}

	roadID, err := attrs.Int(props, propRoadID, 0)
	if err != nil {
		return Segment{}, err
	}
	name, err := attrs.String(props, propRoadName, "")
	if err != nil {
		return Segment{}, err
	}
	length, err := attrs.Float(props, propShapeLength, 0)
	if err != nil {
		return Segment{}, err
	}
	speed, err := attrs.SpeedLimit(props, propSpeedLimit)
	if err != nil {
		return Segment{}, err
	}

	return Segment{
		RammRoadID:  roadID,
		RoadName:    name,
		ShapeLength: length,
		SpeedLimit:  speed,
		Geom:        geo.WKT(wkt),
	}, nil
}
