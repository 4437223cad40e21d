package roadworks

import (
	"time"

	"github.com/EmpoweredVote/roadgeo/internal/attrs"
	"github.com/EmpoweredVote/roadgeo/internal/feature"
	"github.com/EmpoweredVote/roadgeo/internal/geo"
	"github.com/paulmach/orb/geojson"
)

// Transform turns a roadworks feature into a Site. Every property is
// optional, but one that is present with the wrong type rejects the feature.
func Transform(raw feature.Raw) (Site, error) {
	props, err := raw.Props()
	if err != nil {
		return Site{}, err
	}
	g, err := raw.Geom(geo.KindPolygon, geo.KindMultiPolygon)
	if err != nil {
		return Site{}, err
	}
	wkt, err := geo.EncodeWKT(g)
	if err != nil {
		return Site{}, err
	}

	r := reader{p: props}
	site := Site{
		WorksiteCode:          r.str("WorksiteCode"),
		WorksiteName:          r.str("WorksiteName"),
		ProjectName:           r.str("ProjectName"),
		Status:                r.str("Status"),
		WorksiteType:          r.str("WorksiteType"),
		ShapeArea:             r.float("Shape__Area"),
		ShapeLength:           r.float("Shape__Length"),
		PrincipalOrganisation: r.str("PrincipalOrganisation"),
		ProjectStartDate:      r.date("ProjectStartDate"),
		ProjectEndDate:        r.date("ProjectEndDate"),
		WorkStartDate:         r.date("WorkStartDate"),
		WorkCompletionDate:    r.date("WorkCompletionDate"),
		WorkStatus:            r.str("WorkStatus"),
		Geom:                  geo.WKT(wkt),
	}
	if r.err != nil {
		return Site{}, r.err
	}
	return site, nil
}

// reader keeps the first lookup error so Transform can read all thirteen
// properties in one literal.
type reader struct {
	p   geojson.Properties
	err error
}

func (r *reader) str(key string) *string {
	v, err := attrs.OptionalString(r.p, key)
	r.keep(err)
	return v
}

func (r *reader) float(key string) *float64 {
	v, err := attrs.OptionalFloat(r.p, key)
	r.keep(err)
	return v
}

func (r *reader) date(key string) *time.Time {
	v, err := attrs.Timestamp(r.p, key)
	r.keep(err)
	return v
}

func (r *reader) keep(err error) {
	if r.err == nil {
		r.err = err
	}
}
