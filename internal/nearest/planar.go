package nearest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/EmpoweredVote/roadgeo/internal/config"
	"github.com/EmpoweredVote/roadgeo/internal/db"
	"github.com/EmpoweredVote/roadgeo/internal/geo"
	"github.com/EmpoweredVote/roadgeo/internal/logging"
	"github.com/paulmach/orb"
	"gorm.io/gorm"
)

// Planar scans every stored geometry. By default each geometry is reduced to
// the segment between its first and last coordinate and only the two
// endpoints are measured; interior vertices never count. Distances are
// Euclidean on raw degrees.
type Planar struct {
	db       *gorm.DB
	target   Target
	polyline bool
}

func NewPlanar(d *gorm.DB, t Target, polyline bool) *Planar {
	return &Planar{db: d, target: t, polyline: polyline}
}

func (q *Planar) Nearest(ctx context.Context, lat, lon float64) (res *Result, err error) {
	defer func(began time.Time) { observe(q.target.Table, config.StrategyPlanar, began, res, err) }(time.Now())

	geom := quote(q.target.GeomColumn)
	if db.IsPostgres(q.db) {
		geom = "ST_AsText(" + geom + ")"
	}
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s`,
		textColumn(q.target.IDColumn), textColumn(q.target.NameColumn), textColumn(q.target.AttrColumn), geom, quote(q.target.Table))

	rows, err := q.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("nearest %s: %w", q.target.Table, db.Classify(err))
	}
	defer rows.Close()

	p := orb.Point{lon, lat}
	log := logging.For("nearest").WithField("table", q.target.Table)
	var best *Result
	for rows.Next() {
		var (
			r   Result
			wkt sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Attribute, &wkt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", q.target.Table, err)
		}
		g, err := geo.ParseWKT(wkt.String)
		if err != nil {
			log.WithError(err).WithField("name", r.Name).Warn("unreadable stored geometry")
			continue
		}
		d, ok := q.distance(g, p)
		if !ok {
			continue
		}
		if best == nil || d < best.Distance {
			r.Distance = d
			best = &r
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("nearest %s: %w", q.target.Table, db.Classify(err))
	}
	return best, nil
}

func (q *Planar) distance(g orb.Geometry, p orb.Point) (float64, bool) {
	if q.polyline {
		return geo.PolylineDistance(g, p)
	}
	return geo.EndpointDistance(g, p)
}
