package nearest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/EmpoweredVote/roadgeo/internal/config"
	"github.com/EmpoweredVote/roadgeo/internal/db"
	"github.com/EmpoweredVote/roadgeo/internal/geo"
	"gorm.io/gorm"
)

// Index queries PostGIS. The KNN operator walks the GiST index to the closest
// bounding box; ST_Distance then measures the winner exactly.
type Index struct {
	db     *gorm.DB
	target Target
}

func NewIndex(d *gorm.DB, t Target) *Index {
	return &Index{db: d, target: t}
}

func (q *Index) point() string {
	return fmt.Sprintf("ST_SetSRID(ST_MakePoint(?, ?), %d)", geo.SRID)
}

func (q *Index) Nearest(ctx context.Context, lat, lon float64) (res *Result, err error) {
	defer func(began time.Time) { observe(q.target.Table, config.StrategyIndex, began, res, err) }(time.Now())

	geom := quote(q.target.GeomColumn)
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, ST_Distance(%s, %s)
		FROM %s
		ORDER BY %s <-> %s
		LIMIT 1
	`, textColumn(q.target.IDColumn), textColumn(q.target.NameColumn), textColumn(q.target.AttrColumn), geom, q.point(),
		quote(q.target.Table), geom, q.point())

	row := q.db.WithContext(ctx).Raw(query, lon, lat, lon, lat).Row()
	var r Result
	if err := row.Scan(&r.ID, &r.Name, &r.Attribute, &r.Distance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("nearest %s: %w", q.target.Table, db.Classify(err))
	}
	return &r, nil
}

// Within returns every feature whose geometry lies within meters of the
// point, measured on the spheroid.
func (q *Index) Within(ctx context.Context, lat, lon, meters float64) ([]Result, error) {
	geog := quote(q.target.GeomColumn) + "::geography"
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, ST_Distance(%s, %s::geography) AS meters
		FROM %s
		WHERE ST_DWithin(%s, %s::geography, ?)
		ORDER BY meters
	`, textColumn(q.target.IDColumn), textColumn(q.target.NameColumn), textColumn(q.target.AttrColumn), geog, q.point(),
		quote(q.target.Table), geog, q.point())

	rows, err := q.db.WithContext(ctx).Raw(query, lon, lat, lon, lat, meters).Rows()
	if err != nil {
		return nil, fmt.Errorf("within %s: %w", q.target.Table, db.Classify(err))
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.Name, &r.Attribute, &r.Distance); err != nil {
			return nil, fmt.Errorf("scan %s: %w", q.target.Table, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("within %s: %w", q.target.Table, db.Classify(err))
	}
	return out, nil
}
