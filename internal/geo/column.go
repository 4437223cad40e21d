package geo

import (
	"context"
	"database/sql/driver"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// WKT is a geometry column holding WKT text.
//
// On PostgreSQL the column is a PostGIS geometry with SRID 4326 and values are
// written through ST_GeomFromText. Other dialects store the text as is. The
// PostGIS subtype comes from the field's `geometry` tag setting, e.g.
//
//	Geom geo.WKT `gorm:"column:geom;geometry:LineString"`
type WKT string

func (WKT) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() != "postgres" {
		return "text"
	}
	kind := field.TagSettings["GEOMETRY"]
	if kind == "" {
		kind = "Geometry"
	}
	return fmt.Sprintf("geometry(%s,%d)", kind, SRID)
}

func (w WKT) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	if db.Dialector.Name() == "postgres" {
		return clause.Expr{SQL: fmt.Sprintf("ST_GeomFromText(?, %d)", SRID), Vars: []interface{}{string(w)}}
	}
	return clause.Expr{SQL: "?", Vars: []interface{}{string(w)}}
}

func (w WKT) Value() (driver.Value, error) { return string(w), nil }

func (w *WKT) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*w = ""
	case string:
		*w = WKT(v)
	case []byte:
		*w = WKT(v)
	default:
		return fmt.Errorf("geo.WKT: cannot scan %T", src)
	}
	return nil
}
