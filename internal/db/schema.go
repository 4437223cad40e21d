package db

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// EnsureExtension enables a PostgreSQL extension such as postgis. It is a
// no-op on other dialects.
func EnsureExtension(d *gorm.DB, name string) error {
	if !IsPostgres(d) {
		return nil
	}
	return Classify(d.Exec(`CREATE EXTENSION IF NOT EXISTS ` + pq.QuoteIdentifier(name)).Error)
}

// EnsureSpatialIndex creates a GiST index over a geometry column. Only
// PostGIS has one; other dialects are left untouched.
func EnsureSpatialIndex(d *gorm.DB, index, table, column string) error {
	if !IsPostgres(d) {
		return nil
	}
	return Classify(d.Exec(`CREATE INDEX IF NOT EXISTS ` + pq.QuoteIdentifier(index) +
		` ON ` + pq.QuoteIdentifier(table) + ` USING GIST (` + pq.QuoteIdentifier(column) + `)`).Error)
}
