package roadworks

import (
	"fmt"

	"github.com/EmpoweredVote/roadgeo/internal/db"
	"github.com/EmpoweredVote/roadgeo/internal/ingest"
	"github.com/EmpoweredVote/roadgeo/internal/nearest"
	"gorm.io/gorm"
)

var Target = nearest.Target{
	Table:      TableName,
	IDColumn:   "id",
	NameColumn: "worksite_name",
	AttrColumn: "status",
	GeomColumn: "geom",
}

// Init creates the roadworks table and, on PostGIS, its spatial index.
func Init(d *gorm.DB) error {
	if err := db.EnsureExtension(d, "postgis"); err != nil {
		return fmt.Errorf("enable postgis: %w", err)
	}
	if err := d.AutoMigrate(&Site{}); err != nil {
		return fmt.Errorf("migrate %s: %w", TableName, db.Classify(err))
	}
	if err := db.EnsureSpatialIndex(d, "idx_road_construction_geom", TableName, "geom"); err != nil {
		return fmt.Errorf("index %s: %w", TableName, err)
	}
	return nil
}

func NewIngestor(d *gorm.DB, opts ...ingest.Option) *ingest.Ingestor[Site] {
	opts = append([]ingest.Option{ingest.WithTable(TableName)}, opts...)
	return ingest.New[Site](ingest.NewGormSink[Site](d), Transform, opts...)
}
