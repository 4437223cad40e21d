package roads

import (
	"fmt"

	"github.com/EmpoweredVote/roadgeo/internal/db"
	"github.com/EmpoweredVote/roadgeo/internal/ingest"
	"github.com/EmpoweredVote/roadgeo/internal/nearest"
	"gorm.io/gorm"
)

// Target points the nearest queriers at the road segment table.
var Target = nearest.Target{
	Table:      TableName,
	IDColumn:   "id",
	NameColumn: "road_name",
	AttrColumn: "speed_limit",
	GeomColumn: "geom",
}

// Init creates the road segment table and, on PostGIS, its spatial index.
func Init(d *gorm.DB) error {
	if err := db.EnsureExtension(d, "postgis"); err != nil {
		return fmt.Errorf("enable postgis: %w", err)
	}
	if err := d.AutoMigrate(&Segment{}); err != nil {
		return fmt.Errorf("migrate %s: %w", TableName, db.Classify(err))
	}
	if err := db.EnsureSpatialIndex(d, "idx_road_segments_geom", TableName, "geom"); err != nil {
		return fmt.Errorf("index %s: %w", TableName, err)
	}
	return nil
}

// NewIngestor returns an ingestor writing road features to d.
func NewIngestor(d *gorm.DB, opts ...ingest.Option) *ingest.Ingestor[Segment] {
	opts = append([]ingest.Option{ingest.WithTable(TableName)}, opts...)
	return ingest.New[Segment](ingest.NewGormSink[Segment](d), Transform, opts...)
}
