package roads

import (
	"github.com/EmpoweredVote/roadgeo/internal/geo"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const TableName = "road_segments"

// Segment is one road centerline with its posted speed limit. Rows are only
// ever inserted; a second ingest of the same file appends duplicates.
type Segment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RammRoadID  int64     `gorm:"column:ramm_road_id" json:"ramm_road_id"`
	RoadName    string    `gorm:"size:255" json:"road_name"`
	ShapeLength float64   `json:"shape_length"`
	SpeedLimit  int       `gorm:"check:speed_limit >= 0" json:"speed_limit"`
	Geom        geo.WKT   `gorm:"column:geom;geometry:LineString" json:"-"`
}

func (Segment) TableName() string {
	return TableName
}

func (s *Segment) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
