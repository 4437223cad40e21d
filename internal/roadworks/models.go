package roadworks

import (
	"time"

	"github.com/EmpoweredVote/roadgeo/internal/geo"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const TableName = "road_construction"

// Site is a roadworks worksite footprint. Status values are free text from
// the source and are not checked against any list; the four dates are not
// checked for ordering either.
type Site struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorksiteCode          *string    `gorm:"size:50" json:"worksite_code"`
	WorksiteName          *string    `gorm:"size:255" json:"worksite_name"`
	ProjectName           *string    `gorm:"size:255" json:"project_name"`
	Status                *string    `gorm:"size:50" json:"status"`
	WorksiteType          *string    `gorm:"size:100" json:"worksite_type"`
	ShapeArea             *float64   `json:"shape_area"`
	ShapeLength           *float64   `json:"shape_length"`
	PrincipalOrganisation *string    `gorm:"size:255" json:"principal_organisation"`
	ProjectStartDate      *time.Time `json:"project_start_date"`
	ProjectEndDate        *time.Time `json:"project_end_date"`
	WorkStartDate         *time.Time `json:"work_start_date"`
	WorkCompletionDate    *time.Time `json:"work_completion_date"`
	WorkStatus            *string    `gorm:"size:50" json:"work_status"`

	// POLYGON or MULTIPOLYGON, so the PostGIS column is left untyped.
	Geom geo.WKT `gorm:"column:geom;geometry:Geometry" json:"-"`
}

func (Site) TableName() string {
	return TableName
}

func (s *Site) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
