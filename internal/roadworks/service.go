package roadworks

import (
	"context"
	"fmt"

	"github.com/EmpoweredVote/roadgeo/internal/db"
	"github.com/EmpoweredVote/roadgeo/internal/nearest"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Distance units reported in Match.Unit.
const (
	UnitDegrees = "degrees"
	UnitMeters  = "meters"
)

// Match is a worksite near a queried point. Nearest lookups measure in
// degrees; radius lookups measure in meters.
type Match struct {
	Site
	Distance float64 `json:"distance"`
	Unit     string  `json:"unit"`
}

type Service struct {
	q             nearest.Querier
	db            *gorm.DB
	defaultRadius float64
}

// NewService answers lookups through q and loads full site rows from d.
// defaultRadius applies to radius lookups that do not name one.
func NewService(q nearest.Querier, d *gorm.DB, defaultRadius float64) *Service {
	return &Service{q: q, db: d, defaultRadius: defaultRadius}
}

func (s *Service) DefaultRadius() float64 { return s.defaultRadius }

// Nearest returns nil when no worksites are stored.
func (s *Service) Nearest(ctx context.Context, lat, lon float64) (*Match, error) {
	res, err := s.q.Nearest(ctx, lat, lon)
	if err != nil || res == nil {
		return nil, err
	}
	matches, err := s.hydrate(ctx, []nearest.Result{*res}, UnitDegrees)
	if err != nil {
		return nil, err
	}
	return &matches[0], nil
}

// Within lists worksites within meters of the point, closest first. Only
// queriers backed by a spatial index can answer; others yield
// nearest.ErrWithinUnsupported.
func (s *Service) Within(ctx context.Context, lat, lon, meters float64) ([]Match, error) {
	rq, ok := s.q.(nearest.RadiusQuerier)
	if !ok {
		return nil, nearest.ErrWithinUnsupported
	}
	if meters <= 0 {
		meters = s.defaultRadius
	}
	if meters <= 0 {
		return nil, fmt.Errorf("radius must be positive")
	}
	results, err := rq.Within(ctx, lat, lon, meters)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, results, UnitMeters)
}

// hydrate loads the full rows behind results, keeping their order. A row
// that has vanished is reported with just the queried columns.
func (s *Service) hydrate(ctx context.Context, results []nearest.Result, unit string) ([]Match, error) {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}

	byID := make(map[string]Site, len(results))
	if len(ids) > 0 {
		var sites []Site
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&sites).Error; err != nil {
			return nil, fmt.Errorf("load %s: %w", TableName, db.Classify(err))
		}
		for _, site := range sites {
			byID[site.ID.String()] = site
		}
	}

	out := make([]Match, 0, len(results))
	for _, r := range results {
		site, ok := byID[r.ID]
		if !ok {
			site = Site{WorksiteName: &r.Name, Status: &r.Attribute}
			site.ID, _ = uuid.Parse(r.ID)
		}
		out = append(out, Match{Site: site, Distance: r.Distance, Unit: unit})
	}
	return out, nil
}
