package roads

import (
	"context"
	"fmt"
	"strconv"

	"github.com/EmpoweredVote/roadgeo/internal/nearest"
)

// Match is the road nearest to a queried point.
type Match struct {
	ID         string  `json:"id"`
	RoadName   string  `json:"road_name"`
	SpeedLimit int     `json:"speed_limit"`
	Distance   float64 `json:"distance"`
}

type Service struct {
	q nearest.Querier
}

func NewService(q nearest.Querier) *Service {
	return &Service{q: q}
}

// Nearest returns nil when no roads are stored.
func (s *Service) Nearest(ctx context.Context, lat, lon float64) (*Match, error) {
	res, err := s.q.Nearest(ctx, lat, lon)
	if err != nil || res == nil {
		return nil, err
	}
	speed, err := strconv.Atoi(res.Attribute)
	if err != nil {
		return nil, fmt.Errorf("road %s: stored speed limit %q: %w", res.ID, res.Attribute, err)
	}
	return &Match{
		ID:         res.ID,
		RoadName:   res.Name,
		SpeedLimit: speed,
		Distance:   res.Distance,
	}, nil
}
