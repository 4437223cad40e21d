// Package nearest answers "which stored feature is closest to this point".
//
// Two strategies share the Querier interface. The index strategy leans on a
// PostGIS GiST index and the KNN operator. The planar strategy scans every
// row and measures in (lon, lat) degree space, so it works on any store that
// can hand back WKT text. Both report distance in degrees.
package nearest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/EmpoweredVote/roadgeo/internal/config"
	"github.com/EmpoweredVote/roadgeo/internal/db"
	"github.com/EmpoweredVote/roadgeo/internal/metrics"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrWithinUnsupported is returned by radius lookups on a querier that has no
// spatial index to answer them.
var ErrWithinUnsupported = errors.New("radius lookup needs the index strategy")

// Target describes the table a querier reads.
type Target struct {
	Table      string
	IDColumn   string
	NameColumn string
	// AttrColumn is returned verbatim as Result.Attribute.
	AttrColumn string
	GeomColumn string
}

type Result struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Attribute string  `json:"attribute"`
	Distance  float64 `json:"distance"`
}

// Querier finds the single stored feature nearest to a point. A nil result
// with a nil error means the table is empty. Ties may resolve to any record.
type Querier interface {
	Nearest(ctx context.Context, lat, lon float64) (*Result, error)
}

// RadiusQuerier lists features within a ground distance of a point, closest
// first. Distances are in meters.
type RadiusQuerier interface {
	Within(ctx context.Context, lat, lon, meters float64) ([]Result, error)
}

type Options struct {
	// Strategy is one of the config.Strategy values; empty means auto.
	Strategy string
	// Polyline makes the planar strategy measure to every segment instead of
	// only to the two endpoints.
	Polyline bool
}

// New picks a strategy for d. Auto selects the index strategy on PostgreSQL
// and the planar scan everywhere else.
func New(d *gorm.DB, t Target, opts Options) (Querier, error) {
	switch strings.ToLower(opts.Strategy) {
	case "", config.StrategyAuto:
		if db.IsPostgres(d) {
			return NewIndex(d, t), nil
		}
		return NewPlanar(d, t, opts.Polyline), nil
	case config.StrategyIndex:
		if !db.IsPostgres(d) {
			return nil, fmt.Errorf("index strategy needs PostGIS, store is %s", d.Dialector.Name())
		}
		return NewIndex(d, t), nil
	case config.StrategyPlanar:
		return NewPlanar(d, t, opts.Polyline), nil
	default:
		return nil, fmt.Errorf("unknown nearest strategy %q", opts.Strategy)
	}
}

// quote quotes a possibly schema-qualified identifier.
func quote(ident string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

func textColumn(col string) string {
	if col == "" {
		return "''"
	}
	return "COALESCE(CAST(" + quote(col) + " AS TEXT), '')"
}

func observe(table, strategy string, began time.Time, res *Result, err error) {
	outcome := "found"
	switch {
	case err != nil:
		outcome = "error"
	case res == nil:
		outcome = "empty"
	}
	metrics.NearestQueriesTotal.WithLabelValues(table, strategy, outcome).Inc()
	metrics.NearestDurationMs.WithLabelValues(table, strategy).Observe(float64(time.Since(began).Milliseconds()))
}
