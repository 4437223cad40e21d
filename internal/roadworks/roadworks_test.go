package roadworks_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/EmpoweredVote/roadgeo/internal/config"
	"github.com/EmpoweredVote/roadgeo/internal/db"
	"github.com/EmpoweredVote/roadgeo/internal/feature"
	"github.com/EmpoweredVote/roadgeo/internal/nearest"
	"github.com/EmpoweredVote/roadgeo/internal/roadworks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openStore(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := db.Open(config.Database{URL: "file:" + uuid.NewString() + "?mode=memory&cache=shared"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := d.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, roadworks.Init(d))
	return d
}

const sites = `{"type":"FeatureCollection","features":[
  {"type":"Feature","properties":{"WorksiteName":"Dominion Rd resurfacing","Status":"Active","ProjectName":"Renewals","WorkStartDate":1706745600000},
   "geometry":{"type":"Polygon","coordinates":[[[174.740,-36.880],[174.741,-36.880],[174.741,-36.879],[174.740,-36.880]]]}},
  {"type":"Feature","properties":{"WorksiteName":"Point site"},
   "geometry":{"type":"Point","coordinates":[174.7,-36.8]}},
  {"type":"Feature","properties":{"WorksiteName":"Quay St upgrade","Status":"Planned"},
   "geometry":{"type":"MultiPolygon","coordinates":[[[[174.770,-36.843],[174.771,-36.843],[174.771,-36.842],[174.770,-36.843]]]]}}
]}`

func ingestSites(t *testing.T, d *gorm.DB) {
	t.Helper()
	raws, err := feature.DecodeCollection(strings.NewReader(sites))
	require.NoError(t, err)
	rep, err := roadworks.NewIngestor(d).Run(context.Background(), raws)
	require.NoError(t, err)
	require.Equal(t, 2, rep.Inserted)
	require.Len(t, rep.Skipped, 1)
	require.Equal(t, 1, rep.Skipped[0].Index)
}

func TestService_Nearest(t *testing.T) {
	d := openStore(t)
	ingestSites(t, d)

	q, err := nearest.New(d, roadworks.Target, nearest.Options{})
	require.NoError(t, err)
	svc := roadworks.NewService(q, d, 100)

	m, err := svc.Nearest(context.Background(), -36.8425, 174.7712)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Quay St upgrade", *m.WorksiteName)
	assert.Equal(t, "Planned", *m.Status)
	assert.Equal(t, roadworks.UnitDegrees, m.Unit)

	m, err = svc.Nearest(context.Background(), -36.8801, 174.7399)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Renewals", *m.ProjectName, "full row is loaded")
	require.NotNil(t, m.WorkStartDate)
	assert.Equal(t, 2024, m.WorkStartDate.Year())

	_, err = svc.Within(context.Background(), -36.8801, 174.7399, 100)
	assert.ErrorIs(t, err, nearest.ErrWithinUnsupported)
}

type radiusStub struct {
	results []nearest.Result
	err     error
}

func (s radiusStub) Nearest(context.Context, float64, float64) (*nearest.Result, error) {
	if s.err != nil || len(s.results) == 0 {
		return nil, s.err
	}
	return &s.results[0], nil
}

func (s radiusStub) Within(_ context.Context, _, _, meters float64) ([]nearest.Result, error) {
	var out []nearest.Result
	for _, r := range s.results {
		if r.Distance <= meters {
			out = append(out, r)
		}
	}
	return out, s.err
}

func serve(t *testing.T, q nearest.Querier, target string) *httptest.ResponseRecorder {
	t.Helper()
	h := roadworks.SetupRoutes(roadworks.NewService(q, openStore(t), config.Default().Query.WithinMeters))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestHandlers(t *testing.T) {
	stub := radiusStub{results: []nearest.Result{
		{ID: uuid.NewString(), Name: "Karangahape Rd", Attribute: "Active", Distance: 40},
		{ID: uuid.NewString(), Name: "Symonds St", Attribute: "Planned", Distance: 180},
	}}

	rr := serve(t, stub, "/nearest?lat=-36.858&lon=174.755&within=100")
	require.Equal(t, http.StatusOK, rr.Code)
	var m roadworks.Match
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&m))
	assert.Equal(t, "Karangahape Rd", *m.WorksiteName)
	assert.Equal(t, roadworks.UnitMeters, m.Unit)

	rr = serve(t, stub, "/within?lat=-36.858&lon=174.755&meters=200")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []roadworks.Match
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Len(t, list, 2)

	rr = serve(t, stub, "/within?lat=-36.858&lon=174.755")
	require.Equal(t, http.StatusOK, rr.Code, "configured default radius of 100 m applies")
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusNotFound, serve(t, stub, "/nearest?lat=0&lon=0&within=10").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, stub, "/nearest?lat=0&lon=0&within=-5").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, stub, "/within?lat=0&lon=0&meters=abc").Code)
}

type plainStub struct{ err error }

func (s plainStub) Nearest(context.Context, float64, float64) (*nearest.Result, error) {
	return nil, s.err
}

func TestHandlers_Errors(t *testing.T) {
	assert.Equal(t, http.StatusNotImplemented, serve(t, plainStub{}, "/nearest?lat=0&lon=0&within=50").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, plainStub{}, "/nearest?lat=0&lon=0").Code)
	assert.Equal(t, http.StatusServiceUnavailable,
		serve(t, plainStub{err: fmt.Errorf("nearest: %w", db.ErrConnectivity)}, "/nearest?lat=0&lon=0").Code)
}
