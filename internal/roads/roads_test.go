package roads_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/EmpoweredVote/roadgeo/internal/config"
	"github.com/EmpoweredVote/roadgeo/internal/db"
	"github.com/EmpoweredVote/roadgeo/internal/feature"
	"github.com/EmpoweredVote/roadgeo/internal/ingest"
	"github.com/EmpoweredVote/roadgeo/internal/nearest"
	"github.com/EmpoweredVote/roadgeo/internal/roads"
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
	require.NoError(t, roads.Init(d))
	return d
}

// collection builds n road features spaced 0.05 degrees apart along a
// parallel. The feature at skipGeometry (if any) has no geometry block.
func collection(t *testing.T, n, skipGeometry int) []feature.Raw {
	t.Helper()
	var parts []string
	for i := 0; i < n; i++ {
		lon := 170 + 0.05*float64(i)
		geom := fmt.Sprintf(`"geometry":{"type":"LineString","coordinates":[[%.3f,-36.0],[%.3f,-36.0]]},`, lon, lon+0.005)
		if i == skipGeometry {
			geom = ""
		}
		parts = append(parts, fmt.Sprintf(
			`{"type":"Feature",%s"properties":{"road_id":%d,"road_name":"Road %d","ns_speed_limit":"%d"}}`,
			geom, i, i, 30+i%5*10))
	}
	raws, err := feature.DecodeCollection(strings.NewReader(
		`{"type":"FeatureCollection","features":[` + strings.Join(parts, ",") + `]}`))
	require.NoError(t, err)
	return raws
}

func count(t *testing.T, d *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, d.Model(&roads.Segment{}).Count(&n).Error)
	return n
}

func TestIngest_SkipsMissingGeometry(t *testing.T) {
	d := openStore(t)

	rep, err := roads.NewIngestor(d).Run(context.Background(), collection(t, 100, 17))
	require.NoError(t, err)

	assert.Equal(t, 99, rep.Inserted)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, 17, rep.Skipped[0].Index)
	assert.Equal(t, int64(99), count(t, d))
}

func TestIngest_TwiceDoublesRows(t *testing.T) {
	d := openStore(t)
	raws := collection(t, 25, -1)

	for i := 0; i < 2; i++ {
		rep, err := roads.NewIngestor(d, ingest.WithChunkSize(10)).Run(context.Background(), raws)
		require.NoError(t, err)
		assert.Equal(t, 25, rep.Inserted)
	}
	assert.Equal(t, int64(50), count(t, d))
}

func TestIngest_FallbackOnConstraintViolation(t *testing.T) {
	d := openStore(t)
	raws := collection(t, 6, -1)

	// a negative limit cannot come out of Transform, so force one in
	transform := func(raw feature.Raw) (roads.Segment, error) {
		seg, err := roads.Transform(raw)
		if raw.Index == 2 {
			seg.SpeedLimit = -1
		}
		return seg, err
	}
	in := ingest.New[roads.Segment](ingest.NewGormSink[roads.Segment](d), transform)

	rep, err := in.Run(context.Background(), raws)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Fallbacks)
	assert.Equal(t, 5, rep.Inserted)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, 2, rep.Skipped[0].Index)
	assert.Equal(t, ingest.StageInsert, rep.Skipped[0].Stage)
	assert.Equal(t, int64(5), count(t, d), "rolled-back chunk leaves no partial rows")
}

func TestIngest_ClosedStoreAborts(t *testing.T) {
	d := openStore(t)
	sqlDB, err := d.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rep, err := roads.NewIngestor(d, ingest.WithChunkSize(10)).Run(context.Background(), collection(t, 25, -1))
	require.ErrorIs(t, err, db.ErrConnectivity)
	assert.Zero(t, rep.Inserted)
	assert.Zero(t, rep.Fallbacks, "a lost store is not retried record by record")
	assert.Empty(t, rep.Skipped)
}

func TestService_NearestOverPlanarStore(t *testing.T) {
	d := openStore(t)
	_, err := roads.NewIngestor(d).Run(context.Background(), collection(t, 10, -1))
	require.NoError(t, err)

	q, err := nearest.New(d, roads.Target, nearest.Options{Strategy: config.StrategyAuto})
	require.NoError(t, err)
	svc := roads.NewService(q)

	// Road 3 runs from lon 170.15 to 170.155
	m, err := svc.Nearest(context.Background(), -36.0, 170.156)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Road 3", m.RoadName)
	assert.Equal(t, 60, m.SpeedLimit)
	assert.InDelta(t, 0.001, m.Distance, 1e-9)
	_, err = uuid.Parse(m.ID)
	assert.NoError(t, err)
}

func TestService_EmptyStore(t *testing.T) {
	d := openStore(t)
	q, err := nearest.New(d, roads.Target, nearest.Options{})
	require.NoError(t, err)

	m, err := roads.NewService(q).Nearest(context.Background(), -36.0, 174.0)
	require.NoError(t, err)
	assert.Nil(t, m)
}
