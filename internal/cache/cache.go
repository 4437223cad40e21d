// Package cache puts Redis in front of a nearest querier. Answers are keyed
// by the exact query point, grouped under its geohash cell. Only found
// features are cached; an empty answer always goes back to the store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/EmpoweredVote/roadgeo/internal/config"
	"github.com/EmpoweredVote/roadgeo/internal/logging"
	"github.com/EmpoweredVote/roadgeo/internal/metrics"
	"github.com/EmpoweredVote/roadgeo/internal/nearest"
	"github.com/mmcloughlin/geohash"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// OpenRedis returns nil when no address is configured, which turns caching
// off.
func OpenRedis(cfg config.Redis) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

type Querier struct {
	inner     nearest.Querier
	rc        *redis.Client
	prefix    string
	ttl       time.Duration
	precision uint
	log       *logrus.Entry
}

// Wrap caches inner's answers under prefix. With a nil client inner is
// returned unchanged.
func Wrap(inner nearest.Querier, rc *redis.Client, prefix string, cfg config.Redis) nearest.Querier {
	if rc == nil {
		return inner
	}
	precision := cfg.GeohashPrecision
	if precision == 0 || precision > 12 {
		precision = 8
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Querier{
		inner:     inner,
		rc:        rc,
		prefix:    prefix,
		ttl:       ttl,
		precision: precision,
		log:       logging.For("cache").WithField("prefix", prefix),
	}
}

// Key is the Redis key for the answer at (lat, lon). The geohash cell leads
// so one cell's keys sit together; the coordinates make it exact.
func Key(prefix string, lat, lon float64, precision uint) string {
	return fmt.Sprintf("%s:nearest:%s:%s,%s", prefix,
		geohash.EncodeWithPrecision(lat, lon, precision),
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64))
}

// Invalidate drops every cached answer under prefix. Ingestion calls it after
// adding rows, since a cached nearest feature may no longer be the nearest.
func Invalidate(ctx context.Context, rc *redis.Client, prefix string) (int, error) {
	if rc == nil {
		return 0, nil
	}
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := rc.Scan(ctx, cursor, prefix+":nearest:*", 500).Result()
		if err != nil {
			return removed, fmt.Errorf("scan %s: %w", prefix, err)
		}
		if len(keys) > 0 {
			n, err := rc.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("del %s: %w", prefix, err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

type entry struct {
	Result *nearest.Result `json:"result"`
}

func (q *Querier) Nearest(ctx context.Context, lat, lon float64) (*nearest.Result, error) {
	key := Key(q.prefix, lat, lon, q.precision)

	s, err := q.rc.Get(ctx, key).Result()
	switch {
	case err == nil:
		var e entry
		if jerr := json.Unmarshal([]byte(s), &e); jerr == nil && e.Result != nil {
			metrics.CacheHitsTotal.Inc()
			return e.Result, nil
		}
		q.log.WithField("key", key).Warn("discarding undecodable cache entry")
	case errors.Is(err, redis.Nil):
	default:
		q.log.WithError(err).Warn("redis get failed, querying store")
	}
	metrics.CacheMissesTotal.Inc()

	res, err := q.inner.Nearest(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	b, _ := json.Marshal(entry{Result: res})
	if err := q.rc.Set(ctx, key, b, q.ttl).Err(); err != nil {
		q.log.WithError(err).Warn("redis set failed")
	}
	return res, nil
}

// Within is never cached; it forwards to the wrapped querier when that can
// answer radius lookups.
func (q *Querier) Within(ctx context.Context, lat, lon, meters float64) ([]nearest.Result, error) {
	rq, ok := q.inner.(nearest.RadiusQuerier)
	if !ok {
		return nil, nearest.ErrWithinUnsupported
	}
	return rq.Within(ctx, lat, lon, meters)
}
