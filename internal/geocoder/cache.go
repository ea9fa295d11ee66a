package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"healthmap/internal/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cached puts a Redis cache in front of another Geocoder. Only non-empty
// results are cached; Redis failures fall through to the wrapped geocoder.
type Cached struct {
	next    Geocoder
	rdb     *redis.Client
	ttl     time.Duration
	metrics *metrics.Collector
	logr    *zap.Logger
}

// NewCached wraps next. A nil client returns next unchanged.
func NewCached(next Geocoder, rdb *redis.Client, ttl time.Duration, m *metrics.Collector, logr *zap.Logger) Geocoder {
	if rdb == nil {
		return next
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logr == nil {
		logr = zap.NewNop()
	}
	return &Cached{next: next, rdb: rdb, ttl: ttl, metrics: m, logr: logr}
}

// CacheKey normalises the query so "Cairns " and "cairns" share an entry.
func CacheKey(query string, limit int) string {
	q := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return "geocode:" + strconv.Itoa(limit) + ":" + q
}

func (c *Cached) Search(ctx context.Context, query string, limit int) ([]Match, error) {
	key := CacheKey(query, limit)

	s, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var matches []Match
		if jerr := json.Unmarshal([]byte(s), &matches); jerr == nil && len(matches) > 0 {
			c.metrics.ObserveGeocoder("cache_hit", 0)
			return matches, nil
		}
	case errors.Is(err, redis.Nil):
	default:
		c.logr.Warn("geocoder cache read failed", zap.String("key", key), zap.Error(err))
	}

	matches, err := c.next.Search(ctx, query, limit)
	if err != nil || len(matches) == 0 {
		return matches, err
	}

	if b, jerr := json.Marshal(matches); jerr == nil {
		if serr := c.rdb.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			c.logr.Warn("geocoder cache write failed", zap.String("key", key), zap.Error(serr))
		}
	}
	return matches, nil
}
