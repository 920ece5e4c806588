// Package cache persists discovery results in Redis so repeat lookups within
// the TTL skip the rate limiter and the network entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"funding-advisor/internal/common/database"
	"funding-advisor/internal/common/errors"
	"funding-advisor/internal/common/logger"
	"funding-advisor/internal/common/metrics"
	"funding-advisor/internal/models"
)

// Key derives the cache key for one (source, query) pair. Parameters are
// normalized (trimmed, lowercased) and hashed in sorted key order, so
// semantically identical queries collapse to one entry and different sources
// or parameter sets can never collide.
func Key(source models.Source, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	h.Write([]byte(source))
	for _, name := range names {
		h.Write([]byte{0})
		h.Write([]byte(name))
		h.Write([]byte{'='})
		h.Write([]byte(strings.ToLower(strings.TrimSpace(params[name]))))
	}
	return string(source) + ":" + hex.EncodeToString(h.Sum(nil))[:16]
}

// entry is the stored representation. CachedAt drives TTL checks on read in
// addition to the Redis expiration, so a TTL lowered in config takes effect
// on entries written before the change.
type entry struct {
	Programs []models.FundingProgram `json:"programs"`
	CachedAt time.Time               `json:"cached_at"`
}

// Store is the Redis-backed result cache.
type Store struct {
	redis  *database.RedisClient
	prefix string
	log    logger.Logger
	now    func() time.Time
}

// NewStore creates a result cache using the given key prefix.
func NewStore(rdb *database.RedisClient, prefix string, log logger.Logger) *Store {
	return &Store{
		redis:  rdb,
		prefix: prefix,
		log:    log,
		now:    time.Now,
	}
}

func (s *Store) fullKey(key string) string {
	return s.prefix + ":" + key
}

// Get returns the cached programs for key if present, unexpired, and
// readable. Every failure mode (storage error, corrupt payload, stale entry)
// degrades to a miss; storage errors are logged, never surfaced.
func (s *Store) Get(ctx context.Context, key string, ttl time.Duration) ([]models.FundingProgram, bool) {
	source := sourceOf(key)

	raw, err := s.redis.Get(ctx, s.fullKey(key))
	if err != nil {
		if err != redis.Nil {
			s.log.WithError(errors.NewCacheFailure("get", err)).Warn("Result cache read failed, treating as miss",
				map[string]interface{}{"key": key})
		}
		metrics.CacheMisses.WithLabelValues(source).Inc()
		return nil, false
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		s.log.WithError(err).Warn("Result cache entry corrupt, treating as miss",
			map[string]interface{}{"key": key})
		metrics.CacheMisses.WithLabelValues(source).Inc()
		return nil, false
	}

	if s.now().Sub(e.CachedAt) >= ttl {
		metrics.CacheMisses.WithLabelValues(source).Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues(source).Inc()
	return e.Programs, true
}

// Put stores programs under key with the given TTL. Write failures are
// logged and swallowed; the caller already has the live result in hand.
func (s *Store) Put(ctx context.Context, key string, programs []models.FundingProgram, ttl time.Duration) {
	payload, err := json.Marshal(entry{Programs: programs, CachedAt: s.now().UTC()})
	if err != nil {
		s.log.WithError(err).Error("Failed to encode result cache entry",
			map[string]interface{}{"key": key})
		return
	}

	if err := s.redis.Set(ctx, s.fullKey(key), payload, ttl); err != nil {
		s.log.WithError(errors.NewCacheFailure("set", err)).Warn("Result cache write failed",
			map[string]interface{}{"key": key})
	}
}

// Clear removes every entry under the store's prefix and returns how many
// were removed.
func (s *Store) Clear(ctx context.Context) (int, error) {
	keys, err := s.redis.ScanKeys(ctx, s.prefix+":*")
	if err != nil {
		return 0, errors.NewCacheFailure("scan", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	removed, err := s.redis.Del(ctx, keys...)
	if err != nil {
		return 0, errors.NewCacheFailure("del", err)
	}

	s.log.Info("Result cache cleared", map[string]interface{}{"removed": removed})
	return int(removed), nil
}

// sourceOf extracts the source segment of a cache key for metric labels.
func sourceOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
