// Package cache holds the short-lived per-actor meeting list cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"tradedesk/pkg/logger"
	"tradedesk/pkg/model"

	"github.com/redis/go-redis/v9"
)

// MeetingCache stores the merged meeting list of an actor. Misses and
// backend failures look the same to callers: the list is rebuilt from the
// store.
//
// Every actor has a generation that Invalidate bumps. Get reports the
// generation it saw on a miss and Set only keeps a list tagged with the
// generation that is still current, so a list read before an invalidation
// is never served after it.
type MeetingCache interface {
	Get(ctx context.Context, actorID string) (meetings []*model.Meeting, generation int64, ok bool)
	Set(ctx context.Context, actorID string, generation int64, meetings []*model.Meeting)
	Invalidate(ctx context.Context, actorIDs ...string) error
}

// NoGeneration is returned by Get when the generation could not be read.
// Set ignores it.
const NoGeneration int64 = -1

const minGenerationTTL = 24 * time.Hour

// RedisClient is the subset of *redis.Client the cache uses.
type RedisClient interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

type cacheEntry struct {
	Generation int64            `json:"generation"`
	Meetings   []*model.Meeting `json:"meetings"`
}

type RedisMeetingCache struct {
	rdb           RedisClient
	prefix        string
	ttl           time.Duration
	generationTTL time.Duration
	log           *logger.Logger
}

func NewRedisMeetingCache(rdb RedisClient, prefix string, ttl time.Duration, log *logger.Logger) *RedisMeetingCache {
	// a generation must outlive every entry tagged with it
	generationTTL := max(minGenerationTTL, 2*ttl)
	return &RedisMeetingCache{
		rdb:           rdb,
		prefix:        prefix,
		ttl:           ttl,
		generationTTL: generationTTL,
		log:           log,
	}
}

func (c *RedisMeetingCache) key(actorID string) string {
	return fmt.Sprintf("%s:actor:%s", c.prefix, actorID)
}

func (c *RedisMeetingCache) generationKey(actorID string) string {
	return c.key(actorID) + ":gen"
}

func (c *RedisMeetingCache) Get(ctx context.Context, actorID string) ([]*model.Meeting, int64, bool) {
	values, err := c.rdb.MGet(ctx, c.key(actorID), c.generationKey(actorID)).Result()
	if err != nil || len(values) != 2 {
		c.log.Warn("Meeting cache read failed", "actor_id", actorID, "error", err)
		return nil, NoGeneration, false
	}

	generation := int64(0)
	if raw, ok := values[1].(string); ok {
		generation, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.log.Warn("Discarding unreadable meeting cache generation", "actor_id", actorID, "error", err)
			return nil, NoGeneration, false
		}
	}

	raw, ok := values[0].(string)
	if !ok {
		return nil, generation, false
	}

	var entry cacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.log.Warn("Discarding undecodable meeting cache entry", "actor_id", actorID, "error", err)
		return nil, generation, false
	}
	if entry.Generation != generation {
		return nil, generation, false
	}
	return entry.Meetings, generation, true
}

func (c *RedisMeetingCache) Set(ctx context.Context, actorID string, generation int64, meetings []*model.Meeting) {
	if generation < 0 {
		return
	}
	raw, err := json.Marshal(cacheEntry{Generation: generation, Meetings: meetings})
	if err != nil {
		c.log.Warn("Failed to encode meeting cache entry", "actor_id", actorID, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, c.key(actorID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Meeting cache write failed", "actor_id", actorID, "error", err)
	}
}

// Invalidate bumps the generation of every actor. Entries written before
// the bump stop matching and age out on their own TTL.
func (c *RedisMeetingCache) Invalidate(ctx context.Context, actorIDs ...string) error {
	seen := make(map[string]struct{}, len(actorIDs))
	var errs []error
	for _, id := range actorIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		key := c.generationKey(id)
		if err := c.rdb.Incr(ctx, key).Err(); err != nil {
			errs = append(errs, fmt.Errorf("failed to invalidate meeting cache for %s: %w", id, err))
			continue
		}
		if err := c.rdb.Expire(ctx, key, c.generationTTL).Err(); err != nil {
			c.log.Warn("Failed to set meeting cache generation TTL", "actor_id", id, "error", err)
		}
	}
	return errors.Join(errs...)
}

type NoopMeetingCache struct{}

func (NoopMeetingCache) Get(context.Context, string) ([]*model.Meeting, int64, bool) {
	return nil, NoGeneration, false
}

func (NoopMeetingCache) Set(context.Context, string, int64, []*model.Meeting) {}

func (NoopMeetingCache) Invalidate(context.Context, ...string) error { return nil }

// New returns the Redis cache, or a no-op one when rdb is nil.
func New(rdb *redis.Client, prefix string, ttl time.Duration, log *logger.Logger) MeetingCache {
	if rdb == nil {
		return NoopMeetingCache{}
	}
	return NewRedisMeetingCache(rdb, prefix, ttl, log)
}
