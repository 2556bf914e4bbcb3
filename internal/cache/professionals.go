// Package cache adds a Redis read-through layer in front of a professional store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/metrics"
	"github.com/Kayky4/vitasyn/internal/model"
	"github.com/Kayky4/vitasyn/internal/schedule"
)

const keyPrefix = "vitasyn:professional:"

// Professionals caches professional records. Redis failures fall through to the backing store.
type Professionals struct {
	next   schedule.ProfessionalStore
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

var _ schedule.ProfessionalStore = (*Professionals)(nil)

func NewProfessionals(next schedule.ProfessionalStore, rdb *redis.Client, ttl time.Duration, logger *zerolog.Logger) *Professionals {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "cache").Logger()
	}
	return &Professionals{next: next, redis: rdb, ttl: ttl, logger: l}
}

func key(professionalID string) string {
	return keyPrefix + professionalID
}

func (c *Professionals) GetProfessional(ctx context.Context, professionalID string) (*model.Professional, error) {
	var pro model.Professional
	if c.readCache(ctx, key(professionalID), &pro) {
		metrics.IncCacheLookup("hit")
		return &pro, nil
	}
	metrics.IncCacheLookup("miss")

	fresh, err := c.next.GetProfessional(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, key(professionalID), fresh)
	return fresh, nil
}

// SaveAvailability writes through and drops the cached record.
func (c *Professionals) SaveAvailability(ctx context.Context, professionalID string, doc availability.Document) error {
	if err := c.next.SaveAvailability(ctx, professionalID, doc); err != nil {
		return err
	}
	c.Invalidate(ctx, professionalID)
	return nil
}

func (c *Professionals) Invalidate(ctx context.Context, professionalID string) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, key(professionalID)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("professional_id", professionalID).Msg("cache invalidation failed")
	}
}

func (c *Professionals) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.ttl <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(val, out); err != nil {
		return false
	}
	return true
}

func (c *Professionals) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Ping checks the Redis connection.
func (c *Professionals) Ping(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
