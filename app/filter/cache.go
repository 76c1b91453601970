package filter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/voltaic/catalog/models"
)

const attributeKeyPrefix = "catalog:attribute:"

// DefaultAttributeTTL is used when CachedLookup is given no TTL.
const DefaultAttributeTTL = 10 * time.Minute

type cachedAttribute struct {
	ID    uint   `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Type  int    `json:"type_id"`
}

// CachedLookup keeps resolved attributes in redis. Only hits are cached: an
// attribute's type never changes once created, while a missing slug may be
// created by the next import. Redis failures fall back to next.
type CachedLookup struct {
	next  AttributeLookup
	redis redis.UniversalClient
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedLookup(next AttributeLookup, client redis.UniversalClient, ttl time.Duration, log *zap.Logger) *CachedLookup {
	if ttl <= 0 {
		ttl = DefaultAttributeTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedLookup{next: next, redis: client, ttl: ttl, log: log}
}

func attributeKey(slug string) string {
	return attributeKeyPrefix + slug
}

func (c *CachedLookup) AttributesBySlug(ctx context.Context, slugs []string) ([]models.Attribute, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(slugs))
	for i, s := range slugs {
		keys[i] = attributeKey(s)
	}

	vals, err := c.redis.MGet(ctx, keys...).Result()
	if err != nil {
		c.log.Warn("attribute cache read failed", zap.Error(err))
		return c.next.AttributesBySlug(ctx, slugs)
	}

	var found []models.Attribute
	var misses []string
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			misses = append(misses, slugs[i])
			continue
		}
		var ca cachedAttribute
		if err := json.Unmarshal([]byte(raw), &ca); err != nil {
			misses = append(misses, slugs[i])
			continue
		}
		t, ok := models.AttributeTypeFromID(ca.Type)
		if !ok {
			misses = append(misses, slugs[i])
			continue
		}
		found = append(found, models.Attribute{ID: ca.ID, Slug: ca.Slug, Title: ca.Title, Type: t})
	}
	if len(misses) == 0 {
		return found, nil
	}

	loaded, err := c.next.AttributesBySlug(ctx, misses)
	if err != nil {
		return nil, err
	}
	c.store(ctx, loaded)
	return append(found, loaded...), nil
}

func (c *CachedLookup) store(ctx context.Context, attrs []models.Attribute) {
	if len(attrs) == 0 {
		return
	}
	pipe := c.redis.Pipeline()
	for _, a := range attrs {
		data, err := json.Marshal(cachedAttribute{ID: a.ID, Slug: a.Slug, Title: a.Title, Type: a.Type.ID()})
		if err != nil {
			continue
		}
		pipe.Set(ctx, attributeKey(a.Slug), data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("attribute cache write failed", zap.Error(err))
	}
}
