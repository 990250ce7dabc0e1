package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mna11/ReadMe3D/internal/core/domain"
)

var _ domain.ActivitySource = (*CachedActivitySource)(nil)

const (
	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheError   = "error"
	CacheCorrupt = "corrupt"
)

const DefaultCacheTTL = 30 * time.Minute

type CachedActivitySource struct {
	next  domain.ActivitySource
	cache *redis.Client
	ttl   time.Duration

	// OnResult, when set, observes every lookup outcome.
	OnResult func(result string)
}

func NewCachedActivitySource(next domain.ActivitySource, cache *redis.Client, ttl time.Duration) *CachedActivitySource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedActivitySource{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

func (s *CachedActivitySource) cacheKey(username string) string {
	return fmt.Sprintf("city:calendar:%s", username)
}

func (s *CachedActivitySource) observe(result string) {
	if s.OnResult != nil {
		s.OnResult(result)
	}
}

func (s *CachedActivitySource) Invalidate(ctx context.Context, username string) error {
	if err := s.cache.Del(ctx, s.cacheKey(username)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate calendar of %s: %v", username, err)
		return err
	}
	return nil
}

// FetchCalendar reads through the cache. Redis failures degrade to the next
// source instead of failing the request.
func (s *CachedActivitySource) FetchCalendar(ctx context.Context, username string) (*domain.Calendar, error) {
	key := s.cacheKey(username)

	val, err := s.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cal domain.Calendar
		if err := json.Unmarshal(val, &cal); err == nil {
			s.observe(CacheHit)
			return &cal, nil
		}
		log.Printf("[CACHE] Corrupted calendar for %s, cleaning up key", username)
		s.observe(CacheCorrupt)
		s.cache.Del(ctx, key)
	case errors.Is(err, redis.Nil):
		s.observe(CacheMiss)
	default:
		log.Printf("[CACHE] Redis read error: %v", err)
		s.observe(CacheError)
	}

	cal, err := s.next.FetchCalendar(ctx, username)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(cal); err == nil {
		if setErr := s.cache.Set(ctx, key, data, s.ttl).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return cal, nil
}
