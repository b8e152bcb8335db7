package geocode

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"github.com/velibmap/velib-go/internal/config"
	"github.com/velibmap/velib-go/internal/models"
)

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// cacheEntry remembers both resolved and unresolvable addresses.
type cacheEntry struct {
	Location  models.Location
	Found     bool
	ExpiresAt time.Time
}

// CachingGeocoder keeps recent geocoding answers in an LRU cache so repeated
// lookups of the same address do not reach the upstream geocoder.
type CachingGeocoder struct {
	next   Geocoder
	lru    *lru.Cache[string, *cacheEntry]
	ttl    time.Duration
	clock  clock
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewCachingGeocoder(next Geocoder, cfg *config.CacheConfig) (*CachingGeocoder, error) {
	lruCache, err := lru.New[string, *cacheEntry](cfg.GeocodeLRUSize)
	if err != nil {
		return nil, err
	}

	return &CachingGeocoder{
		next:  next,
		lru:   lruCache,
		ttl:   cfg.GetGeocodeLRUTTL(),
		clock: systemClock{},
	}, nil
}

func (c *CachingGeocoder) Geocode(ctx context.Context, address string) (models.Location, error) {
	key := cacheKey(address)

	if entry, ok := c.lru.Get(key); ok {
		if c.clock.Now().Before(entry.ExpiresAt) {
			c.hits.Add(1)
			log.Debug().Str("address", key).Msg("Geocode cache HIT")
			if !entry.Found {
				return models.Location{}, ErrNotFound
			}
			return entry.Location, nil
		}
		c.lru.Remove(key)
	}
	c.misses.Add(1)
	log.Debug().Str("address", key).Msg("Geocode cache MISS")

	location, err := c.next.Geocode(ctx, address)
	switch {
	case errors.Is(err, ErrNotFound):
		c.lru.Add(key, &cacheEntry{ExpiresAt: c.clock.Now().Add(c.ttl)})
		return models.Location{}, err
	case err != nil:
		return models.Location{}, err
	}

	c.lru.Add(key, &cacheEntry{
		Location:  location,
		Found:     true,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	})
	return location, nil
}

// Stats returns cache hit and miss counts
func (c *CachingGeocoder) Stats() map[string]uint64 {
	return map[string]uint64{
		"hits":   c.hits.Load(),
		"misses": c.misses.Load(),
	}
}

func (c *CachingGeocoder) Clear() {
	c.lru.Purge()
}

func cacheKey(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}
