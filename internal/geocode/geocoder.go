package geocode

import (
	"context"
	"errors"
	"fmt"

	"github.com/velibmap/velib-go/internal/config"
	"github.com/velibmap/velib-go/internal/models"
	"github.com/velibmap/velib-go/pkg/http/client"
)

// ErrNotFound is returned when an address does not resolve to a location.
var ErrNotFound = errors.New("address not found")

// Geocoder resolves a free-text address to a location.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.Location, error)
}

// NewFromConfig builds a Nominatim geocoder, wrapped in a CachingGeocoder
// unless the cache is disabled.
func NewFromConfig(cfg *config.Config, cacheCfg *config.CacheConfig) (Geocoder, error) {
	httpClient := client.New(client.Options{
		BaseURL:   cfg.GeocoderBaseURL,
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	})
	nominatim := NewNominatim(httpClient)

	if cacheCfg == nil || !cacheCfg.EnableGeocodeCache {
		return nominatim, nil
	}

	cached, err := NewCachingGeocoder(nominatim, cacheCfg)
	if err != nil {
		return nil, fmt.Errorf("creating geocode cache: %w", err)
	}
	return cached, nil
}
