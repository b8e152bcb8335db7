package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/velibmap/velib-go/internal/feed"
	"github.com/velibmap/velib-go/internal/geocode"
	"github.com/velibmap/velib-go/internal/models"
	"github.com/velibmap/velib-go/internal/station"
)

// NearbyResult is the outcome of one address lookup.
type NearbyResult struct {
	Address  string
	Origin   models.Location
	Radius   float64
	Stations []models.RankedStation
}

// NearbyService resolves an address and ranks the stations around it.
type NearbyService struct {
	geocoder geocode.Geocoder
	fetcher  feed.Fetcher
	finder   *station.Finder
}

func NewNearbyService(geocoder geocode.Geocoder, fetcher feed.Fetcher, finder *station.Finder) *NearbyService {
	return &NearbyService{
		geocoder: geocoder,
		fetcher:  fetcher,
		finder:   finder,
	}
}

// Lookup geocodes address, fetches the current feed and returns the stations
// within radius meters, nearest first. A negative radius uses the finder's.
// The feed is never ranked when the fetch fails.
func (s *NearbyService) Lookup(ctx context.Context, address string, radius float64) (*NearbyResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrAddressRequired
	}

	origin, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			log.Debug().Str("address", address).Msg("Address not found")
			return nil, fmt.Errorf("%w: %s", ErrAddressNotFound, address)
		}
		log.Error().Err(err).Str("address", address).Msg("Geocoding failed")
		return nil, fmt.Errorf("%w: %v", ErrGeocoding, err)
	}

	stations, err := s.fetcher.FetchStations(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Fetching station feed failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if radius < 0 {
		radius = s.finder.MaxDistance()
	}
	nearby := s.finder.FindWithin(stations, origin, radius)

	log.Info().
		Str("address", address).
		Float64("lat", origin.Latitude).
		Float64("lon", origin.Longitude).
		Int("station_count", len(nearby)).
		Msg("Nearby lookup")

	return &NearbyResult{
		Address:  address,
		Origin:   origin,
		Radius:   radius,
		Stations: nearby,
	}, nil
}
