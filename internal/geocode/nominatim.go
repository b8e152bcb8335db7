package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/velibmap/velib-go/internal/models"
	"github.com/velibmap/velib-go/pkg/http/client"
)

// Nominatim geocodes addresses with the OpenStreetMap Nominatim search API.
// The usage policy requires an identifying User-Agent, which is set on the
// HTTP client.
type Nominatim struct {
	httpClient client.Interface
}

func NewNominatim(httpClient client.Interface) *Nominatim {
	return &Nominatim{httpClient: httpClient}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (n *Nominatim) Geocode(ctx context.Context, address string) (models.Location, error) {
	query := url.Values{
		"q":      {address},
		"format": {"jsonv2"},
		"limit":  {"1"},
	}

	resp, err := n.httpClient.Get(ctx, "/search", query)
	if err != nil {
		return models.Location{}, fmt.Errorf("geocoding request: %w", err)
	}
	if !resp.OK() {
		return models.Location{}, fmt.Errorf("geocoding request returned status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.Unmarshal(resp.Body, &places); err != nil {
		return models.Location{}, fmt.Errorf("decoding geocoding response: %w", err)
	}
	if len(places) == 0 {
		return models.Location{}, ErrNotFound
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("parsing latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("parsing longitude %q: %w", places[0].Lon, err)
	}

	log.Debug().
		Str("address", address).
		Str("display_name", places[0].DisplayName).
		Float64("lat", lat).
		Float64("lon", lon).
		Msg("Geocoded address")

	return models.Location{Latitude: lat, Longitude: lon}, nil
}
