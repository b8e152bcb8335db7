package station

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/velibmap/velib-go/internal/models"
)

// Parse validates a raw feed record. The feed publishes coordinates longitude
// first; the returned record holds them as a latitude/longitude Location.
func Parse(raw models.RawStation) (models.StationRecord, error) {
	location, err := parseCoordinates(raw.Coordinates)
	if err != nil {
		return models.StationRecord{}, err
	}

	record := models.StationRecord{
		StationDetails: raw.StationDetails,
		Name:           models.DefaultStationName,
		Coordinates:    location,
	}
	if raw.Name != nil {
		record.Name = *raw.Name
	}
	if raw.AvailabilityCount != nil {
		record.AvailabilityCount = *raw.AvailabilityCount
	}

	return record, nil
}

func parseCoordinates(values []any) (models.Location, error) {
	if len(values) != 2 {
		return models.Location{}, fmt.Errorf("%w: expected 2 coordinates, got %d", ErrMalformedRecord, len(values))
	}

	lon, ok := toFloat(values[0])
	if !ok {
		return models.Location{}, fmt.Errorf("%w: longitude %v is not a number", ErrMalformedRecord, values[0])
	}
	lat, ok := toFloat(values[1])
	if !ok {
		return models.Location{}, fmt.Errorf("%w: latitude %v is not a number", ErrMalformedRecord, values[1])
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return models.Location{}, fmt.Errorf("%w: coordinates (%v, %v) out of range", ErrMalformedRecord, lon, lat)
	}

	return models.Location{Latitude: lat, Longitude: lon}, nil
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
