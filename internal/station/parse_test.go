package station

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velibmap/velib-go/internal/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     models.RawStation
		want    models.StationRecord
		wantErr bool
	}{
		{
			name: "complete record",
			raw: models.RawStation{
				StationDetails:    models.StationDetails{Code: "44015", Commune: "Paris", Capacity: 20},
				Name:              stringPtr("Rivoli - Sébastopol"),
				Coordinates:       []any{2.3494, 48.8596},
				AvailabilityCount: intPtr(12),
			},
			want: models.StationRecord{
				StationDetails:    models.StationDetails{Code: "44015", Commune: "Paris", Capacity: 20},
				Name:              "Rivoli - Sébastopol",
				Coordinates:       models.Location{Latitude: 48.8596, Longitude: 2.3494},
				AvailabilityCount: 12,
			},
		},
		{
			name: "defaults for missing name and availability",
			raw:  models.RawStation{Coordinates: []any{2.3494, 48.8596}},
			want: models.StationRecord{
				Name:        models.DefaultStationName,
				Coordinates: models.Location{Latitude: 48.8596, Longitude: 2.3494},
			},
		},
		{
			name: "json numbers",
			raw:  models.RawStation{Coordinates: []any{json.Number("2.3494"), json.Number("48.8596")}},
			want: models.StationRecord{
				Name:        models.DefaultStationName,
				Coordinates: models.Location{Latitude: 48.8596, Longitude: 2.3494},
			},
		},
		{
			name:    "missing coordinates",
			raw:     models.RawStation{Name: stringPtr("x")},
			wantErr: true,
		},
		{
			name:    "non numeric latitude",
			raw:     models.RawStation{Coordinates: []any{2.3494, "north"}},
			wantErr: true,
		},
		{
			name:    "invalid json number",
			raw:     models.RawStation{Coordinates: []any{json.Number("abc"), 48.8596}},
			wantErr: true,
		},
		{
			name:    "not a number",
			raw:     models.RawStation{Coordinates: []any{math.NaN(), 48.8596}},
			wantErr: true,
		},
		{
			name:    "latitude out of range",
			raw:     models.RawStation{Coordinates: []any{2.3494, 148.8596}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedRecord)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name  string
		to    models.Location
		want  float64
		delta float64
	}{
		{
			name:  "same point",
			to:    parisCenter,
			want:  0,
			delta: 1e-9,
		},
		{
			name: "one hundredth of a degree north",
			to:   models.Location{Latitude: 48.8666, Longitude: 2.3522},
			// meridian arc length at this latitude is about 111.2 km per degree
			want:  1112,
			delta: 5,
		},
		{
			name:  "Paris to Versailles",
			to:    models.Location{Latitude: 48.8049, Longitude: 2.1204},
			want:  17900,
			delta: 300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(parisCenter, tt.to)
			assert.InDelta(t, tt.want, got, tt.delta)
			assert.InDelta(t, got, Distance(tt.to, parisCenter), 1e-6)
		})
	}
}
