package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velibmap/velib-go/internal/models"
)

var parisCenter = models.Location{Latitude: 48.8566, Longitude: 2.3522}

// Helper function to create a feed record, longitude first as published
func rawStation(name string, lon, lat float64) models.RawStation {
	return models.RawStation{
		Name:        stringPtr(name),
		Coordinates: []any{lon, lat},
	}
}

func stringPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func names(stations []models.RankedStation) []string {
	result := make([]string, len(stations))
	for i, s := range stations {
		result[i] = s.Name
	}
	return result
}

func TestFindNearby_EmptyInput(t *testing.T) {
	got := FindNearby(nil, parisCenter, DefaultMaxDistance)
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = FindNearby([]models.RawStation{}, parisCenter, DefaultMaxDistance)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindNearby_ParisScenario(t *testing.T) {
	stations := []models.RawStation{
		rawStation("B", 2.4, 48.9),
		rawStation("A", 2.3522, 48.8566),
	}

	tests := []struct {
		name        string
		maxDistance float64
		want        []string
	}{
		{
			name:        "default radius keeps only the station at the origin",
			maxDistance: DefaultMaxDistance,
			want:        []string{"A"},
		},
		{
			name:        "wide radius includes the far station after the near one",
			maxDistance: 10000,
			want:        []string{"A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindNearby(stations, parisCenter, tt.maxDistance)
			assert.Equal(t, tt.want, names(got))
			assert.InDelta(t, 0, got[0].DistanceMeters, 1e-6)
		})
	}
}

func TestFindNearby_RadiusAndOrdering(t *testing.T) {
	// Stations roughly 100 m, 300 m, 450 m, 800 m and 2 km north of the origin
	stations := []models.RawStation{
		rawStation("450m", 2.3522, 48.8606),
		rawStation("2km", 2.3522, 48.8746),
		rawStation("100m", 2.3522, 48.8575),
		rawStation("800m", 2.3522, 48.8638),
		rawStation("300m", 2.3522, 48.8593),
	}

	got := FindNearby(stations, parisCenter, DefaultMaxDistance)

	assert.Equal(t, []string{"100m", "300m", "450m"}, names(got))
	for i, s := range got {
		assert.LessOrEqual(t, s.DistanceMeters, DefaultMaxDistance)
		assert.GreaterOrEqual(t, s.DistanceMeters, 0.0)
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].DistanceMeters, s.DistanceMeters)
		}
	}
}

func TestFindNearby_ExactRadiusBoundary(t *testing.T) {
	target := rawStation("edge", 2.3522, 48.8600)
	distance := Distance(parisCenter, models.Location{Latitude: 48.8600, Longitude: 2.3522})

	got := FindNearby([]models.RawStation{target}, parisCenter, distance)
	require.Len(t, got, 1)
	assert.Equal(t, distance, got[0].DistanceMeters)

	got = FindNearby([]models.RawStation{target}, parisCenter, distance-0.01)
	assert.Empty(t, got)
}

func TestFindNearby_StableOnTies(t *testing.T) {
	stations := []models.RawStation{
		rawStation("first", 2.3530, 48.8570),
		rawStation("closest", 2.3522, 48.8566),
		rawStation("second", 2.3530, 48.8570),
		rawStation("third", 2.3530, 48.8570),
	}

	got := FindNearby(stations, parisCenter, DefaultMaxDistance)

	assert.Equal(t, []string{"closest", "first", "second", "third"}, names(got))
	assert.Equal(t, got[1].DistanceMeters, got[2].DistanceMeters)
	assert.Equal(t, got[2].DistanceMeters, got[3].DistanceMeters)
}

func TestFindNearby_MalformedRecordsExcluded(t *testing.T) {
	stations := []models.RawStation{
		{Name: stringPtr("missing coordinates")},
		{Name: stringPtr("single value"), Coordinates: []any{2.3522}},
		{Name: stringPtr("three values"), Coordinates: []any{2.3522, 48.8566, 35.0}},
		{Name: stringPtr("string longitude"), Coordinates: []any{"2.3522", 48.8566}},
		{Name: stringPtr("nil latitude"), Coordinates: []any{2.3522, nil}},
		{Name: stringPtr("object value"), Coordinates: []any{map[string]any{"lon": 2.3522}, 48.8566}},
		rawStation("valid", 2.3522, 48.8566),
	}

	var got []models.RankedStation
	require.NotPanics(t, func() {
		got = FindNearby(stations, parisCenter, DefaultMaxDistance)
	})
	assert.Equal(t, []string{"valid"}, names(got))
}

func TestFindNearby_OnlyMalformedRecords(t *testing.T) {
	stations := []models.RawStation{
		{Name: stringPtr("no coordinates")},
		{Coordinates: []any{"a", "b"}},
	}

	got, stats := FindNearbyWithStats(stations, parisCenter, DefaultMaxDistance)

	assert.Empty(t, got)
	assert.Equal(t, Stats{Total: 2, Rejected: 2}, stats)
}

func TestFindNearby_Deterministic(t *testing.T) {
	stations := []models.RawStation{
		rawStation("a", 2.3540, 48.8570),
		rawStation("b", 2.3500, 48.8560),
		rawStation("c", 2.3522, 48.8590),
		{Coordinates: []any{"bad"}},
	}

	first := FindNearby(stations, parisCenter, 1000)
	second := FindNearby(stations, parisCenter, 1000)

	assert.Equal(t, first, second)
}

func TestFindNearby_DoesNotMutateInput(t *testing.T) {
	stations := []models.RawStation{
		rawStation("far", 2.3600, 48.8566),
		rawStation("near", 2.3522, 48.8566),
	}
	original := make([]models.RawStation, len(stations))
	copy(original, stations)

	FindNearby(stations, parisCenter, 1000)

	assert.Equal(t, original, stations)
}

func TestFindNearby_CoordinateOrderCorrection(t *testing.T) {
	stored := rawStation("stored", 2.3522, 48.8566)

	got := FindNearby([]models.RawStation{stored}, parisCenter, DefaultMaxDistance)

	require.Len(t, got, 1)
	want := Distance(parisCenter, models.Location{Latitude: 48.8566, Longitude: 2.3522})
	assert.Equal(t, want, got[0].DistanceMeters)
	assert.Equal(t, 48.8566, got[0].Coordinates.Latitude)
	assert.Equal(t, 2.3522, got[0].Coordinates.Longitude)
}

func TestFindNearby_NegativeRadiusUsesDefault(t *testing.T) {
	stations := []models.RawStation{
		rawStation("near", 2.3522, 48.8575),
		rawStation("far", 2.3522, 48.8746),
	}

	got := FindNearby(stations, parisCenter, -1)

	assert.Equal(t, []string{"near"}, names(got))
}

func TestFindNearbyWithStats(t *testing.T) {
	stations := []models.RawStation{
		rawStation("near", 2.3522, 48.8575),
		rawStation("far", 2.3522, 48.8746),
		{Coordinates: nil},
	}

	got, stats := FindNearbyWithStats(stations, parisCenter, DefaultMaxDistance)

	assert.Len(t, got, 1)
	assert.Equal(t, Stats{Total: 3, Rejected: 1, OutOfRange: 1, Matched: 1}, stats)
}

func TestFindNearby_AttachesRecordFields(t *testing.T) {
	stations := []models.RawStation{
		{
			StationDetails: models.StationDetails{
				Code:    "16107",
				Commune: "Paris",
			},
			Name:              stringPtr("Benjamin Godard - Victor Hugo"),
			Coordinates:       []any{2.3522, 48.8566},
			AvailabilityCount: intPtr(7),
		},
		{Coordinates: []any{2.3523, 48.8566}},
	}

	got := FindNearby(stations, parisCenter, DefaultMaxDistance)

	require.Len(t, got, 2)
	assert.Equal(t, "Benjamin Godard - Victor Hugo", got[0].Name)
	assert.Equal(t, 7, got[0].AvailabilityCount)
	assert.Equal(t, "16107", got[0].Code)
	assert.Equal(t, models.DefaultStationName, got[1].Name)
	assert.Equal(t, 0, got[1].AvailabilityCount)
}

func TestFinder(t *testing.T) {
	stations := []models.RawStation{
		rawStation("far", 2.3522, 48.8656),  // ~1000 m north
		rawStation("near", 2.3522, 48.8584), // ~200 m north
	}

	tests := []struct {
		name      string
		radius    float64
		perCall   float64
		wantNames []string
	}{
		{name: "configured radius", radius: 500, perCall: -1, wantNames: []string{"near"}},
		{name: "per-call radius wins", radius: 500, perCall: 2000, wantNames: []string{"near", "far"}},
		{name: "negative configured radius uses default", radius: -3, perCall: -1, wantNames: []string{"near"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFinder(tt.radius)

			got := f.FindWithin(stations, parisCenter, tt.perCall)

			assert.Equal(t, tt.wantNames, names(got))
		})
	}

	assert.Equal(t, DefaultMaxDistance, NewFinder(-1).MaxDistance())
	assert.Equal(t, []string{"near"}, names(NewFinder(500).Find(stations, parisCenter)))
}
