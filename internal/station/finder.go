package station

import (
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/velibmap/velib-go/internal/models"
)

// DefaultMaxDistance is the search radius in meters used when none is given.
const DefaultMaxDistance = 500.0

// Stats describes what happened to each record of a FindNearby call.
type Stats struct {
	Total      int
	Rejected   int
	OutOfRange int
	Matched    int
}

// FindNearby returns the stations within maxDistance meters of origin, nearest
// first. Malformed records are skipped. Stations at equal distance keep their
// input order. A negative maxDistance means DefaultMaxDistance.
func FindNearby(stations []models.RawStation, origin models.Location, maxDistance float64) []models.RankedStation {
	nearby, _ := FindNearbyWithStats(stations, origin, maxDistance)
	return nearby
}

// FindNearbyWithStats is FindNearby that also reports how many records were
// rejected or out of range.
func FindNearbyWithStats(stations []models.RawStation, origin models.Location, maxDistance float64) ([]models.RankedStation, Stats) {
	if maxDistance < 0 {
		maxDistance = DefaultMaxDistance
	}

	stats := Stats{Total: len(stations)}
	nearby := make([]models.RankedStation, 0)

	for _, raw := range stations {
		record, err := Parse(raw)
		if err != nil {
			stats.Rejected++
			continue
		}

		distance := Distance(origin, record.Coordinates)
		if !(distance <= maxDistance) {
			stats.OutOfRange++
			continue
		}

		nearby = append(nearby, models.RankedStation{
			StationRecord:  record,
			DistanceMeters: distance,
		})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceMeters < nearby[j].DistanceMeters
	})
	stats.Matched = len(nearby)

	return nearby, stats
}

// Finder ranks stations within a fixed radius and logs what it discarded.
type Finder struct {
	maxDistance float64
}

func NewFinder(maxDistance float64) *Finder {
	if maxDistance < 0 {
		maxDistance = DefaultMaxDistance
	}
	return &Finder{maxDistance: maxDistance}
}

// MaxDistance returns the radius in meters used by Find.
func (f *Finder) MaxDistance() float64 {
	return f.maxDistance
}

func (f *Finder) Find(stations []models.RawStation, origin models.Location) []models.RankedStation {
	return f.FindWithin(stations, origin, f.maxDistance)
}

// FindWithin is Find with a per-call radius. A negative radius falls back to
// the finder's own.
func (f *Finder) FindWithin(stations []models.RawStation, origin models.Location, maxDistance float64) []models.RankedStation {
	if maxDistance < 0 {
		maxDistance = f.maxDistance
	}

	nearby, stats := FindNearbyWithStats(stations, origin, maxDistance)

	log.Debug().
		Int("total", stats.Total).
		Int("rejected", stats.Rejected).
		Int("out_of_range", stats.OutOfRange).
		Int("matched", stats.Matched).
		Float64("max_distance", maxDistance).
		Msg("Ranked nearby stations")

	return nearby
}
