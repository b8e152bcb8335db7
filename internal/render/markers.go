package render

import (
	"fmt"
	"html/template"

	"github.com/velibmap/velib-go/internal/models"
)

// ParisCenter centers maps that have no better origin.
var ParisCenter = models.Location{Latitude: 48.8566, Longitude: 2.3522}

const (
	// DefaultZoom frames a single neighbourhood, as on the results page.
	DefaultZoom = 15
	// CityZoom frames the whole of Paris.
	CityZoom = 13
)

// Marker is one pin on the map. Popup is trusted HTML.
type Marker struct {
	Latitude  float64       `json:"lat"`
	Longitude float64       `json:"lon"`
	Popup     template.HTML `json:"popup"`
}

// MapView is everything needed to draw a map.
type MapView struct {
	Title   string
	Center  models.Location
	Zoom    int
	Markers []Marker
}

// MarkersFromRanked builds one marker per ranked station, with the station
// name, available bikes and distance in the popup.
func MarkersFromRanked(stations []models.RankedStation) []Marker {
	markers := make([]Marker, len(stations))
	for i, s := range stations {
		markers[i] = Marker{
			Latitude:  s.Coordinates.Latitude,
			Longitude: s.Coordinates.Longitude,
			Popup: template.HTML(fmt.Sprintf("Station: %s<br>Vélos disponibles: %d<br>Distance: %.1f m",
				template.HTMLEscapeString(s.Name), s.AvailabilityCount, s.DistanceMeters)),
		}
	}
	return markers
}

// MarkersFromStations builds one marker per station with its name as popup.
func MarkersFromStations(stations []models.StationRecord) []Marker {
	markers := make([]Marker, len(stations))
	for i, s := range stations {
		markers[i] = Marker{
			Latitude:  s.Coordinates.Latitude,
			Longitude: s.Coordinates.Longitude,
			Popup:     template.HTML(template.HTMLEscapeString(s.Name)),
		}
	}
	return markers
}
