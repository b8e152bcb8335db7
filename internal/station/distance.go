package station

import (
	"github.com/tidwall/geodesic"
	"github.com/velibmap/velib-go/internal/models"
)

// Distance returns the geodesic distance in meters between a and b on the
// WGS-84 ellipsoid.
func Distance(a, b models.Location) float64 {
	var meters float64
	geodesic.WGS84.Inverse(a.Latitude, a.Longitude, b.Latitude, b.Longitude, &meters, nil, nil)
	return meters
}
