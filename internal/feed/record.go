package feed

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/velibmap/velib-go/internal/models"
)

// apiRecord covers both the flat Explore v2.1 record and the legacy record
// that nests the same attributes under "fields" and publishes a GeoJSON point.
// Every attribute is kept raw and decoded on its own, so a badly typed
// optional attribute falls back to its default instead of losing the record.
type apiRecord struct {
	StationCode       json.RawMessage `json:"stationcode"`
	Name              json.RawMessage `json:"name"`
	NumBikesAvailable json.RawMessage `json:"numbikesavailable"`
	VelibVL           json.RawMessage `json:"velib_vl"`
	NumDocksAvailable json.RawMessage `json:"numdocksavailable"`
	Capacity          json.RawMessage `json:"capacity"`
	Mechanical        json.RawMessage `json:"mechanical"`
	EBike             json.RawMessage `json:"ebike"`
	IsRenting         json.RawMessage `json:"is_renting"`
	IsReturning       json.RawMessage `json:"is_returning"`
	DueDate           json.RawMessage `json:"duedate"`
	Commune           json.RawMessage `json:"nom_arrondissement_communes"`
	CoordonneesGeo    json.RawMessage `json:"coordonnees_geo"`
	Geometry          json.RawMessage `json:"geometry"`
	Fields            json.RawMessage `json:"fields"`
}

// decodeRecord never fails: a record that is not an object comes back without
// coordinates and is rejected later by station validation.
func decodeRecord(data json.RawMessage) models.RawStation {
	var rec apiRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.RawStation{}
	}
	return rec.toRawStation()
}

func (r apiRecord) toRawStation() models.RawStation {
	var nested apiRecord
	if isObject(r.Fields) && json.Unmarshal(r.Fields, &nested) == nil {
		raw := nested.toRawStation()
		if coords := geometryCoordinates(r.Geometry); coords != nil {
			raw.Coordinates = coords
		}
		if raw.Code == "" {
			raw.Code, _ = text(r.StationCode)
		}
		return raw
	}

	code, _ := text(r.StationCode)
	commune, _ := text(r.Commune)
	dueDate, _ := text(r.DueDate)

	raw := models.RawStation{
		StationDetails: models.StationDetails{
			Code:            code,
			Commune:         commune,
			Capacity:        deref(count(r.Capacity)),
			DocksAvailable:  deref(count(r.NumDocksAvailable)),
			MechanicalBikes: deref(count(r.Mechanical)),
			EBikes:          deref(count(r.EBike)),
			IsRenting:       flag(r.IsRenting),
			IsReturning:     flag(r.IsReturning),
			DueDate:         dueDate,
		},
		AvailabilityCount: count(r.NumBikesAvailable),
	}
	if raw.AvailabilityCount == nil {
		raw.AvailabilityCount = count(r.VelibVL)
	}
	if name, ok := text(r.Name); ok {
		raw.Name = &name
	}

	raw.Coordinates = pointCoordinates(r.CoordonneesGeo)
	if raw.Coordinates == nil {
		raw.Coordinates = geometryCoordinates(r.Geometry)
	}

	return raw
}

func isObject(data json.RawMessage) bool {
	return len(data) > 0 && data[0] == '{'
}

// pointCoordinates reads a {"lon", "lat"} object as a [lon, lat] pair.
func pointCoordinates(data json.RawMessage) []any {
	if !isObject(data) {
		return nil
	}
	var point struct {
		Lon any `json:"lon"`
		Lat any `json:"lat"`
	}
	if err := unmarshalUseNumber(data, &point); err != nil {
		return nil
	}
	return []any{point.Lon, point.Lat}
}

// geometryCoordinates reads the coordinates of a GeoJSON point.
func geometryCoordinates(data json.RawMessage) []any {
	if !isObject(data) {
		return nil
	}
	var geometry struct {
		Coordinates []any `json:"coordinates"`
	}
	if err := unmarshalUseNumber(data, &geometry); err != nil {
		return nil
	}
	return geometry.Coordinates
}

// count reads a whole number published as a JSON number ("4" or "4.0") or a
// numeric string. Anything else is treated as absent.
func count(data json.RawMessage) *int {
	if len(data) == 0 {
		return nil
	}
	var v any
	if err := unmarshalUseNumber(data, &v); err != nil {
		return nil
	}

	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	n := int(f)
	return &n
}

// text reads a JSON string; numbers are accepted in their literal form.
func text(data json.RawMessage) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	var v any
	if err := unmarshalUseNumber(data, &v); err != nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

// flag reads the feed's "OUI"/"NON" flags, and plain booleans.
func flag(data json.RawMessage) bool {
	var v any
	if len(data) == 0 || json.Unmarshal(data, &v) != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return yes(t)
	default:
		return false
	}
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func yes(s string) bool {
	return s == "OUI" || s == "oui" || s == "true"
}
