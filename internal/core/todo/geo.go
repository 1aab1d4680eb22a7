package todo

import (
	"errors"
	"math"

	"github.com/hay-kot/criterio"
)

const earthRadiusMeters = 6371000.0

// Coordinates is a WGS84 position in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Validate rejects positions outside the WGS84 ranges, including NaN.
func (c Coordinates) Validate() error {
	var errs criterio.FieldErrorsBuilder
	errs = appendCoordinateErrors(errs, "", c)
	return Invalid(errs.ToError())
}

// appendCoordinateErrors records range errors under prefix+"latitude" and
// prefix+"longitude". The comparisons are written so that NaN fails them.
func appendCoordinateErrors(errs criterio.FieldErrorsBuilder, prefix string, c Coordinates) criterio.FieldErrorsBuilder {
	if !(c.Latitude >= -90 && c.Latitude <= 90) {
		errs = errs.Append(prefix+"latitude", errors.New("must be between -90 and 90"))
	}
	if !(c.Longitude >= -180 && c.Longitude <= 180) {
		errs = errs.Append(prefix+"longitude", errors.New("must be between -180 and 180"))
	}
	return errs
}

// DistanceMeters returns the great-circle distance between a and b using the
// haversine formula.
func DistanceMeters(a, b Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Contains reports whether pos lies within the geofence radius.
func (l Location) Contains(pos Coordinates) bool {
	return DistanceMeters(l.Coordinates(), pos) <= l.Radius
}
