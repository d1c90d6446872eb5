package geo

import (
	"errors"
	"math"
)

const earthRadiusKm = 6371.0

var ErrInvalidCoordinate = errors.New("coordinate out of range")

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

func (c Coordinate) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// HaversineMeters returns the great-circle distance between two coordinates.
func HaversineMeters(a, b Coordinate) float64 {
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180.0
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180.0

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Latitude*math.Pi/180.0)*math.Cos(b.Latitude*math.Pi/180.0)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c * 1000
}

type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Latitude >= b.MinLat && c.Latitude <= b.MaxLat &&
		c.Longitude >= b.MinLon && c.Longitude <= b.MaxLon
}

// BoundingBoxAround returns a box containing every point within radiusMeters
// of center. The box may over-include near the poles or the antimeridian;
// callers re-filter by exact distance.
func BoundingBoxAround(center Coordinate, radiusMeters float64) BoundingBox {
	if radiusMeters <= 0 {
		return BoundingBox{
			MinLat: center.Latitude, MaxLat: center.Latitude,
			MinLon: center.Longitude, MaxLon: center.Longitude,
		}
	}

	latDegreePerMeter := 1.0 / 111320.0
	cosLat := math.Cos(center.Latitude * math.Pi / 180.0)
	if cosLat < 1e-9 {
		cosLat = 1e-9
	}
	lngDegreePerMeter := 1.0 / (111320.0 * cosLat)

	deltaLat := radiusMeters * latDegreePerMeter
	deltaLng := radiusMeters * lngDegreePerMeter

	return BoundingBox{
		MinLat: center.Latitude - deltaLat,
		MaxLat: center.Latitude + deltaLat,
		MinLon: center.Longitude - deltaLng,
		MaxLon: center.Longitude + deltaLng,
	}
}

// Bearing returns the initial great-circle bearing from one coordinate to
// another, in degrees [0, 360).
func Bearing(from, to Coordinate) float64 {
	lat1 := from.Latitude * math.Pi / 180.0
	lat2 := to.Latitude * math.Pi / 180.0
	dLng := (to.Longitude - from.Longitude) * math.Pi / 180.0

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	deg := math.Atan2(y, x) * 180.0 / math.Pi
	return math.Mod(deg+360.0, 360.0)
}

// IsAhead reports whether candidate lies within ±toleranceDeg of the
// observer's heading. A nil heading never blocks a candidate.
func IsAhead(observer Coordinate, heading *float64, candidate Coordinate, toleranceDeg float64) bool {
	if heading == nil {
		return true
	}
	diff := math.Abs(Bearing(observer, candidate) - math.Mod(math.Mod(*heading, 360)+360, 360))
	if diff > 180 {
		diff = 360 - diff
	}
	return diff <= toleranceDeg
}
