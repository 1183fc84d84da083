package domain

import (
	"fmt"
	"math"
	"strconv"
)

const (
	earthRadius = 6371e3 // meters

	// mercatorRadius is the sphere radius used by EPSG:900913 / EPSG:3857.
	mercatorRadius = 6378137.0
)

// Frame identifies the reference frame a coordinate pair was supplied in.
type Frame string

const (
	FrameWGS84    Frame = "wgs84"
	FrameMercator Frame = "mercator"
)

// ParseFrame maps user-supplied frame names to a Frame. Empty input means WGS84.
func ParseFrame(s string) (Frame, error) {
	switch s {
	case "", "wgs84", "EPSG:4326", "4326":
		return FrameWGS84, nil
	case "mercator", "EPSG:900913", "EPSG:3857", "900913", "3857":
		return FrameMercator, nil
	default:
		return "", fmt.Errorf("unknown coordinate frame %q", s)
	}
}

// Coordinate is a WGS-84 longitude/latitude pair.
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// String formats the pair as "lon,lat" using the shortest exact representation
// of each float, so equal inputs always render identically.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

// Valid reports whether the pair lies within WGS-84 bounds.
func (c Coordinate) Valid() bool {
	return c.Lon >= -180 && c.Lon <= 180 && c.Lat >= -90 && c.Lat <= 90 &&
		!math.IsNaN(c.Lon) && !math.IsNaN(c.Lat)
}

// FromMercator converts spherical Web Mercator meters (x, y) into WGS-84 degrees.
func FromMercator(x, y float64) Coordinate {
	lon := x / mercatorRadius * 180 / math.Pi
	lat := (2*math.Atan(math.Exp(y/mercatorRadius)) - math.Pi/2) * 180 / math.Pi
	return Coordinate{Lon: lon, Lat: lat}
}

// ToMercator converts the coordinate into spherical Web Mercator meters.
func (c Coordinate) ToMercator() (x, y float64) {
	x = c.Lon * math.Pi / 180 * mercatorRadius
	y = math.Log(math.Tan(math.Pi/4+c.Lat*math.Pi/360)) * mercatorRadius
	return x, y
}

// InFrame interprets (a, b) in the given frame and returns the WGS-84 coordinate.
// For WGS84 a is longitude and b is latitude; for Mercator they are x and y meters.
func InFrame(frame Frame, a, b float64) Coordinate {
	if frame == FrameMercator {
		return FromMercator(a, b)
	}
	return Coordinate{Lon: a, Lat: b}
}

// DistanceTo calculates the great-circle distance between two coordinates in meters.
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - c.Lat) * math.Pi / 180
	dLon := (other.Lon - c.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
