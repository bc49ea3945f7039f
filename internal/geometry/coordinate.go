package geometry

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"
)

// Geodetic coordinate, latitude and longitude in degrees, altitude in meters above the ellipsoid
type GeoPoint struct {
	Lat float64
	Lon float64
	Alt float64
}

// Earth-Centered-Earth-Fixed coordinate in meters
type CartesianPoint = r3.Vector

// Builds a new GeoPoint from the given latitude, longitude and altitude
func NewGeoPoint(lat, lon, alt float64) GeoPoint {
	return GeoPoint{Lat: lat, Lon: lon, Alt: alt}
}

// Returns the planar (lon, lat) projection of the point
func (p GeoPoint) Planar() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Returns a copy of the point placed on the ellipsoid surface
func (p GeoPoint) OnSurface() GeoPoint {
	return GeoPoint{Lat: p.Lat, Lon: p.Lon}
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.7f, %.7f, %.3f)", p.Lat, p.Lon, p.Alt)
}

// Generic coordinate in an arbitrary reference system. For geographic systems X is the longitude and Y the latitude.
type Coordinate struct {
	X float64
	Y float64
	Z float64
}

// Interprets a geographic coordinate as a GeoPoint
func (c Coordinate) GeoPoint() GeoPoint {
	return GeoPoint{Lat: c.Y, Lon: c.X, Alt: c.Z}
}

// Returns the point as a geographic Coordinate
func (p GeoPoint) Coordinate() Coordinate {
	return Coordinate{X: p.Lon, Y: p.Lat, Z: p.Alt}
}
