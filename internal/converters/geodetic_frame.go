package converters

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/ecopia-map/globe_renderer/internal/geometry"
)

// WGS84 ellipsoid parameters
const (
	SemiMajorAxis          = 6378137.0
	SemiMinorAxis          = 6356752.3142
	EccentricitySquared    = 6.69437999014e-3
	SecondEccentricitySqrd = 6.73949674228e-3
)

// finite difference steps used by NorthEastDown
const (
	nedAngularStep  = 1e-6
	nedAltitudeStep = 50.0
)

var WGS84 = geometry.Ellipsoid{SemiMajor: SemiMajorAxis, SemiMinor: SemiMinorAxis}

// Converts a geodetic point to ECEF coordinates
func ToCartesian(p geometry.GeoPoint) geometry.CartesianPoint {
	lat := p.Lat * math.Pi / 180
	lon := p.Lon * math.Pi / 180
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	sinLon, cosLon := math.Sin(lon), math.Cos(lon)

	// radius of curvature in the prime vertical
	v := SemiMajorAxis / math.Sqrt(1-EccentricitySquared*sinLat*sinLat)

	return r3.Vector{
		X: (v + p.Alt) * cosLat * cosLon,
		Y: (v + p.Alt) * cosLat * sinLon,
		Z: ((1-EccentricitySquared)*v + p.Alt) * sinLat,
	}
}

// Converts an ECEF point to geodetic coordinates using Bowring's closed form.
// Longitude loses precision close to the poles.
func ToGeodetic(c geometry.CartesianPoint) geometry.GeoPoint {
	p := math.Hypot(c.X, c.Y)
	th := math.Atan2(c.Z*SemiMajorAxis, p*SemiMinorAxis)
	sinTh, cosTh := math.Sin(th), math.Cos(th)

	lon := math.Atan2(c.Y, c.X)
	lat := math.Atan2(
		c.Z+SecondEccentricitySqrd*SemiMinorAxis*sinTh*sinTh*sinTh,
		p-EccentricitySquared*SemiMajorAxis*cosTh*cosTh*cosTh,
	)

	sinLat := math.Sin(lat)
	n := SemiMajorAxis / math.Sqrt(1-EccentricitySquared*sinLat*sinLat)

	var alt float64
	if cosLat := math.Cos(lat); math.Abs(cosLat) > 1e-10 {
		alt = p/cosLat - n
	} else {
		alt = math.Abs(c.Z) - SemiMinorAxis
	}

	return geometry.GeoPoint{
		Lat: lat * 180 / math.Pi,
		Lon: lon * 180 / math.Pi,
		Alt: alt,
	}
}

// Great circle destination from start along the bearing (degrees clockwise from north).
// The Earth is approximated by a sphere with the WGS84 semi-major axis as radius. Altitude is preserved.
func Destination(start geometry.GeoPoint, bearing, distance float64) geometry.GeoPoint {
	dest := geo.PointAtBearingAndDistance(start.Planar(), bearing, distance)
	return geometry.GeoPoint{Lat: dest.Lat(), Lon: normalizeLongitude(dest.Lon()), Alt: start.Alt}
}

// Returns the north, east and down unit vectors at p expressed in ECEF. The vectors are
// secants obtained by moving p by 1e-6 degrees of latitude and longitude and by 50 m of altitude,
// so they approximate the true local basis with an error that grows with the step sizes.
func NorthEastDown(p geometry.GeoPoint) (north, east, down r3.Vector) {
	origin := ToCartesian(p)

	north = ToCartesian(geometry.GeoPoint{Lat: p.Lat + nedAngularStep, Lon: p.Lon, Alt: p.Alt}).Sub(origin).Normalize()
	east = ToCartesian(geometry.GeoPoint{Lat: p.Lat, Lon: p.Lon + nedAngularStep, Alt: p.Alt}).Sub(origin).Normalize()
	down = ToCartesian(geometry.GeoPoint{Lat: p.Lat, Lon: p.Lon, Alt: p.Alt - nedAltitudeStep}).Sub(origin).Normalize()
	return north, east, down
}

// Converts the four corners of a lat/lon rectangle to ECEF at the given altitude,
// ordered bottom-left, bottom-right, top-right, top-left
func BoundCornersToCartesian(b orb.Bound, alt float64) [4]r3.Vector {
	var out [4]r3.Vector
	for i, corner := range geometry.BoundCorners(b) {
		out[i] = ToCartesian(geometry.GeoPoint{Lat: corner.Lat(), Lon: corner.Lon(), Alt: alt})
	}
	return out
}

func normalizeLongitude(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}

// Converter for data already expressed in WGS84 geographic coordinates
type WGS84Converter struct{}

func NewWGS84Converter() CoordinateConverter {
	return &WGS84Converter{}
}

func (c *WGS84Converter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Coordinate) (geometry.Coordinate, error) {
	if sourceSrid != targetSrid {
		return coord, fmt.Errorf("wgs84 converter cannot reproject from EPSG:%d to EPSG:%d", sourceSrid, targetSrid)
	}
	return coord, nil
}

func (c *WGS84Converter) ConvertToWGS84Cartesian(coord geometry.Coordinate, sourceSrid int) (geometry.CartesianPoint, error) {
	if sourceSrid != WGS84Srid {
		return r3.Vector{}, fmt.Errorf("wgs84 converter cannot handle EPSG:%d input", sourceSrid)
	}
	return ToCartesian(coord.GeoPoint()), nil
}

func (c *WGS84Converter) Cleanup() {}
