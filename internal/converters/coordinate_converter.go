package converters

import (
	"github.com/ecopia-map/globe_renderer/internal/geometry"
)

// EPSG code of WGS84 geographic coordinates
const WGS84Srid = 4326

type CoordinateConverter interface {
	ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Coordinate) (geometry.Coordinate, error)
	ConvertToWGS84Cartesian(coord geometry.Coordinate, sourceSrid int) (geometry.CartesianPoint, error)
	Cleanup()
}

type ElevationCorrector interface {
	// Applies a fixed correction to the elevation of a point
	CorrectElevation(lon, lat, z float64) float64
	// Same as CorrectElevation plus the offset assigned to the given render layer
	CorrectLayerElevation(layer int, lon, lat, z float64) float64
}
