package proj4_coordinate_converter

import (
	"fmt"
	"math"
	"sync"

	"github.com/golang/glog"
	"github.com/xeonx/proj4"

	"github.com/ecopia-map/globe_renderer/internal/converters"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
)

// proj4 definitions of the reference systems accepted for input datasets
var epsgDefinitions = map[int]string{
	4326: "+proj=longlat +datum=WGS84 +no_defs",
	4258: "+proj=longlat +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +no_defs",
	3857: "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +wktext +no_defs",
	3395: "+proj=merc +lon_0=0 +k=1 +x_0=0 +y_0=0 +datum=WGS84 +units=m +no_defs",
	4978: "+proj=geocent +datum=WGS84 +units=m +no_defs",
	27700: "+proj=tmerc +lat_0=49 +lon_0=-2 +k=0.9996012717 +x_0=400000 +y_0=-100000 +ellps=airy " +
		"+towgs84=446.448,-125.157,542.06,0.15,0.247,0.842,-20.489 +units=m +no_defs",
}

type Proj4CoordinateConverter struct {
	projections map[int]*proj4.Proj
	sync.Mutex
}

func NewProj4CoordinateConverter() converters.CoordinateConverter {
	return &Proj4CoordinateConverter{
		projections: make(map[int]*proj4.Proj),
	}
}

// Returns the proj4 definition for an EPSG code. UTM zones on WGS84 (326xx north, 327xx south) are derived.
func definitionForSrid(srid int) (string, bool) {
	if def, ok := epsgDefinitions[srid]; ok {
		return def, true
	}
	if srid > 32600 && srid <= 32660 {
		return fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", srid-32600), true
	}
	if srid > 32700 && srid <= 32760 {
		return fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", srid-32700), true
	}
	return "", false
}

// Converts the given coordinate from the given source Srid to the given target srid.
// Geographic coordinates are expressed in degrees.
func (cc *Proj4CoordinateConverter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Coordinate) (geometry.Coordinate, error) {
	if sourceSrid == targetSrid {
		return coord, nil
	}

	cc.Lock()
	defer cc.Unlock()

	src, err := cc.getProjection(sourceSrid)
	if err != nil {
		return coord, err
	}
	dst, err := cc.getProjection(targetSrid)
	if err != nil {
		return coord, err
	}

	return cc.convertInternal(src, dst, coord)
}

// Converts the input coordinate to WGS84 geographic coordinates and then to ECEF
func (cc *Proj4CoordinateConverter) ConvertToWGS84Cartesian(coord geometry.Coordinate, sourceSrid int) (geometry.CartesianPoint, error) {
	wgs84, err := cc.ConvertCoordinateSrid(sourceSrid, converters.WGS84Srid, coord)
	if err != nil {
		return geometry.CartesianPoint{}, err
	}
	return converters.ToCartesian(wgs84.GeoPoint()), nil
}

// Releases all projection objects
func (cc *Proj4CoordinateConverter) Cleanup() {
	cc.Lock()
	defer cc.Unlock()

	for srid, proj := range cc.projections {
		proj.Close()
		delete(cc.projections, srid)
	}
}

func (cc *Proj4CoordinateConverter) getProjection(srid int) (*proj4.Proj, error) {
	if proj, ok := cc.projections[srid]; ok {
		return proj, nil
	}

	def, ok := definitionForSrid(srid)
	if !ok {
		return nil, fmt.Errorf("unsupported EPSG code %d", srid)
	}

	proj, err := proj4.InitPlus(def)
	if err != nil {
		return nil, fmt.Errorf("init projection EPSG:%d: %w", srid, err)
	}
	glog.V(2).Infof("initialized projection EPSG:%d", srid)
	cc.projections[srid] = proj

	return proj, nil
}

func (cc *Proj4CoordinateConverter) convertInternal(src, dst *proj4.Proj, coord geometry.Coordinate) (geometry.Coordinate, error) {
	x := []float64{coord.X}
	y := []float64{coord.Y}
	z := []float64{coord.Z}

	if src.IsLatLong() {
		x[0] = toRadians(x[0])
		y[0] = toRadians(y[0])
	}

	if err := proj4.TransformRaw(src, dst, x, y, z); err != nil {
		return coord, err
	}

	if dst.IsLatLong() {
		x[0] = toDegrees(x[0])
		y[0] = toDegrees(y[0])
	}

	return geometry.Coordinate{X: x[0], Y: y[0], Z: z[0]}, nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
