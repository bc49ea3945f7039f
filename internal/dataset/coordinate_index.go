package dataset

import (
	"github.com/paulmach/osm"

	"github.com/ecopia-map/globe_renderer/internal/converters"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
)

// Numbering shared by the loaders of formats without node ids. Positions are reprojected to WGS84
// and identical positions map to the same node id.
type coordinateIndex struct {
	converter converters.CoordinateConverter
	srid      int

	nodeIds    map[[2]float64]osm.NodeID
	nextNodeId osm.NodeID
	nextId     int64
}

func newCoordinateIndex(converter converters.CoordinateConverter, srid int) *coordinateIndex {
	return &coordinateIndex{
		converter:  converter,
		srid:       srid,
		nodeIds:    make(map[[2]float64]osm.NodeID),
		nextNodeId: 1,
		nextId:     1,
	}
}

func (c *coordinateIndex) node(coord geometry.Coordinate) (osm.WayNode, error) {
	if c.srid != converters.WGS84Srid {
		var err error
		coord, err = c.converter.ConvertCoordinateSrid(c.srid, converters.WGS84Srid, coord)
		if err != nil {
			return osm.WayNode{}, err
		}
	}

	key := [2]float64{coord.X, coord.Y}
	id, ok := c.nodeIds[key]
	if !ok {
		id = c.nextNodeId
		c.nextNodeId++
		c.nodeIds[key] = id
	}
	return osm.WayNode{ID: id, Lat: coord.Y, Lon: coord.X}, nil
}

// Keeps a positive requested id, otherwise hands out the next free one
func (c *coordinateIndex) featureId(requested int64) int64 {
	id := requested
	if id <= 0 {
		id = c.nextId
	}
	if id >= c.nextId {
		c.nextId = id + 1
	}
	return id
}
