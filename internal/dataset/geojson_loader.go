package dataset

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/golang/glog"
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/osm"

	"github.com/ecopia-map/globe_renderer/internal/converters"
	"github.com/ecopia-map/globe_renderer/internal/data"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
)

// Loads GeoJSON feature collections. Feature properties become tags and are classified with the type
// registry. Vertices with identical positions share a node id so that junctions between lines are detected.
type GeoJSONLoader struct {
	types *data.TypeConfig
	index *coordinateIndex
}

func NewGeoJSONLoader(types *data.TypeConfig, converter converters.CoordinateConverter, srid int) *GeoJSONLoader {
	return &GeoJSONLoader{types: types, index: newCoordinateIndex(converter, srid)}
}

// Returns a shapefile loader numbering vertices and features together with this loader
func (l *GeoJSONLoader) ShapefileLoader() *ShapefileLoader {
	return &ShapefileLoader{types: l.types, index: l.index}
}

func (l *GeoJSONLoader) Load(ctx context.Context, r io.Reader, db *GridDatabase) (LoadStats, error) {
	var stats LoadStats

	raw, err := io.ReadAll(r)
	if err != nil {
		return stats, err
	}
	collection, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return stats, err
	}

	for _, f := range collection.Features {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if f.Geometry == nil {
			stats.Broken++
			continue
		}
		if err := l.loadFeature(f, db, &stats); err != nil {
			glog.V(2).Infof("skipping feature %v: %v", f.ID, err)
			stats.Broken++
		}
	}
	return stats, nil
}

func (l *GeoJSONLoader) loadFeature(f *geojson.Feature, db *GridDatabase, stats *LoadStats) error {
	tags := propertiesToTags(f.Properties)
	typeId := l.types.ClassifyTags(tags)
	info, ok := l.types.GetTypeInfo(typeId)
	if !ok {
		stats.Ignored++
		return nil
	}
	id := l.featureId(f)

	g := f.Geometry
	switch g.Type {
	case geojson.GeometryPoint:
		if !info.CanBeNode {
			stats.Ignored++
			return nil
		}
		wn, err := l.node(g.Point)
		if err != nil {
			return err
		}
		db.AddNode(&data.Node{ID: osm.NodeID(id), Type: typeId, Lat: wn.Lat, Lon: wn.Lon, Tags: tags})
		stats.Nodes++

	case geojson.GeometryLineString:
		if !info.CanBeWay {
			stats.Ignored++
			return nil
		}
		nodes, err := l.nodes(g.LineString)
		if err != nil {
			return err
		}
		if len(nodes) < 2 {
			return fmt.Errorf("line with %d distinct points", len(nodes))
		}
		db.AddWay(&data.Way{ID: osm.WayID(id), Type: typeId, Nodes: nodes, Tags: tags})
		stats.Ways++

	case geojson.GeometryMultiLineString:
		if !info.CanBeWay {
			stats.Ignored++
			return nil
		}
		var roles []data.Role
		for _, line := range g.MultiLineString {
			nodes, err := l.nodes(line)
			if err != nil {
				return err
			}
			roles = append(roles, data.Role{Nodes: nodes})
		}
		db.AddRelationWay(&data.RelationWay{ID: osm.RelationID(id), Type: typeId, Roles: roles, Tags: tags})
		stats.RelationWays++

	case geojson.GeometryPolygon:
		if !info.CanBeArea {
			stats.Ignored++
			return nil
		}
		if len(g.Polygon) == 0 {
			return fmt.Errorf("empty polygon")
		}
		if len(g.Polygon) == 1 {
			nodes, err := l.nodes(g.Polygon[0])
			if err != nil {
				return err
			}
			db.AddArea(&data.Area{ID: osm.WayID(id), Type: typeId, Nodes: nodes, Tags: tags})
			stats.Areas++
			return nil
		}
		roles, err := l.polygonRoles(0, g.Polygon)
		if err != nil {
			return err
		}
		db.AddRelationArea(&data.RelationArea{ID: osm.RelationID(id), Type: typeId, Roles: roles, Tags: tags})
		stats.RelationAreas++

	case geojson.GeometryMultiPolygon:
		if !info.CanBeArea {
			stats.Ignored++
			return nil
		}
		var roles []data.Role
		for k, polygon := range g.MultiPolygon {
			polyRoles, err := l.polygonRoles(2*k, polygon)
			if err != nil {
				return err
			}
			roles = append(roles, polyRoles...)
		}
		db.AddRelationArea(&data.RelationArea{ID: osm.RelationID(id), Type: typeId, Roles: roles, Tags: tags})
		stats.RelationAreas++

	default:
		stats.Ignored++
	}
	return nil
}

// The first ring gets outerRing as index, the holes outerRing+1
func (l *GeoJSONLoader) polygonRoles(outerRing int, rings [][][]float64) ([]data.Role, error) {
	roles := make([]data.Role, 0, len(rings))
	for i, ring := range rings {
		nodes, err := l.nodes(ring)
		if err != nil {
			return nil, err
		}
		index := outerRing
		if i > 0 {
			index = outerRing + 1
		}
		roles = append(roles, data.Role{Ring: index, Nodes: nodes})
	}
	return roles, nil
}

func (l *GeoJSONLoader) nodes(positions [][]float64) (osm.WayNodes, error) {
	nodes := make(osm.WayNodes, 0, len(positions))
	for _, p := range positions {
		n, err := l.node(p)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return data.CompactNodes(nodes), nil
}

func (l *GeoJSONLoader) node(position []float64) (osm.WayNode, error) {
	if len(position) < 2 {
		return osm.WayNode{}, fmt.Errorf("position with %d components", len(position))
	}
	coord := geometry.Coordinate{X: position[0], Y: position[1]}
	if len(position) > 2 {
		coord.Z = position[2]
	}
	return l.index.node(coord)
}

// Uses the numeric feature id when present, a generated one otherwise
func (l *GeoJSONLoader) featureId(f *geojson.Feature) int64 {
	var id int64
	switch v := f.ID.(type) {
	case float64:
		id = int64(v)
	case string:
		id, _ = strconv.ParseInt(v, 10, 64)
	}
	return l.index.featureId(id)
}

// Properties sorted by key so that classification does not depend on map ordering
func propertiesToTags(props map[string]interface{}) osm.Tags {
	tags := make(osm.Tags, 0, len(props))
	for k, v := range props {
		if v == nil {
			continue
		}
		tags = append(tags, osm.Tag{Key: k, Value: fmt.Sprint(v)})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Key < tags[j].Key })
	return tags
}
