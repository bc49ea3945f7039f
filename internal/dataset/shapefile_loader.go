package dataset

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/golang/glog"
	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"github.com/ecopia-map/globe_renderer/internal/data"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
)

// Loads ESRI shapefiles. The dbf attributes of a record become its tags. Polygon rings wound
// clockwise are outer rings and counterclockwise ones are holes, as the format prescribes.
type ShapefileLoader struct {
	types *data.TypeConfig
	index *coordinateIndex
}

// Reads the .shp file at path together with its .dbf sidecar
func (l *ShapefileLoader) LoadPath(ctx context.Context, path string, db *GridDatabase) (LoadStats, error) {
	var stats LoadStats

	reader, err := shp.Open(path)
	if err != nil {
		return stats, err
	}
	defer reader.Close()

	fields := reader.Fields()
	for reader.Next() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		row, shape := reader.Shape()
		if shape == nil {
			stats.Broken++
			continue
		}

		tags := make(osm.Tags, 0, len(fields))
		for k, f := range fields {
			value := strings.TrimRight(strings.TrimSpace(reader.ReadAttribute(row, k)), "\x00")
			if value == "" {
				continue
			}
			tags = append(tags, osm.Tag{Key: f.String(), Value: value})
		}
		sort.Slice(tags, func(i, j int) bool { return tags[i].Key < tags[j].Key })

		if err := l.loadShape(shape, tags, db, &stats); err != nil {
			glog.V(2).Infof("skipping shape record %d: %v", row, err)
			stats.Broken++
		}
	}
	return stats, nil
}

func (l *ShapefileLoader) loadShape(shape shp.Shape, tags osm.Tags, db *GridDatabase, stats *LoadStats) error {
	typeId := l.types.ClassifyTags(tags)
	info, ok := l.types.GetTypeInfo(typeId)
	if !ok {
		stats.Ignored++
		return nil
	}

	switch s := shape.(type) {
	case *shp.Point:
		return l.loadPoint(s.X, s.Y, 0, typeId, info, tags, db, stats)
	case *shp.PointZ:
		return l.loadPoint(s.X, s.Y, s.Z, typeId, info, tags, db, stats)
	case *shp.PolyLine:
		return l.loadLines(s.Parts, s.Points, typeId, info, tags, db, stats)
	case *shp.PolyLineZ:
		return l.loadLines(s.Parts, s.Points, typeId, info, tags, db, stats)
	case *shp.Polygon:
		return l.loadPolygon(s.Parts, s.Points, typeId, info, tags, db, stats)
	case *shp.PolygonZ:
		return l.loadPolygon(s.Parts, s.Points, typeId, info, tags, db, stats)
	default:
		stats.Ignored++
		return nil
	}
}

func (l *ShapefileLoader) loadPoint(x, y, z float64, typeId data.TypeId, info data.TypeInfo, tags osm.Tags, db *GridDatabase, stats *LoadStats) error {
	if !info.CanBeNode {
		stats.Ignored++
		return nil
	}
	wn, err := l.index.node(geometry.Coordinate{X: x, Y: y, Z: z})
	if err != nil {
		return err
	}
	id := l.index.featureId(0)
	db.AddNode(&data.Node{ID: osm.NodeID(id), Type: typeId, Lat: wn.Lat, Lon: wn.Lon, Tags: tags})
	stats.Nodes++
	return nil
}

func (l *ShapefileLoader) loadLines(parts []int32, points []shp.Point, typeId data.TypeId, info data.TypeInfo, tags osm.Tags, db *GridDatabase, stats *LoadStats) error {
	if !info.CanBeWay {
		stats.Ignored++
		return nil
	}
	lines, err := l.parts(parts, points)
	if err != nil {
		return err
	}
	id := l.index.featureId(0)
	if len(lines) == 1 {
		if len(lines[0]) < 2 {
			return fmt.Errorf("line with %d distinct points", len(lines[0]))
		}
		db.AddWay(&data.Way{ID: osm.WayID(id), Type: typeId, Nodes: lines[0], Tags: tags})
		stats.Ways++
		return nil
	}

	roles := make([]data.Role, 0, len(lines))
	for _, line := range lines {
		roles = append(roles, data.Role{Nodes: line})
	}
	db.AddRelationWay(&data.RelationWay{ID: osm.RelationID(id), Type: typeId, Roles: roles, Tags: tags})
	stats.RelationWays++
	return nil
}

func (l *ShapefileLoader) loadPolygon(parts []int32, points []shp.Point, typeId data.TypeId, info data.TypeInfo, tags osm.Tags, db *GridDatabase, stats *LoadStats) error {
	if !info.CanBeArea {
		stats.Ignored++
		return nil
	}
	rings, err := l.parts(parts, points)
	if err != nil {
		return err
	}

	var outers, inners []osm.WayNodes
	for k, ring := range rings {
		if partOrientation(parts, points, k) == orb.CCW {
			inners = append(inners, ring)
		} else {
			outers = append(outers, ring)
		}
	}
	if len(outers) == 0 {
		return fmt.Errorf("polygon without outer ring")
	}

	id := l.index.featureId(0)
	if len(outers) == 1 && len(inners) == 0 {
		db.AddArea(&data.Area{ID: osm.WayID(id), Type: typeId, Nodes: outers[0], Tags: tags})
		stats.Areas++
		return nil
	}
	roles, orphans := assembleRoles(outers, inners)
	if orphans > 0 {
		return fmt.Errorf("%d holes outside every outer ring", orphans)
	}
	db.AddRelationArea(&data.RelationArea{ID: osm.RelationID(id), Type: typeId, Roles: roles, Tags: tags})
	stats.RelationAreas++
	return nil
}

// Splits the point list at the part offsets
func (l *ShapefileLoader) parts(parts []int32, points []shp.Point) ([]osm.WayNodes, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("shape without parts")
	}
	out := make([]osm.WayNodes, 0, len(parts))
	for k := range parts {
		start, end := partRange(parts, len(points), k)
		if start < 0 || start >= end || end > len(points) {
			return nil, fmt.Errorf("part %d has invalid range %d..%d", k, start, end)
		}
		nodes := make(osm.WayNodes, 0, end-start)
		for _, p := range points[start:end] {
			wn, err := l.index.node(geometry.Coordinate{X: p.X, Y: p.Y})
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, wn)
		}
		out = append(out, data.CompactNodes(nodes))
	}
	return out, nil
}

func partRange(parts []int32, numPoints int, k int) (int, int) {
	start := int(parts[k])
	end := numPoints
	if k+1 < len(parts) {
		end = int(parts[k+1])
	}
	return start, end
}

// Winding of part k in source coordinates
func partOrientation(parts []int32, points []shp.Point, k int) orb.Orientation {
	start, end := partRange(parts, len(points), k)
	ring := make(orb.Ring, 0, end-start)
	for _, p := range points[start:end] {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	return ring.Orientation()
}
