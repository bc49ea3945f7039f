package dataset

import (
	"context"
	"io"
	"runtime"

	"github.com/golang/glog"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"github.com/ecopia-map/globe_renderer/internal/data"
)

const (
	relationTypeTag  = "type"
	multipolygonType = "multipolygon"
	routeType        = "route"
	outerRole        = "outer"
	innerRole        = "inner"
)

// Loads OpenStreetMap protobuf extracts. Files must list nodes before ways and ways before relations,
// as produced by the usual extract tools. Multipolygon members must be closed ways.
type PBFLoader struct {
	types *data.TypeConfig
	procs int
}

func NewPBFLoader(types *data.TypeConfig) *PBFLoader {
	return &PBFLoader{types: types, procs: runtime.NumCPU()}
}

func (l *PBFLoader) Load(ctx context.Context, r io.Reader, db *GridDatabase) (LoadStats, error) {
	var stats LoadStats

	scanner := osmpbf.New(ctx, r, l.procs)
	defer func() { _ = scanner.Close() }()

	run := newPBFRun()
	for scanner.Scan() {
		l.loadObject(run, scanner.Object(), db, &stats)
	}

	if err := scanner.Err(); err != nil && err != io.EOF {
		return stats, err
	}
	return stats, nil
}

// Node positions and way geometries seen so far in a file
type pbfRun struct {
	positions map[osm.NodeID]osm.WayNode
	ways      map[osm.WayID]osm.WayNodes
}

func newPBFRun() *pbfRun {
	return &pbfRun{
		positions: make(map[osm.NodeID]osm.WayNode),
		ways:      make(map[osm.WayID]osm.WayNodes),
	}
}

func (l *PBFLoader) loadObject(run *pbfRun, o osm.Object, db *GridDatabase, stats *LoadStats) {
	switch o := o.(type) {
	case *osm.Node:
		run.positions[o.ID] = osm.WayNode{ID: o.ID, Lat: o.Lat, Lon: o.Lon}
		l.loadNode(o, db, stats)
	case *osm.Way:
		nodes, ok := resolveNodes(o.Nodes, run.positions)
		if !ok {
			stats.Broken++
			return
		}
		run.ways[o.ID] = nodes
		l.loadWay(o, nodes, db, stats)
	case *osm.Relation:
		l.loadRelation(o, run.ways, db, stats)
	}
}

func (l *PBFLoader) typeOf(tags osm.Tags) (data.TypeId, data.TypeInfo, bool) {
	id := l.types.ClassifyTags(tags)
	info, ok := l.types.GetTypeInfo(id)
	return id, info, ok
}

func (l *PBFLoader) loadNode(n *osm.Node, db *GridDatabase, stats *LoadStats) {
	if len(n.Tags) == 0 {
		return
	}
	typeId, info, ok := l.typeOf(n.Tags)
	if !ok || !info.CanBeNode {
		stats.Ignored++
		return
	}
	db.AddNode(&data.Node{ID: n.ID, Type: typeId, Lat: n.Lat, Lon: n.Lon, Tags: n.Tags})
	stats.Nodes++
}

func (l *PBFLoader) loadWay(w *osm.Way, nodes osm.WayNodes, db *GridDatabase, stats *LoadStats) {
	typeId, info, ok := l.typeOf(w.Tags)
	if !ok {
		stats.Ignored++
		return
	}

	switch {
	case isClosed(nodes) && info.CanBeArea:
		db.AddArea(&data.Area{ID: w.ID, Type: typeId, Nodes: nodes, Tags: w.Tags})
		stats.Areas++
	case info.CanBeWay && len(nodes) >= 2:
		db.AddWay(&data.Way{ID: w.ID, Type: typeId, Nodes: nodes, Tags: w.Tags})
		stats.Ways++
	default:
		stats.Ignored++
	}
}

func (l *PBFLoader) loadRelation(r *osm.Relation, ways map[osm.WayID]osm.WayNodes, db *GridDatabase, stats *LoadStats) {
	typeId, info, ok := l.typeOf(r.Tags)
	if !ok || !info.CanBeRelation {
		stats.Ignored++
		return
	}

	switch r.Tags.Find(relationTypeTag) {
	case multipolygonType:
		var outers, inners []osm.WayNodes
		for _, m := range r.Members {
			if m.Type != osm.TypeWay {
				continue
			}
			nodes, found := ways[osm.WayID(m.Ref)]
			if !found || !isClosed(nodes) {
				glog.V(2).Infof("relation %d: member way %d missing or open", r.ID, m.Ref)
				stats.Broken++
				return
			}
			if m.Role == innerRole {
				inners = append(inners, nodes)
			} else {
				outers = append(outers, nodes)
			}
		}
		if len(outers) == 0 {
			stats.Broken++
			return
		}

		roles, orphans := assembleRoles(outers, inners)
		if orphans > 0 {
			glog.V(2).Infof("relation %d: dropped %d inner rings outside every outer ring", r.ID, orphans)
		}
		db.AddRelationArea(&data.RelationArea{ID: r.ID, Type: typeId, Roles: roles, Tags: r.Tags})
		stats.RelationAreas++

	case routeType:
		var roles []data.Role
		for _, m := range r.Members {
			if m.Type != osm.TypeWay {
				continue
			}
			if nodes, found := ways[osm.WayID(m.Ref)]; found {
				roles = append(roles, data.Role{Nodes: nodes})
			}
		}
		if len(roles) == 0 {
			stats.Broken++
			return
		}
		db.AddRelationWay(&data.RelationWay{ID: r.ID, Type: typeId, Roles: roles, Tags: r.Tags})
		stats.RelationWays++

	default:
		stats.Ignored++
	}
}

// Fills in node positions and drops consecutive duplicates. Fails when a node is unknown.
func resolveNodes(refs osm.WayNodes, positions map[osm.NodeID]osm.WayNode) (osm.WayNodes, bool) {
	nodes := make(osm.WayNodes, 0, len(refs))
	for _, ref := range refs {
		p, ok := positions[ref.ID]
		if !ok {
			return nil, false
		}
		nodes = append(nodes, p)
	}
	return data.CompactNodes(nodes), true
}
