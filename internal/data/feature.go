package data

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"github.com/ecopia-map/globe_renderer/internal/geometry"
)

// Kind of a map feature. Ids are unique within a kind only.
type FeatureKind int

const (
	KindNode FeatureKind = iota
	KindWay
	KindArea
	KindRelationArea
	// stored and queried but never rendered
	KindRelationWay
)

// All kinds tracked by the render sets, in processing order
var FeatureKinds = []FeatureKind{KindNode, KindWay, KindArea, KindRelationArea}

func (k FeatureKind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindWay:
		return "way"
	case KindArea:
		return "area"
	case KindRelationArea:
		return "relation-area"
	case KindRelationWay:
		return "relation-way"
	}
	return "unknown"
}

// Source database identifier of a feature, unique within its FeatureKind
type FeatureId int64

// A point feature
type Node struct {
	ID   osm.NodeID
	Type TypeId
	Lat  float64
	Lon  float64
	Tags osm.Tags
}

func (n *Node) FeatureId() FeatureId {
	return FeatureId(n.ID)
}

func (n *Node) GeoPoint() geometry.GeoPoint {
	return geometry.GeoPoint{Lat: n.Lat, Lon: n.Lon}
}

// A polyline feature. Nodes carry the referenced node ids together with their positions.
type Way struct {
	ID    osm.WayID
	Type  TypeId
	Nodes osm.WayNodes
	Tags  osm.Tags
}

func (w *Way) FeatureId() FeatureId {
	return FeatureId(w.ID)
}

// A polygon feature bounded by a single ring. The ring may or may not repeat its first node at the end.
type Area struct {
	ID    osm.WayID
	Type  TypeId
	Nodes osm.WayNodes
	Tags  osm.Tags
}

func (a *Area) FeatureId() FeatureId {
	return FeatureId(a.ID)
}

// One ring of a relation. Even ring indices start an outer polygon, odd ones are holes of the
// most recently started outer polygon.
type Role struct {
	Ring  int
	Nodes osm.WayNodes
}

// A multipolygon relation made of several rings
type RelationArea struct {
	ID    osm.RelationID
	Type  TypeId
	Roles []Role
	Tags  osm.Tags
}

func (r *RelationArea) FeatureId() FeatureId {
	return FeatureId(r.ID)
}

// A relation made of several polylines, such as a route
type RelationWay struct {
	ID    osm.RelationID
	Type  TypeId
	Roles []Role
	Tags  osm.Tags
}

func (r *RelationWay) FeatureId() FeatureId {
	return FeatureId(r.ID)
}

// Converts way nodes to a planar (lon, lat) ring
func NodesToRing(nodes osm.WayNodes) orb.Ring {
	ring := make(orb.Ring, len(nodes))
	for i, n := range nodes {
		ring[i] = orb.Point{n.Lon, n.Lat}
	}
	return ring
}

// Bounding rectangle of the given way nodes
func NodesBound(nodes osm.WayNodes) orb.Bound {
	if len(nodes) == 0 {
		return orb.Bound{}
	}
	b := orb.Bound{Min: orb.Point{nodes[0].Lon, nodes[0].Lat}, Max: orb.Point{nodes[0].Lon, nodes[0].Lat}}
	for _, n := range nodes[1:] {
		b = b.Extend(orb.Point{n.Lon, n.Lat})
	}
	return b
}

// Drops nodes repeating the position of their predecessor
func CompactNodes(nodes osm.WayNodes) osm.WayNodes {
	if len(nodes) == 0 {
		return nodes
	}
	out := osm.WayNodes{nodes[0]}
	for _, n := range nodes[1:] {
		last := out[len(out)-1]
		if n.Lat == last.Lat && n.Lon == last.Lon {
			continue
		}
		out = append(out, n)
	}
	return out
}
