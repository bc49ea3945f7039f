package scene

import (
	"sort"

	"github.com/ecopia-map/globe_renderer/internal/data"
	"github.com/ecopia-map/globe_renderer/internal/render"
)

// Records currently rendered at one lod tier, keyed by feature id
type tierSet struct {
	nodes         map[data.FeatureId]*render.NodeRecord
	ways          map[data.FeatureId]*render.WayRecord
	areas         map[data.FeatureId]*render.AreaRecord
	relationAreas map[data.FeatureId]*render.RelationAreaRecord
}

func newTierSet() *tierSet {
	return &tierSet{
		nodes:         make(map[data.FeatureId]*render.NodeRecord),
		ways:          make(map[data.FeatureId]*render.WayRecord),
		areas:         make(map[data.FeatureId]*render.AreaRecord),
		relationAreas: make(map[data.FeatureId]*render.RelationAreaRecord),
	}
}

func (s *tierSet) len(kind data.FeatureKind) int {
	switch kind {
	case data.KindNode:
		return len(s.nodes)
	case data.KindWay:
		return len(s.ways)
	case data.KindArea:
		return len(s.areas)
	case data.KindRelationArea:
		return len(s.relationAreas)
	}
	return 0
}

func (s *tierSet) contains(kind data.FeatureKind, id data.FeatureId) bool {
	var ok bool
	switch kind {
	case data.KindNode:
		_, ok = s.nodes[id]
	case data.KindWay:
		_, ok = s.ways[id]
	case data.KindArea:
		_, ok = s.areas[id]
	case data.KindRelationArea:
		_, ok = s.relationAreas[id]
	}
	return ok
}

// Features queried for one tier after deduplication
type tierWanted struct {
	nodes         map[data.FeatureId]*data.Node
	ways          map[data.FeatureId]*data.Way
	areas         map[data.FeatureId]*data.Area
	relationAreas map[data.FeatureId]*data.RelationArea
}

func newTierWanted() *tierWanted {
	return &tierWanted{
		nodes:         make(map[data.FeatureId]*data.Node),
		ways:          make(map[data.FeatureId]*data.Way),
		areas:         make(map[data.FeatureId]*data.Area),
		relationAreas: make(map[data.FeatureId]*data.RelationArea),
	}
}

// First tier to return a feature id owns it for the whole refresh
type claims map[data.FeatureKind]map[data.FeatureId]int

func newClaims() claims {
	c := make(claims)
	for _, kind := range data.FeatureKinds {
		c[kind] = make(map[data.FeatureId]int)
	}
	return c
}

// Claims id for tier, false when a previous tier already owns it
func (c claims) claim(kind data.FeatureKind, id data.FeatureId, tier int) bool {
	if _, taken := c[kind][id]; taken {
		return false
	}
	c[kind][id] = tier
	return true
}

func sortedIds[T any](m map[data.FeatureId]T) []data.FeatureId {
	ids := make([]data.FeatureId, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
