package render

import "github.com/paulmach/osm"

// Tracks which rendered ways reference each node
type SharedNodes struct {
	owners map[osm.NodeID]map[osm.WayID]struct{}
}

func NewSharedNodes() *SharedNodes {
	return &SharedNodes{owners: make(map[osm.NodeID]map[osm.WayID]struct{})}
}

// Registers the nodes of a way and returns, for each of them, whether another way already referenced it
func (s *SharedNodes) Add(way osm.WayID, nodes osm.WayNodes) []bool {
	shared := make([]bool, len(nodes))
	for i, n := range nodes {
		shared[i] = s.referencedByOther(n.ID, way)
	}
	for _, n := range nodes {
		ways, ok := s.owners[n.ID]
		if !ok {
			ways = make(map[osm.WayID]struct{})
			s.owners[n.ID] = ways
		}
		ways[way] = struct{}{}
	}
	return shared
}

// Drops the references of a way; nodes left without owners are forgotten
func (s *SharedNodes) Remove(way osm.WayID, nodes osm.WayNodes) {
	for _, n := range nodes {
		ways, ok := s.owners[n.ID]
		if !ok {
			continue
		}
		delete(ways, way)
		if len(ways) == 0 {
			delete(s.owners, n.ID)
		}
	}
}

func (s *SharedNodes) referencedByOther(node osm.NodeID, way osm.WayID) bool {
	for owner := range s.owners[node] {
		if owner != way {
			return true
		}
	}
	return false
}

// Number of ways referencing the node
func (s *SharedNodes) Owners(node osm.NodeID) int {
	return len(s.owners[node])
}

// Number of tracked nodes
func (s *SharedNodes) Len() int {
	return len(s.owners)
}

func (s *SharedNodes) Clear() {
	s.owners = make(map[osm.NodeID]map[osm.WayID]struct{})
}
