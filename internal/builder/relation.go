package builder

import (
	"fmt"

	"github.com/paulmach/osm"

	"github.com/ecopia-map/globe_renderer/internal/data"
)

// An outer ring and the holes that belong to it
type RingGroup struct {
	Outer  osm.WayNodes
	Inners []osm.WayNodes
}

// Groups relation roles into polygons. Roles with an even ring index start a new outer polygon,
// odd ones are holes of the last outer polygon. A relation starting with a hole is malformed.
func DecomposeRelation(roles []data.Role) ([]RingGroup, error) {
	var groups []RingGroup
	for i, role := range roles {
		if role.Ring%2 == 0 {
			groups = append(groups, RingGroup{Outer: role.Nodes})
			continue
		}
		if len(groups) == 0 {
			return nil, fmt.Errorf("%w: role %d is an inner ring without outer ring", ErrMalformedRelation, i)
		}
		last := &groups[len(groups)-1]
		last.Inners = append(last.Inners, role.Nodes)
	}

	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no outer ring", ErrMalformedRelation)
	}
	return groups, nil
}
