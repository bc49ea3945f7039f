package dataset

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/ecopia-map/globe_renderer/internal/data"
)

// Features returned by a database query
type QueryResult struct {
	Nodes         []*data.Node
	Ways          []*data.Way
	Areas         []*data.Area
	RelationWays  []*data.RelationWay
	RelationAreas []*data.RelationArea
}

func (r *QueryResult) Len() int {
	return len(r.Nodes) + len(r.Ways) + len(r.Areas) + len(r.RelationWays) + len(r.RelationAreas)
}

// Spatial feature store. Query may return features lying slightly outside the rectangle.
type Database interface {
	Query(ctx context.Context, bound orb.Bound, types data.TypeSet) (*QueryResult, error)
}

// Drops the nodes lying outside the rectangle
func FilterNodes(nodes []*data.Node, bound orb.Bound) []*data.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if bound.Contains(orb.Point{n.Lon, n.Lat}) {
			out = append(out, n)
		}
	}
	return out
}
