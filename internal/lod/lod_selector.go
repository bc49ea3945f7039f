package lod

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"

	"github.com/ecopia-map/globe_renderer/internal/converters"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
	"github.com/ecopia-map/globe_renderer/internal/style"
)

var ErrNoActiveTier = errors.New("no lod tier covers the current camera distance")

// Query plan of one active tier
type TierQuery struct {
	Index int
	Tier  *style.Tier
	// rectangle reachable from the camera sub-point within the tier max distance
	Reach orb.Bound
	// Reach clipped to the view rectangle, meaningful only when Skip is false
	Bound orb.Bound
	// set when Reach does not overlap the view rectangle
	Skip bool
}

// Result of a tier selection for a camera pose
type Selection struct {
	MinDistance float64
	MaxDistance float64
	Tiers       []TierQuery
}

// Tiers that will be queried, in nearest to farthest order
func (s Selection) Queries() []TierQuery {
	out := make([]TierQuery, 0, len(s.Tiers))
	for _, q := range s.Tiers {
		if !q.Skip {
			out = append(out, q)
		}
	}
	return out
}

// Minimum and maximum distance between the eye and the view rectangle placed on the ellipsoid.
// The minimum is taken over the four edges, the maximum over the four corners.
func ViewDistanceRange(eye r3.Vector, view orb.Bound) (float64, float64) {
	corners := converters.BoundCornersToCartesian(view, 0)

	minDist := math.Inf(1)
	maxDist := 0.0
	for i, c := range corners {
		next := corners[(i+1)%len(corners)]
		minDist = math.Min(minDist, geometry.DistancePointSegment(eye, c, next))
		maxDist = math.Max(maxDist, eye.Distance(c))
	}
	return minDist, maxDist
}

// Rectangle spanned by the north, east, south and west destinations at distance meters from p
func ReachBound(p geometry.GeoPoint, distance float64) orb.Bound {
	surface := p.OnSurface()
	north := converters.Destination(surface, 0, distance)
	east := converters.Destination(surface, 90, distance)
	south := converters.Destination(surface, 180, distance)
	west := converters.Destination(surface, 270, distance)

	return orb.Bound{
		Min: orb.Point{math.Min(west.Lon, east.Lon), math.Min(south.Lat, north.Lat)},
		Max: orb.Point{math.Max(west.Lon, east.Lon), math.Max(south.Lat, north.Lat)},
	}
}

// Whether the closed range [minA, maxA] overlaps [minB, maxB]
func rangesOverlap(minA, maxA, minB, maxB float64) bool {
	return minA <= maxB && minB <= maxA
}

// Selects the tiers whose distance range overlaps the distance between the eye and the view rectangle
// and computes the query rectangle of each one. Returns ErrNoActiveTier when none is active.
func Select(eye r3.Vector, view orb.Bound, cfg *style.Config) (Selection, error) {
	var sel Selection
	sel.MinDistance, sel.MaxDistance = ViewDistanceRange(eye, view)

	position := converters.ToGeodetic(eye)
	for i, tier := range cfg.Tiers() {
		if !rangesOverlap(tier.MinDistance(), tier.MaxDistance(), sel.MinDistance, sel.MaxDistance) {
			continue
		}

		q := TierQuery{Index: i, Tier: tier, Reach: ReachBound(position, tier.MaxDistance())}
		bound, ok := geometry.IntersectBounds(q.Reach, view)
		q.Bound = bound
		q.Skip = !ok
		sel.Tiers = append(sel.Tiers, q)
	}

	if len(sel.Tiers) == 0 {
		return sel, ErrNoActiveTier
	}
	return sel, nil
}
