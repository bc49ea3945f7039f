package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// Returns the overlapping part of two lat/lon rectangles, false when they are disjoint
func IntersectBounds(a, b orb.Bound) (orb.Bound, bool) {
	if !a.Intersects(b) {
		return orb.Bound{}, false
	}
	return orb.Bound{
		Min: orb.Point{math.Max(a.Min[0], b.Min[0]), math.Max(a.Min[1], b.Min[1])},
		Max: orb.Point{math.Min(a.Max[0], b.Max[0]), math.Min(a.Max[1], b.Max[1])},
	}, true
}

// Planar area of a rectangle in square degrees
func BoundArea(b orb.Bound) float64 {
	return (b.Max[0] - b.Min[0]) * (b.Max[1] - b.Min[1])
}

// Returns the area shared by prev and next, normalized by the area of prev and of next respectively.
// A zero-area rectangle yields a ratio of zero.
func OverlapRatios(prev, next orb.Bound) (float64, float64) {
	overlap, ok := IntersectBounds(prev, next)
	if !ok {
		return 0, 0
	}

	shared := BoundArea(overlap)
	var ratioPrev, ratioNext float64
	if area := BoundArea(prev); area > 0 {
		ratioPrev = shared / area
	}
	if area := BoundArea(next); area > 0 {
		ratioNext = shared / area
	}
	return ratioPrev, ratioNext
}

// Returns the minimum planar distance between p and the rectangle; zero when p lies inside
func MinDistancePointBound(p orb.Point, b orb.Bound) float64 {
	if b.Contains(p) {
		return 0
	}

	bl := b.Min
	tr := b.Max
	tl := orb.Point{bl[0], tr[1]}
	br := orb.Point{tr[0], bl[1]}

	return math.Min(
		math.Min(DistancePointSegment2D(p, bl, tl), DistancePointSegment2D(p, tr, br)),
		math.Min(DistancePointSegment2D(p, tl, tr), DistancePointSegment2D(p, bl, br)),
	)
}

// Returns the maximum planar distance between p and the four corners of the rectangle
func MaxDistancePointBound(p orb.Point, b orb.Bound) float64 {
	var dist float64
	for _, corner := range BoundCorners(b) {
		dist = math.Max(dist, math.Hypot(p[0]-corner[0], p[1]-corner[1]))
	}
	return dist
}

// Corners of the rectangle in the order bottom-left, bottom-right, top-right, top-left
func BoundCorners(b orb.Bound) [4]orb.Point {
	return [4]orb.Point{
		b.Min,
		{b.Max[0], b.Min[1]},
		b.Max,
		{b.Min[0], b.Max[1]},
	}
}
