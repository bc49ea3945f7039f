package geometry

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVector(t *testing.T, expected, actual r3.Vector, delta float64) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, delta, "x")
	assert.InDelta(t, expected.Y, actual.Y, delta, "y")
	assert.InDelta(t, expected.Z, actual.Z, delta, "z")
}

func TestSolveQuadratic(t *testing.T) {
	r1, r2, ok := SolveQuadratic(1, -3, 2)
	require.True(t, ok)
	assert.Equal(t, 2.0, r1)
	assert.Equal(t, 1.0, r2)

	_, _, ok = SolveQuadratic(1, -2, 1)
	assert.False(t, ok, "tangent")

	_, _, ok = SolveQuadratic(1, 0, 1)
	assert.False(t, ok, "complex")

	_, _, ok = SolveQuadratic(0, 1, 1)
	assert.False(t, ok, "not quadratic")
}

func TestEllipsoidLineAndRay(t *testing.T) {
	unit := Ellipsoid{SemiMajor: 1, SemiMinor: 1}

	p, ok := unit.IntersectLine(r3.Vector{X: 2}, r3.Vector{X: -1})
	require.True(t, ok)
	assertVector(t, r3.Vector{X: 1}, p, 1e-12)

	p, ok = unit.IntersectRay(r3.Vector{X: 2}, r3.Vector{X: -1})
	require.True(t, ok)
	assertVector(t, r3.Vector{X: 1}, p, 1e-12)

	// pointing away: the line still crosses the surface behind the origin
	p, ok = unit.IntersectLine(r3.Vector{X: 2}, r3.Vector{X: 1})
	require.True(t, ok)
	assertVector(t, r3.Vector{X: 1}, p, 1e-12)

	_, ok = unit.IntersectRay(r3.Vector{X: 2}, r3.Vector{X: 1})
	assert.False(t, ok)

	_, ok = unit.IntersectLine(r3.Vector{X: 2}, r3.Vector{Y: 1})
	assert.False(t, ok, "miss")
}

func TestEllipsoidForward(t *testing.T) {
	unit := Ellipsoid{SemiMajor: 1, SemiMinor: 1}

	p, ok := unit.IntersectForward(r3.Vector{X: 3}, r3.Vector{X: -2})
	require.True(t, ok)
	assertVector(t, r3.Vector{X: 1}, p, 1e-12)

	_, ok = unit.IntersectForward(r3.Vector{X: 3}, r3.Vector{X: 1})
	assert.False(t, ok, "behind")

	_, ok = unit.IntersectForward(r3.Vector{}, r3.Vector{X: 1})
	assert.False(t, ok, "inside")

	p, ok = unit.IntersectRay(r3.Vector{}, r3.Vector{X: 1})
	require.True(t, ok)
	assertVector(t, r3.Vector{X: 1}, p, 1e-12)
}

func TestEllipsoidFlattening(t *testing.T) {
	e := Ellipsoid{SemiMajor: 2, SemiMinor: 1}

	p, ok := e.IntersectRay(r3.Vector{Z: 5}, r3.Vector{Z: -1})
	require.True(t, ok)
	assertVector(t, r3.Vector{Z: 1}, p, 1e-12)

	p, ok = e.IntersectRay(r3.Vector{Y: 5}, r3.Vector{Y: -1})
	require.True(t, ok)
	assertVector(t, r3.Vector{Y: 2}, p, 1e-12)
}

func TestPlane(t *testing.T) {
	pl := Plane{Normal: r3.Vector{Z: 1}}

	p, ok := pl.IntersectLine(r3.Vector{Z: 5}, r3.Vector{X: 1, Z: -1})
	require.True(t, ok)
	assertVector(t, r3.Vector{X: 5}, p, 1e-12)

	_, ok = pl.IntersectLine(r3.Vector{Z: 5}, r3.Vector{X: 1})
	assert.False(t, ok, "parallel")

	assert.Equal(t, 3.0, pl.Distance(r3.Vector{X: 1, Y: 2, Z: 3}))
	assert.Equal(t, 3.0, pl.Distance(r3.Vector{X: 1, Y: 2, Z: -3}))

	scaled := Plane{Point: r3.Vector{Z: 1}, Normal: r3.Vector{Z: 10}}
	assert.InDelta(t, 4.0, scaled.Distance(r3.Vector{Z: 5}), 1e-12)
}

func TestIntersectSegments(t *testing.T) {
	kind, p := IntersectSegments(orb.Point{0, 0}, orb.Point{2, 2}, orb.Point{0, 2}, orb.Point{2, 0})
	assert.Equal(t, IntersectionTrue, kind)
	assert.Equal(t, orb.Point{1, 1}, p)

	kind, p = IntersectSegments(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{1, 0}, orb.Point{1, 1})
	assert.Equal(t, IntersectionTrue, kind, "touching endpoints")
	assert.Equal(t, orb.Point{1, 0}, p)

	kind, _ = IntersectSegments(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{0, 1}, orb.Point{1, 1})
	assert.Equal(t, IntersectionParallel, kind)

	kind, _ = IntersectSegments(orb.Point{0, 0}, orb.Point{2, 0}, orb.Point{1, 0}, orb.Point{3, 0})
	assert.Equal(t, IntersectionCoincident, kind)

	kind, _ = IntersectSegments(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{2, 0}, orb.Point{3, 0})
	assert.Equal(t, IntersectionFalse, kind, "collinear but apart")

	kind, _ = IntersectSegments(orb.Point{0, 0}, orb.Point{1, 1}, orb.Point{3, 0}, orb.Point{2, 1})
	assert.Equal(t, IntersectionFalse, kind)

	assert.Equal(t, "COINCIDENT", IntersectionCoincident.String())
}

func TestPointSegmentDistance(t *testing.T) {
	assert.Equal(t, 1.0, DistancePointSegment2D(orb.Point{0, 1}, orb.Point{-1, 0}, orb.Point{1, 0}))
	assert.Equal(t, 2.0, DistancePointSegment2D(orb.Point{3, 0}, orb.Point{-1, 0}, orb.Point{1, 0}))
	assert.Equal(t, 5.0, DistancePointSegment2D(orb.Point{3, 4}, orb.Point{0, 0}, orb.Point{0, 0}))

	assert.Equal(t, 1.0, DistancePointSegment(r3.Vector{Y: 1}, r3.Vector{X: -1}, r3.Vector{X: 1}))
	assert.Equal(t, 2.0, DistancePointSegment(r3.Vector{X: 3}, r3.Vector{X: -1}, r3.Vector{X: 1}))
	assert.Equal(t, 2.0, DistancePointSegment(r3.Vector{X: -3}, r3.Vector{X: -1}, r3.Vector{X: 1}))
}

func TestClosestApproach(t *testing.T) {
	p, ok := ClosestApproach(
		r3.Vector{}, r3.Vector{X: 1},
		r3.Vector{Y: 1, Z: 1}, r3.Vector{Y: 2, Z: 1},
	)
	require.True(t, ok)
	assertVector(t, r3.Vector{Z: 0.5}, p, 1e-12)

	_, ok = ClosestApproach(
		r3.Vector{}, r3.Vector{X: 1},
		r3.Vector{Y: 1}, r3.Vector{X: 1, Y: 1},
	)
	assert.False(t, ok, "parallel")
}

func TestBounds(t *testing.T) {
	a := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}
	b := orb.Bound{Min: orb.Point{5, 5}, Max: orb.Point{15, 20}}

	overlap, ok := IntersectBounds(a, b)
	require.True(t, ok)
	assert.Equal(t, orb.Bound{Min: orb.Point{5, 5}, Max: orb.Point{10, 10}}, overlap)

	_, ok = IntersectBounds(a, orb.Bound{Min: orb.Point{11, 11}, Max: orb.Point{12, 12}})
	assert.False(t, ok)

	assert.Equal(t, 100.0, BoundArea(a))

	assert.Equal(t, 0.0, MinDistancePointBound(orb.Point{5, 5}, a))
	assert.Equal(t, 2.0, MinDistancePointBound(orb.Point{12, 5}, a))
	assert.Equal(t, 5.0, MinDistancePointBound(orb.Point{13, 14}, a))
	assert.InDelta(t, math.Hypot(10, 10), MaxDistancePointBound(orb.Point{0, 0}, a), 1e-12)
}

func TestOverlapRatios(t *testing.T) {
	prev := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}

	rPrev, rNext := OverlapRatios(prev, prev)
	assert.Equal(t, 1.0, rPrev)
	assert.Equal(t, 1.0, rNext)

	// shrinks inside the previous rectangle
	rPrev, rNext = OverlapRatios(prev, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{4, 10}})
	assert.InDelta(t, 0.4, rPrev, 1e-12)
	assert.InDelta(t, 1.0, rNext, 1e-12)

	rPrev, rNext = OverlapRatios(prev, orb.Bound{Min: orb.Point{20, 20}, Max: orb.Point{30, 30}})
	assert.Equal(t, 0.0, rPrev)
	assert.Equal(t, 0.0, rNext)
}

func TestRingOrientation(t *testing.T) {
	square := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	assert.Equal(t, orb.CCW, RingOrientation(square))

	reversed := square.Clone()
	reversed.Reverse()
	assert.Equal(t, orb.CW, RingOrientation(reversed))

	closed := append(square.Clone(), orb.Point{0, 0})
	assert.Equal(t, orb.CCW, RingOrientation(closed))
	assert.Equal(t, closed.Orientation(), RingOrientation(closed))

	assert.Equal(t, orb.Orientation(0), RingOrientation(orb.Ring{{0, 0}, {1, 1}}))
	assert.Equal(t, orb.Orientation(0), RingOrientation(orb.Ring{{0, 0}, {1, 0}, {2, 0}}))
}

func TestIsSimplePolygon(t *testing.T) {
	square := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	assert.True(t, IsSimplePolygon(square, nil))
	assert.True(t, IsSimplePolygon(append(square.Clone(), orb.Point{0, 0}), nil), "closed ring")

	quad := orb.Ring{{0, 0}, {4, 1}, {3, 5}, {-1, 3}}
	assert.True(t, IsSimplePolygon(quad, nil))

	bowtie := orb.Ring{{0, 0}, {1, 1}, {1, 0}, {0, 1}}
	assert.False(t, IsSimplePolygon(bowtie, nil))

	outer := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	hole := orb.Ring{{2, 2}, {2, 4}, {4, 4}, {4, 2}}
	assert.True(t, IsSimplePolygon(outer, []orb.Ring{hole}))

	escaping := orb.Ring{{8, 2}, {12, 2}, {12, 4}, {8, 4}}
	assert.False(t, IsSimplePolygon(outer, []orb.Ring{escaping}))

	concave := orb.Ring{{0, 0}, {3, 0}, {3, 3}, {2, 3}, {2, 1}, {1, 1}, {1, 3}, {0, 3}}
	assert.True(t, IsSimplePolygon(concave, nil))
}

func TestNormalizePolygon(t *testing.T) {
	outer := orb.Ring{{0, 10}, {10, 10}, {10, 0}, {0, 0}}
	hole := orb.Ring{{2, 2}, {4, 2}, {4, 4}, {2, 4}}

	poly := NormalizePolygon(outer, []orb.Ring{hole})
	require.Len(t, poly, 2)
	assert.Equal(t, orb.CCW, RingOrientation(poly[0]))
	assert.Equal(t, orb.CW, RingOrientation(poly[1]))

	// inputs are not modified
	assert.Equal(t, orb.CW, RingOrientation(outer))
	assert.Equal(t, orb.CCW, RingOrientation(hole))
}

func TestBuildRibbonStraight(t *testing.T) {
	line := []r3.Vector{{X: 1000}, {X: 1000, Y: 10}, {X: 1000, Y: 20}}

	strip, ok := BuildRibbon(line, 2, OutlineCenter, r3.Vector{})
	require.True(t, ok)
	require.Len(t, strip, 6)

	// travelling east on the equator, north is on the left
	assertVector(t, r3.Vector{X: 1000, Z: 1}, strip[0], 1e-9)
	assertVector(t, r3.Vector{X: 1000, Z: -1}, strip[1], 1e-9)
	assertVector(t, r3.Vector{X: 1000, Y: 10, Z: 1}, strip[2], 1e-9)
	assertVector(t, r3.Vector{X: 1000, Y: 20, Z: -1}, strip[5], 1e-9)

	left, right, ok := RibbonRails(line, 2, OutlineLeft, r3.Vector{})
	require.True(t, ok)
	assertVector(t, r3.Vector{X: 1000, Z: 2}, left[0], 1e-9)
	assertVector(t, r3.Vector{X: 1000}, right[0], 1e-9)

	left, right, ok = RibbonRails(line, 2, OutlineRight, r3.Vector{})
	require.True(t, ok)
	assertVector(t, r3.Vector{X: 1000}, left[0], 1e-9)
	assertVector(t, r3.Vector{X: 1000, Z: -2}, right[0], 1e-9)
}

func TestBuildRibbonTurn(t *testing.T) {
	line := []r3.Vector{{X: 1000}, {X: 1000, Y: 10}, {X: 1000, Y: 10, Z: 10}}
	center := r3.Vector{Y: 10}

	left, right, ok := RibbonRails(line, 2, OutlineCenter, center)
	require.True(t, ok)
	require.Len(t, left, 3)

	assertVector(t, r3.Vector{X: 1000, Y: 9, Z: 1}, left[1], 1e-9)
	assertVector(t, r3.Vector{X: 1000, Y: 11, Z: -1}, right[1], 1e-9)
	assertVector(t, r3.Vector{X: 1000, Y: 9, Z: 10}, left[2], 1e-9)
}

func TestBuildRibbonRejectsShortInput(t *testing.T) {
	_, ok := BuildRibbon([]r3.Vector{{X: 1}}, 1, OutlineCenter, r3.Vector{})
	assert.False(t, ok)

	_, ok = BuildRibbon([]r3.Vector{{X: 1}, {X: 2}}, 0, OutlineCenter, r3.Vector{})
	assert.False(t, ok)
}
