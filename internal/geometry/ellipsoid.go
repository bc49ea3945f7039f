package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// An ellipsoid of revolution centered at the origin with its minor axis along z
type Ellipsoid struct {
	SemiMajor float64
	SemiMinor float64
}

// Intersects the infinite line origin + t*dir with the ellipsoid surface and returns
// the intersection nearest to origin, regardless of the sign of t
func (e Ellipsoid) IntersectLine(origin, dir r3.Vector) (r3.Vector, bool) {
	t1, t2, ok := e.roots(origin, dir)
	if !ok {
		return r3.Vector{}, false
	}

	p1 := origin.Add(dir.Mul(t1))
	p2 := origin.Add(dir.Mul(t2))
	if origin.Distance(p1) > origin.Distance(p2) {
		return p2, true
	}
	return p1, true
}

// Intersects the half line origin + t*dir, t >= 0, with the ellipsoid surface and returns
// the nearest intersection lying in front of origin
func (e Ellipsoid) IntersectRay(origin, dir r3.Vector) (r3.Vector, bool) {
	t1, t2, ok := e.roots(origin, dir)
	if !ok {
		return r3.Vector{}, false
	}

	if t1 > t2 {
		t1, t2 = t2, t1
	}
	switch {
	case t1 >= 0:
		return origin.Add(dir.Mul(t1)), true
	case t2 >= 0:
		return origin.Add(dir.Mul(t2)), true
	}
	return r3.Vector{}, false
}

// substitutes the parametric line into x^2/A^2 + y^2/A^2 + z^2/B^2 = 1
func (e Ellipsoid) roots(origin, dir r3.Vector) (float64, float64, bool) {
	a2 := e.SemiMajor * e.SemiMajor
	b2 := e.SemiMinor * e.SemiMinor

	a := dir.X*dir.X/a2 + dir.Y*dir.Y/a2 + dir.Z*dir.Z/b2
	b := 2 * (origin.X*dir.X/a2 + origin.Y*dir.Y/a2 + origin.Z*dir.Z/b2)
	c := origin.X*origin.X/a2 + origin.Y*origin.Y/a2 + origin.Z*origin.Z/b2 - 1

	return SolveQuadratic(a, b, c)
}

// Intersects the line origin + t*dir with the ellipsoid and accepts the hit only when both
// crossings lie in front of origin, i.e. origin is outside the ellipsoid and dir points at it.
// Returns the nearer crossing.
func (e Ellipsoid) IntersectForward(origin, dir r3.Vector) (r3.Vector, bool) {
	t1, t2, ok := e.roots(origin, dir)
	if !ok || t1 <= 0 || t2 <= 0 {
		return r3.Vector{}, false
	}
	return origin.Add(dir.Mul(math.Min(t1, t2))), true
}
