package geometry

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"
)

// Result of intersecting two 2D segments
type IntersectionType int

const (
	IntersectionFalse IntersectionType = iota
	IntersectionTrue
	IntersectionCoincident
	IntersectionParallel
)

func (t IntersectionType) String() string {
	switch t {
	case IntersectionTrue:
		return "TRUE"
	case IntersectionCoincident:
		return "COINCIDENT"
	case IntersectionParallel:
		return "PARALLEL"
	}
	return "FALSE"
}

// Intersects segment a1-a2 with segment b1-b2. Touching endpoints count as an intersection.
// Collinear segments are reported as coincident only when they share at least one point.
func IntersectSegments(a1, a2, b1, b2 orb.Point) (IntersectionType, orb.Point) {
	den := (b2[1]-b1[1])*(a2[0]-a1[0]) - (b2[0]-b1[0])*(a2[1]-a1[1])
	numA := (b2[0]-b1[0])*(a1[1]-b1[1]) - (b2[1]-b1[1])*(a1[0]-b1[0])
	numB := (a2[0]-a1[0])*(a1[1]-b1[1]) - (a2[1]-a1[1])*(a1[0]-b1[0])

	if den == 0 {
		if numA == 0 && numB == 0 {
			if collinearOverlap(a1, a2, b1, b2) {
				return IntersectionCoincident, orb.Point{}
			}
			return IntersectionFalse, orb.Point{}
		}
		return IntersectionParallel, orb.Point{}
	}

	ua := numA / den
	ub := numB / den
	if ua < 0 || ua > 1 || ub < 0 || ub > 1 {
		return IntersectionFalse, orb.Point{}
	}

	return IntersectionTrue, orb.Point{
		a1[0] + ua*(a2[0]-a1[0]),
		a1[1] + ua*(a2[1]-a1[1]),
	}
}

// projects both collinear segments on their dominant axis and checks the intervals
func collinearOverlap(a1, a2, b1, b2 orb.Point) bool {
	axis := 0
	if math.Abs(a2[1]-a1[1])+math.Abs(b2[1]-b1[1]) > math.Abs(a2[0]-a1[0])+math.Abs(b2[0]-b1[0]) {
		axis = 1
	}
	aMin, aMax := math.Min(a1[axis], a2[axis]), math.Max(a1[axis], a2[axis])
	bMin, bMax := math.Min(b1[axis], b2[axis]), math.Max(b1[axis], b2[axis])
	return aMin <= bMax && bMin <= aMax
}

// Returns the minimum distance between p and the segment a-b in the plane
func DistancePointSegment2D(p, a, b orb.Point) float64 {
	den := (a[0]-b[0])*(a[0]-b[0]) + (a[1]-b[1])*(a[1]-b[1])
	if den == 0 {
		return math.Hypot(p[0]-a[0], p[1]-a[1])
	}

	u := ((p[0]-a[0])*(b[0]-a[0]) + (p[1]-a[1])*(b[1]-a[1])) / den
	if u > 0 && u <= 1 {
		x := a[0] + u*(b[0]-a[0])
		y := a[1] + u*(b[1]-a[1])
		return math.Hypot(p[0]-x, p[1]-y)
	}

	return math.Min(math.Hypot(p[0]-a[0], p[1]-a[1]), math.Hypot(p[0]-b[0], p[1]-b[1]))
}

// Returns the minimum distance between p and the segment a-b
func DistancePointSegment(p, a, b r3.Vector) float64 {
	ab := b.Sub(a)
	den := ab.Norm2()
	if den == 0 {
		return p.Distance(a)
	}

	u := p.Sub(a).Dot(ab) / den
	switch {
	case u <= 0:
		return p.Distance(a)
	case u >= 1:
		return p.Distance(b)
	}
	return p.Distance(a.Add(ab.Mul(u)))
}

// Finds the closest approach between the infinite lines p1-p2 and p3-p4 and returns the
// midpoint of the shortest segment joining them. Returns false for parallel or degenerate lines.
func ClosestApproach(p1, p2, p3, p4 r3.Vector) (r3.Vector, bool) {
	const eps = 1e-12

	p13 := p1.Sub(p3)
	p43 := p4.Sub(p3)
	p21 := p2.Sub(p1)
	if p43.Norm2() < eps || p21.Norm2() < eps {
		return r3.Vector{}, false
	}

	d1343 := p13.Dot(p43)
	d4321 := p43.Dot(p21)
	d1321 := p13.Dot(p21)
	d4343 := p43.Dot(p43)
	d2121 := p21.Dot(p21)

	den := d2121*d4343 - d4321*d4321
	if math.Abs(den) < eps*d2121*d4343 {
		return r3.Vector{}, false
	}

	mua := (d1343*d4321 - d1321*d4343) / den
	mub := (d1343 + mua*d4321) / d4343

	pa := p1.Add(p21.Mul(mua))
	pb := p3.Add(p43.Mul(mub))
	return pa.Add(pb).Mul(0.5), true
}
