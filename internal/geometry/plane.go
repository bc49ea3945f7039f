package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// A plane through Point with the given Normal. The normal does not need to be unit length.
type Plane struct {
	Point  r3.Vector
	Normal r3.Vector
}

// coefficients of ax + by + cz + d = 0
func (pl Plane) coefficients() (float64, float64, float64, float64) {
	n := pl.Normal
	return n.X, n.Y, n.Z, -n.Dot(pl.Point)
}

// Intersects the infinite line linePoint + t*lineDir with the plane.
// Returns false when the line is parallel to the plane.
func (pl Plane) IntersectLine(linePoint, lineDir r3.Vector) (r3.Vector, bool) {
	a, b, c, d := pl.coefficients()

	num := a*linePoint.X + b*linePoint.Y + c*linePoint.Z + d
	den := -(a*lineDir.X + b*lineDir.Y + c*lineDir.Z)
	if den == 0 {
		return r3.Vector{}, false
	}

	return linePoint.Add(lineDir.Mul(num / den)), true
}

// Returns the unsigned distance between p and the plane
func (pl Plane) Distance(p r3.Vector) float64 {
	a, b, c, d := pl.coefficients()
	norm := math.Sqrt(a*a + b*b + c*c)
	if norm == 0 {
		return 0
	}
	return math.Abs(a*p.X+b*p.Y+c*p.Z+d) / norm
}
