package geometry

import "math"

// Returns the two real roots of a*x^2 + b*x + c = 0. Only a strictly positive
// discriminant yields roots: tangent and complex cases report false.
func SolveQuadratic(a, b, c float64) (float64, float64, bool) {
	if a == 0 {
		return 0, 0, false
	}

	discriminant := b*b - 4*a*c
	if discriminant <= 0 {
		return 0, 0, false
	}

	mid := -b / (2 * a)
	spread := math.Sqrt(discriminant) / (2 * a)
	return mid + spread, mid - spread, true
}
