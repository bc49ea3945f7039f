package geometry

import "github.com/golang/geo/r3"

// Placement of a ribbon relative to its centerline, in the direction of travel
type OutlineType int

const (
	OutlineCenter OutlineType = iota
	OutlineRight
	OutlineLeft
)

func (t OutlineType) String() string {
	switch t {
	case OutlineRight:
		return "right"
	case OutlineLeft:
		return "left"
	}
	return "center"
}

// Builds the triangle strip of a ribbon of the given width laid along the centerline. The strip
// alternates left and right vertices. The local up direction at each vertex points away from earthCenter.
// At interior vertices the offset edges of the adjacent segments are joined at their closest approach.
// Zero-length segments are not handled and must be removed by the caller.
func BuildRibbon(centerline []r3.Vector, width float64, mode OutlineType, earthCenter r3.Vector) ([]r3.Vector, bool) {
	left, right, ok := RibbonRails(centerline, width, mode, earthCenter)
	if !ok {
		return nil, false
	}

	strip := make([]r3.Vector, 0, 2*len(left))
	for i := range left {
		strip = append(strip, left[i], right[i])
	}
	return strip, true
}

// Computes the left and right rails of the ribbon, one vertex per centerline vertex
func RibbonRails(centerline []r3.Vector, width float64, mode OutlineType, earthCenter r3.Vector) ([]r3.Vector, []r3.Vector, bool) {
	n := len(centerline)
	if n < 2 || width <= 0 {
		return nil, nil, false
	}

	// per segment offset edges
	segLeft := make([][2]r3.Vector, n-1)
	segRight := make([][2]r3.Vector, n-1)
	for i := 0; i < n-1; i++ {
		a, b := centerline[i], centerline[i+1]
		for k, p := range [2]r3.Vector{a, b} {
			up := p.Sub(earthCenter)
			perp := b.Sub(a).Cross(up).Normalize()
			l, r := offsetPair(p, perp, width, mode)
			segLeft[i][k] = l
			segRight[i][k] = r
		}
	}

	left := make([]r3.Vector, n)
	right := make([]r3.Vector, n)
	left[0], right[0] = segLeft[0][0], segRight[0][0]
	left[n-1], right[n-1] = segLeft[n-2][1], segRight[n-2][1]

	for i := 1; i < n-1; i++ {
		prevL, nextL := segLeft[i-1], segLeft[i]
		if p, ok := ClosestApproach(prevL[0], prevL[1], nextL[0], nextL[1]); ok {
			left[i] = p
		} else {
			left[i] = nextL[0]
		}

		prevR, nextR := segRight[i-1], segRight[i]
		if p, ok := ClosestApproach(prevR[0], prevR[1], nextR[0], nextR[1]); ok {
			right[i] = p
		} else {
			right[i] = nextR[0]
		}
	}
	return left, right, true
}

// perp points to the right of the direction of travel
func offsetPair(p, perp r3.Vector, width float64, mode OutlineType) (r3.Vector, r3.Vector) {
	switch mode {
	case OutlineLeft:
		return p.Sub(perp.Mul(width)), p
	case OutlineRight:
		return p, p.Add(perp.Mul(width))
	}
	half := perp.Mul(width / 2)
	return p.Sub(half), p.Add(half)
}
