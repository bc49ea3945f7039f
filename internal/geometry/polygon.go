package geometry

import "github.com/paulmach/orb"

// Returns the ring without its closing vertex, if the first vertex is repeated at the end
func OpenRing(r orb.Ring) orb.Ring {
	if len(r) > 1 && r[0] == r[len(r)-1] {
		return r[:len(r)-1]
	}
	return r
}

// Winding order of a ring from the signed area at its lowest vertex (min y, ties broken by max x)
// and the two vertices adjacent to it. Returns 0 for collinear or degenerate rings.
func RingOrientation(r orb.Ring) orb.Orientation {
	r = OpenRing(r)
	n := len(r)
	if n < 3 {
		return 0
	}

	low := 0
	for i := 1; i < n; i++ {
		if r[i][1] < r[low][1] || (r[i][1] == r[low][1] && r[i][0] > r[low][0]) {
			low = i
		}
	}

	prev := r[(low+n-1)%n]
	curr := r[low]
	next := r[(low+1)%n]

	cross := (curr[0]-prev[0])*(next[1]-curr[1]) - (curr[1]-prev[1])*(next[0]-curr[0])
	switch {
	case cross > 0:
		return orb.CCW
	case cross < 0:
		return orb.CW
	}
	return 0
}

// Returns a copy of r wound in the requested direction
func OrientRing(r orb.Ring, want orb.Orientation) orb.Ring {
	out := OpenRing(r).Clone()
	if RingOrientation(out) != want {
		out.Reverse()
	}
	return out
}

type edge struct {
	a, b      orb.Point
	ringStart bool
}

// Checks that the outer ring and its holes form a simple polygon: no edge may cross or touch any other
// edge except at the vertices it shares with its neighbours in the same ring. The test is all pairs, O(n^2).
func IsSimplePolygon(outer orb.Ring, inners []orb.Ring) bool {
	var edges []edge
	for _, r := range append([]orb.Ring{outer}, inners...) {
		r = OpenRing(r)
		for i := range r {
			edges = append(edges, edge{a: r[i], b: r[(i+1)%len(r)], ringStart: i == 0})
		}
	}

	for i := range edges {
		allowed := 1
		if edges[i].ringStart {
			allowed = 2
		}

		count := 0
		for j := i + 1; j < len(edges); j++ {
			t, _ := IntersectSegments(edges[i].a, edges[i].b, edges[j].a, edges[j].b)
			if t == IntersectionTrue || t == IntersectionCoincident {
				count++
			}
			if count > allowed {
				return false
			}
		}
	}
	return true
}

// Returns a polygon whose outer ring winds counter-clockwise and whose holes wind clockwise.
// Rings are returned open.
func NormalizePolygon(outer orb.Ring, inners []orb.Ring) orb.Polygon {
	poly := make(orb.Polygon, 0, len(inners)+1)
	poly = append(poly, OrientRing(outer, orb.CCW))
	for _, inner := range inners {
		poly = append(poly, OrientRing(inner, orb.CW))
	}
	return poly
}
