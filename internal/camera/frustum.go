package camera

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"

	"github.com/ecopia-map/globe_renderer/internal/converters"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
	"github.com/ecopia-map/globe_renderer/tools"
)

var ErrInvalidCameraGeometry = errors.New("camera configuration invalid for globe rendering")

// Near clip distance as a fraction of the eye to ground distance
const DefaultNearFactor = 1.0 / 3.0

// Frustum corner indices
const (
	CornerTopLeft = iota
	CornerTopRight
	CornerBottomLeft
	CornerBottomRight
)

// Result of intersecting the camera frustum with the globe
type ViewExtents struct {
	NearDist float64
	FarDist  float64
	// lat/lon rectangle spanned by the top-left and bottom-right corner intersections
	Bound orb.Bound
	// intersection of each corner ray with the ellipsoid or, when it misses, with the
	// plane through the Earth center normal to the view direction
	Corners [4]r3.Vector
	// whether each corner ray hits the ellipsoid
	HitsEarth [4]bool
}

// Returns true when every corner ray hits the ellipsoid
func (v ViewExtents) AllHitEarth() bool {
	for _, hit := range v.HitsEarth {
		if !hit {
			return false
		}
	}
	return true
}

// Computes the view extents with the default near factor
func ComputeViewExtents(eye, viewPt, up r3.Vector, fovY, aspectRatio float64) (ViewExtents, error) {
	return Frustum{NearFactor: DefaultNearFactor}.ComputeViewExtents(eye, viewPt, up, fovY, aspectRatio)
}

type Frustum struct {
	NearFactor float64
}

// Intersects the four frustum edge rays with the globe and derives the near and far clip distances and
// the visible lat/lon rectangle. fovY is in degrees. Fails with ErrInvalidCameraGeometry when a ray misses
// the ellipsoid and is also parallel to the fallback plane.
//
// The rectangle only considers the top-left and bottom-right corners, so it can under or over estimate
// the visible ground when the camera is rolled.
func (f Frustum) ComputeViewExtents(eye, viewPt, up r3.Vector, fovY, aspectRatio float64) (ViewExtents, error) {
	var ext ViewExtents

	along := viewPt.Sub(eye)
	if tools.IsDistanceEqual(along.Norm(), 0) {
		return ext, ErrInvalidCameraGeometry
	}
	// an up vector along the view direction leaves no right axis
	if tools.IsFloatEqual(along.Normalize().Cross(up.Normalize()).Norm(), 0) {
		return ext, ErrInvalidCameraGeometry
	}

	halfFov := fovY * math.Pi / 180 / 2
	vAlong := along.Normalize().Mul(math.Cos(halfFov))
	vUp := up.Normalize().Mul(math.Sin(halfFov))
	vRight := along.Cross(up).Normalize().Mul(math.Sin(halfFov) * aspectRatio)

	rays := [4]r3.Vector{
		CornerTopLeft:     vAlong.Add(vUp).Sub(vRight),
		CornerTopRight:    vAlong.Add(vUp).Add(vRight),
		CornerBottomLeft:  vAlong.Sub(vUp).Sub(vRight),
		CornerBottomRight: vAlong.Sub(vUp).Add(vRight),
	}

	centerPlane := geometry.Plane{Normal: along}
	for i, ray := range rays {
		if p, ok := converters.WGS84.IntersectForward(eye, ray); ok {
			ext.Corners[i] = p
			ext.HitsEarth[i] = true
			continue
		}

		// approximates the horizon
		p, ok := centerPlane.IntersectLine(eye, ray)
		if !ok {
			return ext, ErrInvalidCameraGeometry
		}
		ext.Corners[i] = p
	}

	nearFactor := f.NearFactor
	if nearFactor <= 0 {
		nearFactor = DefaultNearFactor
	}

	centerHit, centerOk := converters.WGS84.IntersectForward(eye, along)
	if ext.AllHitEarth() && centerOk {
		ext.NearDist = eye.Distance(centerHit) * nearFactor
	} else {
		minDist := math.Inf(1)
		for _, c := range ext.Corners {
			minDist = math.Min(minDist, eye.Distance(c))
		}
		ext.NearDist = minDist * nearFactor
	}

	ext.FarDist = centerPlane.Distance(eye)

	tl := converters.ToGeodetic(ext.Corners[CornerTopLeft])
	br := converters.ToGeodetic(ext.Corners[CornerBottomRight])
	ext.Bound = orb.Bound{
		Min: orb.Point{math.Min(tl.Lon, br.Lon), math.Min(tl.Lat, br.Lat)},
		Max: orb.Point{math.Max(tl.Lon, br.Lon), math.Max(tl.Lat, br.Lat)},
	}

	if !(ext.NearDist < ext.FarDist) {
		return ext, ErrInvalidCameraGeometry
	}
	return ext, nil
}
