package camera

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"

	"github.com/ecopia-map/globe_renderer/internal/converters"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
)

// Initial orientation used by SetCamera
type ViewMode int

const (
	// looking straight down with north up
	ViewTopDown ViewMode = iota
	// looking north, tilted 45 degrees from the vertical
	ViewOblique
)

// Axis used by Rotate. Rotations orbit the eye around the view point.
type RotationAxis int

const (
	// around the ellipsoid normal at the view point
	AxisHeading RotationAxis = iota
	// around the camera right vector through the view point
	AxisTilt
)

var ErrInvalidZoom = errors.New("zoom amount must be lower than 1")

// Places the eye at the given position and orients it according to mode
func (c *Camera) SetCamera(position geometry.GeoPoint, mode ViewMode) error {
	eye := converters.ToCartesian(position)
	north, _, down := converters.NorthEastDown(position)

	switch mode {
	case ViewOblique:
		target := converters.Destination(position.OnSurface(), 0, math.Max(position.Alt, 1))
		viewPt := converters.ToCartesian(target.OnSurface())
		along := viewPt.Sub(eye).Normalize()
		// up is the component of the local north orthogonal to the view direction
		up := north.Sub(along.Mul(north.Dot(along))).Normalize()
		return c.LookAt(eye, viewPt, up)
	default:
		viewPt := converters.ToCartesian(position.OnSurface())
		if position.Alt <= 0 {
			viewPt = eye.Add(down)
		}
		return c.LookAt(eye, viewPt, north)
	}
}

// Moves the eye and the view point by the given distance in meters along a bearing in degrees.
// The up vector keeps its orientation relative to the local north/east/down frame.
func (c *Camera) Pan(bearing, distance float64) error {
	eyeGeo := converters.ToGeodetic(c.eye)
	viewGeo := converters.ToGeodetic(c.viewPt)

	newEyeGeo := converters.Destination(eyeGeo, bearing, distance)
	newViewGeo := converters.Destination(viewGeo, bearing, distance)

	up := transferDirection(c.up, eyeGeo, newEyeGeo)
	return c.LookAt(converters.ToCartesian(newEyeGeo), converters.ToCartesian(newViewGeo), up)
}

// Moves the eye towards the view point by amount times their distance. Negative amounts move away.
func (c *Camera) Zoom(amount float64) error {
	if amount >= 1 {
		return ErrInvalidZoom
	}
	eye := c.eye.Add(c.viewPt.Sub(c.eye).Mul(amount))
	return c.LookAt(eye, c.viewPt, c.up)
}

// Orbits the eye around the view point by angle degrees
func (c *Camera) Rotate(axis RotationAxis, angle float64) error {
	var k r3.Vector
	switch axis {
	case AxisTilt:
		k = c.viewPt.Sub(c.eye).Cross(c.up).Normalize()
	default:
		_, _, down := converters.NorthEastDown(converters.ToGeodetic(c.viewPt))
		k = down.Mul(-1)
	}

	theta := angle * math.Pi / 180
	offset := rotate(c.eye.Sub(c.viewPt), k, theta)
	up := rotate(c.up, k, theta)
	return c.LookAt(c.viewPt.Add(offset), c.viewPt, up)
}

// Rodrigues rotation of v around the unit axis k
func rotate(v, k r3.Vector, theta float64) r3.Vector {
	cos, sin := math.Cos(theta), math.Sin(theta)
	return v.Mul(cos).
		Add(k.Cross(v).Mul(sin)).
		Add(k.Mul(k.Dot(v) * (1 - cos)))
}

// Re-expresses a direction given at one geodetic position in the local frame of another
func transferDirection(dir r3.Vector, from, to geometry.GeoPoint) r3.Vector {
	n0, e0, d0 := converters.NorthEastDown(from)
	n1, e1, d1 := converters.NorthEastDown(to)
	return n1.Mul(dir.Dot(n0)).Add(e1.Mul(dir.Dot(e0))).Add(d1.Mul(dir.Dot(d0))).Normalize()
}
