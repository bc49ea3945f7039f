package camera

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"

	"github.com/ecopia-map/globe_renderer/internal/converters"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
)

// Camera parameters that do not change while navigating
type Settings struct {
	FovY         float64 // vertical field of view in degrees
	AspectRatio  float64 // width over height
	NearFactor   float64 // near clip distance as a fraction of the eye to ground distance
	FallbackNear float64 // near clip distance used when the globe is not visible
	FallbackFar  float64 // far clip distance used when the globe is not visible
}

func DefaultSettings() Settings {
	return Settings{
		FovY:         30,
		AspectRatio:  1.67,
		NearFactor:   DefaultNearFactor,
		FallbackNear: 20,
		FallbackFar:  1.25 * converters.SemiMajorAxis,
	}
}

// Camera state. Every mutation recomputes the view extents; when that fails the camera keeps
// the new pose, switches to the fallback clip distances and reports Valid() == false.
type Camera struct {
	settings Settings

	position geometry.GeoPoint
	eye      r3.Vector
	viewPt   r3.Vector
	up       r3.Vector

	nearDist  float64
	farDist   float64
	viewBound orb.Bound
	valid     bool
}

func NewCamera(settings Settings) *Camera {
	return &Camera{
		settings: settings,
		nearDist: settings.FallbackNear,
		farDist:  settings.FallbackFar,
	}
}

func (c *Camera) Settings() Settings {
	return c.settings
}

// Geodetic position of the eye
func (c *Camera) Position() geometry.GeoPoint {
	return c.position
}

func (c *Camera) Eye() r3.Vector {
	return c.eye
}

func (c *Camera) ViewPoint() r3.Vector {
	return c.viewPt
}

func (c *Camera) Up() r3.Vector {
	return c.up
}

func (c *Camera) FovY() float64 {
	return c.settings.FovY
}

func (c *Camera) AspectRatio() float64 {
	return c.settings.AspectRatio
}

func (c *Camera) NearDist() float64 {
	return c.nearDist
}

func (c *Camera) FarDist() float64 {
	return c.farDist
}

// Visible lat/lon rectangle, meaningful only when Valid
func (c *Camera) ViewBound() orb.Bound {
	return c.viewBound
}

// Whether the last pose change produced usable view extents
func (c *Camera) Valid() bool {
	return c.valid
}

// Sets the pose from ECEF eye, view point and up vectors and recomputes the view extents
func (c *Camera) LookAt(eye, viewPt, up r3.Vector) error {
	c.eye = eye
	c.viewPt = viewPt
	c.up = up
	c.position = converters.ToGeodetic(eye)
	return c.updateViewExtents()
}

func (c *Camera) updateViewExtents() error {
	f := Frustum{NearFactor: c.settings.NearFactor}
	ext, err := f.ComputeViewExtents(c.eye, c.viewPt, c.up, c.settings.FovY, c.settings.AspectRatio)
	if err != nil {
		c.nearDist = c.settings.FallbackNear
		c.farDist = c.settings.FallbackFar
		c.valid = false
		return fmt.Errorf("camera at %v: %w", c.position, err)
	}

	c.nearDist = ext.NearDist
	c.farDist = ext.FarDist
	c.viewBound = ext.Bound
	c.valid = true
	return nil
}

func (c *Camera) String() string {
	return fmt.Sprintf("camera{pos: %v, near: %.2f, far: %.2f, bound: %v, valid: %t}",
		c.position, c.nearDist, c.farDist, c.viewBound, c.valid)
}
