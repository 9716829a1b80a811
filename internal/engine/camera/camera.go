// Package camera provides the perspective camera used by the globe view.
package camera

import (
	gomath "math"

	"github.com/Faultbox/aetheria/pkg/math"
)

// Perspective is a perspective camera that always aims at Target.
type Perspective struct {
	// Vertical field of view in degrees
	FOV  float32
	Near float32
	Far  float32

	// Aspect is width/height of the render surface.
	Aspect float64

	Position math.Vec3
	Target   math.Vec3
}

// NewPerspective creates a camera at the origin looking down -Z.
func NewPerspective(fov float32, aspect float64, near, far float32) *Perspective {
	return &Perspective{
		FOV:    fov,
		Near:   near,
		Far:    far,
		Aspect: aspect,
		Target: math.Vec3{Z: -1},
	}
}

// SetAspect updates the aspect ratio from surface dimensions.
// Zero or negative sizes are ignored and false is returned.
func (c *Perspective) SetAspect(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	c.Aspect = float64(width) / float64(height)
	return true
}

// LookAt re-aims the camera.
func (c *Perspective) LookAt(target math.Vec3) {
	c.Target = target
}

// Eye returns the camera position.
func (c *Perspective) Eye() math.Vec3 {
	return c.Position
}

// ViewMatrix returns the view matrix.
func (c *Perspective) ViewMatrix() math.Mat4 {
	up := math.Up
	forward := c.Target.Sub(c.Position).Normalize()

	// Looking straight along the up axis: borrow -Z as up.
	if forward.Cross(up).Length() < 1e-5 {
		up = math.Vec3{Z: -1}
	}
	return math.LookAt(c.Position, c.Target, up)
}

// ProjectionMatrix returns the perspective projection matrix.
func (c *Perspective) ProjectionMatrix() math.Mat4 {
	fovY := float32(float64(c.FOV) * gomath.Pi / 180)
	return math.Perspective(fovY, float32(c.Aspect), c.Near, c.Far)
}
