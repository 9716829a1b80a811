package globe

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/aetheria/pkg/math"
)

// ErrInvalidLocation is returned for coordinates that are not finite or fall
// outside [-90, 90] × [-180, 180].
var ErrInvalidLocation = errors.New("globe: invalid location")

const deg = gomath.Pi / 180

// CameraDistance is the orbit radius the camera settles at after a transition.
const CameraDistance = 2.2

// ValidateLocation reports whether lat/lng can be placed on the globe.
func ValidateLocation(lat, lng float64) error {
	if gomath.IsNaN(lat) || gomath.IsNaN(lng) || gomath.IsInf(lat, 0) || gomath.IsInf(lng, 0) ||
		gomath.Abs(lat) > 90 || gomath.Abs(lng) > 180 {
		return fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidLocation, lat, lng)
	}
	return nil
}

// SurfacePoint maps degrees to a point on the unit sphere, matching the
// equirectangular texture layout of the earth sphere.
func SurfacePoint(lat, lng float64) math.Vec3 {
	phi := (90 - lat) * deg
	theta := (lng + 180) * deg
	return math.Vec3{
		X: float32(-gomath.Sin(phi) * gomath.Cos(theta)),
		Y: float32(gomath.Cos(phi)),
		Z: float32(gomath.Sin(phi) * gomath.Sin(theta)),
	}
}

// FacingRotation is the globe Y rotation that turns longitude lng toward the viewer.
func FacingRotation(lng float64) float32 {
	return float32(-lng*deg - gomath.Pi/2)
}

// OrbitPosition is the settled camera position for latitude lat.
func OrbitPosition(lat float64) math.Vec3 {
	return math.Vec3{
		Y: float32(gomath.Sin(lat*deg) * CameraDistance),
		Z: float32(gomath.Cos(lat*deg) * CameraDistance),
	}
}
