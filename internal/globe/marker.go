package globe

import (
	gomath "math"
	"time"

	"github.com/Faultbox/aetheria/internal/engine/gpu"
	"github.com/Faultbox/aetheria/internal/engine/scene"
	"github.com/Faultbox/aetheria/pkg/math"
)

// pulsePeriod is the radar ping cycle in pin-time units.
const pulsePeriod = 1.5

// Marker is the pin planted at the current location. Group sits on the
// surface with its up axis along the surface normal; Pin is scaled by the
// landing animation and parents the active weather effect.
type Marker struct {
	Group *scene.Node
	Pin   *scene.Node

	head     *scene.Node
	pulse    *scene.Node
	pulseMat *scene.Material
}

func newMarker(reg *scene.Registry) *Marker {
	m := &Marker{
		Group: scene.NewNode("marker"),
		Pin:   scene.NewNode("pin"),
	}
	m.Group.Add(m.Pin)

	m.head = scene.NewMesh("pin-head", reg.NewGeometry(scene.Icosahedron(0.04)), reg.NewMaterial(scene.Material{
		Shading:           scene.Standard,
		Color:             scene.Hex(0x22d3ee),
		Opacity:           1,
		Roughness:         0.2,
		Metalness:         0.9,
		Emissive:          scene.Hex(0x004455),
		EmissiveIntensity: 0.8,
		FlatShading:       true,
	}))
	m.head.Position.Y = 0.14

	stem := scene.NewMesh("pin-stem", reg.NewGeometry(scene.Cylinder(0.006, 0.003, 0.14, 8)), reg.NewMaterial(scene.Material{
		Shading:   scene.Standard,
		Color:     scene.Hex(0x88ccff),
		Opacity:   1,
		Roughness: 0.1,
		Metalness: 1,
	}))
	stem.Position.Y = 0.07

	base := scene.NewMesh("pin-base", reg.NewGeometry(scene.Torus(0.035, 0.005, 16, 32)), reg.NewMaterial(scene.Material{
		Shading:   scene.Standard,
		Color:     scene.Hex(0x22d3ee),
		Opacity:   1,
		Roughness: 0.3,
		Metalness: 0.8,
	}))
	base.Rotation.X = gomath.Pi / 2
	base.Position.Y = 0.005

	m.pulseMat = reg.NewMaterial(scene.Material{
		Shading:     scene.Basic,
		Color:       scene.Hex(0x22d3ee),
		Side:        scene.DoubleSide,
		Transparent: true,
		Opacity:     0.4,
		Blending:    gpu.BlendAdditive,
	})
	m.pulse = scene.NewMesh("pin-pulse", reg.NewGeometry(scene.Ring(0.045, 0.055, 32)), m.pulseMat)
	m.pulse.Rotation.X = -gomath.Pi / 2
	m.pulse.Position.Y = 0.002

	m.Pin.Add(m.head, stem, base, m.pulse)
	return m
}

// Place moves the marker to the surface point of lat/lng and stands it upright.
func (m *Marker) Place(lat, lng float64) {
	p := SurfacePoint(lat, lng)
	m.Group.Position = p
	m.Group.Quaternion = math.QuatFromUnitVectors(math.Up, p.Normalize())
}

// pinTime converts wall-clock time to the pin animation clock.
func pinTime(now time.Time) float64 {
	return float64(now.UnixMilli()) * 0.002
}

// PulseAt returns the ping ring scale and opacity at pin time t.
func PulseAt(t float64) (scale, opacity float32) {
	s := 1 + gomath.Mod(t, pulsePeriod)*1.5
	return float32(s), float32(gomath.Max(0, 0.8-(s-1)))
}

// Update spins and wobbles the head and advances the ping.
func (m *Marker) Update(now time.Time) {
	t := pinTime(now)
	m.head.Rotation.Y += 0.02
	m.head.Rotation.Z = float32(gomath.Sin(t) * 0.2)

	s, op := PulseAt(t)
	m.pulse.Scale = math.Vec3{X: s, Y: s, Z: 1}
	m.pulseMat.Opacity = op
}
