package globe

import (
	"github.com/Faultbox/aetheria/internal/engine/camera"
	"github.com/Faultbox/aetheria/internal/engine/scene"
	"github.com/Faultbox/aetheria/internal/engine/tween"
	"github.com/Faultbox/aetheria/pkg/math"
)

// Transition timing, in seconds.
const (
	retreatDistance = 6
	retreatDuration = 1.2
	spinDuration    = 2.0
	spinOverlap     = -0.8
	settleDuration  = 2.0
	settleOverlap   = -1.5
	sunDuration     = 2.0
	landingDelay    = 2.2
	landingDuration = 1.2
)

// Choreographer animates the camera, globe, sun and pin toward a location.
// Starting a new transition kills whatever is still in flight.
type Choreographer struct {
	camera   *camera.Perspective
	earth    *scene.Node
	sunLight *scene.Node
	sunMesh  *scene.Node
	marker   *Marker

	player  tween.Player
	started int
}

func newChoreographer(cam *camera.Perspective, b *body, m *Marker) *Choreographer {
	return &Choreographer{
		camera:   cam,
		earth:    b.earth,
		sunLight: b.sunLight,
		sunMesh:  b.sunMesh,
		marker:   m,
	}
}

// Start plants the marker at lat/lng and plays the transition toward it.
// Coordinates must already be validated.
func (c *Choreographer) Start(lat, lng float64, isDay bool) {
	c.player.KillAll()
	c.started++

	c.marker.Place(lat, lng)
	c.marker.Pin.SetScale(0)
	c.player.Play(tween.Vec3(&c.marker.Pin.Scale, math.Vec3{X: 1, Y: 1, Z: 1}, landingDuration,
		tween.ElasticOut(1.2, 0.5)).WithDelay(landingDelay))

	// The glow takes its destination on the first update; only the light glides.
	sun := sunPose(isDay)
	glow := sun.Scale(sunGlowDistance)
	c.player.Play(tween.Vec3(&c.sunLight.Position, sun, sunDuration, tween.Power1Out).
		OnUpdate(func() { c.sunMesh.Position = glow }))

	origin := math.Vec3{}
	aim := func() { c.camera.LookAt(origin) }
	orbit := OrbitPosition(lat)

	tl := &tween.Timeline{}
	tl.Add(tween.Float(&c.camera.Position.Z, retreatDistance, retreatDuration, tween.Power2InOut).OnUpdate(aim), 0)
	tl.Add(tween.Float(&c.earth.Rotation.Y, FacingRotation(lng), spinDuration, tween.Power3InOut), spinOverlap)
	tl.Add(tween.Vec3(&c.camera.Position, orbit, settleDuration, tween.ExpoOut).OnUpdate(aim), settleOverlap)
	c.player.Play(tl)
}

// Advance steps every running animation by dt seconds.
func (c *Choreographer) Advance(dt float64) {
	c.player.Advance(dt)
}

// Active reports whether a transition is still running.
func (c *Choreographer) Active() bool {
	return c.player.Active() > 0
}

// Started returns how many transitions were started.
func (c *Choreographer) Started() int {
	return c.started
}

// Stop kills the transition in flight.
func (c *Choreographer) Stop() {
	c.player.KillAll()
}
