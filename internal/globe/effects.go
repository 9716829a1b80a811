package globe

import (
	gomath "math"
	"math/rand/v2"

	"github.com/Faultbox/aetheria/internal/engine/gpu"
	"github.com/Faultbox/aetheria/internal/engine/scene"
	"github.com/Faultbox/aetheria/internal/weather"
	"github.com/Faultbox/aetheria/pkg/math"
)

// EffectKind tags the variant of a weather effect.
type EffectKind int

const (
	EffectGlint EffectKind = iota
	EffectClouds
	EffectRain
	EffectStorm
	EffectSnow
)

func (k EffectKind) String() string {
	switch k {
	case EffectClouds:
		return "clouds"
	case EffectRain:
		return "rain"
	case EffectStorm:
		return "storm"
	case EffectSnow:
		return "snow"
	default:
		return "glint"
	}
}

// KindFor returns the effect variant shown for a condition.
func KindFor(c weather.Condition) EffectKind {
	switch c {
	case weather.Cloudy, weather.Fog:
		return EffectClouds
	case weather.Rain, weather.Drizzle:
		return EffectRain
	case weather.Thunderstorm:
		return EffectStorm
	case weather.Snow:
		return EffectSnow
	default:
		return EffectGlint
	}
}

// Effect is one attached weather effect. Update advances it to t seconds
// after attach; it is called once per frame.
type Effect struct {
	Kind      EffectKind
	Condition weather.Condition
	Group     *scene.Node
	Update    func(t float64)

	// Flash is the storm's lightning light; nil for other kinds.
	Flash *scene.Node
	// OnFlash, if set, runs when lightning strikes.
	OnFlash func()

	disposed  bool
	reclaimer scene.Reclaimer
}

// Dispose detaches the effect and releases its resources. Safe to call twice.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.Group.RemoveFromParent()
	e.reclaimer.Reclaim(e.Group)
}

// Disposed reports whether Dispose has run.
func (e *Effect) Disposed() bool {
	return e.disposed
}

// LiveResources counts geometries and materials under the effect that are
// not yet released.
func (e *Effect) LiveResources() int {
	seen := make(map[scene.Disposable]bool)
	e.Group.Traverse(func(n *scene.Node) {
		if n.Mesh == nil {
			return
		}
		for _, d := range []scene.Disposable{n.Mesh.Geometry, n.Mesh.Material} {
			if !d.Disposed() {
				seen[d] = true
			}
		}
	})
	return len(seen)
}

// Attach builds the effect for cond and adds it under parent.
func Attach(parent *scene.Node, cond weather.Condition, reg *scene.Registry, rng *rand.Rand) *Effect {
	e := &Effect{
		Kind:      KindFor(cond),
		Condition: cond,
		Group:     scene.NewNode("weather"),
	}

	switch e.Kind {
	case EffectClouds:
		clouds := cloudCluster(reg, rng, scene.Hex(0xdddddd))
		e.Group.Add(clouds)
		e.Update = func(t float64) {
			clouds.Rotation.Y = float32(t * 0.3)
			bob(clouds, t)
		}

	case EffectRain:
		clouds := cloudCluster(reg, rng, scene.Hex(0x88aabb))
		drops := newFall(reg, rng, 40, 0.06, 0.003, scene.Hex(0x44aaff), 0.003, 0.8)
		e.Group.Add(clouds, drops.node)
		e.Update = func(t float64) {
			clouds.Rotation.Y = float32(t * 0.3)
			drops.step(nil)
		}

	case EffectStorm:
		clouds := cloudCluster(reg, rng, scene.Hex(0x444444))
		drops := newFall(reg, rng, 50, 0.07, 0.004, scene.Hex(0xaaaaff), 0.003, 0.8)
		e.Flash = scene.NewLight("flash", scene.Light{
			Kind:     gpu.LightPoint,
			Color:    scene.Hex(0xaaddff),
			Distance: 0.5,
		})
		e.Flash.Position.Y = 0.16
		e.Group.Add(clouds, drops.node, e.Flash)
		e.Update = func(t float64) {
			clouds.Rotation.Y = float32(t * 0.5)
			drops.step(nil)
			e.flicker(rng)
		}

	case EffectSnow:
		clouds := cloudCluster(reg, rng, scene.White)
		flakes := newFall(reg, rng, 50, 0.08, 0.0008, scene.White, 0.002, 0.9)
		e.Group.Add(clouds, flakes.node)
		e.Update = func(t float64) {
			clouds.Rotation.Y = float32(t * 0.1)
			flakes.step(func(i int, x float32) float32 {
				return x + float32(gomath.Sin(t*3+float64(i))*0.0003)
			})
		}

	default:
		mat := reg.NewMaterial(scene.Material{
			Shading:     scene.Basic,
			Color:       scene.Hex(0xffaa00),
			Side:        scene.DoubleSide,
			Transparent: true,
		})
		ring := scene.NewMesh("glint", reg.NewGeometry(scene.Ring(0.05, 0.065, 32)), mat)
		ring.Position.Y = 0.14
		ring.LookAt(math.Vec3{Y: 10})
		e.Group.Add(ring)
		e.Update = func(t float64) {
			wave := gomath.Sin(t * 2)
			ring.SetScale(float32(1 + wave*0.1))
			mat.Opacity = float32(0.2 + wave*0.2)
			ring.Rotation.Z -= 0.01
		}
	}

	parent.Add(e.Group)
	return e
}

const (
	flashChance    = 0.985
	flashIntensity = 3.0
	flashDecay     = 0.7
	flashFloor     = 0.01
)

// flicker strikes lightning on roughly 1.5% of frames and otherwise lets
// the flash die away exponentially.
func (e *Effect) flicker(rng *rand.Rand) {
	l := e.Flash.Light
	if rng.Float64() > flashChance {
		l.Intensity = flashIntensity
		if e.OnFlash != nil {
			e.OnFlash()
		}
		return
	}
	l.Intensity *= flashDecay
	if l.Intensity < flashFloor {
		l.Intensity = 0
	}
}

const (
	puffCount  = 3
	puffRadius = 0.012
	puffOrbit  = 0.035
	cloudY     = 0.18
)

// cloudCluster builds three puffs sharing one geometry and material.
func cloudCluster(reg *scene.Registry, rng *rand.Rand, color scene.Color) *scene.Node {
	g := scene.NewNode("cloud-cluster")
	geo := reg.NewGeometry(scene.Icosahedron(puffRadius))
	mat := reg.NewMaterial(scene.Material{
		Shading:     scene.Standard,
		Color:       color,
		Transparent: true,
		Opacity:     0.6,
		Roughness:   0.4,
		FlatShading: true,
	})
	for i := 0; i < puffCount; i++ {
		puff := scene.NewMesh("puff", geo, mat)
		angle := float64(i) / puffCount * 2 * gomath.Pi
		puff.Position = math.Vec3{
			X: float32(gomath.Cos(angle) * puffOrbit),
			Z: float32(gomath.Sin(angle) * puffOrbit),
		}
		puff.Rotation.Y = float32(rng.Float64() * gomath.Pi)
		g.Add(puff)
	}
	g.Position.Y = cloudY
	return g
}

func bob(cluster *scene.Node, t float64) {
	for i, puff := range cluster.Children() {
		puff.Position.Y = float32(gomath.Sin(t+float64(i)) * 0.005)
	}
}

const (
	fallTop    = 0.20
	fallFloor  = 0.05
	fallHeight = 0.15
)

// fall is a fixed set of points dropping through [fallFloor, fallTop] and
// recycled to the top once they pass the floor.
type fall struct {
	node  *scene.Node
	geo   *scene.Geometry
	speed float32
}

func newFall(reg *scene.Registry, rng *rand.Rand, count int, spread float64, speed float32, color scene.Color, size, opacity float32) *fall {
	pos := make([]float32, count*3)
	for i := 0; i < count; i++ {
		pos[i*3] = float32((rng.Float64() - 0.5) * spread)
		pos[i*3+1] = float32(rng.Float64()*fallHeight + fallFloor)
		pos[i*3+2] = float32((rng.Float64() - 0.5) * spread)
	}
	geo := reg.NewGeometry(scene.PointCloud(pos, nil))
	mat := reg.NewMaterial(scene.Material{
		Shading:         scene.PointSprites,
		Color:           color,
		Size:            size,
		SizeAttenuation: true,
		Transparent:     true,
		Opacity:         opacity,
	})
	return &fall{node: scene.NewPoints("particles", geo, mat), geo: geo, speed: speed}
}

// step drops every point by speed. sway, if set, returns the new x of point i.
func (f *fall) step(sway func(i int, x float32) float32) {
	pos := f.geo.Data.Positions
	for i := 0; i < len(pos)/3; i++ {
		pos[i*3+1] -= f.speed
		if sway != nil {
			pos[i*3] = sway(i, pos[i*3])
		}
		if pos[i*3+1] < fallFloor {
			pos[i*3+1] = fallTop
		}
	}
	f.geo.MarkPositionsDirty()
}
