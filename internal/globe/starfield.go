package globe

import (
	gomath "math"
	"math/rand/v2"

	"github.com/Faultbox/aetheria/internal/engine/gpu"
	"github.com/Faultbox/aetheria/internal/engine/scene"
)

const (
	starCount     = 3000
	starMinRadius = 120
	starBand      = 300
)

// SampleStarfield places n stars in a spherical shell. Directions are uniform
// over the sphere: the polar angle comes from acos(2u-1), which keeps the
// density even in cos(phi) instead of bunching stars at the poles.
func SampleStarfield(rng *rand.Rand, n int) (positions, sizes []float32) {
	positions = make([]float32, 0, n*3)
	sizes = make([]float32, 0, n)
	for i := 0; i < n; i++ {
		r := starMinRadius + rng.Float64()*starBand
		theta := 2 * gomath.Pi * rng.Float64()
		phi := gomath.Acos(2*rng.Float64() - 1)
		positions = append(positions,
			float32(r*gomath.Sin(phi)*gomath.Cos(theta)),
			float32(r*gomath.Sin(phi)*gomath.Sin(theta)),
			float32(r*gomath.Cos(phi)),
		)
		sizes = append(sizes, float32(rng.Float64()*2.5))
	}
	return positions, sizes
}

func newStarfield(reg *scene.Registry, rng *rand.Rand) *scene.Node {
	positions, sizes := SampleStarfield(rng, starCount)
	mat := reg.NewMaterial(scene.Material{
		Shading:         scene.PointSprites,
		Color:           scene.White,
		Size:            0.3,
		SizeAttenuation: true,
		Transparent:     true,
		Opacity:         0.9,
		Blending:        gpu.BlendAdditive,
	})
	return scene.NewPoints("stars", reg.NewGeometry(scene.PointCloud(positions, sizes)), mat)
}

func newAtmosphere(reg *scene.Registry) *scene.Node {
	mat := reg.NewMaterial(scene.Material{
		Shading:      scene.Atmosphere,
		Opacity:      1,
		Transparent:  true,
		Blending:     gpu.BlendAdditive,
		Side:         scene.BackSide,
		NoDepthWrite: true,
	})
	return scene.NewMesh("atmosphere", reg.NewGeometry(scene.Sphere(1.2, 64, 64)), mat)
}
