package globe

import (
	"math/rand/v2"

	"github.com/Faultbox/aetheria/internal/engine/gpu"
	"github.com/Faultbox/aetheria/internal/engine/scene"
	"github.com/Faultbox/aetheria/pkg/math"
)

// TextureURLs locates the five globe images.
type TextureURLs struct {
	Day    string
	Bump   string
	Water  string
	Night  string
	Clouds string
}

const (
	axialTilt         = 23.5 * deg
	nightEmissive     = 4.0
	sunGlowDistance   = 1.5
	dayAmbient        = 0.4
	nightAmbient      = 0.8
	daySunIntensity   = 3.5
	nightSunIntensity = 2.0
	dayRimIntensity   = 1.0
	nightRimIntensity = 10.0
)

// body is the once-per-mount static part of the scene.
type body struct {
	root     *scene.Node
	earth    *scene.Node // tilted group: sphere, clouds and marker
	clouds   *scene.Node
	sunLight *scene.Node
	sunMesh  *scene.Node
	textures []*scene.Texture
}

// buildBody assembles lights, sun, earth, clouds, atmosphere and stars.
// Day and night differ only in light intensities, the night-lights emission
// and the cloud shadow; later day/night changes only move the sun.
func buildBody(reg *scene.Registry, urls TextureURLs, isDay bool, rng *rand.Rand) *body {
	b := &body{root: scene.NewNode("scene")}

	pick := func(day, night float32) float32 {
		if isDay {
			return day
		}
		return night
	}

	ambient := scene.NewLight("ambient", scene.Light{
		Kind:      gpu.LightAmbient,
		Color:     scene.Hex(0x4040bb),
		Intensity: pick(dayAmbient, nightAmbient),
	})
	b.sunLight = scene.NewLight("sun-light", scene.Light{
		Kind:      gpu.LightDirectional,
		Color:     scene.White,
		Intensity: pick(daySunIntensity, nightSunIntensity),
	})
	b.sunLight.Position = math.Vec3{X: 5, Y: 3, Z: 5}
	rim := scene.NewLight("rim-light", scene.Light{
		Kind:      gpu.LightSpot,
		Color:     scene.Hex(0x6688ff),
		Intensity: pick(dayRimIntensity, nightRimIntensity),
	})
	rim.Position = math.Vec3{X: -5, Y: 5, Z: -8}
	b.root.Add(ambient, b.sunLight, rim)

	b.sunMesh = scene.NewMesh("sun", reg.NewGeometry(scene.Sphere(0.5, 32, 32)), reg.NewMaterial(scene.Material{
		Shading:      scene.Basic,
		Color:        scene.Hex(0xffddaa),
		Transparent:  true,
		Opacity:      0.8,
		Blending:     gpu.BlendAdditive,
		NoDepthWrite: true,
	}))
	glow := scene.NewMesh("sun-glow", reg.NewGeometry(scene.Sphere(1.5, 32, 32)), reg.NewMaterial(scene.Material{
		Shading:      scene.Basic,
		Color:        scene.Hex(0xffaa00),
		Transparent:  true,
		Opacity:      0.15,
		Blending:     gpu.BlendAdditive,
		NoDepthWrite: true,
	}))
	b.sunMesh.Add(glow)
	b.root.Add(b.sunMesh)

	b.earth = scene.NewNode("earth-group")
	b.earth.Rotation.Z = axialTilt
	b.root.Add(b.earth)

	dayMap := reg.NewTexture(urls.Day)
	bumpMap := reg.NewTexture(urls.Bump)
	waterMap := reg.NewTexture(urls.Water)
	nightMap := reg.NewTexture(urls.Night)
	cloudMap := reg.NewTexture(urls.Clouds)
	b.textures = []*scene.Texture{dayMap, bumpMap, waterMap, nightMap, cloudMap}

	var emissive float32
	if !isDay {
		emissive = nightEmissive
	}
	earth := scene.NewMesh("earth", reg.NewGeometry(scene.Sphere(1, 64, 64)), reg.NewMaterial(scene.Material{
		Shading:           scene.Standard,
		Color:             scene.White,
		Opacity:           1,
		Map:               dayMap,
		BumpMap:           bumpMap,
		BumpScale:         0.04,
		MetalnessMap:      waterMap,
		Metalness:         1,
		Roughness:         0.35,
		EmissiveMap:       nightMap,
		Emissive:          scene.Hex(0xffd700),
		EmissiveIntensity: emissive,
	}))
	b.earth.Add(earth)

	b.root.Add(newAtmosphere(reg))

	b.clouds = scene.NewNode("clouds")
	b.earth.Add(b.clouds)
	if isDay {
		shadow := scene.NewMesh("cloud-shadow", reg.NewGeometry(scene.Sphere(1.01, 64, 64)), reg.NewMaterial(scene.Material{
			Shading:      scene.Basic,
			Color:        scene.Hex(0x000000),
			Map:          cloudMap,
			Transparent:  true,
			Opacity:      0.3,
			Side:         scene.DoubleSide,
			NoDepthWrite: true,
		}))
		b.clouds.Add(shadow)
	}
	cloudBase := scene.NewMesh("cloud-base", reg.NewGeometry(scene.Sphere(1.02, 64, 64)), reg.NewMaterial(scene.Material{
		Shading:      scene.Standard,
		Color:        scene.White,
		Map:          cloudMap,
		Transparent:  true,
		Opacity:      0.9,
		Side:         scene.DoubleSide,
		NoDepthWrite: true,
		Roughness:    0.9,
	}))
	b.clouds.Add(cloudBase)

	b.root.Add(newStarfield(reg, rng))
	return b
}

// sunPose is where the sun light eases to for the given daylight.
func sunPose(isDay bool) math.Vec3 {
	if isDay {
		return math.Vec3{X: 6, Y: 4, Z: 6}
	}
	return math.Vec3{X: -10, Y: 1, Z: -8}
}
