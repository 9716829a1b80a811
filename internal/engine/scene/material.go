package scene

import (
	"image"

	"github.com/Faultbox/aetheria/internal/engine/gpu"
)

// Shading selects the shading model of a material.
type Shading int

const (
	// Standard is lit with maps for color, bump, emission and metalness.
	Standard Shading = iota
	// Basic ignores lighting.
	Basic
	// PointSprites draws sized round points.
	PointSprites
	// Atmosphere is the rim-glow shell.
	Atmosphere
)

// Side selects which faces are drawn.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Material describes how a mesh is shaded. Create materials through
// Registry.NewMaterial so they are accounted for.
type Material struct {
	resource

	Shading     Shading
	Color       Color
	Opacity     float32
	Transparent bool
	Blending    gpu.Blend
	Side        Side
	// NoDepthWrite keeps the material out of the depth buffer.
	NoDepthWrite bool

	Emissive          Color
	EmissiveIntensity float32
	Roughness         float32
	Metalness         float32
	BumpScale         float32
	FlatShading       bool

	// Point size for PointSprites.
	Size            float32
	SizeAttenuation bool

	Map          *Texture
	BumpMap      *Texture
	EmissiveMap  *Texture
	MetalnessMap *Texture
}

// Textures returns the non-nil texture maps.
func (m *Material) Textures() []*Texture {
	var out []*Texture
	for _, t := range []*Texture{m.Map, m.BumpMap, m.EmissiveMap, m.MetalnessMap} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Texture is an image that is uploaded once it arrives.
type Texture struct {
	resource

	URL     string
	image   *image.RGBA
	version int
}

// SetImage installs decoded pixels. A nil image keeps the material on its
// flat base color.
func (t *Texture) SetImage(img *image.RGBA) {
	t.image = img
	t.version++
}

// Image returns the decoded pixels, or nil while loading or after failure.
func (t *Texture) Image() *image.RGBA {
	return t.image
}

// Version increments every time the image changes.
func (t *Texture) Version() int {
	return t.version
}
