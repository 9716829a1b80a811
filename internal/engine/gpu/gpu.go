// Package gpu defines the render surface contract shared by the OpenGL device
// and the headless device used in tests.
package gpu

import (
	"errors"
	"image"

	"github.com/Faultbox/aetheria/pkg/math"
)

// ErrContextLost is returned once the rendering surface has become unusable.
var ErrContextLost = errors.New("gpu: context lost")

// Handle identifies a device-side object. Zero is never a valid handle.
type Handle uint32

// Primitive selects how vertex data is assembled.
type Primitive int

const (
	Triangles Primitive = iota
	Points
)

// Program selects the shading model.
type Program int

const (
	ProgramStandard Program = iota
	ProgramBasic
	ProgramPoints
	ProgramAtmosphere
)

// Blend selects the blend equation.
type Blend int

const (
	BlendNormal Blend = iota
	BlendAdditive
)

// Cull selects which faces are discarded.
type Cull int

const (
	CullBack Cull = iota
	CullFront
	CullNone
)

// Texture slots in DrawCall.Textures.
const (
	SlotMap = iota
	SlotBump
	SlotEmissive
	SlotMetalness
	NumSlots
)

// MeshData is the vertex data uploaded for one geometry.
// Normals, UVs, Sizes and Indices are optional.
type MeshData struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Sizes     []float32
	Indices   []uint32
}

// VertexCount returns the number of vertices described by Positions.
func (d MeshData) VertexCount() int {
	return len(d.Positions) / 3
}

// LightKind enumerates light types.
type LightKind int

const (
	LightAmbient LightKind = iota
	LightDirectional
	LightPoint
	LightSpot
)

// Light is a light resolved to world space for one frame.
type Light struct {
	Kind      LightKind
	Color     [3]float32
	Intensity float32
	Position  math.Vec3
	Distance  float32
}

// Frame carries the per-frame state shared by all draw calls.
type Frame struct {
	View           math.Mat4
	Projection     math.Mat4
	CameraPosition math.Vec3
	Lights         []Light
	ClearColor     [4]float32
}

// Uniforms are the per-material parameters.
type Uniforms struct {
	Color             [3]float32
	Opacity           float32
	Emissive          [3]float32
	EmissiveIntensity float32
	Roughness         float32
	Metalness         float32
	BumpScale         float32
	PointSize         float32
	SizeAttenuation   bool
	FlatShading       bool
}

// DrawCall is one draw of an uploaded mesh.
type DrawCall struct {
	Program    Program
	Mesh       Handle
	Primitive  Primitive
	Model      math.Mat4
	Uniforms   Uniforms
	Textures   [NumSlots]Handle
	Blend      Blend
	Cull       Cull
	DepthWrite bool
	// Transparent enables blending.
	Transparent bool
}

// Device is a render surface. All methods must be called from the thread
// that owns the surface.
type Device interface {
	CreateMesh(data MeshData) (Handle, error)
	UpdatePositions(h Handle, positions []float32) error
	DeleteMesh(h Handle)

	CreateTexture(img *image.RGBA) (Handle, error)
	DeleteTexture(h Handle)

	// Viewport resizes the drawable area.
	Viewport(width, height int)

	// BeginFrame clears the surface and binds per-frame state. It returns
	// ErrContextLost when the surface is no longer usable.
	BeginFrame(f Frame) error
	Draw(call DrawCall) error

	Close()
}
