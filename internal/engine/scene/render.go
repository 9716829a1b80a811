package scene

import (
	"fmt"
	"sort"

	"github.com/Faultbox/aetheria/internal/engine/gpu"
	"github.com/Faultbox/aetheria/pkg/math"
)

// Viewer supplies view and projection for a frame.
type Viewer interface {
	ViewMatrix() math.Mat4
	ProjectionMatrix() math.Mat4
	Eye() math.Vec3
}

// Renderer draws a scene graph on a gpu.Device. It uploads geometries and
// textures lazily and frees their device copies when they are disposed.
type Renderer struct {
	dev    gpu.Device
	width  int
	height int

	meshes   map[*Geometry]gpu.Handle
	textures map[*Texture]uploadedTexture

	ClearColor [4]float32

	frames uint64
	closed bool

	// scratch
	items  []drawItem
	lights []gpu.Light
}

type uploadedTexture struct {
	handle  gpu.Handle
	version int
}

type drawItem struct {
	mesh  *Mesh
	world math.Mat4
	depth float32
}

// NewRenderer creates a renderer bound to dev.
func NewRenderer(dev gpu.Device) *Renderer {
	return &Renderer{
		dev:        dev,
		meshes:     make(map[*Geometry]gpu.Handle),
		textures:   make(map[*Texture]uploadedTexture),
		ClearColor: [4]float32{0, 0, 0, 1},
	}
}

// SetSize resizes the render surface. Non-positive sizes are ignored.
func (r *Renderer) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.width, r.height = width, height
	r.dev.Viewport(width, height)
}

// Size returns the render surface size.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Frames returns the number of frames rendered.
func (r *Renderer) Frames() uint64 {
	return r.frames
}

// Render draws root as seen by v.
func (r *Renderer) Render(root *Node, v Viewer) error {
	if r.closed {
		return gpu.ErrContextLost
	}

	view := v.ViewMatrix()
	r.items = r.items[:0]
	r.lights = r.lights[:0]
	r.collect(root, math.Identity(), view)

	frame := gpu.Frame{
		View:           view,
		Projection:     v.ProjectionMatrix(),
		CameraPosition: v.Eye(),
		Lights:         r.lights,
		ClearColor:     r.ClearColor,
	}
	if err := r.dev.BeginFrame(frame); err != nil {
		return err
	}

	// Opaque first, then transparent back to front.
	sort.SliceStable(r.items, func(i, j int) bool {
		ti, tj := r.items[i].mesh.Material.Transparent, r.items[j].mesh.Material.Transparent
		if ti != tj {
			return !ti
		}
		if ti {
			return r.items[i].depth < r.items[j].depth
		}
		return false
	})

	for _, it := range r.items {
		call, err := r.prepare(it)
		if err != nil {
			return err
		}
		if err := r.dev.Draw(call); err != nil {
			return err
		}
	}
	r.frames++
	return nil
}

func (r *Renderer) collect(n *Node, parent, view math.Mat4) {
	if !n.Visible {
		return
	}
	world := parent.Mul(n.LocalMatrix())

	if l := n.Light; l != nil {
		r.lights = append(r.lights, gpu.Light{
			Kind:      l.Kind,
			Color:     l.Color,
			Intensity: l.Intensity,
			Position:  world.Translation(),
			Distance:  l.Distance,
		})
	}
	if m := n.Mesh; m != nil && m.Geometry != nil && m.Material != nil &&
		!m.Geometry.Disposed() && !m.Material.Disposed() {
		// View-space z is negative in front of the camera.
		depth := view.TransformVec3(world.Translation()).Z
		r.items = append(r.items, drawItem{mesh: m, world: world, depth: depth})
	}

	for _, c := range n.children {
		r.collect(c, world, view)
	}
}

func (r *Renderer) prepare(it drawItem) (gpu.DrawCall, error) {
	g, mat := it.mesh.Geometry, it.mesh.Material

	h, err := r.uploadGeometry(g)
	if err != nil {
		return gpu.DrawCall{}, err
	}

	call := gpu.DrawCall{
		Program:     program(mat.Shading),
		Mesh:        h,
		Primitive:   it.mesh.Primitive,
		Model:       it.world,
		Blend:       mat.Blending,
		Cull:        cull(mat.Side),
		DepthWrite:  !mat.NoDepthWrite,
		Transparent: mat.Transparent,
		Uniforms: gpu.Uniforms{
			Color:             mat.Color,
			Opacity:           mat.Opacity,
			Emissive:          mat.Emissive,
			EmissiveIntensity: mat.EmissiveIntensity,
			Roughness:         mat.Roughness,
			Metalness:         mat.Metalness,
			BumpScale:         mat.BumpScale,
			PointSize:         mat.Size,
			SizeAttenuation:   mat.SizeAttenuation,
			FlatShading:       mat.FlatShading,
		},
	}

	maps := [gpu.NumSlots]*Texture{
		gpu.SlotMap:       mat.Map,
		gpu.SlotBump:      mat.BumpMap,
		gpu.SlotEmissive:  mat.EmissiveMap,
		gpu.SlotMetalness: mat.MetalnessMap,
	}
	for slot, t := range maps {
		th, err := r.uploadTexture(t)
		if err != nil {
			return gpu.DrawCall{}, err
		}
		call.Textures[slot] = th
	}
	// A declared map without an image samples black, so the term it
	// modulates drops out and the base color shows through.
	if mat.MetalnessMap != nil && call.Textures[gpu.SlotMetalness] == 0 {
		call.Uniforms.Metalness = 0
	}
	if mat.EmissiveMap != nil && call.Textures[gpu.SlotEmissive] == 0 {
		call.Uniforms.EmissiveIntensity = 0
	}
	return call, nil
}

func (r *Renderer) uploadGeometry(g *Geometry) (gpu.Handle, error) {
	if h, ok := r.meshes[g]; ok {
		if g.PositionsDirty() {
			if err := r.dev.UpdatePositions(h, g.Data.Positions); err != nil {
				return 0, fmt.Errorf("update positions: %w", err)
			}
			g.clearDirty()
		}
		return h, nil
	}

	h, err := r.dev.CreateMesh(g.Data)
	if err != nil {
		return 0, fmt.Errorf("create mesh: %w", err)
	}
	g.clearDirty()
	r.meshes[g] = h
	g.OnDispose(func() {
		if _, ok := r.meshes[g]; !ok {
			return
		}
		delete(r.meshes, g)
		if !r.closed {
			r.dev.DeleteMesh(h)
		}
	})
	return h, nil
}

// uploadTexture returns 0 for textures without pixels; the shader then falls
// back to the flat material color.
func (r *Renderer) uploadTexture(t *Texture) (gpu.Handle, error) {
	if t == nil || t.Disposed() || t.Image() == nil {
		return 0, nil
	}

	up, ok := r.textures[t]
	if ok && up.version == t.Version() {
		return up.handle, nil
	}

	h, err := r.dev.CreateTexture(t.Image())
	if err != nil {
		return 0, fmt.Errorf("create texture %s: %w", t.URL, err)
	}
	if ok {
		r.dev.DeleteTexture(up.handle)
	} else {
		t.OnDispose(func() {
			cur, ok := r.textures[t]
			if !ok {
				return
			}
			delete(r.textures, t)
			if !r.closed {
				r.dev.DeleteTexture(cur.handle)
			}
		})
	}
	r.textures[t] = uploadedTexture{handle: h, version: t.Version()}
	return h, nil
}

// Close frees device copies still held and detaches from the device.
// It returns how many objects were still uploaded.
func (r *Renderer) Close() int {
	if r.closed {
		return 0
	}
	leaked := len(r.meshes) + len(r.textures)
	for g, h := range r.meshes {
		r.dev.DeleteMesh(h)
		delete(r.meshes, g)
	}
	for t, up := range r.textures {
		r.dev.DeleteTexture(up.handle)
		delete(r.textures, t)
	}
	r.closed = true
	return leaked
}

func program(s Shading) gpu.Program {
	switch s {
	case Basic:
		return gpu.ProgramBasic
	case PointSprites:
		return gpu.ProgramPoints
	case Atmosphere:
		return gpu.ProgramAtmosphere
	default:
		return gpu.ProgramStandard
	}
}

func cull(s Side) gpu.Cull {
	switch s {
	case BackSide:
		return gpu.CullFront
	case DoubleSide:
		return gpu.CullNone
	default:
		return gpu.CullBack
	}
}
