// Package renderer provides the OpenGL implementation of gpu.Device.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/aetheria/internal/engine/gpu"
	"github.com/Faultbox/aetheria/internal/engine/renderer/shaders"
	"github.com/Faultbox/aetheria/internal/engine/shader"
	"github.com/Faultbox/aetheria/internal/logger"
)

// maxLights matches MAX_LIGHTS in standard.frag.
const maxLights = 8

// Attribute locations shared by every program.
const (
	attrPosition = 0
	attrNormal   = 1
	attrUV       = 2
	attrSize     = 3
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

type mesh struct {
	vao        uint32
	buffers    [4]uint32
	ebo        uint32
	count      int32
	indexCount int32
}

// Device renders draw calls with OpenGL 4.1 core.
// IMPORTANT: Must be created AFTER the OpenGL context is current.
type Device struct {
	width, height int

	programs map[gpu.Program]*shader.Program
	meshes   map[gpu.Handle]*mesh
	textures map[gpu.Handle]uint32
	next     gpu.Handle

	frame gpu.Frame
	lost  bool
	log   *zap.Logger
}

// New initializes OpenGL and compiles the shading programs.
func New(cfg Config) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{
		programs: make(map[gpu.Program]*shader.Program),
		meshes:   make(map[gpu.Handle]*mesh),
		textures: make(map[gpu.Handle]uint32),
		log:      logger.Named("renderer"),
	}
	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	sources := []struct {
		id   gpu.Program
		name string
		vert string
		frag string
	}{
		{gpu.ProgramStandard, "standard", shaders.StandardVertexShader, shaders.StandardFragmentShader},
		{gpu.ProgramBasic, "basic", shaders.StandardVertexShader, shaders.BasicFragmentShader},
		{gpu.ProgramPoints, "points", shaders.PointsVertexShader, shaders.PointsFragmentShader},
		{gpu.ProgramAtmosphere, "atmosphere", shaders.AtmosphereVertexShader, shaders.AtmosphereFragmentShader},
	}
	for _, s := range sources {
		p, err := shader.Compile(s.name, s.vert, s.frag)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.programs[s.id] = p
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	// Meshes without a size attribute read the generic value.
	gl.VertexAttrib1f(attrSize, 1)

	d.Viewport(cfg.Width, cfg.Height)
	return d, nil
}

// Lose marks the context unusable, e.g. after SDL reports a device reset.
func (d *Device) Lose() {
	d.lost = true
}

// Size returns the current viewport size.
func (d *Device) Size() (int, int) {
	return d.width, d.height
}

func (d *Device) alloc() gpu.Handle {
	d.next++
	return d.next
}

// CreateMesh implements gpu.Device.
func (d *Device) CreateMesh(data gpu.MeshData) (gpu.Handle, error) {
	if d.lost {
		return 0, gpu.ErrContextLost
	}
	if len(data.Positions) == 0 {
		return 0, fmt.Errorf("create mesh: no positions")
	}

	m := &mesh{count: int32(data.VertexCount())}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	m.buffers[attrPosition] = uploadAttribute(attrPosition, 3, data.Positions, gl.DYNAMIC_DRAW)
	if len(data.Normals) > 0 {
		m.buffers[attrNormal] = uploadAttribute(attrNormal, 3, data.Normals, gl.STATIC_DRAW)
	}
	if len(data.UVs) > 0 {
		m.buffers[attrUV] = uploadAttribute(attrUV, 2, data.UVs, gl.STATIC_DRAW)
	}
	if len(data.Sizes) > 0 {
		m.buffers[attrSize] = uploadAttribute(attrSize, 1, data.Sizes, gl.STATIC_DRAW)
	}
	if len(data.Indices) > 0 {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, unsafe.Pointer(&data.Indices[0]), gl.STATIC_DRAW)
		m.indexCount = int32(len(data.Indices))
	}
	gl.BindVertexArray(0)

	h := d.alloc()
	d.meshes[h] = m
	return h, nil
}

func uploadAttribute(location uint32, components int32, values []float32, usage uint32) uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(values)*4, unsafe.Pointer(&values[0]), usage)
	gl.VertexAttribPointer(location, components, gl.FLOAT, false, components*4, nil)
	gl.EnableVertexAttribArray(location)
	return vbo
}

// UpdatePositions implements gpu.Device.
func (d *Device) UpdatePositions(h gpu.Handle, positions []float32) error {
	if d.lost {
		return gpu.ErrContextLost
	}
	m, ok := d.meshes[h]
	if !ok {
		return fmt.Errorf("update positions: unknown mesh %d", h)
	}
	if int32(len(positions)/3) != m.count {
		return fmt.Errorf("update positions: %d vertices, mesh has %d", len(positions)/3, m.count)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, m.buffers[attrPosition])
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(positions)*4, unsafe.Pointer(&positions[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

// DeleteMesh implements gpu.Device.
func (d *Device) DeleteMesh(h gpu.Handle) {
	m, ok := d.meshes[h]
	if !ok {
		return
	}
	delete(d.meshes, h)
	if d.lost {
		return
	}
	for _, vbo := range m.buffers {
		if vbo != 0 {
			gl.DeleteBuffers(1, &vbo)
		}
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	gl.DeleteVertexArrays(1, &m.vao)
}

// CreateTexture uploads img with its first row at the top, mipmapped. The
// horizontal axis repeats so the globe seam filters cleanly.
func (d *Device) CreateTexture(img *image.RGBA) (gpu.Handle, error) {
	if d.lost {
		return 0, gpu.ErrContextLost
	}
	b := img.Bounds()
	if b.Empty() {
		return 0, fmt.Errorf("create texture: empty image")
	}
	w, h := b.Dx(), b.Dy()
	flipped := flipRows(img)

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&flipped[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	handle := d.alloc()
	d.textures[handle] = tex
	return handle, nil
}

// flipRows returns the pixels bottom row first, as GL expects.
func flipRows(img *image.RGBA) []byte {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	out := make([]byte, rowLen*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+rowLen]
		copy(out[(b.Dy()-1-y)*rowLen:], src)
	}
	return out
}

// DeleteTexture implements gpu.Device.
func (d *Device) DeleteTexture(h gpu.Handle) {
	tex, ok := d.textures[h]
	if !ok {
		return
	}
	delete(d.textures, h)
	if !d.lost {
		gl.DeleteTextures(1, &tex)
	}
}

// Viewport implements gpu.Device.
func (d *Device) Viewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	d.width, d.height = width, height
	if d.lost {
		return
	}
	gl.Viewport(0, 0, int32(width), int32(height))
	d.log.Debug("viewport resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// ReadPixels reads the back buffer as RGBA rows, bottom row first.
func (d *Device) ReadPixels() ([]byte, int, int) {
	if d.lost || d.width <= 0 || d.height <= 0 {
		return nil, 0, 0
	}
	pixels := make([]byte, d.width*d.height*4)
	gl.ReadPixels(0, 0, int32(d.width), int32(d.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, d.width, d.height
}

// BeginFrame implements gpu.Device.
func (d *Device) BeginFrame(f gpu.Frame) error {
	if d.lost {
		return gpu.ErrContextLost
	}
	d.frame = f
	gl.ClearColor(f.ClearColor[0], f.ClearColor[1], f.ClearColor[2], f.ClearColor[3])
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return nil
}

// Draw implements gpu.Device.
func (d *Device) Draw(call gpu.DrawCall) error {
	if d.lost {
		return gpu.ErrContextLost
	}
	m, ok := d.meshes[call.Mesh]
	if !ok {
		return fmt.Errorf("draw: unknown mesh %d", call.Mesh)
	}
	p, ok := d.programs[call.Program]
	if !ok {
		return fmt.Errorf("draw: unknown program %d", call.Program)
	}

	d.applyState(call)
	p.Use()
	d.setUniforms(p, call)

	gl.BindVertexArray(m.vao)
	switch {
	case call.Primitive == gpu.Points:
		gl.DrawArrays(gl.POINTS, 0, m.count)
	case m.indexCount > 0:
		gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil)
	default:
		gl.DrawArrays(gl.TRIANGLES, 0, m.count)
	}
	gl.BindVertexArray(0)
	return nil
}

func (d *Device) applyState(call gpu.DrawCall) {
	if call.Transparent || call.Blend == gpu.BlendAdditive {
		gl.Enable(gl.BLEND)
		if call.Blend == gpu.BlendAdditive {
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
		} else {
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		}
	} else {
		gl.Disable(gl.BLEND)
	}

	switch call.Cull {
	case gpu.CullNone:
		gl.Disable(gl.CULL_FACE)
	case gpu.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}
	gl.DepthMask(call.DepthWrite)
}

var samplerNames = [gpu.NumSlots][2]string{
	gpu.SlotMap:       {"uMap", "uHasMap"},
	gpu.SlotBump:      {"uBumpMap", "uHasBumpMap"},
	gpu.SlotEmissive:  {"uEmissiveMap", "uHasEmissiveMap"},
	gpu.SlotMetalness: {"uMetalnessMap", "uHasMetalnessMap"},
}

func (d *Device) setUniforms(p *shader.Program, call gpu.DrawCall) {
	u := call.Uniforms
	f := &d.frame

	gl.UniformMatrix4fv(p.Uniform("uModel"), 1, false, call.Model.Ptr())
	gl.UniformMatrix4fv(p.Uniform("uView"), 1, false, f.View.Ptr())
	gl.UniformMatrix4fv(p.Uniform("uProjection"), 1, false, f.Projection.Ptr())

	gl.Uniform3f(p.Uniform("uColor"), u.Color[0], u.Color[1], u.Color[2])
	gl.Uniform1f(p.Uniform("uOpacity"), u.Opacity)

	switch call.Program {
	case gpu.ProgramPoints:
		gl.Uniform1f(p.Uniform("uPointSize"), u.PointSize)
		gl.Uniform1i(p.Uniform("uSizeAttenuation"), boolInt(u.SizeAttenuation))
		gl.Uniform1f(p.Uniform("uViewportHeight"), float32(d.height))
		return
	case gpu.ProgramAtmosphere:
		return
	}

	for slot, names := range samplerNames {
		tex, ok := d.textures[call.Textures[slot]]
		gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
		if ok {
			gl.BindTexture(gl.TEXTURE_2D, tex)
		} else {
			gl.BindTexture(gl.TEXTURE_2D, 0)
		}
		gl.Uniform1i(p.Uniform(names[0]), int32(slot))
		gl.Uniform1i(p.Uniform(names[1]), boolInt(ok))
	}
	if call.Program == gpu.ProgramBasic {
		return
	}

	gl.Uniform3f(p.Uniform("uEmissive"), u.Emissive[0], u.Emissive[1], u.Emissive[2])
	gl.Uniform1f(p.Uniform("uEmissiveIntensity"), u.EmissiveIntensity)
	gl.Uniform1f(p.Uniform("uRoughness"), u.Roughness)
	gl.Uniform1f(p.Uniform("uMetalness"), u.Metalness)
	gl.Uniform1f(p.Uniform("uBumpScale"), u.BumpScale)
	gl.Uniform1i(p.Uniform("uFlatShading"), boolInt(u.FlatShading))
	gl.Uniform3f(p.Uniform("uCameraPos"), f.CameraPosition.X, f.CameraPosition.Y, f.CameraPosition.Z)

	n := min(len(f.Lights), maxLights)
	gl.Uniform1i(p.Uniform("uLightCount"), int32(n))
	for i := 0; i < n; i++ {
		l := f.Lights[i]
		idx := fmt.Sprintf("[%d]", i)
		gl.Uniform1i(p.Uniform("uLightKind"+idx), int32(l.Kind))
		gl.Uniform3f(p.Uniform("uLightColor"+idx), l.Color[0]*l.Intensity, l.Color[1]*l.Intensity, l.Color[2]*l.Intensity)
		gl.Uniform3f(p.Uniform("uLightPos"+idx), l.Position.X, l.Position.Y, l.Position.Z)
		gl.Uniform1f(p.Uniform("uLightDistance"+idx), l.Distance)
	}
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Close releases every GL object still owned by the device.
func (d *Device) Close() {
	d.log.Info("closing renderer",
		zap.Int("meshes", len(d.meshes)),
		zap.Int("textures", len(d.textures)),
	)
	for h := range d.meshes {
		d.DeleteMesh(h)
	}
	for h := range d.textures {
		d.DeleteTexture(h)
	}
	for id, p := range d.programs {
		if !d.lost {
			p.Delete()
		}
		delete(d.programs, id)
	}
}

var _ gpu.Device = (*Device)(nil)
