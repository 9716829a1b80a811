package gpu

import (
	"errors"
	"fmt"
	"image"
)

// Headless is a Device that keeps books instead of drawing. It backs the
// --headless mode and every engine test.
type Headless struct {
	next     Handle
	meshes   map[Handle]int
	textures map[Handle]image.Rectangle

	width, height int
	lost          bool
	closed        bool

	// Frames counts successful BeginFrame calls.
	Frames int
	// LastDraws holds the draw calls of the most recent frame.
	LastDraws []DrawCall
	// DoubleFrees counts deletes of unknown or already deleted handles.
	DoubleFrees int
	// MeshesCreated and TexturesCreated count every allocation.
	MeshesCreated   int
	TexturesCreated int
}

// NewHeadless creates an empty headless device.
func NewHeadless() *Headless {
	return &Headless{
		meshes:   make(map[Handle]int),
		textures: make(map[Handle]image.Rectangle),
	}
}

// Lose simulates a lost context; subsequent frames fail.
func (h *Headless) Lose() {
	h.lost = true
}

// Size returns the last viewport size.
func (h *Headless) Size() (int, int) {
	return h.width, h.height
}

// LiveMeshes returns the number of meshes not yet deleted.
func (h *Headless) LiveMeshes() int {
	return len(h.meshes)
}

// LiveTextures returns the number of textures not yet deleted.
func (h *Headless) LiveTextures() int {
	return len(h.textures)
}

// Closed reports whether Close was called.
func (h *Headless) Closed() bool {
	return h.closed
}

func (h *Headless) alloc() Handle {
	h.next++
	return h.next
}

func (h *Headless) CreateMesh(data MeshData) (Handle, error) {
	if h.closed {
		return 0, errors.New("headless: device closed")
	}
	if len(data.Positions)%3 != 0 {
		return 0, fmt.Errorf("headless: %d position floats is not a multiple of 3", len(data.Positions))
	}
	id := h.alloc()
	h.meshes[id] = data.VertexCount()
	h.MeshesCreated++
	return id, nil
}

func (h *Headless) UpdatePositions(id Handle, positions []float32) error {
	n, ok := h.meshes[id]
	if !ok {
		return fmt.Errorf("headless: update of unknown mesh %d", id)
	}
	if len(positions)/3 != n {
		return fmt.Errorf("headless: mesh %d has %d vertices, got %d", id, n, len(positions)/3)
	}
	return nil
}

func (h *Headless) DeleteMesh(id Handle) {
	if _, ok := h.meshes[id]; !ok {
		h.DoubleFrees++
		return
	}
	delete(h.meshes, id)
}

func (h *Headless) CreateTexture(img *image.RGBA) (Handle, error) {
	if h.closed {
		return 0, errors.New("headless: device closed")
	}
	if img == nil {
		return 0, errors.New("headless: nil image")
	}
	id := h.alloc()
	h.textures[id] = img.Bounds()
	h.TexturesCreated++
	return id, nil
}

func (h *Headless) DeleteTexture(id Handle) {
	if _, ok := h.textures[id]; !ok {
		h.DoubleFrees++
		return
	}
	delete(h.textures, id)
}

func (h *Headless) Viewport(width, height int) {
	h.width, h.height = width, height
}

func (h *Headless) BeginFrame(Frame) error {
	if h.lost || h.closed {
		return ErrContextLost
	}
	h.Frames++
	h.LastDraws = h.LastDraws[:0]
	return nil
}

func (h *Headless) Draw(call DrawCall) error {
	if h.lost {
		return ErrContextLost
	}
	if _, ok := h.meshes[call.Mesh]; !ok {
		return fmt.Errorf("headless: draw of unknown mesh %d", call.Mesh)
	}
	h.LastDraws = append(h.LastDraws, call)
	return nil
}

func (h *Headless) Close() {
	h.closed = true
}
