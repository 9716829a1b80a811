// Package scene provides the retained scene graph rendered by the globe:
// nodes with transforms, GPU-backed geometries, materials and textures, and
// the bookkeeping that guarantees every one of them is released exactly once.
package scene

import (
	"github.com/Faultbox/aetheria/internal/engine/gpu"
	"github.com/Faultbox/aetheria/pkg/math"
)

// Node is an element of the scene graph. A node may carry a drawable Mesh or
// a Light; plain nodes act as groups.
//
// The local transform is T * R(Quaternion) * R(Rotation) * S.
type Node struct {
	Name       string
	Position   math.Vec3
	Quaternion math.Quat
	Rotation   math.Euler
	Scale      math.Vec3
	Visible    bool

	Mesh  *Mesh
	Light *Light

	parent   *Node
	children []*Node
}

// NewNode creates an empty group node.
func NewNode(name string) *Node {
	return &Node{
		Name:       name,
		Quaternion: math.QuatIdentity(),
		Scale:      math.Vec3{X: 1, Y: 1, Z: 1},
		Visible:    true,
	}
}

// NewMesh creates a node drawing triangles.
func NewMesh(name string, g *Geometry, m *Material) *Node {
	n := NewNode(name)
	n.Mesh = &Mesh{Geometry: g, Material: m, Primitive: gpu.Triangles}
	return n
}

// NewPoints creates a node drawing one sprite per vertex.
func NewPoints(name string, g *Geometry, m *Material) *Node {
	n := NewNode(name)
	n.Mesh = &Mesh{Geometry: g, Material: m, Primitive: gpu.Points}
	return n
}

// NewLight creates a node emitting light.
func NewLight(name string, l Light) *Node {
	n := NewNode(name)
	n.Light = &l
	return n
}

// Add attaches children, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		c.RemoveFromParent()
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches child. It reports whether child was attached to n.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// RemoveFromParent detaches n from its parent, if any.
func (n *Node) RemoveFromParent() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
}

// Parent returns the parent node or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the attached children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Traverse calls fn for n and every descendant, depth first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// SetScale sets a uniform scale.
func (n *Node) SetScale(s float32) {
	n.Scale = math.Vec3{X: s, Y: s, Z: s}
}

// LookAt orients the node so its local +Z axis points at target, given in
// the parent's space. The Euler rotation is left untouched.
func (n *Node) LookAt(target math.Vec3) {
	dir := target.Sub(n.Position).Normalize()
	if dir == (math.Vec3{}) {
		return
	}
	n.Quaternion = math.QuatFromUnitVectors(math.Vec3{Z: 1}, dir)
}

// LocalMatrix returns the node transform relative to its parent.
func (n *Node) LocalMatrix() math.Mat4 {
	return math.Compose(n.Position, n.Quaternion.Mul(n.Rotation.Quat()), n.Scale)
}

// WorldMatrix returns the node transform relative to the scene root.
func (n *Node) WorldMatrix() math.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

// Mesh binds a geometry to a material.
type Mesh struct {
	Geometry  *Geometry
	Material  *Material
	Primitive gpu.Primitive
}

// Light describes a light source. Its position comes from the owning node.
type Light struct {
	Kind      gpu.LightKind
	Color     Color
	Intensity float32
	// Distance limits point light reach; zero means unlimited.
	Distance float32
}
