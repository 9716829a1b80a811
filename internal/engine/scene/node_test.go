package scene

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/aetheria/pkg/math"
)

func TestNodeAddReparents(t *testing.T) {
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	a.Add(c)
	b.Add(c)

	assert.Empty(t, a.Children())
	require.Len(t, b.Children(), 1)
	assert.Same(t, b, c.Parent())

	c.RemoveFromParent()
	assert.Nil(t, c.Parent())
	assert.Empty(t, b.Children())
}

func TestWorldMatrixComposesParents(t *testing.T) {
	root := NewNode("root")
	root.Rotation.Y = gomath.Pi / 2

	child := NewNode("child")
	child.Position = math.Vec3{X: 1}
	root.Add(child)

	// A quarter turn about Y carries +X to -Z.
	got := child.WorldMatrix().Translation()
	assert.InDelta(t, 0, got.X, 1e-6)
	assert.InDelta(t, -1, got.Z, 1e-6)
}

func TestQuaternionAppliesBeforeEuler(t *testing.T) {
	n := NewNode("marker")
	n.Quaternion = math.QuatFromUnitVectors(math.Up, math.Vec3{X: 1})
	n.Rotation.Y = 1.3

	// Spinning about local Y leaves the local up axis on world +X.
	up := n.LocalMatrix().TransformVec3(math.Up)
	assert.InDelta(t, 1, up.X, 1e-5)
	assert.InDelta(t, 0, up.Y, 1e-5)
}

func TestLookAt(t *testing.T) {
	n := NewNode("ring")
	n.Position = math.Vec3{Y: 0.14}
	n.LookAt(math.Vec3{Y: 10})

	z := n.Quaternion.Rotate(math.Vec3{Z: 1})
	assert.InDelta(t, 1, z.Y, 1e-5)
}

func TestTraverseVisitsAll(t *testing.T) {
	root := NewNode("root")
	a, b := NewNode("a"), NewNode("b")
	root.Add(a)
	a.Add(b)

	var names []string
	root.Traverse(func(n *Node) { names = append(names, n.Name) })
	assert.Equal(t, []string{"root", "a", "b"}, names)
}

func TestGeometryBuilders(t *testing.T) {
	tests := []struct {
		name string
		data GeometryData
	}{
		{"sphere", Sphere(1, 16, 8)},
		{"icosahedron", Icosahedron(0.04)},
		{"cylinder", Cylinder(0.006, 0.003, 0.14, 12)},
		{"torus", Torus(0.035, 0.005, 8, 24)},
		{"ring", Ring(0.045, 0.055, 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.data.VertexCount()
			require.Positive(t, n)
			assert.Len(t, tt.data.Normals, n*3)
			assert.Len(t, tt.data.UVs, n*2)
			for _, idx := range tt.data.Indices {
				require.Less(t, int(idx), n)
			}
		})
	}
}

func TestSphereRadius(t *testing.T) {
	d := Sphere(1.2, 16, 8)
	for i := 0; i < len(d.Positions); i += 3 {
		p := math.Vec3{X: d.Positions[i], Y: d.Positions[i+1], Z: d.Positions[i+2]}
		require.InDelta(t, 1.2, p.Length(), 1e-5)
	}
}
