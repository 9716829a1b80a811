package camera

import (
	"testing"

	"github.com/Faultbox/aetheria/pkg/math"
)

func TestSetAspect(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          float64
		applied       bool
	}{
		{"resize", 1200, 900, 1200.0 / 900.0, true},
		{"zero width", 0, 900, 800.0 / 600.0, false},
		{"zero height", 1200, 0, 800.0 / 600.0, false},
		{"negative", -10, 10, 800.0 / 600.0, false},
	}

	for _, tt := range tests {
		c := NewPerspective(45, 800.0/600.0, 0.1, 1000)
		applied := c.SetAspect(tt.width, tt.height)
		if applied != tt.applied {
			t.Errorf("%s: SetAspect applied = %v, want %v", tt.name, applied, tt.applied)
		}
		if c.Aspect != tt.want {
			t.Errorf("%s: aspect = %v, want %v", tt.name, c.Aspect, tt.want)
		}
	}
}

func TestViewMatrixPolarFallback(t *testing.T) {
	c := NewPerspective(45, 1, 0.1, 1000)
	c.Position = math.Vec3{Y: 2.2}
	c.LookAt(math.Vec3{})

	m := c.ViewMatrix()
	for i, v := range m {
		if v != v {
			t.Fatalf("view matrix element %d is NaN", i)
		}
	}

	got := m.TransformVec3(c.Position)
	if got.Length() > 0.0001 {
		t.Errorf("eye in view space = %v, want origin", got)
	}
}

func TestProjectionMatrix(t *testing.T) {
	c := NewPerspective(45, 2, 0.1, 1000)
	p := c.ProjectionMatrix()

	if p[11] != -1 {
		t.Errorf("projection [11] = %f, want -1", p[11])
	}
	// x scale is y scale divided by aspect
	if diff := p[5]/2 - p[0]; diff > 1e-5 || diff < -1e-5 {
		t.Errorf("projection x scale %f, y scale %f for aspect 2", p[0], p[5])
	}
}
