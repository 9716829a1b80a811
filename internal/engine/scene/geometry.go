package scene

import (
	gomath "math"

	"github.com/Faultbox/aetheria/internal/engine/gpu"
)

// GeometryData is CPU-side vertex data.
type GeometryData = gpu.MeshData

// Geometry is vertex data that lives on the GPU once rendered. Create
// geometries through Registry.NewGeometry so they are accounted for.
type Geometry struct {
	resource

	Data  GeometryData
	dirty bool
}

// MarkPositionsDirty schedules a position re-upload before the next draw.
func (g *Geometry) MarkPositionsDirty() {
	g.dirty = true
}

// PositionsDirty reports whether positions changed since the last upload.
func (g *Geometry) PositionsDirty() bool {
	return g.dirty
}

func (g *Geometry) clearDirty() {
	g.dirty = false
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return g.Data.VertexCount()
}

// Sphere builds a UV sphere. The seam and texture orientation follow the
// equirectangular convention used by the globe textures.
func Sphere(radius float32, widthSegments, heightSegments int) GeometryData {
	var d GeometryData
	grid := make([][]uint32, heightSegments+1)

	var index uint32
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		row := make([]uint32, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)

			x := -gomath.Cos(u*2*gomath.Pi) * gomath.Sin(v*gomath.Pi)
			y := gomath.Cos(v * gomath.Pi)
			z := gomath.Sin(u*2*gomath.Pi) * gomath.Sin(v*gomath.Pi)

			d.Positions = append(d.Positions, radius*float32(x), radius*float32(y), radius*float32(z))
			d.Normals = append(d.Normals, float32(x), float32(y), float32(z))
			d.UVs = append(d.UVs, float32(u), float32(1-v))

			row[ix] = index
			index++
		}
		grid[iy] = row
	}

	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			e := grid[iy+1][ix+1]

			// Poles collapse to a single triangle per segment.
			if iy != 0 {
				d.Indices = append(d.Indices, a, b, e)
			}
			if iy != heightSegments-1 {
				d.Indices = append(d.Indices, b, c, e)
			}
		}
	}
	return d
}

var icosahedronFaces = [60]int{
	0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
	1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
	3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
	4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
}

// Icosahedron builds a flat-shaded icosahedron with per-face normals.
func Icosahedron(radius float32) GeometryData {
	t := (1 + gomath.Sqrt(5)) / 2
	raw := [12][3]float64{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}

	var verts [12][3]float32
	for i, v := range raw {
		l := gomath.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
		for j := range 3 {
			verts[i][j] = float32(v[j]/l) * radius
		}
	}

	var d GeometryData
	for f := 0; f < len(icosahedronFaces); f += 3 {
		a, b, c := verts[icosahedronFaces[f]], verts[icosahedronFaces[f+1]], verts[icosahedronFaces[f+2]]
		n := faceNormal(a, b, c)
		for _, v := range [3][3]float32{a, b, c} {
			d.Positions = append(d.Positions, v[0], v[1], v[2])
			d.Normals = append(d.Normals, n[0], n[1], n[2])
			d.UVs = append(d.UVs, 0, 0)
		}
	}
	return d
}

func faceNormal(a, b, c [3]float32) [3]float32 {
	ux, uy, uz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
	vx, vy, vz := c[0]-a[0], c[1]-a[1], c[2]-a[2]
	nx := uy*vz - uz*vy
	ny := uz*vx - ux*vz
	nz := ux*vy - uy*vx
	l := float32(gomath.Sqrt(float64(nx*nx + ny*ny + nz*nz)))
	if l == 0 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{nx / l, ny / l, nz / l}
}

// Cylinder builds a capped cylinder centred on the origin along Y.
func Cylinder(radiusTop, radiusBottom, height float32, radialSegments int) GeometryData {
	var d GeometryData
	half := height / 2
	slope := float64((radiusBottom - radiusTop) / height)

	// Side wall: row 0 is the top ring, row 1 the bottom ring.
	for row := 0; row <= 1; row++ {
		r := radiusTop
		y := half
		if row == 1 {
			r = radiusBottom
			y = -half
		}
		for x := 0; x <= radialSegments; x++ {
			u := float64(x) / float64(radialSegments)
			theta := u * 2 * gomath.Pi
			sin, cos := gomath.Sincos(theta)

			d.Positions = append(d.Positions, r*float32(sin), y, r*float32(cos))
			l := gomath.Sqrt(sin*sin + slope*slope + cos*cos)
			d.Normals = append(d.Normals, float32(sin/l), float32(slope/l), float32(cos/l))
			d.UVs = append(d.UVs, float32(u), float32(1-row))
		}
	}
	stride := uint32(radialSegments + 1)
	for x := uint32(0); x < uint32(radialSegments); x++ {
		a, b := x, stride+x
		c, e := stride+x+1, x+1
		d.Indices = append(d.Indices, a, b, e, b, c, e)
	}

	cylinderCap(&d, radiusTop, half, radialSegments, true)
	cylinderCap(&d, radiusBottom, -half, radialSegments, false)
	return d
}

func cylinderCap(d *GeometryData, radius, y float32, segments int, top bool) {
	sign := float32(-1)
	if top {
		sign = 1
	}

	center := uint32(d.VertexCount())
	d.Positions = append(d.Positions, 0, y, 0)
	d.Normals = append(d.Normals, 0, sign, 0)
	d.UVs = append(d.UVs, 0.5, 0.5)

	start := center + 1
	for x := 0; x <= segments; x++ {
		theta := float64(x) / float64(segments) * 2 * gomath.Pi
		sin, cos := gomath.Sincos(theta)
		d.Positions = append(d.Positions, radius*float32(sin), y, radius*float32(cos))
		d.Normals = append(d.Normals, 0, sign, 0)
		d.UVs = append(d.UVs, float32(cos*0.5+0.5), float32(sin*0.5*float64(sign)+0.5))
	}

	for x := uint32(0); x < uint32(segments); x++ {
		i := start + x
		if top {
			d.Indices = append(d.Indices, i, i+1, center)
		} else {
			d.Indices = append(d.Indices, i+1, i, center)
		}
	}
}

// Torus builds a torus in the XY plane.
func Torus(radius, tube float32, radialSegments, tubularSegments int) GeometryData {
	var d GeometryData
	for j := 0; j <= radialSegments; j++ {
		v := float64(j) / float64(radialSegments) * 2 * gomath.Pi
		for i := 0; i <= tubularSegments; i++ {
			u := float64(i) / float64(tubularSegments) * 2 * gomath.Pi

			ring := float64(radius) + float64(tube)*gomath.Cos(v)
			x := ring * gomath.Cos(u)
			y := ring * gomath.Sin(u)
			z := float64(tube) * gomath.Sin(v)
			d.Positions = append(d.Positions, float32(x), float32(y), float32(z))

			cx, cy := float64(radius)*gomath.Cos(u), float64(radius)*gomath.Sin(u)
			nx, ny, nz := x-cx, y-cy, z
			l := gomath.Sqrt(nx*nx + ny*ny + nz*nz)
			d.Normals = append(d.Normals, float32(nx/l), float32(ny/l), float32(nz/l))
			d.UVs = append(d.UVs, float32(i)/float32(tubularSegments), float32(j)/float32(radialSegments))
		}
	}

	stride := uint32(tubularSegments + 1)
	for j := uint32(1); j <= uint32(radialSegments); j++ {
		for i := uint32(1); i <= uint32(tubularSegments); i++ {
			a := stride*j + i - 1
			b := stride*(j-1) + i - 1
			c := stride*(j-1) + i
			e := stride*j + i
			d.Indices = append(d.Indices, a, b, e, b, c, e)
		}
	}
	return d
}

// Ring builds a flat annulus in the XY plane facing +Z.
func Ring(inner, outer float32, segments int) GeometryData {
	var d GeometryData
	for _, r := range [2]float32{inner, outer} {
		for i := 0; i <= segments; i++ {
			theta := float64(i) / float64(segments) * 2 * gomath.Pi
			sin, cos := gomath.Sincos(theta)
			x, y := r*float32(cos), r*float32(sin)
			d.Positions = append(d.Positions, x, y, 0)
			d.Normals = append(d.Normals, 0, 0, 1)
			d.UVs = append(d.UVs, (x/outer+1)/2, (y/outer+1)/2)
		}
	}

	stride := uint32(segments + 1)
	for i := uint32(0); i < uint32(segments); i++ {
		a, b := i, i+stride
		c, e := i+stride+1, i+1
		d.Indices = append(d.Indices, a, b, e, b, c, e)
	}
	return d
}

// PointCloud builds point data with optional per-point sizes.
func PointCloud(positions, sizes []float32) GeometryData {
	return GeometryData{Positions: positions, Sizes: sizes}
}
