package canvas

// Vertex format: x, y, u, v, r, g, b, a, softness (9 floats).
// u,v span -1..1 across the quad; softness 0 draws a hard-edged rectangle,
// anything above draws a circle whose edge fades over that fraction of the radius.
const floatsPerVertex = 9

type batch struct {
	vertices []float32
}

func (b *batch) reset() {
	b.vertices = b.vertices[:0]
}

func (b *batch) vertexCount() int {
	return len(b.vertices) / floatsPerVertex
}

func (b *batch) addQuad(x, y, w, h float32, c Color, softness float32) {
	// Triangle 1
	b.vertices = append(b.vertices,
		x, y, -1, -1, c.R, c.G, c.B, c.A, softness,
		x+w, y, 1, -1, c.R, c.G, c.B, c.A, softness,
		x+w, y+h, 1, 1, c.R, c.G, c.B, c.A, softness,
	)
	// Triangle 2
	b.vertices = append(b.vertices,
		x, y, -1, -1, c.R, c.G, c.B, c.A, softness,
		x+w, y+h, 1, 1, c.R, c.G, c.B, c.A, softness,
		x, y+h, -1, 1, c.R, c.G, c.B, c.A, softness,
	)
}

// addCircle adds a disc of radius r; blur widens the quad and feathers the edge.
func (b *batch) addCircle(cx, cy, r, blur float32, c Color) {
	outer := r + blur
	if outer <= 0 {
		return
	}
	softness := max(blur/outer, 1e-3)
	b.addQuad(cx-outer, cy-outer, outer*2, outer*2, c, softness)
}
