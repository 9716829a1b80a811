package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlipRows(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	for y := 0; y < 3; y++ {
		img.SetRGBA(0, y, color.RGBA{R: uint8(y + 1), A: 255})
	}

	out := flipRows(img)
	assert.Len(t, out, 2*3*4)
	// Top row of the image ends up last.
	assert.Equal(t, uint8(3), out[0])
	assert.Equal(t, uint8(2), out[2*4])
	assert.Equal(t, uint8(1), out[2*2*4])
}

func TestFlipRowsSubImage(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 4, 4))
	base.SetRGBA(1, 1, color.RGBA{G: 9, A: 255})
	sub := base.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)

	out := flipRows(sub)
	assert.Len(t, out, 2*2*4)
	assert.Equal(t, uint8(9), out[2*4+1])
}
