package gpu

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadlessAccounting(t *testing.T) {
	d := NewHeadless()

	m, err := d.CreateMesh(MeshData{Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}})
	require.NoError(t, err)
	tex, err := d.CreateTexture(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	require.NoError(t, err)

	assert.Equal(t, 1, d.LiveMeshes())
	assert.Equal(t, 1, d.LiveTextures())

	d.DeleteMesh(m)
	d.DeleteTexture(tex)
	assert.Zero(t, d.LiveMeshes())
	assert.Zero(t, d.LiveTextures())
	assert.Zero(t, d.DoubleFrees)

	d.DeleteMesh(m)
	assert.Equal(t, 1, d.DoubleFrees)
}

func TestHeadlessRejectsBadMesh(t *testing.T) {
	d := NewHeadless()
	_, err := d.CreateMesh(MeshData{Positions: []float32{0, 0}})
	assert.Error(t, err)

	m, err := d.CreateMesh(MeshData{Positions: make([]float32, 9)})
	require.NoError(t, err)
	assert.Error(t, d.UpdatePositions(m, make([]float32, 6)))
	assert.NoError(t, d.UpdatePositions(m, make([]float32, 9)))
}

func TestHeadlessContextLoss(t *testing.T) {
	d := NewHeadless()
	require.NoError(t, d.BeginFrame(Frame{}))

	d.Lose()
	assert.ErrorIs(t, d.BeginFrame(Frame{}), ErrContextLost)
	assert.Equal(t, 1, d.Frames)
}
