package tween

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/aetheria/pkg/math"
)

func TestEaseEndpoints(t *testing.T) {
	eases := map[string]Ease{
		"linear":       Linear,
		"power1.out":   Power1Out,
		"power2.inOut": Power2InOut,
		"power3.inOut": Power3InOut,
		"expo.out":     ExpoOut,
		"elastic.out":  ElasticOut(1.2, 0.5),
	}
	for name, e := range eases {
		assert.InDelta(t, 0, e(0), 1e-9, name)
		assert.InDelta(t, 1, e(1), 1e-9, name)
	}
}

func TestInOutSymmetry(t *testing.T) {
	for _, e := range []Ease{Power2InOut, Power3InOut} {
		assert.InDelta(t, 0.5, e(0.5), 1e-9)
		assert.InDelta(t, 1-e(0.2), e(0.8), 1e-9)
	}
}

func TestElasticOvershoots(t *testing.T) {
	e := ElasticOut(1.2, 0.5)
	peak := 0.0
	for i := 0; i <= 100; i++ {
		peak = max(peak, e(float64(i)/100))
	}
	assert.Greater(t, peak, 1.0)
}

func TestFloatTweenCapturesStartLate(t *testing.T) {
	v := float32(0)
	tw := Float(&v, 10, 1, Linear).WithDelay(0.5)

	v = 4 // changed before the tween starts
	tw.Advance(0.5)
	assert.Equal(t, float32(4), v)

	tw.Advance(0.5)
	assert.InDelta(t, 7, v, 1e-6)

	assert.False(t, tw.Advance(1))
	assert.Equal(t, float32(10), v)
	assert.True(t, tw.Done())
}

func TestKilledTweenStops(t *testing.T) {
	v := float32(0)
	tw := Float(&v, 1, 1, Linear)
	tw.Advance(0.25)
	tw.Kill()
	assert.False(t, tw.Advance(1))
	assert.InDelta(t, 0.25, v, 1e-6)
}

func TestTimelineOffsets(t *testing.T) {
	var a, b, c float32
	tl := &Timeline{}
	tl.Add(Float(&a, 1, 1.2, Linear), 0)
	tl.Add(Float(&b, 1, 2.0, Linear), -0.8)
	tl.Add(Float(&c, 1, 2.0, Linear), -1.5)

	assert.InDelta(t, 0, tl.StartOf(0), 1e-9)
	assert.InDelta(t, 0.4, tl.StartOf(1), 1e-9)
	assert.InDelta(t, 0.9, tl.StartOf(2), 1e-9)
	assert.InDelta(t, 2.9, tl.Duration(), 1e-9)

	tl.Advance(0.5)
	assert.Zero(t, c)
	assert.Greater(t, b, float32(0))

	for tl.Advance(1.0 / 60) {
	}
	assert.True(t, tl.Done())
	assert.Equal(t, [3]float32{1, 1, 1}, [3]float32{a, b, c})
}

func TestTimelineLaterTweenWins(t *testing.T) {
	pos := math.Vec3{Z: 8}
	tl := &Timeline{}
	tl.Add(Vec3(&pos, math.Vec3{Z: 6}, 1.2, Linear), 0)
	tl.Add(Vec3(&pos, math.Vec3{Y: 1, Z: 2}, 1.0, Linear), -0.6)

	// Inside the overlap both tweens touch pos; the second is applied last.
	tl.Advance(0.9)
	for tl.Advance(0.1) {
	}
	assert.InDelta(t, 1, pos.Y, 1e-6)
	assert.InDelta(t, 2, pos.Z, 1e-6)
}

func TestPlayer(t *testing.T) {
	var a, b float32
	var p Player
	p.Play(Float(&a, 1, 0.5, Linear))
	long := Float(&b, 1, 2, Linear)
	p.Play(long)
	require.Equal(t, 2, p.Active())

	p.Advance(1)
	assert.Equal(t, 1, p.Active())
	assert.Equal(t, float32(1), a)

	p.KillAll()
	assert.Zero(t, p.Active())
	assert.False(t, long.Active())
}
