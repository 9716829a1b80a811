package overlay

import (
	"math/rand/v2"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/aetheria/internal/engine/frame"
	"github.com/Faultbox/aetheria/internal/weather"
)

type recorder struct {
	rects   int
	circles int
	last    Color
	fullW   float32
}

func (r *recorder) FillRect(x, y, w, h float32, c Color) {
	r.rects++
	r.last = c
	if x == 0 && y == 0 && w > streakWidth {
		r.fullW = w
	}
}

func (r *recorder) FillCircle(cx, cy, radius, blur float32, c Color) {
	r.circles++
	r.last = c
}

func newOverlay(seed uint64) *Overlay {
	return New(1280, 720, rand.New(rand.NewPCG(seed, seed+1)), nil)
}

func TestPopulationPerCondition(t *testing.T) {
	tests := []struct {
		cond weather.Condition
		n    int
		kind Kind
	}{
		{weather.Rain, 400, Rain},
		{weather.Drizzle, 400, Rain},
		{weather.Thunderstorm, 400, Rain},
		{weather.Snow, 150, Snow},
		{weather.Clear, 0, Rain},
		{weather.Cloudy, 0, Rain},
		{weather.Fog, 0, Rain},
	}
	o := newOverlay(1)
	for _, tt := range tests {
		o.SetCondition(tt.cond)
		require.Len(t, o.Particles(), tt.n, tt.cond)
		for _, p := range o.Particles() {
			assert.Equal(t, tt.kind, p.Kind)
			assert.GreaterOrEqual(t, p.Alpha, float32(0.1))
			assert.Less(t, p.Alpha, float32(0.5))
		}
	}
}

func TestParticlesRecycleAtBottom(t *testing.T) {
	for _, c := range []weather.Condition{weather.Rain, weather.Snow, weather.Thunderstorm} {
		o := newOverlay(7)
		o.SetCondition(c)
		_, h := o.Size()
		n := len(o.Particles())

		for frame := 0; frame < 2000; frame++ {
			o.Step()
			if len(o.Particles()) != n {
				t.Fatalf("%s frame %d: %d particles, want %d", c, frame, len(o.Particles()), n)
			}
			for i, p := range o.Particles() {
				if p.Y > h || p.Y < RecycleY {
					t.Fatalf("%s particle %d frame %d: y=%v outside [%v, %v]", c, i, frame, p.Y, float32(RecycleY), h)
				}
			}
		}
	}
}

func TestResizeShrinksBand(t *testing.T) {
	o := newOverlay(3)
	o.SetCondition(weather.Rain)
	o.Resize(0, 500)
	o.Resize(640, -1)
	w, h := o.Size()
	assert.Equal(t, float32(1280), w)
	assert.Equal(t, float32(720), h)

	o.Resize(640, 360)
	for frame := 0; frame < 200; frame++ {
		o.Step()
		for i, p := range o.Particles() {
			if p.Y > 360 {
				t.Fatalf("particle %d frame %d: y=%v below the resized band", i, frame, p.Y)
			}
		}
	}
}

func TestThunderFlash(t *testing.T) {
	o := newOverlay(11)
	o.SetCondition(weather.Thunderstorm)

	flashes := 0
	for frame := 0; frame < 5000; frame++ {
		o.Step()
		if f := o.Flash(); f > 0 {
			flashes++
			assert.GreaterOrEqual(t, f, float32(0.1))
			assert.LessOrEqual(t, f, float32(0.4))
		}
	}
	assert.Positive(t, flashes)
	assert.Less(t, flashes, 150)

	o.SetCondition(weather.Rain)
	for frame := 0; frame < 2000; frame++ {
		o.Step()
		require.Zero(t, o.Flash())
	}
}

func TestDraw(t *testing.T) {
	o := newOverlay(5)

	o.SetCondition(weather.Snow)
	var r recorder
	o.Draw(&r)
	assert.Equal(t, 150, r.circles)
	assert.Zero(t, r.rects)
	assert.Equal(t, float32(1), r.last.R)

	o.SetCondition(weather.Rain)
	r = recorder{}
	o.Draw(&r)
	assert.Equal(t, 400, r.rects)
	assert.Zero(t, r.circles)
	assert.InDelta(t, 0xfc/255.0, r.last.B, 1e-6)

	o.SetCondition(weather.Clear)
	r = recorder{}
	o.Draw(&r)
	assert.Zero(t, r.rects+r.circles)
}

func TestDrawFlashCoversViewport(t *testing.T) {
	o := newOverlay(13)
	o.SetCondition(weather.Thunderstorm)
	for o.Flash() == 0 {
		o.Step()
	}
	var r recorder
	o.Draw(&r)
	assert.Equal(t, 401, r.rects)
	assert.Equal(t, float32(1280), r.fullW)
	assert.Equal(t, o.Flash(), r.last.A)
}

func TestStartStop(t *testing.T) {
	s := frame.NewScheduler(clockwork.NewFakeClock())
	o := newOverlay(9)
	o.SetCondition(weather.Snow)

	o.Start(s)
	o.Start(s)
	assert.Equal(t, 1, s.Pending())

	for i := 0; i < 10; i++ {
		s.RunFrame()
	}
	assert.Equal(t, uint64(10), o.Steps())
	assert.True(t, o.Running())

	o.Stop()
	o.Stop()
	assert.False(t, o.Running())
	assert.Zero(t, s.RunFrame())

	o.Start(s)
	s.RunFrame()
	assert.Equal(t, uint64(11), o.Steps())
	assert.Equal(t, 1, s.Pending())
}
