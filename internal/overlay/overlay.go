// Package overlay is the full-viewport precipitation layer drawn over the
// globe: rain streaks or snow dots falling in screen space, plus the
// lightning flash of a thunderstorm.
package overlay

import (
	gomath "math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/aetheria/internal/engine/frame"
	"github.com/Faultbox/aetheria/internal/weather"
)

// Kind tells streaks from dots.
type Kind int

const (
	Rain Kind = iota
	Snow
)

const (
	rainCount = 400
	snowCount = 150

	// RecycleY is where a particle restarts after leaving the bottom edge.
	RecycleY = -20

	snowBlur    = 4
	streakWidth = 1
	streakScale = 5

	flashChance = 0.99
)

// Color is a straight-alpha RGBA color with components in [0,1].
type Color struct {
	R, G, B, A float32
}

var (
	rainColor  = Color{R: 0xa5 / 255.0, G: 0xb4 / 255.0, B: 0xfc / 255.0, A: 1}
	snowColor  = Color{R: 1, G: 1, B: 1, A: 1}
	flashColor = Color{R: 1, G: 1, B: 1, A: 1}
)

// Painter receives the overlay's shapes in pixel coordinates, y down.
type Painter interface {
	FillRect(x, y, w, h float32, c Color)
	FillCircle(cx, cy, r, blur float32, c Color)
}

// Particle is one streak or dot.
type Particle struct {
	X, Y   float32
	VX, VY float32
	Size   float32
	Alpha  float32
	Kind   Kind
}

// Overlay simulates the precipitation layer. It is not safe for concurrent
// use.
type Overlay struct {
	rng *rand.Rand
	log *zap.Logger

	width, height float32
	condition     weather.Condition
	particles     []Particle
	flash         float32

	sched   *frame.Scheduler
	frameID frame.ID
	steps   uint64
}

// New creates an empty overlay for a width×height viewport.
func New(width, height int, rng *rand.Rand, logger *zap.Logger) *Overlay {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 1))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Overlay{rng: rng, log: logger, condition: weather.Clear}
	o.Resize(width, height)
	return o
}

// Resize changes the viewport. Non-positive sizes are ignored. Particles
// keep their positions and adapt as they recycle.
func (o *Overlay) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	o.width, o.height = float32(width), float32(height)
}

// Size returns the viewport size.
func (o *Overlay) Size() (float32, float32) {
	return o.width, o.height
}

// Condition returns the condition the particles were built for.
func (o *Overlay) Condition() weather.Condition {
	return o.condition
}

// Particles returns the live particles. The slice must not be modified.
func (o *Overlay) Particles() []Particle {
	return o.particles
}

// Flash returns the alpha of the flash drawn this frame, or 0.
func (o *Overlay) Flash() float32 {
	return o.flash
}

// SetCondition rebuilds the particle population: streaks for the rain
// family, dots for snow, nothing otherwise.
func (o *Overlay) SetCondition(c weather.Condition) {
	o.condition = c
	o.flash = 0

	var kind Kind
	var n int
	switch {
	case c.IsRainFamily():
		kind, n = Rain, rainCount
	case c == weather.Snow:
		kind, n = Snow, snowCount
	}

	o.particles = make([]Particle, n)
	for i := range o.particles {
		o.particles[i] = o.spawn(kind)
	}
	o.log.Debug("overlay rebuilt", zap.Stringer("condition", c), zap.Int("particles", n))
}

func (o *Overlay) spawn(kind Kind) Particle {
	r := o.rng.Float32
	p := Particle{
		X:     r() * o.width,
		Y:     r() * o.height,
		VX:    (r() - 0.5) * 0.5,
		Alpha: r()*0.4 + 0.1,
		Kind:  kind,
	}
	if kind == Rain {
		p.VY = r()*15 + 20
		p.Size = r()*2 + 1
	} else {
		p.VY = r()*2 + 1
		p.Size = r()*3 + 1
	}
	return p
}

// Step advances every particle by one frame and rolls the thunder flash.
func (o *Overlay) Step() {
	o.steps++
	for i := range o.particles {
		p := &o.particles[i]
		p.Y += p.VY
		p.X += p.VX
		if p.Kind == Snow {
			p.X += float32(gomath.Sin(float64(p.Y)*0.02) * 0.5)
		}
		if p.Y > o.height {
			p.Y = RecycleY
			p.X = o.rng.Float32() * o.width
		}
	}

	o.flash = 0
	if o.condition == weather.Thunderstorm && o.rng.Float64() > flashChance {
		o.flash = o.rng.Float32()*0.3 + 0.1
	}
}

// Draw paints the current frame.
func (o *Overlay) Draw(p Painter) {
	for _, pt := range o.particles {
		if pt.Kind == Snow {
			p.FillCircle(pt.X, pt.Y, pt.Size, snowBlur, snowColor.withAlpha(pt.Alpha))
			continue
		}
		p.FillRect(pt.X, pt.Y, streakWidth, pt.Size*streakScale, rainColor.withAlpha(pt.Alpha))
	}
	if o.flash > 0 {
		p.FillRect(0, 0, o.width, o.height, flashColor.withAlpha(o.flash))
	}
}

func (c Color) withAlpha(a float32) Color {
	c.A = a
	return c
}

// Start runs Step once per frame on s until Stop. Starting a running
// overlay does nothing.
func (o *Overlay) Start(s *frame.Scheduler) {
	if o.frameID != 0 {
		return
	}
	o.sched = s
	o.request()
}

func (o *Overlay) request() {
	o.frameID = o.sched.Request(func(time.Time) {
		o.frameID = 0
		o.Step()
		o.request()
	})
}

// Stop cancels the pending frame.
func (o *Overlay) Stop() {
	if o.frameID == 0 {
		return
	}
	o.sched.Cancel(o.frameID)
	o.frameID = 0
}

// Running reports whether a frame is scheduled.
func (o *Overlay) Running() bool {
	return o.frameID != 0
}

// Steps returns how many frames were simulated.
func (o *Overlay) Steps() uint64 {
	return o.steps
}
