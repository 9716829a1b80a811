package tween

import (
	"github.com/Faultbox/aetheria/pkg/math"
)

// Animation is anything the Player can advance.
type Animation interface {
	// Advance moves time forward by dt seconds and reports whether the
	// animation still has work to do.
	Advance(dt float64) bool
	Kill()
}

// Tween interpolates from values captured when it starts to fixed end values.
type Tween struct {
	Duration float64
	Delay    float64
	Ease     Ease

	begin    func()
	apply    func(p float64)
	onUpdate func()

	elapsed float64
	started bool
	done    bool
	killed  bool
}

// New creates a tween. begin runs once when the tween starts (after Delay)
// and should capture start values; apply receives eased progress.
func New(duration float64, ease Ease, begin func(), apply func(p float64)) *Tween {
	if ease == nil {
		ease = Power1Out
	}
	return &Tween{Duration: duration, Ease: ease, begin: begin, apply: apply}
}

// Float animates *target to `to`.
func Float(target *float32, to float32, duration float64, ease Ease) *Tween {
	var from float32
	return New(duration, ease,
		func() { from = *target },
		func(p float64) { *target = from + (to-from)*float32(p) },
	)
}

// Vec3 animates *target to `to`.
func Vec3(target *math.Vec3, to math.Vec3, duration float64, ease Ease) *Tween {
	var from math.Vec3
	return New(duration, ease,
		func() { from = *target },
		func(p float64) { *target = from.Lerp(to, float32(p)) },
	)
}

// WithDelay postpones the start.
func (t *Tween) WithDelay(d float64) *Tween {
	t.Delay = d
	return t
}

// OnUpdate registers fn to run after every applied step.
func (t *Tween) OnUpdate(fn func()) *Tween {
	t.onUpdate = fn
	return t
}

// Total returns delay plus duration.
func (t *Tween) Total() float64 {
	return t.Delay + t.Duration
}

// Advance implements Animation.
func (t *Tween) Advance(dt float64) bool {
	t.elapsed += dt
	t.seek(t.elapsed)
	return t.Active()
}

// Active reports whether the tween has neither finished nor been killed.
func (t *Tween) Active() bool {
	return !t.done && !t.killed
}

// Done reports whether the tween reached its end.
func (t *Tween) Done() bool {
	return t.done
}

// Kill stops the tween where it is.
func (t *Tween) Kill() {
	t.killed = true
}

// seek renders the tween at local time (including delay).
func (t *Tween) seek(local float64) {
	if !t.Active() {
		return
	}
	local -= t.Delay
	if local < 0 {
		return
	}
	if !t.started {
		t.started = true
		if t.begin != nil {
			t.begin()
		}
	}

	p := 1.0
	if t.Duration > 0 {
		p = min(local/t.Duration, 1)
	}
	t.apply(t.Ease(p))
	if t.onUpdate != nil {
		t.onUpdate()
	}
	if p >= 1 {
		t.done = true
	}
}
