package tween

// Timeline sequences tweens. Each tween is placed relative to the current end
// of the timeline, so a negative offset overlaps it with its predecessor.
// Overlapping tweens are rendered in insertion order: on a shared property
// the later tween wins.
type Timeline struct {
	entries []entry
	time    float64
	end     float64
	killed  bool
}

type entry struct {
	at    float64
	tween *Tween
}

// Add places tw at the timeline end plus offset (clamped to zero).
func (tl *Timeline) Add(tw *Tween, offset float64) *Timeline {
	at := max(tl.end+offset, 0)
	tl.entries = append(tl.entries, entry{at: at, tween: tw})
	tl.end = max(tl.end, at+tw.Total())
	return tl
}

// StartOf returns the start time of the i-th added tween.
func (tl *Timeline) StartOf(i int) float64 {
	return tl.entries[i].at
}

// Duration returns the end time of the last tween.
func (tl *Timeline) Duration() float64 {
	return tl.end
}

// Time returns the playhead.
func (tl *Timeline) Time() float64 {
	return tl.time
}

// Advance implements Animation.
func (tl *Timeline) Advance(dt float64) bool {
	if tl.killed {
		return false
	}
	tl.time += dt
	for _, e := range tl.entries {
		if local := tl.time - e.at; local >= 0 {
			e.tween.seek(local)
		}
	}
	return tl.time < tl.end
}

// Done reports whether the playhead passed the end.
func (tl *Timeline) Done() bool {
	return tl.time >= tl.end
}

// Kill stops the timeline and every tween in it.
func (tl *Timeline) Kill() {
	tl.killed = true
	for _, e := range tl.entries {
		e.tween.Kill()
	}
}

// Player advances a set of independent animations.
type Player struct {
	active []Animation
}

// Play starts advancing a.
func (p *Player) Play(a Animation) {
	p.active = append(p.active, a)
}

// Advance moves every animation forward and drops the finished ones.
func (p *Player) Advance(dt float64) {
	live := p.active[:0]
	for _, a := range p.active {
		if a.Advance(dt) {
			live = append(live, a)
		}
	}
	for i := len(live); i < len(p.active); i++ {
		p.active[i] = nil
	}
	p.active = live
}

// KillAll stops and drops every animation.
func (p *Player) KillAll() {
	for _, a := range p.active {
		a.Kill()
	}
	p.active = nil
}

// Active returns the number of running animations.
func (p *Player) Active() int {
	return len(p.active)
}
