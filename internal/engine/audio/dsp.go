package audio

import (
	"math"
	"math/rand/v2"

	"github.com/gopxl/beep/v2"
)

// pinkNoise is brown-leaning "pink" noise from a leaky integrator over white
// noise. Each instance owns its filter state.
type pinkNoise struct {
	rng  *rand.Rand
	last float64
}

func newPinkNoise(rng *rand.Rand) *pinkNoise {
	return &pinkNoise{rng: rng}
}

func (p *pinkNoise) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		white := p.rng.Float64()*2 - 1
		p.last = (p.last + 0.02*white) / 1.02
		v := p.last * 3.5
		samples[i] = [2]float64{v, v}
	}
	return len(samples), true
}

func (p *pinkNoise) Err() error { return nil }

// whiteNoise is uniform noise in [-1, 1).
type whiteNoise struct {
	rng *rand.Rand
}

func (w *whiteNoise) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := w.rng.Float64()*2 - 1
		samples[i] = [2]float64{v, v}
	}
	return len(samples), true
}

func (w *whiteNoise) Err() error { return nil }

// sweepSaw is a sawtooth whose frequency follows freq(t), t in seconds.
type sweepSaw struct {
	sr    beep.SampleRate
	freq  func(t float64) float64
	n     int
	phase float64
}

func (s *sweepSaw) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		t := s.sr.D(s.n).Seconds()
		s.phase += s.freq(t) / float64(s.sr)
		s.phase -= math.Floor(s.phase)
		v := 2*s.phase - 1
		samples[i] = [2]float64{v, v}
		s.n++
	}
	return len(samples), true
}

func (s *sweepSaw) Err() error { return nil }

// lowpass is a one-pole low-pass filter with a cutoff that may move over time.
type lowpass struct {
	src    beep.Streamer
	sr     beep.SampleRate
	cutoff func(t float64) float64
	n      int
	y      [2]float64
}

func newLowpass(src beep.Streamer, sr beep.SampleRate, cutoff func(t float64) float64) *lowpass {
	return &lowpass{src: src, sr: sr, cutoff: cutoff}
}

func (l *lowpass) Stream(samples [][2]float64) (int, bool) {
	n, ok := l.src.Stream(samples)
	for i := 0; i < n; i++ {
		fc := l.cutoff(l.sr.D(l.n).Seconds())
		a := 1 - math.Exp(-2*math.Pi*fc/float64(l.sr))
		for ch := 0; ch < 2; ch++ {
			l.y[ch] += a * (samples[i][ch] - l.y[ch])
			samples[i][ch] = l.y[ch]
		}
		l.n++
	}
	return n, ok
}

func (l *lowpass) Err() error { return l.src.Err() }

// envelope scales its source by gain(t).
type envelope struct {
	src  beep.Streamer
	sr   beep.SampleRate
	gain func(t float64) float64
	n    int
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.src.Stream(samples)
	for i := 0; i < n; i++ {
		g := e.gain(e.sr.D(e.n).Seconds())
		samples[i][0] *= g
		samples[i][1] *= g
		e.n++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.src.Err() }

// voice can be stopped from the outside; the mixer drops it on the next
// buffer.
type voice struct {
	src     beep.Streamer
	stopped bool
}

func (v *voice) Stream(samples [][2]float64) (int, bool) {
	if v.stopped {
		return 0, false
	}
	return v.src.Stream(samples)
}

func (v *voice) Err() error { return v.src.Err() }

// bus plays the mixer and pads with silence, so the speaker never drops it.
type bus struct {
	mixer *beep.Mixer
}

func (b bus) Stream(samples [][2]float64) (int, bool) {
	n, ok := b.mixer.Stream(samples)
	if !ok {
		n = 0
	}
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (b bus) Err() error { return nil }

// constant returns a fixed value.
func constant(v float64) func(float64) float64 {
	return func(float64) float64 { return v }
}

// linearRamp goes from 0 to target over d seconds and holds.
func linearRamp(target, d float64) func(float64) float64 {
	return func(t float64) float64 {
		if t >= d {
			return target
		}
		return target * t / d
	}
}

// expRamp goes from a to b exponentially over d seconds and holds.
func expRamp(a, b, d float64) func(float64) float64 {
	return func(t float64) float64 {
		if t >= d {
			return b
		}
		return a * math.Pow(b/a, t/d)
	}
}

// windSweep moves the wind cutoff 400 → 600 Hz over 4 s, then down to
// 300 Hz at 8 s.
func windSweep(t float64) float64 {
	switch {
	case t < 4:
		return 400 + 200*t/4
	case t < 8:
		return 600 - 300*(t-4)/4
	default:
		return 300
	}
}
