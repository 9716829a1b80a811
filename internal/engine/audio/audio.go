// Package audio synthesizes the ambient weather soundscape: a rain or wind
// bed matching the current condition and one-shot thunder claps.
package audio

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"go.uber.org/zap"

	"github.com/Faultbox/aetheria/internal/weather"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// DefaultMasterVolume is the master gain of the ambience.
const DefaultMasterVolume = 0.4

const (
	rainCutoff   = 800
	rainGain     = 0.3
	rainRamp     = 2.0
	windCutoff   = 400
	windGain     = 0.05
	windRamp     = 2.0
	thunderFrom  = 50
	thunderTo    = 10
	thunderSweep = 1.0
	thunderFade  = 1.5
	thunderCut   = 200
	thunderLen   = 2 * time.Second
)

// Ambience owns the weather soundscape. Init opens the speaker; without it
// the ambience still builds its voices, which is what tests rely on.
type Ambience struct {
	mu sync.Mutex

	initialized bool
	sampleRate  beep.SampleRate
	rng         *rand.Rand
	log         *zap.Logger

	mixer  *beep.Mixer
	master *effects.Volume
	bed    *voice

	condition    weather.Condition
	masterVolume float64
	muted        bool
}

// New creates an ambience at the given master volume (0.0 to 1.0).
func New(sampleRate beep.SampleRate, masterVolume float64, logger *zap.Logger) *Ambience {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Ambience{
		sampleRate:   sampleRate,
		rng:          rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 3)),
		log:          logger,
		mixer:        &beep.Mixer{},
		masterVolume: clamp(masterVolume, 0, 1),
	}
	a.master = &effects.Volume{Streamer: bus{mixer: a.mixer}, Base: 2}
	a.updateVolume()
	return a
}

// Init opens the speaker and starts the master bus.
func (a *Ambience) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return nil
	}
	if err := speaker.Init(a.sampleRate, a.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(a.master)
	a.initialized = true
	a.log.Info("audio started", zap.Int("sample_rate", int(a.sampleRate)))
	return nil
}

// Close stops every voice and releases the speaker.
func (a *Ambience) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.withSpeaker(func() {
		a.stopBed()
		a.mixer.Clear()
	})
	if a.initialized {
		speaker.Clear()
		speaker.Close()
		a.initialized = false
	}
}

// withSpeaker runs fn while the speaker goroutine is held off the streamers.
func (a *Ambience) withSpeaker(fn func()) {
	if a.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	fn()
}

// Output is the master bus. Init hands it to the speaker.
func (a *Ambience) Output() beep.Streamer {
	return a.master
}

// Play replaces the ambient bed with the one for c: filtered pink noise for
// the rain family, a slowly sweeping wind otherwise. The bed keeps playing
// under mute so unmuting resumes it.
func (a *Ambience) Play(c weather.Condition) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.condition = c
	var src beep.Streamer
	if c.IsRainFamily() {
		src = &envelope{
			src:  newLowpass(newPinkNoise(a.childRand()), a.sampleRate, constant(rainCutoff)),
			sr:   a.sampleRate,
			gain: linearRamp(rainGain, rainRamp),
		}
	} else {
		src = &envelope{
			src:  newLowpass(&whiteNoise{rng: a.childRand()}, a.sampleRate, windSweep),
			sr:   a.sampleRate,
			gain: linearRamp(windGain, windRamp),
		}
	}

	bed := &voice{src: src}
	a.withSpeaker(func() {
		a.stopBed()
		a.bed = bed
		a.mixer.Add(bed)
	})
	a.log.Debug("ambience bed", zap.Stringer("condition", c), zap.Bool("rain", c.IsRainFamily()))
}

func (a *Ambience) stopBed() {
	if a.bed != nil {
		a.bed.stopped = true
		a.bed = nil
	}
}

// childRand gives a new voice its own generator.
func (a *Ambience) childRand() *rand.Rand {
	return rand.New(rand.NewPCG(a.rng.Uint64(), a.rng.Uint64()))
}

// Thunder plays one clap: a sawtooth sweeping down from 50 Hz, low-passed
// and decaying over 1.5 s. Muted ambiences stay silent.
func (a *Ambience) Thunder() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.muted {
		return
	}
	clap := beep.Take(a.sampleRate.N(thunderLen), &envelope{
		src: newLowpass(&sweepSaw{
			sr:   a.sampleRate,
			freq: expRamp(thunderFrom, thunderTo, thunderSweep),
		}, a.sampleRate, constant(thunderCut)),
		sr:   a.sampleRate,
		gain: expRamp(1, 0.01, thunderFade),
	})
	a.withSpeaker(func() { a.mixer.Add(clap) })
}

// SetMuted silences or restores the master bus.
func (a *Ambience) SetMuted(muted bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.muted = muted
	a.withSpeaker(a.updateVolume)
	a.log.Debug("ambience mute", zap.Bool("muted", muted))
}

// Muted reports whether the master bus is silenced.
func (a *Ambience) Muted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (a *Ambience) SetMasterVolume(vol float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.masterVolume = clamp(vol, 0, 1)
	a.withSpeaker(a.updateVolume)
}

// MasterVolume returns the master volume.
func (a *Ambience) MasterVolume() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.masterVolume
}

// Condition returns the condition of the current bed.
func (a *Ambience) Condition() weather.Condition {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.condition
}

func (a *Ambience) updateVolume() {
	if a.muted || a.masterVolume <= 0 {
		a.master.Silent = true
		return
	}
	a.master.Silent = false
	a.master.Volume = volumeExponent(a.masterVolume)
}

// volumeExponent converts a linear gain to the base-2 exponent that
// effects.Volume expects.
func volumeExponent(vol float64) float64 {
	if vol <= 0 {
		return -100
	}
	return math.Log2(vol)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
