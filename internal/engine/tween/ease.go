// Package tween drives time-based property animation: easing curves, single
// tweens, and timelines that place tweens relative to each other.
package tween

import "math"

// Ease maps linear progress in [0,1] to eased progress.
type Ease func(p float64) float64

// Linear is the identity ease.
func Linear(p float64) float64 { return p }

// Power1Out is a quadratic ease out.
func Power1Out(p float64) float64 {
	return 1 - (1-p)*(1-p)
}

// Power2InOut is a cubic ease in-out.
func Power2InOut(p float64) float64 {
	if p < 0.5 {
		return 4 * p * p * p
	}
	return 1 - math.Pow(-2*p+2, 3)/2
}

// Power3InOut is a quartic ease in-out.
func Power3InOut(p float64) float64 {
	if p < 0.5 {
		return 8 * p * p * p * p
	}
	return 1 - math.Pow(-2*p+2, 4)/2
}

// ExpoOut decelerates exponentially.
func ExpoOut(p float64) float64 {
	if p >= 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*p)
}

// ElasticOut overshoots and settles like a spring. Amplitudes below 1 are
// treated as 1.
func ElasticOut(amplitude, period float64) Ease {
	a := math.Max(amplitude, 1)
	if period <= 0 {
		period = 0.3
	}
	phase := period / (2 * math.Pi) * math.Asin(1/a)
	freq := 2 * math.Pi / period

	return func(p float64) float64 {
		if p >= 1 {
			return 1
		}
		return a*math.Pow(2, -10*p)*math.Sin((p-phase)*freq) + 1
	}
}
