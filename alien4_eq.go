// alien4_eq.go - three-band cut-only biquad EQ

package main

import "math"

// biquad is a standard Direct Form I biquad section.
type biquad struct {
	b0, b1, b2 float32
	a1, a2     float32
	x1, x2     float32
	y1, y2     float32
}

func (b *biquad) process(x float32) float32 {
	y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	b.x2, b.x1 = b.x1, x
	b.y2, b.y1 = b.y1, y
	return y
}

// ThreeBandEQ runs a low-shelf (200 Hz), mid-peak (2 kHz), and high-shelf
// (8 kHz) section in series, per channel, each cut-only in [-20, 0] dB with
// Q=0.707. Gains are exponentially smoothed once per buffer
// (lambda ~= 0.05) and coefficients are recomputed from the smoothed gains
// once per buffer, never per-sample.
type ThreeBandEQ struct {
	sampleRate float32

	low, mid, high biquad

	smoothedLowDB  float32
	smoothedMidDB  float32
	smoothedHighDB float32
}

func NewThreeBandEQ(sampleRate float32) *ThreeBandEQ {
	eq := &ThreeBandEQ{sampleRate: sampleRate}
	eq.recompute(0, 0, 0)
	return eq
}

// UpdateFromSnapshot applies the per-buffer gain smoothing and coefficient
// recompute step; parameter changes are absorbed once at the start of each
// buffer, never inside the sample loop.
func (eq *ThreeBandEQ) UpdateFromSnapshot(lowDB, midDB, highDB float32) {
	const lambda = 0.05
	eq.smoothedLowDB += lambda * (lowDB - eq.smoothedLowDB)
	eq.smoothedMidDB += lambda * (midDB - eq.smoothedMidDB)
	eq.smoothedHighDB += lambda * (highDB - eq.smoothedHighDB)
	eq.recompute(eq.smoothedLowDB, eq.smoothedMidDB, eq.smoothedHighDB)
}

func (eq *ThreeBandEQ) recompute(lowDB, midDB, highDB float32) {
	eq.low = lowShelf(200, 0.707, lowDB, eq.sampleRate, eq.low)
	eq.mid = peakingEQ(2000, 0.707, midDB, eq.sampleRate, eq.mid)
	eq.high = highShelf(8000, 0.707, highDB, eq.sampleRate, eq.high)
}

func (eq *ThreeBandEQ) Process(x float32) float32 {
	x = eq.low.process(x)
	x = eq.mid.process(x)
	x = eq.high.process(x)
	return x
}

// The shelf/peak coefficient formulas below follow the RBJ Audio EQ
// Cookbook, preserving each section's existing delay-line state (x1/x2/y1/y2)
// across a coefficient update so gain automation doesn't click.

func lowShelf(freq, q, gainDB, sr float32, prev biquad) biquad {
	a := float32(math.Pow(10, float64(gainDB)/40))
	w0 := 2 * math.Pi * float64(freq) / float64(sr)
	cosW0, sinW0 := float32(math.Cos(w0)), float32(math.Sin(w0))
	alpha := sinW0 / (2 * q)
	twoSqrtAAlpha := 2 * sqrtF32(a) * alpha

	b0 := a * ((a + 1) - (a-1)*cosW0 + twoSqrtAAlpha)
	b1 := 2 * a * ((a - 1) - (a+1)*cosW0)
	b2 := a * ((a + 1) - (a-1)*cosW0 - twoSqrtAAlpha)
	a0 := (a + 1) + (a-1)*cosW0 + twoSqrtAAlpha
	a1 := -2 * ((a - 1) + (a+1)*cosW0)
	a2 := (a + 1) + (a-1)*cosW0 - twoSqrtAAlpha

	return normalize(b0, b1, b2, a0, a1, a2, prev)
}

func highShelf(freq, q, gainDB, sr float32, prev biquad) biquad {
	a := float32(math.Pow(10, float64(gainDB)/40))
	w0 := 2 * math.Pi * float64(freq) / float64(sr)
	cosW0, sinW0 := float32(math.Cos(w0)), float32(math.Sin(w0))
	alpha := sinW0 / (2 * q)
	twoSqrtAAlpha := 2 * sqrtF32(a) * alpha

	b0 := a * ((a + 1) + (a-1)*cosW0 + twoSqrtAAlpha)
	b1 := -2 * a * ((a - 1) + (a+1)*cosW0)
	b2 := a * ((a + 1) + (a-1)*cosW0 - twoSqrtAAlpha)
	a0 := (a + 1) - (a-1)*cosW0 + twoSqrtAAlpha
	a1 := 2 * ((a - 1) - (a+1)*cosW0)
	a2 := (a + 1) - (a-1)*cosW0 - twoSqrtAAlpha

	return normalize(b0, b1, b2, a0, a1, a2, prev)
}

func peakingEQ(freq, q, gainDB, sr float32, prev biquad) biquad {
	a := float32(math.Pow(10, float64(gainDB)/40))
	w0 := 2 * math.Pi * float64(freq) / float64(sr)
	cosW0, sinW0 := float32(math.Cos(w0)), float32(math.Sin(w0))
	alpha := sinW0 / (2 * q)

	b0 := 1 + alpha*a
	b1 := -2 * cosW0
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosW0
	a2 := 1 - alpha/a

	return normalize(b0, b1, b2, a0, a1, a2, prev)
}

func normalize(b0, b1, b2, a0, a1, a2 float32, prev biquad) biquad {
	return biquad{
		b0: b0 / a0, b1: b1 / a0, b2: b2 / a0,
		a1: a1 / a0, a2: a2 / a0,
		x1: prev.x1, x2: prev.x2, y1: prev.y1, y2: prev.y2,
	}
}
