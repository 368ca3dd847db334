package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// sineRMSThrough measures the steady-state RMS of a sine at freq Hz after
// running it through the EQ, skipping the first half of the signal so the
// biquad transients settle.
func sineRMSThrough(eq *ThreeBandEQ, freq float64, nSamples int) float64 {
	var sumSq float64
	counted := 0
	for n := 0; n < nSamples; n++ {
		x := float32(math.Sin(2 * math.Pi * freq * float64(n) / 48000))
		y := eq.Process(x)
		if n >= nSamples/2 {
			sumSq += float64(y) * float64(y)
			counted++
		}
	}
	return math.Sqrt(sumSq / float64(counted))
}

// settleEQ converges the per-buffer gain smoothers (lambda 0.05) onto their
// targets before measurement.
func settleEQ(eq *ThreeBandEQ, lowDB, midDB, highDB float32) {
	for i := 0; i < 500; i++ {
		eq.UpdateFromSnapshot(lowDB, midDB, highDB)
	}
}

func Test_ThreeBandEQ_UnityAtZeroGain(t *testing.T) {
	eq := NewThreeBandEQ(48000)
	settleEQ(eq, 0, 0, 0)

	rms := sineRMSThrough(eq, 1000, 9600)
	// Unity sine RMS is 1/sqrt(2) ~= 0.707.
	assert.InDelta(t, 0.707, rms, 0.02)
}

func Test_ThreeBandEQ_LowCutAttenuatesBass(t *testing.T) {
	ref := NewThreeBandEQ(48000)
	settleEQ(ref, 0, 0, 0)
	refRMS := sineRMSThrough(ref, 100, 19200)

	cut := NewThreeBandEQ(48000)
	settleEQ(cut, -20, 0, 0)
	cutRMS := sineRMSThrough(cut, 100, 19200)

	attenuationDB := 20 * math.Log10(cutRMS/refRMS)
	assert.Less(t, attenuationDB, -12.0, "a -20dB low shelf should attenuate 100Hz well past -12dB")
}

func Test_ThreeBandEQ_HighCutLeavesMidsAlone(t *testing.T) {
	eq := NewThreeBandEQ(48000)
	settleEQ(eq, 0, 0, -20)

	midRMS := sineRMSThrough(eq, 2000, 19200)
	assert.Greater(t, midRMS, 0.6, "a high-shelf cut at 8kHz must not gut the midband")
}

func Test_ThreeBandEQ_GainSmoothingConverges(t *testing.T) {
	eq := NewThreeBandEQ(48000)
	for i := 0; i < 500; i++ {
		eq.UpdateFromSnapshot(-20, -10, -5)
	}
	assert.InDelta(t, -20, eq.smoothedLowDB, 0.01)
	assert.InDelta(t, -10, eq.smoothedMidDB, 0.01)
	assert.InDelta(t, -5, eq.smoothedHighDB, 0.01)
}
