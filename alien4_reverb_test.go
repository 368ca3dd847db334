package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_FreeverbReverb_CombSizesMatchSpec(t *testing.T) {
	assert.Equal(t, [4]int{1557, 1617, 1491, 1422}, reverbCombSizesL)
	assert.Equal(t, [2]int{556, 441}, reverbAllpassSizesL)
}

func Test_FreeverbReverb_FeedbackCoeffClampedAt995(t *testing.T) {
	r := NewFreeverbReverb()
	// Long enough for every comb to wrap several times, so the feedback
	// path actually runs.
	for i := 0; i < 20000; i++ {
		_, _ = r.Process(1, -1, 1.0, 0.9, 0.5, 0.9)
	}
	assert.LessOrEqual(t, r.left.combs[0].filtered, float32(1000), "feedback path must never blow up under max decay+chaos")
}

func Test_FreeverbReverb_SilenceInProducesDecayingOutput(t *testing.T) {
	r := NewFreeverbReverb()
	_, _ = r.Process(1, 0, 0.5, 0.5, 0.5, 0)
	var peak float32
	for i := 0; i < 2000; i++ {
		outL, _ := r.Process(0, 0, 0.5, 0.5, 0.5, 0)
		peak = maxF32(peak, absF32(outL))
	}
	assert.NotEqual(t, float32(0), peak, "an impulse should eventually reach the comb outputs")

	var last float32
	for i := 0; i < 5000; i++ {
		last, _ = r.Process(0, 0, 0.5, 0.5, 0.5, 0)
	}
	assert.Less(t, absF32(last), float32(0.5), "tail should have decayed substantially with no further input")
}

// With room_size > 0 the stereo spread decorrelates the
// channels: the lag-0 L/R correlation of the impulse response stays well
// below 1.
func Test_FreeverbReverb_StereoDecorrelation(t *testing.T) {
	r := NewFreeverbReverb()

	const n = 20000
	ls := make([]float64, n)
	rs := make([]float64, n)
	for i := 0; i < n; i++ {
		var in float32
		if i == 0 {
			in = 1
		}
		l, rr := r.Process(in, in, 0.7, 0.5, 0.3, 0)
		ls[i] = float64(l)
		rs[i] = float64(rr)
	}

	var num, denL, denR float64
	for i := 0; i < n; i++ {
		num += ls[i] * rs[i]
		denL += ls[i] * ls[i]
		denR += rs[i] * rs[i]
	}
	corr := num / math.Sqrt(denL*denR)
	assert.Less(t, math.Abs(corr), 0.5)
}

// Zero input decays to zero output once the tail has rung out.
func Test_FreeverbReverb_ZeroInputDecaysToZero(t *testing.T) {
	r := NewFreeverbReverb()
	r.Process(1, 1, 0.2, 0.5, 0.5, 0)

	var outL, outR float32
	for i := 0; i < 150000; i++ {
		outL, outR = r.Process(0, 0, 0.2, 0.5, 0.5, 0)
	}
	assert.Less(t, absF32(outL), float32(1e-6))
	assert.Less(t, absF32(outR), float32(1e-6))
}

func Test_FreeverbChannel_LRDiffersByStereoSpread(t *testing.T) {
	left := newFreeverbChannel(false)
	right := newFreeverbChannel(true)
	for i, size := range reverbCombSizesL {
		assert.Equal(t, size, len(left.combs[i].buf))
		assert.Equal(t, size+reverbStereoSpread, len(right.combs[i].buf))
	}
}
