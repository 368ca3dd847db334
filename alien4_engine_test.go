package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestEngine() (*Alien4Engine, *ParameterStore, *CVBus) {
	params := NewParameterStore()
	cv := NewCVBus()
	return NewAlien4Engine(48000, params, cv), params, cv
}

func Test_Alien4Engine_MutedCVChannelEmitsExactZero(t *testing.T) {
	eng, _, cv := newTestEngine()
	cv.Write([cvSlotCount]float32{5, 5, 5, 5, 5}, [cvSlotCount]bool{true, false, true, false, true})

	const n = 16
	in := make([]float32, n)
	out := AudioBlockOutputs{
		L: make([]float32, n), R: make([]float32, n),
		CV0: make([]float32, n), CV1: make([]float32, n), CV2: make([]float32, n),
		CV3: make([]float32, n), CV4: make([]float32, n),
	}
	eng.ProcessBuffer(in, out)

	for i := 0; i < n; i++ {
		assert.Equal(t, float32(0), out.CV0[i], "ENV1 muted must be exactly 0.0V")
		assert.Equal(t, float32(0.5), out.CV1[i], "ENV2 unmuted: 5V/10 == 0.5")
		assert.Equal(t, float32(0), out.CV2[i], "ENV3 muted must be exactly 0.0V")
		assert.Equal(t, float32(0.5), out.CV3[i])
		assert.Equal(t, float32(0), out.CV4[i])
	}
}

func Test_Alien4Engine_RecordThenScanProducesNonSilentPlayback(t *testing.T) {
	eng, params, _ := newTestEngine()

	params.Set(ParamRecording, 1)
	const recordLen = 20000
	in := make([]float32, recordLen)
	for i := range in {
		// Alternate loud bursts above the 0.5 onset threshold so slice
		// detection actually opens and closes slices.
		if (i/2000)%2 == 0 {
			in[i] = 0.9
		}
	}
	out := zeroBlock(recordLen)
	eng.ProcessBuffer(in, out)

	params.Set(ParamRecording, 0)
	silence := make([]float32, 64)
	out2 := zeroBlock(64)
	eng.ProcessBuffer(silence, out2)

	assert.Greater(t, len(eng.recorder.slices), 0, "expected at least one detected slice")

	params.Set(ParamScan, 1.0)
	params.Set(ParamGlobalSpeed, 1.0)
	out3 := zeroBlock(4096)
	eng.ProcessBuffer(make([]float32, 4096), out3)

	var energy float32
	for _, v := range out3.L {
		energy += v * v
	}
	assert.Greater(t, energy, float32(0), "expected nonzero playback energy once a slice is scanned in")
}

func Test_Alien4Engine_NoPanicAcrossParameterSweep(t *testing.T) {
	eng, params, cv := newTestEngine()
	params.Set(ParamGrainEnabled, 1)
	params.Set(ParamDelayChaosEnabled, 1)
	params.Set(ParamReverbChaosEnabled, 1)
	cv.Write([cvSlotCount]float32{1, 2, 3, 4, 5}, [cvSlotCount]bool{})

	for block := 0; block < 10; block++ {
		in := make([]float32, 256)
		for i := range in {
			in[i] = float32(i%7) * 0.1
		}
		out := zeroBlock(256)
		eng.ProcessBuffer(in, out)
	}
}

func zeroBlock(n int) AudioBlockOutputs {
	return AudioBlockOutputs{
		L: make([]float32, n), R: make([]float32, n),
		CV0: make([]float32, n), CV1: make([]float32, n), CV2: make([]float32, n),
		CV3: make([]float32, n), CV4: make([]float32, n),
	}
}
