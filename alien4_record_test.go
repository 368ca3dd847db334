package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordClicks drives a full record pass over a synthetic input: clicks of
// the given amplitude at the given sample offsets, silence elsewhere.
func recordClicks(r *Recorder, loop *LoopBuffer, totalSamples int32, clickAt []int32, amp float32, minSliceN int32) {
	r.StartRecording()
	for n := int32(0); n < totalSamples; n++ {
		x := float32(0)
		for _, c := range clickAt {
			// 100-sample bursts so the onset detector sees a sustained
			// crossing, not a single isolated sample.
			if n >= c && n < c+100 {
				x = amp
			}
		}
		r.WriteSample(x, minSliceN)
	}
	r.StopRecording(loop, minSliceN)
}

// Three clicks at t = 0.2, 0.8, 1.5s in a 2s buffer at 48kHz,
// MIN_SLICE_TIME knob 0.3 (~63ms) -> exactly three slices with starts at
// the click positions.
func Test_Recorder_SliceRecoveryFromThreeClicks(t *testing.T) {
	r := NewRecorder()
	loop := &LoopBuffer{}

	minSliceN := minSliceSamples(0.3, 48000)
	recordClicks(r, loop, 96000, []int32{9600, 38400, 72000}, 0.8, minSliceN)

	require.Len(t, r.slices, 3)
	assert.InDelta(t, 9600, r.slices[0].Start, 400)
	assert.InDelta(t, 38400, r.slices[1].Start, 400)
	assert.InDelta(t, 72000, r.slices[2].Start, 400)

	for _, s := range r.slices {
		assert.True(t, s.Active)
		assert.GreaterOrEqual(t, s.Start, int32(0))
		assert.LessOrEqual(t, s.Start, s.End)
		assert.Less(t, s.End, loop.RecordedLength)
		assert.GreaterOrEqual(t, s.length(), minSliceN)
		assert.InDelta(t, 0.8, s.PeakAmplitude, 0.001)
	}
}

// Rescanning twice with the same MIN_SLICE_TIME must produce
// a bit-identical slice list.
func Test_Recorder_RescanIsIdempotent(t *testing.T) {
	r := NewRecorder()
	loop := &LoopBuffer{}
	minSliceN := minSliceSamples(0.3, 48000)
	recordClicks(r, loop, 96000, []int32{9600, 38400, 72000}, 0.8, minSliceN)

	r.Rescan(loop, minSliceN)
	first := make([]Slice, len(r.slices))
	copy(first, r.slices)

	r.Rescan(loop, minSliceN)
	require.Equal(t, first, r.slices)
}

// Recording silence yields no slices and silent playback.
func Test_Recorder_SilenceProducesNoSlices(t *testing.T) {
	r := NewRecorder()
	loop := &LoopBuffer{}
	minSliceN := minSliceSamples(0.3, 48000)

	r.StartRecording()
	for n := 0; n < 48000; n++ {
		r.WriteSample(0, minSliceN)
	}
	r.StopRecording(loop, minSliceN)

	assert.Empty(t, r.slices)

	vp := NewVoicePlayer()
	vp.SetPoly(4)
	var peak float32
	for i := 0; i < 4096; i++ {
		l, rr := vp.Process(loop, r.slices, 1.0)
		peak = maxF32(peak, maxF32(absF32(l), absF32(rr)))
	}
	// -60 dBFS == 0.001 linear.
	assert.Less(t, peak, float32(0.001))
}

// Sub-minimum-length onsets are dropped, not emitted as degenerate slices.
func Test_Recorder_ShortSlicesDropped(t *testing.T) {
	r := NewRecorder()
	loop := &LoopBuffer{}
	minSliceN := int32(48000) // 1s minimum

	// Two clicks 0.5s apart: the first slice closes after only 0.5s and
	// must be dropped; the second runs to end-of-recording (1.25s) and kept.
	recordClicks(r, loop, 96000, []int32{12000, 36000}, 0.9, minSliceN)

	require.Len(t, r.slices, 1)
	assert.InDelta(t, 36000, r.slices[0].Start, 400)
}

func Test_minSliceTimeSeconds_PiecewiseMapping(t *testing.T) {
	// k <= 0.5: exponential 0.001 * 1000^(2k).
	assert.InDelta(t, 0.001, minSliceTimeSeconds(0), 1e-6)
	assert.InDelta(t, 1.0, minSliceTimeSeconds(0.5), 1e-4)
	// k > 0.5: linear 1 + 4*(2k - 1).
	assert.InDelta(t, 3.0, minSliceTimeSeconds(0.75), 1e-4)
	assert.InDelta(t, 5.0, minSliceTimeSeconds(1.0), 1e-4)
}

// Stopping a recording reseats voice 0 on
// the SCAN-selected slice even though the knob itself never moved.
func Test_Alien4Engine_StopRecordingReseatsVoiceZero(t *testing.T) {
	eng, params, _ := newTestEngine()

	params.Set(ParamRecording, 1)
	in := make([]float32, 96000)
	for i := 9600; i < 9700; i++ {
		in[i] = 0.9
	}
	for i := 72000; i < 72100; i++ {
		in[i] = 0.9
	}
	eng.ProcessBuffer(in, zeroBlock(96000))

	params.Set(ParamRecording, 0)
	eng.ProcessBuffer(make([]float32, 64), zeroBlock(64))

	require.NotEmpty(t, eng.recorder.slices)
	// SCAN defaults to 0 -> voice 0 must sit inside slice 0.
	s0 := eng.recorder.slices[0]
	assert.GreaterOrEqual(t, eng.voices.voices.Position[0], s0.Start)
	assert.LessOrEqual(t, eng.voices.voices.Position[0], s0.End)
}
