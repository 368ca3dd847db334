// alien4_record.go - record path, onset/slice detection, MIN_SLICE_TIME rescans

package main

// onsetThreshold is the fixed envelope-crossing threshold for slice
// detection.
const onsetThreshold = 0.5

// Recorder owns the temp buffer written while recording=true, the onset
// detector's running state, and the finalized slice list. It is part of
// the audio thread's exclusively-owned state.
type Recorder struct {
	temp         [LBUF]float32
	tempLen      int32
	prevAbs      float32
	recording    bool
	openSlice    Slice
	hasOpenSlice bool

	slices []Slice

	lastMinSliceTime float32
	lastScan         float32
}

func NewRecorder() *Recorder {
	return &Recorder{slices: make([]Slice, 0, maxSlices)}
}

// WriteSample feeds one input sample to the record path while recording is
// active, running onset detection inline.
func (r *Recorder) WriteSample(x float32, minSliceSamples int32) {
	if r.tempLen >= LBUF {
		return
	}
	r.temp[r.tempLen] = x

	abs := x
	if abs < 0 {
		abs = -abs
	}

	if r.prevAbs < onsetThreshold && abs >= onsetThreshold {
		r.closeSlice(r.tempLen, minSliceSamples)
		r.openSlice = Slice{Start: r.tempLen, End: r.tempLen, PeakAmplitude: abs, Active: true}
		r.hasOpenSlice = true
	} else if r.hasOpenSlice && abs > r.openSlice.PeakAmplitude {
		r.openSlice.PeakAmplitude = abs
	}

	if r.hasOpenSlice {
		r.openSlice.End = r.tempLen
	}

	r.prevAbs = abs
	r.tempLen++
}

// closeSlice finalizes the currently open slice at boundary n (the next
// onset's start, or the recording length), dropping it if it's shorter than
// min_slice_samples. End lands on n-1 so a slice never reaches the
// sample the next slice starts on, and the final slice stays strictly
// inside [0, recorded_length).
func (r *Recorder) closeSlice(n int32, minSliceSamples int32) {
	if !r.hasOpenSlice {
		return
	}
	if n > r.openSlice.Start {
		r.openSlice.End = n - 1
	}
	if r.openSlice.length() >= minSliceSamples && len(r.slices) < maxSlices {
		r.slices = append(r.slices, r.openSlice)
	}
	r.hasOpenSlice = false
}

// StartRecording resets the temp buffer and onset state.
func (r *Recorder) StartRecording() {
	r.recording = true
	r.tempLen = 0
	r.prevAbs = 0
	r.hasOpenSlice = false
	r.slices = r.slices[:0]
}

// StopRecording copies temp -> loop, finalizes the last slice, and reports
// the recorded length.
func (r *Recorder) StopRecording(loop *LoopBuffer, minSliceSamples int32) {
	r.recording = false
	r.closeSlice(r.tempLen, minSliceSamples)

	copy(loop.Samples[:r.tempLen], r.temp[:r.tempLen])
	loop.RecordedLength = r.tempLen
}

// Rescan performs a full linear re-detection of slices over the loop
// buffer. Runs at most once per buffer, triggered by the
// engine when MIN_SLICE_TIME changes by more than 0.001s between buffers
// while not recording.
func (r *Recorder) Rescan(loop *LoopBuffer, minSliceSamples int32) {
	r.slices = r.slices[:0]
	r.hasOpenSlice = false
	prevAbs := float32(0)

	for n := int32(0); n < loop.RecordedLength; n++ {
		x := loop.Samples[n]
		abs := x
		if abs < 0 {
			abs = -abs
		}
		if prevAbs < onsetThreshold && abs >= onsetThreshold {
			r.closeSlice(n, minSliceSamples)
			r.openSlice = Slice{Start: n, End: n, PeakAmplitude: abs, Active: true}
			r.hasOpenSlice = true
		} else if r.hasOpenSlice && abs > r.openSlice.PeakAmplitude {
			r.openSlice.PeakAmplitude = abs
		}
		if r.hasOpenSlice {
			r.openSlice.End = n
		}
		prevAbs = abs
	}
	r.closeSlice(loop.RecordedLength, minSliceSamples)
}

// minSliceSamples converts the MIN_SLICE_TIME knob to a
// sample count at the given sample rate.
func minSliceSamples(knob float32, sampleRate float32) int32 {
	return int32(minSliceTimeSeconds(knob) * sampleRate)
}

// minSliceTimeSeconds converts the MIN_SLICE_TIME knob position to
// seconds: exponential 0.001-1.0s over the lower half, linear 1.0-5.0s
// over the upper half.
func minSliceTimeSeconds(k float32) float32 {
	if k <= 0.5 {
		return 0.001 * powF32(1000, 2*k)
	}
	return 1.0 + 4.0*(2*k-1)
}
