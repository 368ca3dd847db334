// alien4_types.go - Alien4 engine state: loop buffer, slices, voices, grains, chaos

package main

const (
	// LBUF is the loop buffer length: 60 s at 48 kHz.
	LBUF = 2_880_000

	// maxPoly is the largest POLY value the voice arrays are sized for.
	maxPoly = 8

	// numGrains is the fixed grain-pool capacity; no allocation on the
	// audio path means grains are never created or destroyed, only
	// toggled active/inactive.
	numGrains = 16

	// grainBufLen is the granular synthesizer's own ring buffer length.
	grainBufLen = 8192

	// maxSlices bounds the slice list so the record path can append into a
	// pre-allocated backing array without ever growing it mid-callback
	//. Slices closed once the list holds maxSlices entries are dropped.
	maxSlices = 1024

	// delayLineLen is 2 s at 48 kHz per channel.
	delayLineLen = 96_000
)

// Slice marks a contiguous onset-delimited region of the loop buffer.
type Slice struct {
	Start, End    int32
	PeakAmplitude float32
	Active        bool
}

func (s Slice) valid() bool {
	return s.Active && s.Start >= 0 && s.Start <= s.End && s.End < LBUF
}

func (s Slice) length() int32 { return s.End - s.Start }

// Voices are stored structure-of-arrays style for cache locality. Index 0 is
// always the "scanned" voice; 1..N-1 are redistributed randomly.
type Voices struct {
	SliceIndex      [maxPoly]int32
	Position        [maxPoly]int32
	Phase           [maxPoly]float32
	SpeedMultiplier [maxPoly]float32
}

// Grains are likewise structure-of-arrays; Active gates participation so
// the pool never needs to grow or shrink.
type Grains struct {
	Active    [numGrains]bool
	Position  [numGrains]float32
	Size      [numGrains]float32
	Envelope  [numGrains]float32
	Direction [numGrains]float32
	Pitch     [numGrains]float32
	age       [numGrains]float32 // unused; elapsed samples are counted in Envelope
}

// ChaosState is a Lorenz-attractor integrator state.
type ChaosState struct {
	X, Y, Z float32
}

// LoopBuffer is the mono ring written by the record path and read by
// voices; owned exclusively by the audio thread. The temp buffer used
// while recording is a distinct,
// equally pre-allocated array copied in on stop-record.
type LoopBuffer struct {
	Samples        [LBUF]float32
	RecordedLength int32
}

// DelayLine is a fixed-capacity circular buffer for the stereo delay.
type DelayLine struct {
	Buf      [delayLineLen]float32
	WriteIdx int
}
