// alien4_voices.go - SCAN parameter, voice redistribution, polyphonic playback

package main

import "math/rand/v2"

// VoicePlayer reads the loop buffer through POLY independent voices, voice
// 0 being the SCAN-selected "anchor" voice and 1..N-1 redistributed onto
// random active slices.
type VoicePlayer struct {
	voices Voices
	poly   int

	lastScan       float32
	lastScanTarget int32
	scanStale      bool

	// activeScratch is reused by RedistributeVoices so reseating never
	// allocates on the audio path.
	activeScratch [maxSlices]int32
}

func NewVoicePlayer() *VoicePlayer {
	vp := &VoicePlayer{poly: 1}
	vp.voices.SpeedMultiplier[0] = 1
	return vp
}

// InvalidateScan forces the next ApplyScan to reseat voice 0 even if the
// SCAN knob hasn't moved. Called when the slice list itself changed under
// the knob: record stop or a MIN_SLICE_TIME rescan. Voice 0 is re-seated,
// the others redistributed.
func (vp *VoicePlayer) InvalidateScan() {
	vp.scanStale = true
}

// ApplyScan selects a slice by the SCAN knob, reseating voice 0 (and
// redistributing the rest) only when the target changes, the knob moves by
// more than 0.001, or the scan was invalidated.
func (vp *VoicePlayer) ApplyScan(scan float32, slices []Slice) {
	if len(slices) == 0 {
		return
	}
	target := int32(roundF32(scan * float32(len(slices)-1)))
	if int(target) >= len(slices) {
		target = int32(len(slices) - 1)
	}

	if !vp.scanStale && absF32(scan-vp.lastScan) <= 0.001 && target == vp.lastScanTarget {
		return
	}
	vp.lastScan = scan
	vp.lastScanTarget = target
	vp.scanStale = false

	vp.voices.SliceIndex[0] = target
	vp.voices.Position[0] = slices[target].Start
	vp.voices.Phase[0] = 0

	vp.RedistributeVoices(slices)
}

// RedistributeVoices reseats every non-anchor voice slot (1..maxPoly-1,
// whatever the current POLY) onto random active slices
// with speed_multiplier ~ U(-2, +2).
func (vp *VoicePlayer) RedistributeVoices(slices []Slice) {
	nActive := 0
	for i, s := range slices {
		if s.valid() && nActive < maxSlices {
			vp.activeScratch[nActive] = int32(i)
			nActive++
		}
	}
	if nActive == 0 {
		return
	}
	activeIdx := vp.activeScratch[:nActive]
	for v := 1; v < maxPoly; v++ {
		chosen := activeIdx[rand.IntN(len(activeIdx))]
		vp.voices.SliceIndex[v] = chosen
		vp.voices.Position[v] = slices[chosen].Start
		vp.voices.Phase[v] = 0
		vp.voices.SpeedMultiplier[v] = -2 + rand.Float32()*4
	}
}

// SetPoly clamps POLY to [1,8].
func (vp *VoicePlayer) SetPoly(poly int) {
	if poly < 1 {
		poly = 1
	}
	if poly > maxPoly {
		poly = maxPoly
	}
	vp.poly = poly
}

// Process advances every active voice by one sample and returns the
// RMS-preserving stereo-spread mix. loop must have RecordedLength > 0 for playback to occur.
func (vp *VoicePlayer) Process(loop *LoopBuffer, slices []Slice, globalSpeed float32) (l, r float32) {
	if loop.RecordedLength == 0 {
		return 0, 0
	}

	for v := 0; v < vp.poly; v++ {
		voiceSpeed := clampF32(globalSpeed*vp.voices.SpeedMultiplier[v], -16, 16)
		vp.voices.Phase[v] += voiceSpeed

		intAdvance := int32(vp.voices.Phase[v])
		vp.voices.Phase[v] -= float32(intAdvance)
		vp.voices.Position[v] += intAdvance

		sliceIdx := vp.voices.SliceIndex[v]
		var lo, hi int32
		if sliceIdx >= 0 && int(sliceIdx) < len(slices) && slices[sliceIdx].valid() {
			lo, hi = slices[sliceIdx].Start, slices[sliceIdx].End
		} else {
			lo, hi = 0, loop.RecordedLength
		}
		span := hi - lo
		if span <= 0 {
			continue
		}

		pos := vp.voices.Position[v]
		// Wrap inside [lo, hi) rather than assuming pos stays in range:
		// voiceSpeed can be negative or exceed the span in one step.
		pos = lo + ((pos-lo)%span+span)%span
		vp.voices.Position[v] = pos

		next := pos + 1
		if next >= hi {
			next = lo
		}

		frac := vp.voices.Phase[v]
		if frac < 0 {
			frac = -frac
		}
		sample := loop.Samples[pos]*(1-frac) + loop.Samples[next]*frac

		if v%2 == 0 {
			l += sample
		} else {
			r += sample
		}
	}

	// POLY=1 has no odd-indexed voice to route to R at all; the mono
	// contract (POLY=1 means L == R exactly) takes precedence over the
	// even/odd split in that single-voice case.
	if vp.poly == 1 {
		return l, l
	}

	nEven := (vp.poly + 1) / 2
	nOdd := vp.poly / 2
	if nEven > 0 {
		l /= sqrtF32(float32(nEven))
	}
	if nOdd > 0 {
		r /= sqrtF32(float32(nOdd))
	}
	return l, r
}

func roundF32(v float32) float32 {
	if v >= 0 {
		return float32(int32(v + 0.5))
	}
	return float32(int32(v - 0.5))
}
