// alien4_reverb.go - Freeverb-style reverb: comb+allpass per channel, early reflections

package main

// Comb delay sizes in samples, L channel; R is each L size + 23 for
// stereo spread. These four constants are empirical tuning and are
// preserved bit-exactly.
var reverbCombSizesL = [4]int{1557, 1617, 1491, 1422}

const reverbStereoSpread = 23

// Allpass sizes, L channel; R uses the same +23 spread.
var reverbAllpassSizesL = [2]int{556, 441}

// Early-reflection tap offsets (samples) and gains, scaled by room_size
//. R offsets each add the listed extra samples.
var earlyTapOffsetsL = [4]float32{400, 350, 380, 420}
var earlyTapOffsetsRExtra = [4]float32{45, 40, 45, 55}
var earlyTapGains = [4]float32{0.15, 0.12, 0.13, 0.11}

type reverbComb struct {
	buf      []float32
	writeIdx int
	filtered float32 // lowpass-damped feedback state
}

func newReverbComb(size int) *reverbComb {
	return &reverbComb{buf: make([]float32, size)}
}

func (c *reverbComb) process(input, feedback, dampingCoeff float32) float32 {
	out := c.buf[c.writeIdx]
	c.filtered += (out - c.filtered) * dampingCoeff
	c.buf[c.writeIdx] = input + c.filtered*feedback
	c.writeIdx = (c.writeIdx + 1) % len(c.buf)
	return out
}

// tap reads the comb's delay buffer at a fixed offset behind the write
// pointer, used for the early-reflection layer.
func (c *reverbComb) tap(offset int) float32 {
	n := len(c.buf)
	idx := ((c.writeIdx-offset)%n + n) % n
	return c.buf[idx]
}

type reverbAllpass struct {
	buf      []float32
	writeIdx int
}

func newReverbAllpass(size int) *reverbAllpass {
	return &reverbAllpass{buf: make([]float32, size)}
}

func (a *reverbAllpass) process(input float32) float32 {
	bufOut := a.buf[a.writeIdx]
	const gain = 0.5
	output := -input + bufOut
	a.buf[a.writeIdx] = input + bufOut*gain
	a.writeIdx = (a.writeIdx + 1) % len(a.buf)
	return output
}

// FreeverbChannel runs the 4-comb + 2-allpass chain for one stereo side.
type FreeverbChannel struct {
	combs    [4]*reverbComb
	allpasss [2]*reverbAllpass
	offsets  [4]int // unused; Process takes the early-reflection offsets from earlyTapOffsetsL/earlyTapOffsetsRExtra
}

func newFreeverbChannel(right bool) *FreeverbChannel {
	f := &FreeverbChannel{}
	for i, size := range reverbCombSizesL {
		if right {
			size += reverbStereoSpread
		}
		f.combs[i] = newReverbComb(size)
	}
	for i, size := range reverbAllpassSizesL {
		if right {
			size += reverbStereoSpread
		}
		f.allpasss[i] = newReverbAllpass(size)
	}
	return f
}

// Process runs the comb bank in parallel, sums it, then the allpass chain
// in series, and adds the early-reflection taps.
func (f *FreeverbChannel) Process(input, feedback, dampingCoeff, roomSize float32, right bool) float32 {
	var combSum float32
	for _, c := range f.combs {
		combSum += c.process(input, feedback, dampingCoeff)
	}
	combSum *= 0.25

	out := combSum
	for _, a := range f.allpasss {
		out = a.process(out)
	}

	var early float32
	for i := 0; i < 4; i++ {
		offset := earlyTapOffsetsL[i]
		if right {
			offset += earlyTapOffsetsRExtra[i]
		}
		taps := int(roomSize * offset)
		if taps < 1 {
			taps = 1
		}
		early += f.combs[i].tap(taps) * roomSize * earlyTapGains[i]
	}

	return out + early
}

// FreeverbReverb owns both stereo channels. The chaos-modulated feedback
// coefficient is computed afresh on each Process call and not stored.
type FreeverbReverb struct {
	left, right *FreeverbChannel

	smoothedDamping float32
}

func NewFreeverbReverb() *FreeverbReverb {
	return &FreeverbReverb{
		left:  newFreeverbChannel(false),
		right: newFreeverbChannel(true),
	}
}

// Process computes one stereo output sample. chaosDeltaFeedback is
// chaos_out * amount * 0.5 when reverb_chaos_enabled, else 0.
func (r *FreeverbReverb) Process(inL, inR, decay, roomSize, damping, chaosDeltaFeedback float32) (outL, outR float32) {
	feedback := clampF32(0.5+decay*0.485+chaosDeltaFeedback, 0, 0.995)
	dampingCoeff := clampF32(damping, 0.05, 0.95)

	outL = r.left.Process(inL, feedback, dampingCoeff, roomSize, false)
	outR = r.right.Process(inR, feedback, dampingCoeff, roomSize, true)
	return outL, outR
}
