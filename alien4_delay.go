// alien4_delay.go - stereo delay with chaos modulation

package main

// StereoDelay implements two independent circular delay lines of
// delayLineLen samples (2 s at 48 kHz), each with linear-interpolated
// read, feedback, and slow parameter smoothing to avoid pitch artifacts
// from abrupt time changes.
type StereoDelay struct {
	sampleRate float32
	left, right DelayLine

	smoothedTimeL, smoothedTimeR float32
	smoothedFeedback             float32

	// pendingReverbTap holds the reverb-output feedback tap from the
	// previous block, added into the delay input one block late.
	pendingReverbTapL, pendingReverbTapR float32
}

func NewStereoDelay(sampleRate float32) *StereoDelay {
	return &StereoDelay{sampleRate: sampleRate}
}

// UpdateFromSnapshot smooths time/feedback toward their target values;
// called once per buffer.
func (d *StereoDelay) UpdateFromSnapshot(timeL, timeR, feedback float32) {
	const timeLambda = 0.002
	const fbLambda = 0.005
	d.smoothedTimeL += timeLambda * (timeL - d.smoothedTimeL)
	d.smoothedTimeR += timeLambda * (timeR - d.smoothedTimeR)
	d.smoothedFeedback += fbLambda * (feedback - d.smoothedFeedback)
}

// SetReverbTap stages the next block's reverb-feedback contribution
// (amount = reverb_decay * 0.3).
func (d *StereoDelay) SetReverbTap(l, r float32) {
	d.pendingReverbTapL = l
	d.pendingReverbTapR = r
}

// Process reads and writes both delay lines for one sample, applying any
// chaos-modulated time offset the caller computed for this sample
// (deltaTimeL/R in seconds).
func (d *StereoDelay) Process(inL, inR, deltaTimeL, deltaTimeR float32) (outL, outR float32) {
	outL = d.processLine(&d.left, inL+d.pendingReverbTapL, d.smoothedTimeL+deltaTimeL)
	outR = d.processLine(&d.right, inR+d.pendingReverbTapR, d.smoothedTimeR+deltaTimeR)
	return outL, outR
}

func (d *StereoDelay) processLine(line *DelayLine, input, delayTime float32) float32 {
	delaySamples := delayTime * d.sampleRate
	if delaySamples < 0 {
		delaySamples = 0
	}
	if delaySamples > delayLineLen-2 {
		delaySamples = delayLineLen - 2
	}

	readPos := float32(line.WriteIdx) - delaySamples
	for readPos < 0 {
		readPos += delayLineLen
	}

	i0 := int(readPos) % delayLineLen
	i1 := (i0 + 1) % delayLineLen
	frac := readPos - float32(int(readPos))

	read := line.Buf[i0]*(1-frac) + line.Buf[i1]*frac

	line.Buf[line.WriteIdx] = input + d.smoothedFeedback*read
	line.WriteIdx = (line.WriteIdx + 1) % delayLineLen

	return read
}
