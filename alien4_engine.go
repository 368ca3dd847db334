// alien4_engine.go - Alien4 signal chain orchestration: EQ -> Chaos -> Delay -> Grain -> Reverb -> Feedback

package main

// AudioBlockOutputs is the host-facing 7-channel output of one ProcessBuffer
// call: stereo audio plus the five CV channels, in host output order
// (L, R, CV0..CV4).
type AudioBlockOutputs struct {
	L, R                    []float32
	CV0, CV1, CV2, CV3, CV4 []float32
}

// Alien4Engine owns every piece of DSP state exclusively on the audio
// thread: nothing here is touched outside
// ProcessBuffer except through the ParameterStore/CVBus snapshots.
type Alien4Engine struct {
	sampleRate float32
	params     *ParameterStore
	cvBus      *CVBus

	recorder *Recorder
	loop     LoopBuffer
	voices   *VoicePlayer

	eqL, eqR *ThreeBandEQ
	chaos    *ChaosGenerator
	delay    *StereoDelay
	grainL   *GranularSynth
	grainR   *GranularSynth
	reverb   *FreeverbReverb

	wasRecording     bool
	lastMinSliceTime float32
	curMinSliceN     int32

	pendingReverbL, pendingReverbR float32
	curFeedbackL, curFeedbackR     float32
	lastOutL, lastOutR             float32

	snap      *ParamSnapshot
	heldCV    [cvSlotCount]float32
	heldMuted [cvSlotCount]bool

	// triggerScratch backs the per-buffer trigger drain; sized to the
	// queue's own capacity so DrainTriggers never grows it.
	triggerScratch []TriggerKind
	lastTriggers   []TriggerKind
}

// NewAlien4Engine pre-allocates every buffer the audio path will ever
// touch; nothing below allocates after construction.
func NewAlien4Engine(sampleRate float32, params *ParameterStore, cvBus *CVBus) *Alien4Engine {
	return &Alien4Engine{
		sampleRate: sampleRate,
		params:     params,
		cvBus:      cvBus,
		recorder:   NewRecorder(),
		voices:     NewVoicePlayer(),
		eqL:        NewThreeBandEQ(sampleRate),
		eqR:        NewThreeBandEQ(sampleRate),
		chaos:      NewChaosGenerator(),
		delay:      NewStereoDelay(sampleRate),
		grainL:     NewGranularSynth(sampleRate),
		grainR:     NewGranularSynth(sampleRate),
		reverb:     NewFreeverbReverb(),

		triggerScratch: make([]TriggerKind, 0, triggerQueueCapacity),
	}
}

// beginBuffer absorbs one ParameterStore snapshot and one CVBus frame,
// pushing every change into the per-DSP smoothers exactly once per
// buffer. It is the only place in the audio path that reads shared state.
func (e *Alien4Engine) beginBuffer() {
	snap := e.params.Snapshot()
	e.snap = snap

	recording := snap.GetBool(ParamRecording)
	minSliceKnob := snap.Get(ParamMinSliceTime)
	e.curMinSliceN = minSliceSamples(minSliceKnob, e.sampleRate)

	if recording && !e.wasRecording {
		e.recorder.StartRecording()
	}
	if !recording && e.wasRecording {
		e.recorder.StopRecording(&e.loop, e.curMinSliceN)
		e.voices.InvalidateScan()
		e.voices.RedistributeVoices(e.recorder.slices)
	}
	e.wasRecording = recording

	mst := minSliceTimeSeconds(minSliceKnob)
	if !recording && absF32(mst-e.lastMinSliceTime) > 0.001 {
		e.recorder.Rescan(&e.loop, e.curMinSliceN)
		e.voices.InvalidateScan()
		e.voices.RedistributeVoices(e.recorder.slices)
	}
	e.lastMinSliceTime = mst

	e.voices.SetPoly(int(snap.Get(ParamPoly)))
	e.voices.ApplyScan(snap.Get(ParamScan), e.recorder.slices)

	e.eqL.UpdateFromSnapshot(snap.Get(ParamEQLowGainDB), snap.Get(ParamEQMidGainDB), snap.Get(ParamEQHighGainDB))
	e.eqR.UpdateFromSnapshot(snap.Get(ParamEQLowGainDB), snap.Get(ParamEQMidGainDB), snap.Get(ParamEQHighGainDB))

	e.chaos.Configure(snap.GetBool(ParamChaosStepped), snap.Get(ParamChaosStepPeriodMS), e.sampleRate)

	e.delay.UpdateFromSnapshot(snap.Get(ParamDelayTimeL), snap.Get(ParamDelayTimeR), snap.Get(ParamDelayFeedback))

	reverbDecay := snap.Get(ParamReverbDecay)
	e.delay.SetReverbTap(e.pendingReverbL*reverbDecay*0.3, e.pendingReverbR*reverbDecay*0.3)

	e.curFeedbackL = tanhF32(e.lastOutL*0.3) / 0.3
	e.curFeedbackR = tanhF32(e.lastOutR*0.3) / 0.3

	values, muted := e.cvBus.Read()
	e.heldCV = values
	e.heldMuted = muted

	// Drain the trigger queue exactly once per buffer. The block-held CV
	// path already carries the envelope values themselves; the drained
	// events are kept for consumers that want edge information (a future
	// gate output, the ENV4 internal route) and to keep the SPSC ring's
	// single-consumer discipline honest.
	e.lastTriggers = e.cvBus.DrainTriggers(e.triggerScratch)
}

// processSample runs the full EQ -> Chaos -> Delay -> Grain -> Reverb ->
// Feedback chain for one input sample and returns the stereo output.
func (e *Alien4Engine) processSample(monoIn float32) (outL, outR float32) {
	snap := e.snap

	if e.wasRecording {
		e.recorder.WriteSample(monoIn, e.curMinSliceN)
	}

	vl, vr := e.voices.Process(&e.loop, e.recorder.slices, snap.Get(ParamGlobalSpeed))

	mixAmount := snap.Get(ParamMixAmount)
	mixL := monoIn*(1-mixAmount) + vl*mixAmount + e.curFeedbackL
	mixR := monoIn*(1-mixAmount) + vr*mixAmount + e.curFeedbackR

	eqL := e.eqL.Process(mixL)
	eqR := e.eqR.Process(mixR)

	chaosOut := e.chaos.Tick(snap.Get(ParamChaosRate))

	var deltaTimeL, deltaTimeR float32
	if snap.GetBool(ParamDelayChaosEnabled) {
		delta := chaosOut * snap.Get(ParamDelayChaosAmount) * 0.05
		deltaTimeL, deltaTimeR = delta, delta
	}
	dL, dR := e.delay.Process(eqL, eqR, deltaTimeL, deltaTimeR)

	grainEnabled := snap.GetBool(ParamGrainEnabled)
	gL := e.grainL.Process(dL, snap.Get(ParamGrainSizeMS), snap.Get(ParamGrainDensity), snap.Get(ParamGrainPosition), chaosOut, grainEnabled)
	gR := e.grainR.Process(dR, snap.Get(ParamGrainSizeMS), snap.Get(ParamGrainDensity), snap.Get(ParamGrainPosition), chaosOut, grainEnabled)

	var chaosDeltaFeedback float32
	if snap.GetBool(ParamReverbChaosEnabled) {
		chaosDeltaFeedback = chaosOut * snap.Get(ParamReverbChaosAmount) * 0.5
	}
	rL, rR := e.reverb.Process(gL, gR, snap.Get(ParamReverbDecay), snap.Get(ParamReverbRoomSize), snap.Get(ParamReverbDamping), chaosDeltaFeedback)
	e.pendingReverbL, e.pendingReverbR = rL, rR

	mix := snap.Get(ParamReverbMix)
	outL = gL*(1-mix) + rL*mix
	outR = gR*(1-mix) + rR*mix

	return outL, outR
}

// ProcessBuffer runs one audio block: one snapshot/CV absorb, then a tight
// per-sample loop with no allocation, no locking, no syscalls.
func (e *Alien4Engine) ProcessBuffer(in []float32, out AudioBlockOutputs) {
	e.beginBuffer()

	cv := [cvSlotCount]float32{}
	for i := 0; i < int(cvSlotCount); i++ {
		if e.heldMuted[i] {
			cv[i] = 0
		} else {
			cv[i] = clampF32(e.heldCV[i], 0, 10) / 10
		}
	}

	n := len(in)
	for i := 0; i < n; i++ {
		l, r := e.processSample(in[i])
		out.L[i] = l
		out.R[i] = r
		out.CV0[i] = cv[CVEnv1]
		out.CV1[i] = cv[CVEnv2]
		out.CV2[i] = cv[CVEnv3]
		out.CV3[i] = cv[CVSeq1]
		out.CV4[i] = cv[CVSeq2]
	}

	if n > 0 {
		e.lastOutL = out.L[n-1]
		e.lastOutR = out.R[n-1]
	}
}
