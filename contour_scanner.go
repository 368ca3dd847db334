// contour_scanner.go - grayscale/Sobel/scene-change vision pipeline

package main

import (
	"math"
)

// ContourScanner converts camera frames into a closed contour, a cursor
// traversal along it, and five CVs emitted to the CVBus. It runs entirely
// on the vision thread: it owns all its per-frame caches and is
// never touched from audio or render.
type ContourScanner struct {
	params *ParameterStore
	bus    *CVBus
	errs   *OrchestratorErrors

	width, height int

	gray     []float32 // current frame grayscale, row-major
	prevGray []float32 // previous frame grayscale, for scene-change diff
	edges    []float32 // Sobel magnitude of gray

	contour      []point2
	cursor       ContourCursor
	missedFrames int // consecutive frames with no valid contour
	cameraFails  int // consecutive failed camera reads

	env1, env2, env3, env4 decayEnvelope

	lastCVs   [cvSlotCount]float32
	lastMuted [cvSlotCount]bool
}

type point2 struct {
	x, y float32
}

func NewContourScanner(params *ParameterStore, bus *CVBus, errs *OrchestratorErrors) *ContourScanner {
	return &ContourScanner{params: params, bus: bus, errs: errs}
}

// ProcessFrame runs one full pipeline pass. It is the vision thread's
// per-frame entry point (target 30 fps).
func (s *ContourScanner) ProcessFrame(frame *Frame, dt float32) {
	if frame.Width != s.width || frame.Height != s.height {
		oldW, oldH := s.width, s.height
		s.resize(frame.Width, frame.Height)
		s.errs.Report(newVAVError(ErrResolutionChanged, "%dx%d -> %dx%d", oldW, oldH, frame.Width, frame.Height))
	}

	snap := s.params.Snapshot()

	s.toGrayscale(frame)
	sceneChanged := s.sceneChanged(snap.Get(ParamSceneThreshold))
	s.sobel()

	if sceneChanged {
		s.cursor = ContourCursor{}
		s.contour = s.contour[:0]
		s.releaseEnvelopes()
	}

	found := s.selectContour(snap)
	if found {
		s.missedFrames = 0
	} else {
		s.missedFrames++
		maxRetry := int(snap.Get(ParamRetryFrames))
		if maxRetry < 1 {
			maxRetry = 1
		}
		if s.missedFrames > maxRetry {
			s.errs.Report(newVAVError(ErrContourMissing, "no contour for %d frames", s.missedFrames))
			s.publishFrozen()
			return
		}
		// Within retry budget: hold last CV values.
		s.publishFrozen()
		return
	}

	s.advanceCursor(snap, dt)
	s.emitCVs(snap)
}

// OnCameraReadFailure tracks consecutive camera failures; callers should
// invoke this instead of ProcessFrame when a read attempt returned no
// frame. Once the count exceeds max_camera_retry, each further failure
// reports ErrCameraUnavailable; no dead state is kept, and the next
// OnCameraReadSuccess resets the count.
func (s *ContourScanner) OnCameraReadFailure() {
	s.cameraFails++
	maxRetry := int(s.params.Snapshot().Get(ParamMaxCameraRetry))
	if maxRetry < 1 {
		maxRetry = 1
	}
	if s.cameraFails > maxRetry {
		s.errs.Report(newVAVError(ErrCameraUnavailable, "%d consecutive failed reads", s.cameraFails))
	}
}

func (s *ContourScanner) OnCameraReadSuccess() {
	s.cameraFails = 0
}

func (s *ContourScanner) resize(w, h int) {
	s.width, s.height = w, h
	n := w * h
	s.gray = make([]float32, n)
	s.prevGray = make([]float32, n)
	s.edges = make([]float32, n)
	s.cursor = ContourCursor{}
	s.contour = s.contour[:0]
}

func (s *ContourScanner) toGrayscale(frame *Frame) {
	copy(s.prevGray, s.gray)
	// Pix is BGR per the Pull API contract.
	for i := 0; i < s.width*s.height; i++ {
		b := float32(frame.Pix[i*3+0])
		g := float32(frame.Pix[i*3+1])
		r := float32(frame.Pix[i*3+2])
		s.gray[i] = 0.299*r + 0.587*g + 0.114*b
	}
}

// sceneChanged computes mean normalized luminance absdiff against the
// previous frame; returns true (and triggers the caller to reset the
// cursor) when it meets or exceeds threshold.
func (s *ContourScanner) sceneChanged(threshold float32) bool {
	if len(s.prevGray) == 0 {
		return false
	}
	var sum float32
	for i, v := range s.gray {
		d := v - s.prevGray[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	mean := sum / float32(len(s.gray)) / 255.0
	return mean >= threshold
}

// sobel computes 8-bit gradient magnitude into s.edges.
func (s *ContourScanner) sobel() {
	w, h := s.width, s.height
	if w < 3 || h < 3 {
		return
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := s.at(x-1, y-1) - s.at(x+1, y-1) +
				2*s.at(x-1, y) - 2*s.at(x+1, y) +
				s.at(x-1, y+1) - s.at(x+1, y+1)
			gy := s.at(x-1, y-1) + 2*s.at(x, y-1) + s.at(x+1, y-1) -
				s.at(x-1, y+1) - 2*s.at(x, y+1) - s.at(x+1, y+1)
			mag := float32(math.Sqrt(float64(gx*gx + gy*gy)))
			if mag > 255 {
				mag = 255
			}
			s.edges[y*w+x] = mag
		}
	}
}

func (s *ContourScanner) at(x, y int) float32 {
	return s.gray[y*s.width+x]
}

func (s *ContourScanner) releaseEnvelopes() {
	s.env1.release()
	s.env2.release()
	s.env3.release()
	s.env4.release()
}

// publishFrozen re-publishes the last known CV values unchanged, freezing
// downstream consumers at the last good frame.
func (s *ContourScanner) publishFrozen() {
	s.bus.Write(s.lastCVs, s.lastMuted)
}

func (s *ContourScanner) emitCVs(snap *ParamSnapshot) {
	anchorX := snap.Get(ParamAnchorX)
	anchorY := snap.Get(ParamAnchorY)
	gain := rangeGain(snap.Get(ParamRange))

	distX := absF32(s.cursor.u-anchorX) * gain
	distY := absF32(s.cursor.v-anchorY) * gain

	seq1 := clampF32(distX*10, 0, 10)
	seq2 := clampF32(distY*10, 0, 10)

	// Muting swallows the trigger itself, not just its output value, so a
	// muted channel has no internal state change to reveal on unmute.
	if distX > distY && !snap.GetBool(ParamEnv1Muted) {
		s.env1.maybeTrigger()
	}
	if distY > distX && !snap.GetBool(ParamEnv2Muted) {
		s.env2.maybeTrigger()
	}

	e1 := s.env1.tick(snap.Get(ParamEnv1Decay))
	e2 := s.env2.tick(snap.Get(ParamEnv2Decay))
	e3 := s.env3.tick(snap.Get(ParamEnv3Decay))
	s.env4.tick(snap.Get(ParamEnv3Decay)) // ENV4 shares ENV3's decay knob; internal only

	var values [cvSlotCount]float32
	values[CVEnv1] = clampF32(e1*10, 0, 10)
	values[CVEnv2] = clampF32(e2*10, 0, 10)
	values[CVEnv3] = clampF32(e3*10, 0, 10)
	values[CVSeq1] = seq1
	values[CVSeq2] = seq2

	var muted [cvSlotCount]bool
	muted[CVEnv1] = snap.GetBool(ParamEnv1Muted)
	muted[CVEnv2] = snap.GetBool(ParamEnv2Muted)
	muted[CVEnv3] = snap.GetBool(ParamEnv3Muted)
	muted[CVSeq1] = snap.GetBool(ParamSeq1Muted)
	muted[CVSeq2] = snap.GetBool(ParamSeq2Muted)

	for i := range values {
		if muted[i] {
			values[i] = 0
		}
	}

	s.lastCVs = values
	s.lastMuted = muted
	s.bus.Write(values, muted)

	if s.env4.justFired() && featureSet.ExposeEnv4 {
		s.bus.PushTrigger(TriggerEnv4Accel)
	}
	if s.env3.justFired() {
		s.bus.PushTrigger(TriggerEnv3Decel)
	}
}

// rangeGain maps the user range knob (1-120%) to a gain in [2, 8]
// exponentially: smaller range -> larger gain. 100%
// is the unity reference point where the gain bottoms out at 2; the knob's
// 100-120% overshoot region stays clamped there.
func rangeGain(rangePercent float32) float32 {
	if rangePercent < 1 {
		rangePercent = 1
	}
	if rangePercent > 120 {
		rangePercent = 120
	}
	gain := 2 * powF32(4, (100-rangePercent)/99)
	return clampF32(gain, 2, 8)
}

func absF32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
