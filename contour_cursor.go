// contour_cursor.go - variable-speed contour traversal and envelope generators

package main

import "math"

// ContourCursor tracks the scan cursor's normalized position on the current
// contour plus its accumulated arclength phase.
type ContourCursor struct {
	u, v        float32 // normalized position in [0,1]^2 (frame-relative)
	phase       float32 // accumulated arclength fraction, wraps at 1
	speedWeight float32 // last computed per-point weight, for Δw detection
	hasWeight   bool
}

// decayEnvelope is a one-pole exponential-decay envelope with a retrigger
// guard. Used for ENV1-4.
type decayEnvelope struct {
	value     float32
	fired     bool // set true the tick a trigger was accepted, for trigger-queue emission
	triggered bool
}

// maybeTrigger requests a (re)trigger; swallowed if the value is still
// above the 0.3 retrigger guard. Muting is not checked here: the scanner
// does not call maybeTrigger for a muted channel.
func (e *decayEnvelope) maybeTrigger() {
	if e.value > 0.3 {
		return
	}
	e.triggered = true
}

// tick advances the envelope by one frame using decay time tauSeconds, the
// value ParameterStore carries directly, and
// returns the new value.
func (e *decayEnvelope) tick(tauSeconds float32) float32 {
	e.fired = false
	if e.triggered {
		e.value = 1.0
		e.triggered = false
		e.fired = true
	} else if e.value > 0 {
		// Exponential decay toward 0 over tauSeconds, evaluated once per
		// frame at an assumed ~30 fps cadence (the vision thread's target
		// rate); dt is baked into the per-frame decay factor.
		const frameDt = 1.0 / 30.0
		decayFactor := float32(math.Exp(-frameDt / float64(tauSeconds)))
		e.value *= decayFactor
		if e.value < 1e-5 {
			e.value = 0
		}
	}
	return e.value
}

func (e *decayEnvelope) justFired() bool { return e.fired }

// release clears envelope state on a scene-change reset.
func (e *decayEnvelope) release() {
	e.value = 0
	e.triggered = false
	e.fired = false
}

// selectContour picks the best closed contour from the
// current edge map, resample it, and compute curvature-weighted traversal
// weights. If no contour meets min_length the previous contour is kept, and
// the result reports whether one is held (false only when none ever was).
func (s *ContourScanner) selectContour(snap *ParamSnapshot) bool {
	candidates := extractClosedContours(s.edges, s.width, s.height, 40.0)

	minLen := snap.Get(ParamMinLength)
	anchorX := snap.Get(ParamAnchorX) * float32(s.width)
	anchorY := snap.Get(ParamAnchorY) * float32(s.height)

	var best []point2
	bestDist := float32(math.MaxFloat32)
	for _, c := range candidates {
		if perimeter(c) < minLen {
			continue
		}
		cx, cy := centroid(c)
		d := (cx-anchorX)*(cx-anchorX) + (cy-anchorY)*(cy-anchorY)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}

	if best == nil {
		// Retain previous contour if present.
		return len(s.contour) > 0
	}
	s.contour = best
	return true
}

// advanceCursor computes curvature, per-point weight,
// arclength-weighted cursor advance, and acceleration/deceleration events.
func (s *ContourScanner) advanceCursor(snap *ParamSnapshot, dt float32) {
	n := len(s.contour)
	if n < 5 {
		return
	}

	weights := make([]float32, n)
	for i := 0; i < n; i++ {
		p0 := s.contour[(i-2+n)%n]
		p1 := s.contour[i]
		p2 := s.contour[(i+2+n)%n]
		k := curvature(p0, p1, p2)
		weights[i] = clampF32(0.25+(3.0-0.25)*float32(math.Sqrt(float64(k))), 0.25, 3.0)
	}

	var totalWeight float32
	for _, w := range weights {
		totalWeight += w
	}

	scanTime := snap.Get(ParamScanTime)
	if scanTime <= 0 {
		scanTime = 0.1
	}
	step := dt / scanTime * totalWeight

	idx := int(s.cursor.phase * float32(n))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}

	accumulated := float32(0)
	for accumulated < step {
		accumulated += weights[idx]
		idx = (idx + 1) % n
	}

	currentWeight := weights[idx]
	if s.cursor.hasWeight {
		delta := currentWeight - s.cursor.speedWeight
		if delta < -0.3 && !snap.GetBool(ParamEnv3Muted) {
			s.env3.maybeTrigger()
		}
		if delta > 0.3 {
			s.env4.maybeTrigger()
		}
	}
	s.cursor.speedWeight = currentWeight
	s.cursor.hasWeight = true

	s.cursor.phase = float32(idx) / float32(n)
	p := s.contour[idx]
	s.cursor.u = p.x / float32(s.width)
	s.cursor.v = p.y / float32(s.height)
}

// curvature computes |angle(p0->p1, p1->p2)| / pi, normalized to [0,1].
func curvature(p0, p1, p2 point2) float32 {
	v1x, v1y := p1.x-p0.x, p1.y-p0.y
	v2x, v2y := p2.x-p1.x, p2.y-p1.y

	len1 := float32(math.Sqrt(float64(v1x*v1x + v1y*v1y)))
	len2 := float32(math.Sqrt(float64(v2x*v2x + v2y*v2y)))
	if len1 == 0 || len2 == 0 {
		return 0
	}

	cosTheta := (v1x*v2x + v1y*v2y) / (len1 * len2)
	cosTheta = clampF32(cosTheta, -1, 1)
	angle := float32(math.Acos(float64(cosTheta)))
	return angle / math.Pi
}
