package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func Test_rangeGain_boundaries(t *testing.T) {
	assert.InDelta(t, 8.0, rangeGain(1), 0.01)
	assert.InDelta(t, 2.0, rangeGain(100), 0.01)
	assert.InDelta(t, 2.0, rangeGain(120), 0.01)
}

func Test_rangeGain_monotonicDecreasing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Float32Range(1, 119).Draw(t, "a")
		b := rapid.Float32Range(a+1, 120).Draw(t, "b")
		assert.GreaterOrEqual(t, rangeGain(a), rangeGain(b))
	})
}

func Test_decayEnvelope_RetriggerGuard(t *testing.T) {
	var e decayEnvelope
	e.maybeTrigger()
	v := e.tick(1.0)
	assert.Equal(t, float32(1.0), v)

	// A retrigger while value > 0.3 must be ignored.
	e.maybeTrigger()
	assert.False(t, e.triggered, "retrigger above 0.3 must be swallowed")
}

func Test_decayEnvelope_DecaysTowardZero(t *testing.T) {
	var e decayEnvelope
	e.maybeTrigger()
	e.tick(0.3)

	for i := 0; i < 100; i++ {
		e.tick(0.3)
	}
	assert.Less(t, e.value, float32(0.01))
}

// With tau = 1.0s the envelope reads ~0.905 at 0.1s
// (retrigger refused), ~0.27 at 1.3s (retrigger accepted, jumps to 1.0).
func Test_decayEnvelope_RetriggerTimeline(t *testing.T) {
	var e decayEnvelope
	e.maybeTrigger()
	e.tick(1.0)

	// 3 frames at 30fps = 0.1s.
	var v float32
	for i := 0; i < 3; i++ {
		v = e.tick(1.0)
	}
	assert.InDelta(t, 0.905, v, 0.005)

	e.maybeTrigger()
	assert.False(t, e.triggered, "retrigger at 0.905 must be refused")

	// Decay on to 1.3s total (39 frames).
	for i := 3; i < 39; i++ {
		v = e.tick(1.0)
	}
	assert.InDelta(t, 0.27, v, 0.01)

	e.maybeTrigger()
	v = e.tick(1.0)
	assert.Equal(t, float32(1.0), v, "retrigger below 0.3 must be accepted")
}

// anchor_x = 0.5, range = 100% -> gain 2. SEQ1 saturates at
// 10.0V once |cursor.x - 0.5| * 2 >= 1.0 and clamps there.
func Test_ContourScanner_SEQ1ClampsAtTenVolts(t *testing.T) {
	params := NewParameterStore()
	params.Set(ParamRange, 100)
	params.Set(ParamAnchorX, 0.5)
	params.Set(ParamAnchorY, 0.5)

	bus := NewCVBus()
	s := NewContourScanner(params, bus, NewOrchestratorErrors(4))

	s.cursor.u, s.cursor.v = 1.0, 0.5 // distX = 0.5 * 2 = 1.0 -> full scale
	s.emitCVs(params.Snapshot())
	values, _ := bus.Read()
	assert.Equal(t, float32(10), values[CVSeq1])

	s.cursor.u = 0.6 // distX = 0.1 * 2 = 0.2 -> 2V
	s.emitCVs(params.Snapshot())
	values, _ = bus.Read()
	assert.InDelta(t, 2.0, values[CVSeq1], 0.01)
}

// A muted channel swallows the trigger itself; unmuting later must
// not reveal an envelope that was silently running.
func Test_ContourScanner_MutedChannelSwallowsTrigger(t *testing.T) {
	params := NewParameterStore()
	params.Set(ParamEnv1Muted, 1)
	params.Set(ParamAnchorX, 0)
	params.Set(ParamAnchorY, 0.5)

	bus := NewCVBus()
	s := NewContourScanner(params, bus, NewOrchestratorErrors(4))

	// distX > distY would fire ENV1 were it not muted.
	s.cursor.u, s.cursor.v = 1.0, 0.5
	s.emitCVs(params.Snapshot())
	values, _ := bus.Read()
	assert.Equal(t, float32(0), values[CVEnv1])
	assert.Equal(t, float32(0), s.env1.value, "trigger must not reach the envelope state")

	params.Set(ParamEnv1Muted, 0)
	s.emitCVs(params.Snapshot())
	assert.Equal(t, float32(1.0), s.env1.value, "unmuted, the same geometry fires the envelope")
}

func Test_curvature_StraightLineIsZero(t *testing.T) {
	k := curvature(point2{0, 0}, point2{1, 0}, point2{2, 0})
	assert.InDelta(t, 0.0, k, 1e-6)
}

func Test_curvature_SharpTurnApproachesOne(t *testing.T) {
	k := curvature(point2{0, 0}, point2{1, 0}, point2{0, 0})
	assert.InDelta(t, 1.0, k, 1e-4)
}

func Test_extractClosedContours_SquareRing(t *testing.T) {
	const w, h = 20, 20
	edges := make([]float32, w*h)
	for x := 5; x <= 15; x++ {
		edges[5*w+x] = 255
		edges[15*w+x] = 255
	}
	for y := 5; y <= 15; y++ {
		edges[y*w+5] = 255
		edges[y*w+15] = 255
	}

	contours := extractClosedContours(edges, w, h, 128)
	assert.NotEmpty(t, contours, "expected at least one traced boundary")
	for _, c := range contours {
		assert.GreaterOrEqual(t, perimeter(c), float32(30))
	}
}
