package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The mandatory voltage mapping is exact at
// the rail/center points, and measurably different from the abs-value
// historical abs-value variant.
func Test_voltageNormalize_ExactAtRails(t *testing.T) {
	assert.InDelta(t, 0.0, voltageNormalize(-10, 1), 1e-6)
	assert.InDelta(t, 0.5, voltageNormalize(0, 1), 1e-6)
	assert.InDelta(t, 1.0, voltageNormalize(10, 1), 1e-6)
}

func Test_voltageNormalize_RejectsAbsVariant(t *testing.T) {
	// w = +5V, intensity 1: correct mapping gives 0.75; the incorrect
	// abs(w)*0.14 historical variant gives 0.7.
	correct := voltageNormalize(5, 1)
	assert.InDelta(t, 0.75, correct, 1e-6)

	incorrect := absF32(5) * 0.14
	assert.NotEqual(t, incorrect, correct)
	assert.Greater(t, absF32(correct-incorrect), float32(0.01))
}

func Test_voltageNormalize_IntensityScalesAndClamps(t *testing.T) {
	assert.InDelta(t, 1.0, voltageNormalize(10, 2), 1e-6, "overdriven intensity clamps at 1")
	assert.InDelta(t, 0.25, voltageNormalize(0, 0.5), 1e-6)
	assert.InDelta(t, 0.0, voltageNormalize(-10, 3), 1e-6)
}

// BuildAudioTexture emits channel-major C-contiguous rows
// - each channel occupies one contiguous run of render_width samples, in
// channel order. A transposed (sample-major) layout would interleave the
// channel constants below and fail both loops.
func Test_BuildAudioTexture_ChannelMajorLayout(t *testing.T) {
	h := NewAudioHistory()

	block := [4][]float32{}
	for ch := 0; ch < 4; ch++ {
		samples := make([]float32, audioHistorySamples)
		for i := range samples {
			samples[i] = float32(ch + 1)
		}
		block[ch] = samples
	}
	h.Write(block)

	const w = 64
	dst := make([]float32, 4*w)
	BuildAudioTexture(h, w, dst)

	for ch := 0; ch < 4; ch++ {
		row := dst[ch*w : (ch+1)*w]
		for i, v := range row {
			require.Equal(t, float32(ch+1), v, "channel %d sample %d", ch, i)
		}
	}

	// Row-variance vs column-variance detector: with
	// constant-per-channel data laid out channel-major, values within a
	// row never vary, while values down a column always do.
	for i := 0; i < w; i++ {
		colVaries := dst[0*w+i] != dst[3*w+i]
		require.True(t, colVaries)
	}
}

func Test_AudioHistory_RollingWindowKeepsLatestSamples(t *testing.T) {
	h := NewAudioHistory()

	// Two writes: the second must be the tail of the linearized window.
	first := [4][]float32{}
	second := [4][]float32{}
	for ch := 0; ch < 4; ch++ {
		a := make([]float32, 256)
		b := make([]float32, 256)
		for i := range a {
			a[i] = 1
			b[i] = 2
		}
		first[ch] = a
		second[ch] = b
	}
	h.Write(first)
	h.Write(second)

	snap := h.snapshot()
	for ch := 0; ch < 4; ch++ {
		assert.Equal(t, float32(2), snap[ch][audioHistorySamples-1], "latest write must land at the window's tail")
		assert.Equal(t, float32(1), snap[ch][audioHistorySamples-512], "previous write must precede it")
	}
}

func Test_resampleLinear_EndpointsPreserved(t *testing.T) {
	src := []float32{0, 1, 2, 3, 4, 5, 6, 7}
	dst := make([]float32, 3)
	resampleLinear(src, dst)
	assert.Equal(t, float32(0), dst[0])
	assert.InDelta(t, 3.5, dst[1], 1e-6)
	assert.Equal(t, float32(7), dst[2])
}
