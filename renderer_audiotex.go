// renderer_audiotex.go - rolling audio history -> (4, render_width) C-contiguous texture

package main

import "sync/atomic"

// audioHistorySamples is 50 ms at 48 kHz: the rolling window the renderer
// sees always covers the last ~50 ms of input.
const audioHistorySamples = 2400

type audioHistoryFrame [4][audioHistorySamples]float32

// AudioHistory is a single-writer (audio thread), single-reader (render
// thread) rolling window over the engine's four mono input channels,
// double-buffered the same way CVBus is: the writer linearizes
// its circular buffer into a pre-allocated frame and swaps an atomic index,
// so the render thread never observes a torn window.
type AudioHistory struct {
	circular audioHistoryFrame
	writeIdx int

	frames [2]audioHistoryFrame
	active atomic.Int32
}

func NewAudioHistory() *AudioHistory {
	return &AudioHistory{}
}

// Write appends one audio block's worth of samples per channel and
// publishes a freshly linearized snapshot. channels[i] must all have equal
// length; called once per audio buffer from the engine/orchestrator, never
// from inside Alien4Engine's own DSP loop.
func (h *AudioHistory) Write(channels [4][]float32) {
	n := len(channels[0])
	for ch := 0; ch < 4; ch++ {
		for i := 0; i < n; i++ {
			h.circular[ch][(h.writeIdx+i)%audioHistorySamples] = channels[ch][i]
		}
	}
	h.writeIdx = (h.writeIdx + n) % audioHistorySamples

	next := 1 - h.active.Load()
	dst := &h.frames[next]
	for ch := 0; ch < 4; ch++ {
		for i := 0; i < audioHistorySamples; i++ {
			dst[ch][i] = h.circular[ch][(h.writeIdx+i)%audioHistorySamples]
		}
	}
	h.active.Store(next)
}

func (h *AudioHistory) snapshot() *audioHistoryFrame {
	return &h.frames[h.active.Load()]
}

// BuildAudioTexture resamples the current snapshot to renderWidth samples
// per channel and writes it channel-major, C-contiguous into dst (len must
// be 4*renderWidth). Passing a transposed view here would reintroduce the
// diagonal-stripe artifact.
func BuildAudioTexture(h *AudioHistory, renderWidth int, dst []float32) {
	snap := h.snapshot()
	for ch := 0; ch < 4; ch++ {
		row := dst[ch*renderWidth : (ch+1)*renderWidth]
		resampleLinear(snap[ch][:], row)
	}
}

// voltageNormalize maps a +/-10V waveform sample to a [0,1] display value.
// The (w + 10) * 0.05 form is the mandatory mapping: -10V -> 0, 0V -> 0.5,
// +10V -> 1 at unity intensity; abs-value variants collapse polarity and
// are wrong. The GLSL channel shader implements the identical expression.
func voltageNormalize(w, intensity float32) float32 {
	return clampF32((w+10.0)*0.05*intensity, 0, 1)
}

// resampleLinear maps src (length M) onto dst (length N) with linear
// interpolation over the normalized [0,1] position.
func resampleLinear(src, dst []float32) {
	m := len(src)
	n := len(dst)
	if n == 0 || m == 0 {
		return
	}
	if n == 1 {
		dst[0] = src[0]
		return
	}
	for i := 0; i < n; i++ {
		pos := float32(i) / float32(n-1) * float32(m-1)
		i0 := int(pos)
		if i0 >= m-1 {
			dst[i] = src[m-1]
			continue
		}
		frac := pos - float32(i0)
		dst[i] = src[i0]*(1-frac) + src[i0+1]*frac
	}
}
