// audio_backend.go - audio I/O backend contract shared by the portaudio and headless implementations

package main

const (
	defaultSampleRate = 48000
	defaultBlockSize  = 256

	audioInputChannels  = 4 // four mono inputs mixed down before the Alien4 chain
	audioOutputChannels = 7 // L, R, CV0..CV4
)

// AudioBackend drives an Alien4Engine against a real or simulated device.
// Start/Stop/Close are the only lifecycle points outside the realtime
// callback itself.
type AudioBackend interface {
	Start() error
	Stop() error
	Close() error
}

// mixDownInputs averages the host's four mono input channels into one
// signal feeding the Alien4 chain. dst must
// already be sized for the block; no allocation happens here.
func mixDownInputs(in [][]float32, dst []float32) {
	n := len(dst)
	inv := float32(1) / float32(len(in))
	for i := 0; i < n; i++ {
		var sum float32
		for ch := range in {
			sum += in[ch][i]
		}
		dst[i] = sum * inv
	}
}
