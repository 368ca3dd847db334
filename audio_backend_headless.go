//go:build headless

// audio_backend_headless.go - headless audio backend, no device required

package main

import "time"

// HeadlessAudioBackend drives the engine against silent input on its own
// goroutine, discarding output. Used for CI and for deployments with no
// attached audio hardware; the engine still runs so CVs keep flowing to
// anything reading ParameterStore/CVBus (e.g. a render-only pipeline).
type HeadlessAudioBackend struct {
	engine    *Alien4Engine
	history   *AudioHistory
	blockSize int
	period    time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewHeadlessAudioBackend(engine *Alien4Engine, history *AudioHistory, sampleRate float64, blockSize int) *HeadlessAudioBackend {
	return &HeadlessAudioBackend{
		engine:    engine,
		history:   history,
		blockSize: blockSize,
		period:    time.Duration(float64(blockSize) / sampleRate * float64(time.Second)),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (b *HeadlessAudioBackend) Start() error {
	go b.run()
	return nil
}

func (b *HeadlessAudioBackend) run() {
	defer close(b.done)

	in := make([]float32, b.blockSize)
	out := AudioBlockOutputs{
		L: make([]float32, b.blockSize), R: make([]float32, b.blockSize),
		CV0: make([]float32, b.blockSize), CV1: make([]float32, b.blockSize), CV2: make([]float32, b.blockSize),
		CV3: make([]float32, b.blockSize), CV4: make([]float32, b.blockSize),
	}
	silentChannels := [4][]float32{in, in, in, in}

	ticker := time.NewTicker(b.period)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			if b.history != nil {
				b.history.Write(silentChannels)
			}
			b.engine.ProcessBuffer(in, out)
		}
	}
}

func (b *HeadlessAudioBackend) Stop() error {
	close(b.stop)
	<-b.done
	return nil
}

func (b *HeadlessAudioBackend) Close() error { return nil }

// newAudioBackend is the build-tag-resolved factory engine.go calls; see
// audio_backend_portaudio.go's counterpart for the real-device variant.
// deviceName is accepted but unused - there is no device to select here.
func newAudioBackend(engine *Alien4Engine, history *AudioHistory, deviceName string, sampleRate float64, blockSize int) (AudioBackend, error) {
	return NewHeadlessAudioBackend(engine, history, sampleRate, blockSize), nil
}
