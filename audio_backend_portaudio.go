//go:build !headless

// audio_backend_portaudio.go - full-duplex PortAudio backend, 4 mono inputs / 7 outputs

package main

import (
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// PortAudioBackend runs the realtime callback against a PortAudio full
// duplex stream. It owns no DSP state of its own; Alien4Engine already
// pre-allocates every buffer it needs, so the callback here only mixes
// inputs and fans outputs back out.
type PortAudioBackend struct {
	stream     *portaudio.Stream
	engine     *Alien4Engine
	history    *AudioHistory
	sampleRate float64
	blockSize  int

	monoBuf []float32
}

// NewPortAudioBackend opens a full duplex stream on the named devices (or
// the system defaults when name is empty). deviceName matches against
// portaudio.DeviceInfo.Name by substring, case-sensitively, since that is
// how host device names are usually reported.
func NewPortAudioBackend(engine *Alien4Engine, history *AudioHistory, deviceName string, sampleRate float64, blockSize int) (*PortAudioBackend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	inDev, outDev, err := findDuplexDevices(deviceName)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	b := &PortAudioBackend{
		engine:     engine,
		history:    history,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		monoBuf:    make([]float32, blockSize),
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   inDev,
			Channels: audioInputChannels,
			Latency:  inDev.DefaultLowInputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Device:   outDev,
			Channels: audioOutputChannels,
			Latency:  outDev.DefaultLowOutputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: blockSize,
	}

	stream, err := portaudio.OpenStream(params, b.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("portaudio open stream: %w", err)
	}
	b.stream = stream
	return b, nil
}

// callback is the realtime audio path: mix inputs, run the engine, fan out
// the 7 host channels. No allocation, no locking, no syscalls.
func (b *PortAudioBackend) callback(in, out [][]float32) {
	n := len(out[0])
	mono := b.monoBuf[:n]
	mixDownInputs(in, mono)

	if b.history != nil {
		var channels [4][]float32
		copy(channels[:], in)
		b.history.Write(channels)
	}

	b.engine.ProcessBuffer(mono, AudioBlockOutputs{
		L: out[0], R: out[1],
		CV0: out[2], CV1: out[3], CV2: out[4], CV3: out[5], CV4: out[6],
	})
}

func (b *PortAudioBackend) Start() error { return b.stream.Start() }
func (b *PortAudioBackend) Stop() error  { return b.stream.Stop() }

func (b *PortAudioBackend) Close() error {
	if err := b.stream.Close(); err != nil {
		portaudio.Terminate()
		return err
	}
	return portaudio.Terminate()
}

// newAudioBackend is the build-tag-resolved factory engine.go calls; the
// headless variant provides the same signature so orchestration code never
// branches on build tags itself.
func newAudioBackend(engine *Alien4Engine, history *AudioHistory, deviceName string, sampleRate float64, blockSize int) (AudioBackend, error) {
	return NewPortAudioBackend(engine, history, deviceName, sampleRate, blockSize)
}

// findDuplexDevices resolves the named device to both an input and output
// DeviceInfo, using the host defaults when name is empty. A name that
// matches only one direction (or none) is an error.
func findDuplexDevices(name string) (in, out *portaudio.DeviceInfo, err error) {
	if name == "" {
		defaultIn, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, nil, fmt.Errorf("default input device: %w", err)
		}
		defaultOut, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, nil, fmt.Errorf("default output device: %w", err)
		}
		return defaultIn, defaultOut, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, nil, fmt.Errorf("enumerate devices: %w", err)
	}

	for _, d := range devices {
		if !strings.Contains(d.Name, name) {
			continue
		}
		if d.MaxInputChannels >= audioInputChannels {
			in = d
		}
		if d.MaxOutputChannels >= audioOutputChannels {
			out = d
		}
	}
	if in == nil {
		return nil, nil, fmt.Errorf("no input device named %q with >= %d channels", name, audioInputChannels)
	}
	if out == nil {
		return nil, nil, fmt.Errorf("no output device named %q with >= %d channels", name, audioOutputChannels)
	}
	return in, out, nil
}
