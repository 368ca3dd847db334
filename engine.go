// engine.go - top-level orchestrator: thread lifecycle, wiring

package main

import (
	"fmt"
	"log"
	"time"
)

const (
	defaultRenderWidth  = 1920
	defaultRenderHeight = 1080

	visionFrameInterval  = time.Second / 30 // camera/scanner target rate
	renderFrameInterval  = time.Second / 30 // renderer baseline target rate
	audioTexRenderWidth  = 512              // resample target for the audio texture's render_width
)

// EngineConfig collects everything NewEngine needs to construct the full
// pipeline; it is built from CLI flags in main.go.
type EngineConfig struct {
	CameraDevice    string // "" disables the vision thread entirely (audio/render only)
	VideoFilePath   string // non-empty selects VideoFileSource instead of LiveCameraSource
	CameraWidth     int
	CameraHeight    int
	AudioDeviceName string
	SampleRate      float64
	BlockSize       int
	RendererBackend int
	RenderWidth     int
	RenderHeight    int
	PresetPath      string
	MidiMappingPath string
	MidiPortName    string
}

func (c *EngineConfig) applyDefaults() {
	if c.CameraWidth == 0 {
		c.CameraWidth = 640
	}
	if c.CameraHeight == 0 {
		c.CameraHeight = 480
	}
	if c.SampleRate == 0 {
		c.SampleRate = defaultSampleRate
	}
	if c.BlockSize == 0 {
		c.BlockSize = defaultBlockSize
	}
	if c.RenderWidth == 0 {
		c.RenderWidth = defaultRenderWidth
	}
	if c.RenderHeight == 0 {
		c.RenderHeight = defaultRenderHeight
	}
}

// Engine owns every long-lived component and the three background threads:
// vision (contour scanner), audio (Alien4Engine via an
// AudioBackend) and render (Renderer). The audio thread is driven by the
// host's own callback goroutine; vision and render are plain goroutines
// this type starts and stops.
type Engine struct {
	cfg EngineConfig

	params  *ParameterStore
	cvBus   *CVBus
	errs    *OrchestratorErrors
	history *AudioHistory

	alien4       *Alien4Engine
	audioBackend AudioBackend

	camera  *CameraManager
	scanner *ContourScanner

	renderer  Renderer
	audioTex  []float32

	midiMapper  *MidiMapper
	midiStop    func()
	midiMapping *MidiMappingFile

	visionStop chan struct{}
	visionDone chan struct{}
	renderStop chan struct{}
	renderDone chan struct{}
}

// NewEngine constructs every component and opens the audio/camera/renderer
// backends, but does not start any thread yet - call Start for that.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	cfg.applyDefaults()

	e := &Engine{
		cfg:     cfg,
		params:  NewParameterStore(),
		cvBus:   NewCVBus(),
		errs:    NewOrchestratorErrors(64),
		history: NewAudioHistory(),
		audioTex: make([]float32, 4*audioTexRenderWidth),
	}

	e.alien4 = NewAlien4Engine(float32(cfg.SampleRate), e.params, e.cvBus)

	backend, err := newAudioBackend(e.alien4, e.history, cfg.AudioDeviceName, cfg.SampleRate, cfg.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("open audio backend: %w", err)
	}
	e.audioBackend = backend

	if cfg.CameraDevice != "" || cfg.VideoFilePath != "" {
		var src CameraSource
		if cfg.VideoFilePath != "" {
			src = NewVideoFileSource(cfg.VideoFilePath, cfg.CameraWidth, cfg.CameraHeight)
		} else {
			src = NewLiveCameraSource(cfg.CameraDevice, cfg.CameraWidth, cfg.CameraHeight)
		}
		if err := src.Start(); err != nil {
			return nil, fmt.Errorf("start camera source: %w", err)
		}
		e.camera = NewCameraManager(src)
		e.scanner = NewContourScanner(e.params, e.cvBus, e.errs)
	}

	renderer, err := NewRenderer(cfg.RendererBackend)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	if err := renderer.Init(cfg.RenderWidth, cfg.RenderHeight); err != nil {
		return nil, fmt.Errorf("init renderer: %w", err)
	}
	e.renderer = renderer

	e.midiMapper = NewMidiMapper(e.params, e.errs)
	e.midiMapping = &MidiMappingFile{
		CCMappings:   map[ParamKey]MidiTarget{},
		NoteMappings: map[ParamKey]MidiTarget{},
	}

	if cfg.PresetPath != "" {
		if err := LoadParameters(cfg.PresetPath, e.params, e.midiMapper); err != nil {
			log.Printf("engine: preset load failed, keeping defaults: %v", err)
		}
	}
	if cfg.MidiMappingPath != "" {
		if mapping, err := LoadMidiMapping(cfg.MidiMappingPath); err != nil {
			log.Printf("engine: midi mapping load failed: %v", err)
		} else {
			e.midiMapping = mapping
			e.midiMapper.LoadMapping(mapping)
		}
	}

	return e, nil
}

// Errors exposes the non-blocking orchestrator error channel for a host to
// drain and surface to the user.
func (e *Engine) Errors() <-chan *VAVError { return e.errs.C() }

func (e *Engine) Params() *ParameterStore { return e.params }

// Start launches the audio backend and, if configured, the vision and
// render threads, and opens the MIDI input port (best-effort: a missing
// MIDI device is not fatal).
func (e *Engine) Start() error {
	if err := e.audioBackend.Start(); err != nil {
		return fmt.Errorf("start audio backend: %w", err)
	}

	if e.scanner != nil {
		e.visionStop = make(chan struct{})
		e.visionDone = make(chan struct{})
		go e.runVision()
	}

	e.renderStop = make(chan struct{})
	e.renderDone = make(chan struct{})
	go e.runRender()

	if stop, err := e.midiMapper.Listen(e.cfg.MidiPortName); err != nil {
		log.Printf("engine: midi input unavailable: %v", err)
	} else {
		e.midiStop = stop
	}

	return nil
}

// runVision is the vision thread: 30Hz camera read -> contour
// scanner -> CVBus write. It never touches the audio path or the renderer.
func (e *Engine) runVision() {
	defer close(e.visionDone)

	ticker := time.NewTicker(visionFrameInterval)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-e.visionStop:
			return
		case now := <-ticker.C:
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			frame, err := e.camera.Next()
			if err != nil {
				e.scanner.OnCameraReadFailure()
				continue
			}
			e.scanner.OnCameraReadSuccess()
			e.scanner.ProcessFrame(frame, dt)
		}
	}
}

// runRender is the render thread: builds a RenderFrame
// from the current parameter snapshot and the rolling audio texture, and
// draws it at a fixed target rate. The audio thread never calls this.
func (e *Engine) runRender() {
	defer close(e.renderDone)

	ticker := time.NewTicker(renderFrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.renderStop:
			return
		case <-ticker.C:
			frame := e.buildRenderFrame()
			if err := e.renderer.Draw(frame); err != nil {
				e.errs.Report(newVAVError(ErrRenderFrameFailed, "%v", err))
			}
		}
	}
}

func (e *Engine) buildRenderFrame() RenderFrame {
	snap := e.params.Snapshot()

	BuildAudioTexture(e.history, audioTexRenderWidth, e.audioTex)

	var channels ChannelParams
	for ch := 0; ch < 4; ch++ {
		channels.Frequencies[ch] = snap.Get(paramChannelFrequency(ch))
		channels.Intensities[ch] = snap.Get(paramChannelIntensity(ch))
		channels.Curves[ch] = snap.Get(paramChannelCurve(ch))
		channels.Angles[ch] = snap.Get(paramChannelAngle(ch))
		channels.Enabled[ch] = snap.GetBool(paramChannelEnabled(ch))
		channels.Ratios[ch] = snap.Get(paramChannelRatio(ch))
	}

	global := GlobalParams{
		BlendMode:       snap.Get(ParamBlendMode),
		ColorScheme:     snap.Get(ParamColorScheme),
		Brightness:      snap.Get(ParamBrightness),
		BaseHue:         snap.Get(ParamBaseHue),
		CameraIntensity: snap.Get(ParamCameraIntensity),
		UseRegionMap:    snap.GetBool(ParamUseRegionMap),
	}

	return RenderFrame{
		AudioTex:    e.audioTex,
		RenderWidth: audioTexRenderWidth,
		Channels:    channels,
		Global:      global,
	}
}

// Stop tears the engine down in dependency order: vision first
// (finishing its current frame), then the audio callback observes the stop
// request at the next block boundary, then render finishes its current
// frame, then resources are released. waitForThreads lets a GUI skip
// joining when it must stay responsive; the goroutines self-detach by
// simply running until their stop channel closes, so skipping the join is
// always safe, just not synchronous.
func (e *Engine) Stop(waitForThreads bool) error {
	if e.midiStop != nil {
		e.midiStop()
	}

	if e.visionStop != nil {
		close(e.visionStop)
		if waitForThreads {
			<-e.visionDone
		}
	}

	if err := e.audioBackend.Stop(); err != nil {
		log.Printf("engine: audio backend stop: %v", err)
	}

	if e.renderStop != nil {
		close(e.renderStop)
		if waitForThreads {
			<-e.renderDone
		}
	}

	var firstErr error
	if e.camera != nil {
		if err := e.camera.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := e.audioBackend.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.renderer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// SavePreset writes the current parameters and MIDI mapping to path.
func (e *Engine) SavePreset(path string) error {
	return SaveParametersToFile(path, e.params, e.midiMapping)
}
