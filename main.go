// main.go - CLI entry point: flag parsing, engine lifecycle, shutdown

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // registers the system MIDI driver; cgo-only, so building needs rtmidi/ALSA
)

func main() {
	var (
		camera      = pflag.IntP("camera", "c", -1, "camera device index to read frames from (unset disables vision)")
		videoFile   = pflag.String("video-file", "", "read frames from a video file instead of a live camera")
		audioDevice = pflag.StringP("audio-device", "a", "", "substring match against a host audio device name (unset uses system defaults)")
		preset      = pflag.StringP("preset", "p", "", "load parameters and MIDI mapping from this preset file at startup")
		midiMapping = pflag.String("midi-mapping", "", "load a MIDI mapping file independently of --preset")
		midiPort    = pflag.String("midi-port", "", "MIDI input port name (unset uses the first available port)")
		noGUI       = pflag.Bool("no-gui", false, "run headless: no window, a console status line, 'q' to quit")
		renderer    = pflag.String("renderer", "gl", "rendering backend: gl, cpu or null")
		width       = pflag.Int("width", 0, "render width override (0 uses the default)")
		height      = pflag.Int("height", 0, "render height override, must be set together with --width")
		version     = pflag.BoolP("version", "v", false, "print version and compiled features, then exit")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "vav - real-time audiovisual performance instrument\n\n")
		fmt.Fprintf(os.Stderr, "Usage: vav [flags]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *version {
		printFeatures()
		return
	}

	if *noGUI {
		*renderer = "null"
	}
	renderBackend, err := parseRendererBackend(*renderer)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg := EngineConfig{
		VideoFilePath:   *videoFile,
		AudioDeviceName: *audioDevice,
		RendererBackend: renderBackend,
		PresetPath:      *preset,
		MidiMappingPath: *midiMapping,
		MidiPortName:    *midiPort,
	}
	if *camera >= 0 {
		cfg.CameraDevice = fmt.Sprintf("/dev/video%d", *camera)
	}
	if w, h, ok := validateResolutionOverride(*width, *height); ok {
		cfg.RenderWidth, cfg.RenderHeight = w, h
	} else if *width != 0 || *height != 0 {
		log.Fatal("--width and --height must be set together")
	}

	defer midi.CloseDriver()

	engine, err := NewEngine(cfg)
	if err != nil {
		log.Fatal("engine init failed", "err", err)
	}

	if err := engine.Start(); err != nil {
		log.Fatal("engine start failed", "err", err)
	}
	log.Info("vav running", "version", Version, "no_gui", *noGUI, "renderer", *renderer)

	go logEngineErrors(engine)

	if *noGUI {
		runHeadlessConsole(engine)
	} else {
		waitForInterrupt()
	}

	log.Info("shutting down")
	if err := engine.Stop(true); err != nil {
		log.Error("engine stop reported an error", "err", err)
	}
}

// logEngineErrors drains the engine's non-blocking error channel for the
// lifetime of the process (a host must surface these somewhere; the
// console is ours).
func logEngineErrors(e *Engine) {
	for verr := range e.Errors() {
		log.Warn("engine error", "kind", verr.Kind, "msg", verr.Error())
	}
}

func waitForInterrupt() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}

// runHeadlessConsole implements the --no-gui status line: raw terminal mode
// so a single 'q' keypress quits without waiting on a newline, with Ctrl-C
// and SIGTERM handled the same as the windowed path.
func runHeadlessConsole(e *Engine) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fmt.Println("vav: --no-gui, stdin is not a terminal, waiting for SIGINT/SIGTERM")
		waitForInterrupt()
		return
	}

	prevState, err := term.MakeRaw(fd)
	if err != nil {
		log.Warn("failed to enter raw terminal mode, falling back to signal-only quit", "err", err)
		waitForInterrupt()
		return
	}
	defer term.Restore(fd, prevState)

	fmt.Print("vav: --no-gui, press 'q' to quit\r\n")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	keyCh := make(chan byte, 1)
	go func() {
		buf := make([]byte, 1)
		for {
			if _, err := os.Stdin.Read(buf); err != nil {
				return
			}
			keyCh <- buf[0]
		}
	}()

	_ = e
	for {
		select {
		case <-sigCh:
			return
		case b := <-keyCh:
			if b == 'q' || b == 'Q' || b == 3 { // 3 == Ctrl-C under raw mode
				return
			}
		}
	}
}

func parseRendererBackend(name string) (int, error) {
	switch name {
	case "gl":
		return RendererBackendGL, nil
	case "cpu":
		return RendererBackendCPU, nil
	case "null":
		return RendererBackendNull, nil
	default:
		return 0, fmt.Errorf("unknown --renderer %q (want gl, cpu or null)", name)
	}
}

// validateResolutionOverride rejects a partial override: width and height
// must both be zero (use the engine default) or both be set.
func validateResolutionOverride(width, height int) (int, int, bool) {
	if width == 0 && height == 0 {
		return 0, 0, false
	}
	if width == 0 || height == 0 {
		return 0, 0, false
	}
	return width, height, true
}
