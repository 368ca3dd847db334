// renderer_interface.go - renderer contract shared by the GL, CPU and null backends

package main

// ChannelParams is the per-channel vec4 family the renderer consumes each
// frame: frequencies, intensities, curves, angles, enabled mask, ratios.
type ChannelParams struct {
	Frequencies [4]float32
	Intensities [4]float32
	Curves      [4]float32
	Angles      [4]float32
	Enabled     [4]bool
	Ratios      [4]float32
}

// GlobalParams are the scalar/continuous-morph knobs shared across all
// channels for one frame.
type GlobalParams struct {
	BlendMode       float32 // [0,1] continuous morph across Add/Screen/Difference/ColorDodge
	ColorScheme     float32 // [0,1] continuous morph across three triadic palettes
	Brightness      float32
	BaseHue         float32
	CameraIntensity float32
	UseRegionMap    bool
}

// RenderFrame bundles everything one renderer Draw call needs. AudioTex is
// laid out channel-major, C-contiguous: 4 rows of RenderWidth float32
// samples each, row i holding channel i's resampled ~50ms window.
type RenderFrame struct {
	AudioTex    []float32
	RenderWidth int

	Channels ChannelParams
	Global   GlobalParams

	RegionMap []byte // optional R8, render-resolution; nil disables the region gate
	CameraRGB []byte // optional RGB camera/SD-img2img texture; nil disables layer 5
	CamWidth  int
	CamHeight int
}

// Renderer draws one RenderFrame. Implementations are driven from the GUI
// thread (or an owning render thread) at a fixed target rate; the audio
// thread must never call a Renderer.
type Renderer interface {
	Init(width, height int) error
	Draw(frame RenderFrame) error
	Resize(width, height int) error
	Close() error
}

// Renderer backend selectors.
const (
	RendererBackendGL = iota
	RendererBackendCPU
	RendererBackendNull
)
