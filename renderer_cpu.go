//go:build !headless

// renderer_cpu.go - CPU software fallback renderer, ebiten-hosted

package main

import (
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// cpuInternalWidth/Height trade resolution for the fact that this path runs
// entirely on the CPU in Go; ebiten upscales the result to the window.
const (
	cpuInternalWidth  = 480
	cpuInternalHeight = 270
)

// CPURenderer reimplements Pass 1 and Pass 3 of the pipeline in plain Go at
// a reduced internal resolution, hosted in an ebiten window rather than
// go-gl. Pass 2's per-channel rotation is not performed.
type CPURenderer struct {
	mu     sync.Mutex
	img    *ebiten.Image
	pixels []byte // RGBA, cpuInternalWidth * cpuInternalHeight * 4

	windowW, windowH int
	started          bool
}

func newCPURenderer() (*CPURenderer, error) {
	return &CPURenderer{
		pixels: make([]byte, cpuInternalWidth*cpuInternalHeight*4),
	}, nil
}

func (r *CPURenderer) Init(width, height int) error {
	r.windowW, r.windowH = width, height
	if r.started {
		return nil
	}
	r.started = true
	r.img = ebiten.NewImage(cpuInternalWidth, cpuInternalHeight)

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("VAV")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	go func() {
		_ = ebiten.RunGame(&cpuGameAdapter{r: r})
	}()
	return nil
}

func (r *CPURenderer) Resize(width, height int) error {
	r.windowW, r.windowH = width, height
	return nil
}

func (r *CPURenderer) Close() error { return nil }

// cpuGameAdapter implements ebiten.Game so CPURenderer's own Draw can keep
// the Renderer-interface signature (RenderFrame in, error out).
type cpuGameAdapter struct {
	r *CPURenderer
}

func (a *cpuGameAdapter) Update() error { return nil }

func (a *cpuGameAdapter) Draw(screen *ebiten.Image) {
	r := a.r
	r.mu.Lock()
	r.img.WritePixels(r.pixels)
	r.mu.Unlock()

	op := &ebiten.DrawImageOptions{}
	sx := float64(r.windowW) / float64(cpuInternalWidth)
	sy := float64(r.windowH) / float64(cpuInternalHeight)
	op.GeoM.Scale(sx, sy)
	screen.DrawImage(r.img, op)
}

func (a *cpuGameAdapter) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.r.windowW, a.r.windowH
}

// Draw computes one frame of the pipeline (without rotation) in software and stages it
// for the next ebiten tick; errors here render the previous frame by
// simply not overwriting r.pixels.
func (r *CPURenderer) Draw(frame RenderFrame) error {
	if frame.RenderWidth == 0 || len(frame.AudioTex) < 4*frame.RenderWidth {
		return nil
	}

	next := make([]byte, cpuInternalWidth*cpuInternalHeight*4)
	for y := 0; y < cpuInternalHeight; y++ {
		v := float32(y) / float32(cpuInternalHeight-1)
		for x := 0; x < cpuInternalWidth; x++ {
			u := float32(x) / float32(cpuInternalWidth-1)
			rgb := shadePixel(u, v, frame)
			off := (y*cpuInternalWidth + x) * 4
			next[off] = toByte(rgb[0])
			next[off+1] = toByte(rgb[1])
			next[off+2] = toByte(rgb[2])
			next[off+3] = 255
		}
	}

	r.mu.Lock()
	r.pixels = next
	r.mu.Unlock()
	return nil
}

func toByte(v float32) byte {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return byte(v * 255)
}

// shadePixel runs the per-channel and blend stages for a single uv
// coordinate, mirroring renderer_shaders.go's Pass 1 and Pass 3 GLSL in Go;
// the Pass 2 rotation is not applied.
func shadePixel(u, v float32, frame RenderFrame) [3]float32 {
	const compress = 3.0
	const brightnessFloor = 0.25

	var regionChannel = -1
	if frame.Global.UseRegionMap && len(frame.RegionMap) > 0 {
		rw := cpuInternalWidth
		rh := cpuInternalHeight
		rx := int(u * float32(rw-1))
		ry := int(v * float32(rh-1))
		idx := ry*rw + rx
		if idx >= 0 && idx < len(frame.RegionMap) {
			regionChannel = int(frame.RegionMap[idx])
		}
	}

	var accum [3]float32
	for ch := 0; ch < 4; ch++ {
		if !frame.Channels.Enabled[ch] {
			continue
		}
		if regionChannel != -1 && regionChannel != ch {
			continue
		}

		yFromCenter := (v - 0.5) * 2
		xSample := u
		curve := frame.Channels.Curves[ch]
		if curve > 0.001 {
			xSample = fractF32(u + yFromCenter*float32(math.Sin(float64(u)*math.Pi))*curve*2.0)
		}
		xSample *= frame.Channels.Ratios[ch] / compress

		w := sampleAudioTex(frame.AudioTex, frame.RenderWidth, ch, xSample)
		n := voltageNormalize(w, frame.Channels.Intensities[ch])

		hue := fractF32(log2F32(frame.Channels.Frequencies[ch]/261.63) + frame.Global.BaseHue)
		hue = fractF32(hue + colorSchemeShift(frame.Global.ColorScheme))

		// The CPU fallback skips Pass 2's per-channel rotation (it has no
		// intermediate FBO to resample); GL is the only backend that rotates.
		rgb := hsvToRGB(hue, 1, n)
		accum = blendMorph(accum, rgb, frame.Global.BlendMode)
	}

	if frame.Global.UseRegionMap && len(frame.CameraRGB) > 0 {
		cam := sampleCameraRGB(frame.CameraRGB, frame.CamWidth, frame.CamHeight, u, v)
		cam[0] *= frame.Global.CameraIntensity
		cam[1] *= frame.Global.CameraIntensity
		cam[2] *= frame.Global.CameraIntensity
		accum = blendMorph(accum, cam, frame.Global.BlendMode)
	}

	for i := range accum {
		accum[i] *= frame.Global.Brightness
		if accum[i] < brightnessFloor {
			accum[i] = brightnessFloor
		}
	}
	return accum
}

func colorSchemeShift(scheme float32) float32 {
	return -1.0/3.0 + scheme*(2.0/3.0)
}

func sampleAudioTex(tex []float32, renderWidth, channel int, xSample float32) float32 {
	xSample = fractF32(xSample)
	pos := xSample * float32(renderWidth-1)
	i0 := int(pos)
	if i0 < 0 {
		i0 = 0
	}
	if i0 >= renderWidth {
		i0 = renderWidth - 1
	}
	return tex[channel*renderWidth+i0]
}

func sampleCameraRGB(cam []byte, w, h int, u, v float32) [3]float32 {
	x := int(u * float32(w-1))
	y := int(v * float32(h-1))
	idx := (y*w + x) * 3
	if idx < 0 || idx+2 >= len(cam) {
		return [3]float32{}
	}
	return [3]float32{
		float32(cam[idx]) / 255,
		float32(cam[idx+1]) / 255,
		float32(cam[idx+2]) / 255,
	}
}

func blendMorph(a, b [3]float32, t float32) [3]float32 {
	switch {
	case t < 0.33:
		return lerpRGB(blendAdd(a, b), blendScreen(a, b), t/0.33)
	case t < 0.66:
		return lerpRGB(blendScreen(a, b), blendDifference(a, b), (t-0.33)/0.33)
	default:
		return lerpRGB(blendDifference(a, b), blendColorDodge(a, b), (t-0.66)/0.34)
	}
}

func blendAdd(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}
func blendScreen(a, b [3]float32) [3]float32 {
	return [3]float32{1 - (1-a[0])*(1-b[0]), 1 - (1-a[1])*(1-b[1]), 1 - (1-a[2])*(1-b[2])}
}
func blendDifference(a, b [3]float32) [3]float32 {
	return [3]float32{absF32(a[0] - b[0]), absF32(a[1] - b[1]), absF32(a[2] - b[2])}
}
func blendColorDodge(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] / maxF32(1-b[0], 0.001), a[1] / maxF32(1-b[1], 0.001), a[2] / maxF32(1-b[2], 0.001)}
}
func lerpRGB(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t, a[2] + (b[2]-a[2])*t}
}

func hsvToRGB(h, s, v float32) [3]float32 {
	i := int(h * 6)
	f := h*6 - float32(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	switch i % 6 {
	case 0:
		return [3]float32{v, t, p}
	case 1:
		return [3]float32{q, v, p}
	case 2:
		return [3]float32{p, v, t}
	case 3:
		return [3]float32{p, q, v}
	case 4:
		return [3]float32{t, p, v}
	default:
		return [3]float32{v, p, q}
	}
}

func fractF32(x float32) float32 {
	f := x - float32(math.Floor(float64(x)))
	if f < 0 {
		f++
	}
	return f
}

func log2F32(x float32) float32 {
	return float32(math.Log2(float64(x)))
}
