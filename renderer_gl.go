//go:build !headless

// renderer_gl.go - go-gl/glfw 3-pass FBO pipeline

package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW/GL calls must stay pinned to the thread that created the context.
	runtime.LockOSThread()
}

// GLRenderer drives the 3-pass pipeline: one fragment
// shader per channel into a temp FBO, a rotate pass per channel into a
// second FBO, and a final blend pass composited to the window.
type GLRenderer struct {
	window *glfw.Window

	width, height int

	channelProgram uint32
	rotateProgram  uint32
	blendProgram   uint32

	quadVAO uint32

	audioTex  uint32
	regionTex uint32
	cameraTex uint32

	pass1FBO [4]uint32
	pass1Tex [4]uint32
	pass2FBO [4]uint32
	pass2Tex [4]uint32
}

func newGLRenderer() (*GLRenderer, error) {
	return &GLRenderer{}, nil
}

func (r *GLRenderer) Init(width, height int) error {
	r.width, r.height = width, height

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(width, height, "VAV", nil, nil)
	if err != nil {
		return fmt.Errorf("glfw create window: %w", err)
	}
	window.MakeContextCurrent()
	r.window = window

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}

	r.channelProgram, err = linkProgram(rendererVertexShader, rendererChannelFragShader)
	if err != nil {
		return err
	}
	r.rotateProgram, err = linkProgram(rendererVertexShader, rendererRotateFragShader)
	if err != nil {
		return err
	}
	r.blendProgram, err = linkProgram(rendererVertexShader, rendererBlendFragShader)
	if err != nil {
		return err
	}

	r.quadVAO = newFullscreenQuad()
	r.audioTex = newTexture()
	r.regionTex = newTexture()
	r.cameraTex = newTexture()

	for ch := 0; ch < 4; ch++ {
		r.pass1FBO[ch], r.pass1Tex[ch] = newFBO(width, height)
		r.pass2FBO[ch], r.pass2Tex[ch] = newFBO(width, height)
	}
	return nil
}

func (r *GLRenderer) Resize(width, height int) error {
	r.width, r.height = width, height
	for ch := 0; ch < 4; ch++ {
		gl.DeleteFramebuffers(1, &r.pass1FBO[ch])
		gl.DeleteTextures(1, &r.pass1Tex[ch])
		gl.DeleteFramebuffers(1, &r.pass2FBO[ch])
		gl.DeleteTextures(1, &r.pass2Tex[ch])
		r.pass1FBO[ch], r.pass1Tex[ch] = newFBO(width, height)
		r.pass2FBO[ch], r.pass2Tex[ch] = newFBO(width, height)
	}
	if r.window != nil {
		r.window.SetSize(width, height)
	}
	return nil
}

// Draw runs the 3-pass pipeline for one frame and always returns nil, so
// the host never sees a render failure. An audio-texture upload failure
// returns before drawing, leaving the previous frame on screen. A channel
// whose FBO is incomplete is skipped and keeps its previous texture
// contents; the frame is not zeroed. Neither case is logged.
func (r *GLRenderer) Draw(frame RenderFrame) error {
	if r.window == nil {
		return nil
	}
	if r.window.ShouldClose() {
		return nil
	}

	if !uploadAudioTexture(r.audioTex, frame.AudioTex, frame.RenderWidth) {
		return nil // upload failed: keep showing the previous frame
	}
	if frame.Global.UseRegionMap && len(frame.RegionMap) > 0 {
		uploadR8Texture(r.regionTex, frame.RegionMap, r.width, r.height)
	}
	if frame.CameraRGB != nil {
		uploadRGBTexture(r.cameraTex, frame.CameraRGB, frame.CamWidth, frame.CamHeight)
	}

	r.pass1(frame)
	r.pass2(frame)
	r.pass3(frame)

	r.window.SwapBuffers()
	glfw.PollEvents()
	return nil
}

func (r *GLRenderer) pass1(frame RenderFrame) {
	gl.UseProgram(r.channelProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.audioTex)
	setUniform1i(r.channelProgram, "uAudioTex", 0)

	for ch := 0; ch < 4; ch++ {
		if !frame.Channels.Enabled[ch] {
			continue
		}
		gl.BindFramebuffer(gl.FRAMEBUFFER, r.pass1FBO[ch])
		if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
			continue // incomplete FBO: skip, leave the old texture contents
		}
		gl.Viewport(0, 0, int32(r.width), int32(r.height))
		gl.Clear(gl.COLOR_BUFFER_BIT)

		setUniform1i(r.channelProgram, "uChannel", ch)
		setUniform1f(r.channelProgram, "uFrequency", frame.Channels.Frequencies[ch])
		setUniform1f(r.channelProgram, "uIntensity", frame.Channels.Intensities[ch])
		setUniform1f(r.channelProgram, "uCurve", frame.Channels.Curves[ch])
		setUniform1f(r.channelProgram, "uRatio", frame.Channels.Ratios[ch])
		setUniform1f(r.channelProgram, "uColorScheme", frame.Global.ColorScheme)
		setUniform1f(r.channelProgram, "uBaseHue", frame.Global.BaseHue)

		drawFullscreenQuad(r.quadVAO)
	}
}

func (r *GLRenderer) pass2(frame RenderFrame) {
	gl.UseProgram(r.rotateProgram)
	for ch := 0; ch < 4; ch++ {
		if !frame.Channels.Enabled[ch] {
			continue
		}
		gl.BindFramebuffer(gl.FRAMEBUFFER, r.pass2FBO[ch])
		if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
			continue
		}
		gl.Viewport(0, 0, int32(r.width), int32(r.height))
		gl.Clear(gl.COLOR_BUFFER_BIT)

		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, r.pass1Tex[ch])
		setUniform1i(r.rotateProgram, "uSource", 0)
		setUniform1f(r.rotateProgram, "uAngle", frame.Channels.Angles[ch]*2*3.14159265)

		drawFullscreenQuad(r.quadVAO)
	}
}

func (r *GLRenderer) pass3(frame RenderFrame) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(r.width), int32(r.height))
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(r.blendProgram)
	for ch := 0; ch < 4; ch++ {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(ch))
		gl.BindTexture(gl.TEXTURE_2D, r.pass2Tex[ch])
		setUniform1i(r.blendProgram, fmt.Sprintf("uChannelTex[%d]", ch), ch)
		setUniform1i(r.blendProgram, fmt.Sprintf("uEnabled[%d]", ch), boolToInt(frame.Channels.Enabled[ch]))
	}
	gl.ActiveTexture(gl.TEXTURE4)
	gl.BindTexture(gl.TEXTURE_2D, r.regionTex)
	setUniform1i(r.blendProgram, "uRegionMap", 4)

	gl.ActiveTexture(gl.TEXTURE5)
	gl.BindTexture(gl.TEXTURE_2D, r.cameraTex)
	setUniform1i(r.blendProgram, "uCameraTex", 5)

	setUniform1i(r.blendProgram, "uUseRegionMap", boolToInt(frame.Global.UseRegionMap && len(frame.RegionMap) > 0))
	setUniform1i(r.blendProgram, "uHasCamera", boolToInt(frame.CameraRGB != nil))
	setUniform1f(r.blendProgram, "uBlendMode", frame.Global.BlendMode)
	setUniform1f(r.blendProgram, "uBrightness", frame.Global.Brightness)
	setUniform1f(r.blendProgram, "uCameraIntensity", frame.Global.CameraIntensity)

	drawFullscreenQuad(r.quadVAO)
}

func (r *GLRenderer) Close() error {
	for ch := 0; ch < 4; ch++ {
		gl.DeleteFramebuffers(1, &r.pass1FBO[ch])
		gl.DeleteTextures(1, &r.pass1Tex[ch])
		gl.DeleteFramebuffers(1, &r.pass2FBO[ch])
		gl.DeleteTextures(1, &r.pass2Tex[ch])
	}
	gl.DeleteTextures(1, &r.audioTex)
	gl.DeleteTextures(1, &r.regionTex)
	gl.DeleteTextures(1, &r.cameraTex)
	if r.window != nil {
		r.window.Destroy()
	}
	glfw.Terminate()
	return nil
}

// --- GL helpers -------------------------------------------------------

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func newFullscreenQuad() uint32 {
	vertices := []float32{-1, -1, 1, -1, -1, 1, 1, 1}
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(0)
	return vao
}

func drawFullscreenQuad(vao uint32) {
	gl.BindVertexArray(vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
}

func newTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	return tex
}

func newFBO(width, height int) (fbo, tex uint32) {
	tex = newTexture()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return fbo, tex
}

// uploadAudioTexture uploads the (4, render_width) C-contiguous R32F audio
// texture. data must already be laid out
// channel-major by BuildAudioTexture; this function never transposes it.
func uploadAudioTexture(tex uint32, data []float32, renderWidth int) bool {
	if renderWidth == 0 || len(data) < 4*renderWidth {
		return false
	}
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R32F, int32(renderWidth), 4, 0, gl.RED, gl.FLOAT, gl.Ptr(data))
	return true
}

func uploadR8Texture(tex uint32, data []byte, width, height int) {
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(width), int32(height), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(data))
}

func uploadRGBTexture(tex uint32, data []byte, width, height int) {
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB8, int32(width), int32(height), 0, gl.RGB, gl.UNSIGNED_BYTE, gl.Ptr(data))
}

func setUniform1i(program uint32, name string, v int32) {
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	gl.Uniform1i(loc, v)
}

func setUniform1f(program uint32, name string, v float32) {
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	gl.Uniform1f(loc, v)
}

func linkProgram(vertexSrc, fragSrc string) (uint32, error) {
	vs, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("link program: %s", log)
	}

	gl.DeleteShader(vs)
	gl.DeleteShader(fs)
	return program, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("compile shader: %s", log)
	}
	return shader, nil
}
