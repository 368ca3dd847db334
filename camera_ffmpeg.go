// camera_ffmpeg.go - ffmpeg subprocess-backed CameraSource implementations

package main

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// LiveCameraSource pulls frames from a V4L2 capture device by piping
// ffmpeg's rawvideo/bgr24 output through a Go pipe, the same subprocess
// pattern the engine uses elsewhere for external media tools rather than
// binding to a camera library directly (no Go camera-capture package
// appears anywhere in the dependency set this engine draws from).
type LiveCameraSource struct {
	device        string
	width, height int

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout io.ReadCloser
	reader *bufio.Reader
	frameN int
}

// NewLiveCameraSource opens a V4L2 device node (e.g. "/dev/video0") at the
// requested capture size. The size is not read back from the device:
// frames are always read and reported at the requested width and height.
func NewLiveCameraSource(device string, width, height int) *LiveCameraSource {
	return &LiveCameraSource{device: device, width: width, height: height}
}

func (c *LiveCameraSource) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stream := ffmpeg.Input(c.device, ffmpeg.KwArgs{
		"f":         "v4l2",
		"video_size": fmt.Sprintf("%dx%d", c.width, c.height),
	}).Output("pipe:", ffmpeg.KwArgs{
		"pix_fmt": "bgr24",
		"f":       "rawvideo",
		"vsync":   "0",
	})

	cmd := stream.Compile()
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return newVAVError(ErrCameraUnavailable, "open ffmpeg stdout pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		return newVAVError(ErrCameraUnavailable, "start ffmpeg for %s: %v", c.device, err)
	}

	c.cmd = cmd
	c.stdout = stdout
	c.reader = bufio.NewReaderSize(stdout, c.width*c.height*3)
	return nil
}

func (c *LiveCameraSource) Next() (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reader == nil {
		return nil, newVAVError(ErrCameraUnavailable, "%s not started", c.device)
	}

	buf := make([]byte, c.width*c.height*3)
	if _, err := io.ReadFull(c.reader, buf); err != nil {
		return nil, newVAVError(ErrCameraUnavailable, "read frame from %s: %v", c.device, err)
	}
	c.frameN++
	return &Frame{Width: c.width, Height: c.height, Pix: buf}, nil
}

func (c *LiveCameraSource) Resolution() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *LiveCameraSource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stdout != nil {
		c.stdout.Close()
	}
	if c.cmd != nil && c.cmd.Process != nil {
		c.cmd.Process.Kill()
		c.cmd.Wait()
	}
	return nil
}

// VideoFileSource reads a recorded video file frame-by-frame and loops it,
// for use in place of a physical camera (selected by
// EngineConfig.VideoFilePath; nothing switches to it automatically when a
// live camera fails).
type VideoFileSource struct {
	path          string
	width, height int

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout io.ReadCloser
	reader *bufio.Reader
}

func NewVideoFileSource(path string, width, height int) *VideoFileSource {
	return &VideoFileSource{path: path, width: width, height: height}
}

func (v *VideoFileSource) Start() error {
	return v.open()
}

func (v *VideoFileSource) open() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	stream := ffmpeg.Input(v.path, ffmpeg.KwArgs{"stream_loop": "-1"}).
		Output("pipe:", ffmpeg.KwArgs{
			"pix_fmt": "bgr24",
			"f":       "rawvideo",
			"s":       fmt.Sprintf("%dx%d", v.width, v.height),
		})

	cmd := stream.Compile()
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return newVAVError(ErrCameraUnavailable, "open ffmpeg stdout pipe for %s: %v", v.path, err)
	}
	if err := cmd.Start(); err != nil {
		return newVAVError(ErrCameraUnavailable, "start ffmpeg for %s: %v", v.path, err)
	}

	v.cmd = cmd
	v.stdout = stdout
	v.reader = bufio.NewReaderSize(stdout, v.width*v.height*3)
	return nil
}

func (v *VideoFileSource) Next() (*Frame, error) {
	v.mu.Lock()
	reader := v.reader
	v.mu.Unlock()

	if reader == nil {
		return nil, newVAVError(ErrCameraUnavailable, "%s not started", v.path)
	}

	buf := make([]byte, v.width*v.height*3)
	if _, err := io.ReadFull(reader, buf); err != nil {
		// stream_loop=-1 makes ffmpeg itself loop the source; a read
		// failure here means the subprocess died, not end-of-file.
		return nil, newVAVError(ErrCameraUnavailable, "read frame from %s: %v", v.path, err)
	}
	return &Frame{Width: v.width, Height: v.height, Pix: buf}, nil
}

func (v *VideoFileSource) Resolution() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

func (v *VideoFileSource) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stdout != nil {
		v.stdout.Close()
	}
	if v.cmd != nil && v.cmd.Process != nil {
		v.cmd.Process.Kill()
		v.cmd.Wait()
	}
	return nil
}
