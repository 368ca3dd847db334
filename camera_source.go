// camera_source.go - Pull API camera/video frame source

package main

import (
	"sync/atomic"
)

// Frame is a single decoded video frame in 8-bit BGR order (the Pull API's
// `read_frame() -> Option<(width, height, BGR bytes)>` contract),
// row-major and C-contiguous (width*height*3 bytes, no row padding). No
// BGR-to-RGB conversion is done anywhere: the renderers' camera layer
// (RenderFrame.CameraRGB) takes RGB bytes as given, and the engine does not
// fill it from camera frames.
type Frame struct {
	Width, Height int
	Pix           []byte
}

// CameraSource is a pull API: the contour scanner calls
// Next on its own schedule rather than being pushed frames, so a slow
// scanner naturally back-pressures a live camera by simply not reading.
type CameraSource interface {
	// Start opens the device or file. Safe to call once before the first Next.
	Start() error

	// Next blocks until a new frame is available and returns it. Returns
	// ErrCameraUnavailable if the source has failed.
	Next() (*Frame, error)

	// Resolution reports the current frame size. May change mid-stream for
	// a live device - callers should re-check it
	// after any Next call rather than caching it once at Start.
	Resolution() (width, height int)

	Close() error
}

// sourceBox lets CameraSource (an interface, not directly atomic-storable)
// live behind an atomic.Pointer swap, so the vision loop can hot-swap
// sources without ever taking a lock.
type sourceBox struct {
	src CameraSource
}

// CameraManager holds the currently active CameraSource and allows it to be
// swapped - e.g. falling back from a live camera to a looping video file
// after ParamMaxCameraRetry consecutive failures - without the
// contour scanner's read loop ever taking a lock.
type CameraManager struct {
	box atomic.Pointer[sourceBox]
}

func NewCameraManager(initial CameraSource) *CameraManager {
	m := &CameraManager{}
	m.box.Store(&sourceBox{src: initial})
	return m
}

// Swap installs a new source and returns the previous one without closing
// it; closing it is left to the caller. The scanner thread may be mid-Next
// on the old source when this is called, and Close on a source mid-read is
// backend-defined.
func (m *CameraManager) Swap(next CameraSource) CameraSource {
	prev := m.box.Swap(&sourceBox{src: next})
	return prev.src
}

func (m *CameraManager) Current() CameraSource {
	return m.box.Load().src
}

func (m *CameraManager) Next() (*Frame, error) {
	return m.Current().Next()
}

func (m *CameraManager) Resolution() (int, int) {
	return m.Current().Resolution()
}

func (m *CameraManager) Close() error {
	return m.Current().Close()
}
