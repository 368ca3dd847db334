// renderer_null.go - no-op renderer for headless runs and tests

package main

// NullRenderer discards every frame. Useful for `--no-gui` runs where only
// the audio/CV path matters, and for tests that exercise the engine without
// a display.
type NullRenderer struct {
	width, height int
}

func newNullRenderer() *NullRenderer { return &NullRenderer{} }

func (r *NullRenderer) Init(width, height int) error {
	r.width, r.height = width, height
	return nil
}

func (r *NullRenderer) Draw(frame RenderFrame) error { return nil }

func (r *NullRenderer) Resize(width, height int) error {
	r.width, r.height = width, height
	return nil
}

func (r *NullRenderer) Close() error { return nil }
