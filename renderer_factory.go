//go:build !headless

// renderer_factory.go - renderer backend selection for GUI builds

package main

func NewRenderer(backend int) (Renderer, error) {
	switch backend {
	case RendererBackendGL:
		return newGLRenderer()
	case RendererBackendCPU:
		return newCPURenderer()
	default:
		return newNullRenderer(), nil
	}
}
