//go:build headless

// renderer_factory_headless.go - renderer backend selection for headless
// builds, where go-gl/glfw and ebiten are not compiled in at all.

package main

import "github.com/charmbracelet/log"

// NewRenderer always returns the null renderer in a headless build; GL and
// CPU backends have no implementation compiled in, so a request for either
// falls back to null rather than failing the build or panicking at runtime.
func NewRenderer(backend int) (Renderer, error) {
	if backend != RendererBackendNull {
		log.Warn("renderer backend unavailable in headless build, falling back to null", "requested", backend)
	}
	return newNullRenderer(), nil
}
