package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the initial present mode for the renderer's surface.
// The mode is applied to the backend before the surface is configured.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithForceSoftwareRenderer forces the backend to request a software fallback
// adapter instead of GPU hardware. Useful for headless environments and CI.
//
// Parameters:
//   - enabled: true to force the fallback adapter
//
// Returns:
//   - RendererBuilderOption: a function that applies the fallback option to a renderer
func WithForceSoftwareRenderer(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = enabled
	}
}

// WithClearColor sets the background color every frame clears to before the
// grid is drawn.
//
// Parameters:
//   - color: the clear color to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(color wgpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingClearColor = &color
	}
}
