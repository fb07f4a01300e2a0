package engine

import (
	"time"

	"github.com/gridgpu/cellgrid/engine/renderer"
	"github.com/gridgpu/cellgrid/engine/renderer/binding_set"
	"github.com/gridgpu/cellgrid/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithWindow sets the window for the engine to poll and render to.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer the engine drives each tick.
//
// Parameters:
//   - r: a pre-configured Renderer instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithBindingSets sets the binding sets the engine alternates between, in
// order. The tick counter selects sets[counter mod len(sets)] each frame.
// All sets must target the same grid.
//
// Parameters:
//   - sets: the binding sets to cycle through
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBindingSets(sets ...binding_set.BindingSet) EngineBuilderOption {
	for i := 1; i < len(sets); i++ {
		if sets[i].Grid() != sets[0].Grid() {
			panic("engine: all binding sets must share the same grid descriptor")
		}
	}
	return func(e *engine) {
		e.sets = sets
	}
}

// WithTickInterval sets the fixed delay between frames.
// Values <= 0 will be treated as the default (200ms).
//
// Parameters:
//   - interval: the delay between ticks (default 200ms)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickInterval(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		if interval <= 0 {
			interval = DefaultTickInterval
		}
		e.tickInterval = interval
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}
