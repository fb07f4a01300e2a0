package engine

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gridgpu/cellgrid/engine/profiler"
	"github.com/gridgpu/cellgrid/engine/renderer"
	"github.com/gridgpu/cellgrid/engine/renderer/binding_set"
	"github.com/gridgpu/cellgrid/engine/window"
)

// DefaultTickInterval is the frame cadence used when no WithTickInterval
// option is provided.
const DefaultTickInterval = 200 * time.Millisecond

// EngineState describes where the engine is in its lifecycle.
type EngineState int

const (
	// StateIdle means the engine has been constructed but Run has not been called.
	StateIdle EngineState = iota

	// StateRunning means the engine loop is actively ticking frames.
	StateRunning

	// StateStopped means the engine loop has exited. A stopped engine cannot be restarted.
	StateStopped
)

// String returns the lowercase name of the state.
func (s EngineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// engine implements the Engine interface.
// Owns the frame scheduling loop and all state the loop reads.
type engine struct {
	mu *sync.Mutex

	// state tracks the Idle -> Running -> Stopped lifecycle.
	state EngineState

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer renderer.Renderer

	// sets are the renderable configurations the loop alternates between,
	// selected per tick by SelectIndex.
	sets []binding_set.BindingSet

	// tickInterval is the fixed delay between frames.
	tickInterval time.Duration

	// counter is the number of ticks fired since Run started.
	counter uint64

	profiler         *profiler.Profiler
	profilingEnabled bool
}

// Engine is the main entry point for the grid renderer.
// It orchestrates the frame scheduling loop, window polling, and rendering.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the underlying renderer.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// Counter returns the number of ticks fired since Run started.
	//
	// Returns:
	//   - uint64: the current tick count
	Counter() uint64

	// State returns the engine's current lifecycle state.
	//
	// Returns:
	//   - EngineState: Idle before Run, Running during, Stopped after
	State() EngineState

	// TickInterval returns the fixed delay between frames.
	//
	// Returns:
	//   - time.Duration: the configured tick interval
	TickInterval() time.Duration

	// Run starts the frame scheduling loop and blocks until the window closes
	// or Stop is called. Each tick increments the frame counter, selects the
	// binding set at counter mod len(sets), and renders one frame with it.
	// An engine runs at most once; a stopped engine cannot be restarted.
	//
	// Returns:
	//   - error: an error if the engine is not idle or has no binding sets to render
	Run() error

	// Stop signals the frame scheduling loop to exit.
	// Safe to call multiple times and from any goroutine; subsequent calls are no-ops.
	Stop()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// A window and a renderer are required; everything else has defaults.
//
// Parameters:
//   - options: functional options for engine configuration (binding sets, tick interval, profiling)
//
// Returns:
//   - Engine: the newly created engine, in the Idle state
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:           &sync.Mutex{},
		state:        StateIdle,
		quitChannel:  make(chan struct{}),
		tickInterval: DefaultTickInterval,
		profiler:     profiler.NewProfiler(0),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		panic("engine: NewEngine requires a Window; pass WithWindow")
	}
	if e.renderer == nil {
		panic("engine: NewEngine requires a Renderer; pass WithRenderer")
	}

	return e
}

// SelectIndex maps a tick counter onto a binding set index. Pure function of
// its inputs: the same counter and set count always yield the same index.
//
// Parameters:
//   - counter: the tick counter value
//   - setCount: the number of binding sets to alternate between
//
// Returns:
//   - int: counter mod setCount
func SelectIndex(counter uint64, setCount int) int {
	if setCount <= 0 {
		panic("engine: SelectIndex requires at least one binding set")
	}
	return int(counter % uint64(setCount))
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Counter() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counter
}

func (e *engine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *engine) TickInterval() time.Duration {
	return e.tickInterval
}

func (e *engine) Run() error {
	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return fmt.Errorf("engine: Run called on a %v engine; engines run once", e.state)
	}
	if len(e.sets) == 0 {
		e.mu.Unlock()
		return errors.New("engine: no binding sets to render; pass WithBindingSets")
	}
	e.state = StateRunning
	e.mu.Unlock()

	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()
	defer e.Stop()

	for {
		select {
		case <-e.quitChannel:
			e.mu.Lock()
			e.state = StateStopped
			e.mu.Unlock()
			return nil
		case <-ticker.C:
			// A tick racing a Stop is dropped; the loop never renders past
			// a quit signal.
			select {
			case <-e.quitChannel:
				continue
			default:
			}
			if !e.window.Poll() {
				e.Stop()
				continue
			}
			e.tick()
		}
	}
}

// Stop signals the frame scheduling loop to exit.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Stop() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// tick advances the frame counter, selects the binding set for this frame,
// and renders one frame with it. A failed frame is logged and skipped; the
// loop keeps its cadence.
func (e *engine) tick() {
	e.mu.Lock()
	e.counter++
	counter := e.counter
	set := e.sets[SelectIndex(counter, len(e.sets))]
	e.mu.Unlock()

	if err := e.renderer.RenderFrame(set); err != nil {
		log.Printf("[Engine] frame %d render failed: %v", counter, err)
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
}
