package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gridgpu/cellgrid/common"
	"github.com/gridgpu/cellgrid/engine/renderer/binding_set"
	"github.com/gridgpu/cellgrid/engine/renderer/pipeline"
	"github.com/gridgpu/cellgrid/engine/renderer/shader"
	"github.com/gridgpu/cellgrid/engine/window"
	"github.com/gridgpu/cellgrid/grid"
)

// ErrUnsupportedHardware is returned when no compatible GPU adapter can be
// acquired for the surface. Initialization cannot proceed past this.
var ErrUnsupportedHardware = errors.New("renderer: no compatible gpu adapter found")

// ErrDeviceCreationFailed is returned when the adapter refuses to yield a
// logical device. Initialization cannot proceed past this.
var ErrDeviceCreationFailed = errors.New("renderer: device creation failed")

// ErrSurfaceConfig is returned when the surface cannot be configured against
// the adapter's reported capabilities. Initialization cannot proceed past this.
var ErrSurfaceConfig = errors.New("renderer: surface configuration failed")

// newBackend constructs the backend for the given type. Declared as a
// variable so tests can substitute a fake backend.
var newBackend = func(backendType RendererBackendType, surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) (RendererBackend, error) {
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		return newWGPURendererBackend(surfaceDescriptor, forceFallbackAdapter)
	}
}

// gridUniform mirrors the GridParams struct declared by the grid vertex
// shader: two packed f32 dimensions, no padding.
type gridUniform struct {
	Cols float32
	Rows float32
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Grid state recorded by InitGrid
	gridDesc        *grid.Descriptor
	gridPipelineKey string

	// declaredLayouts is the bind group layout contract derived once from the
	// grid shaders at InitGrid time. Every binding set is validated against it
	// before any GPU resource is created.
	declaredLayouts map[int]wgpu.BindGroupLayoutDescriptor

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingClearColor    *wgpu.Color
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API designed to simplify rendering a uniform cell grid
// into a streamlined and idiomatic flow. The Renderer manages a cache of
// pipelines, owns the shared grid geometry and parameter buffers, and renders
// one full-grid frame per RenderFrame call through a swappable backend.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// InitGrid registers the grid render pipeline, derives the declared bind
	// group layout contract from its shaders, and uploads the shared cell
	// geometry and grid dimension uniform. Must be called exactly once before
	// any InitBindingSet or RenderFrame call.
	//
	// Parameters:
	//   - d: the grid dimensions to render
	//   - p: the Pipeline carrying the grid vertex and fragment shaders
	//
	// Returns:
	//   - error: an error if the descriptor is invalid, the grid was already initialized, or GPU resource creation fails
	InitGrid(d grid.Descriptor, p pipeline.Pipeline) error

	// InitBindingSet validates a binding set against the declared layout
	// contract and creates its GPU resources: a state buffer uploaded once and
	// a bind group permanently pairing the shared grid parameter buffer with
	// that state buffer. Must be called after InitGrid and before the set is
	// used in RenderFrame.
	//
	// Parameters:
	//   - set: the binding set to validate and initialize
	//
	// Returns:
	//   - error: an error if the set does not satisfy the declared layout or GPU resource creation fails
	InitBindingSet(set binding_set.BindingSet) error

	// RenderFrame renders one complete frame: clears the surface to the
	// configured background color, draws every cell of the grid in a single
	// instanced draw using the given binding set, submits, and presents.
	//
	// Parameters:
	//   - set: the initialized binding set selecting which cell states to draw
	//
	// Returns:
	//   - error: an error if the grid is not initialized or the frame could not be started
	RenderFrame(set binding_set.BindingSet) error

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// Release frees all GPU resources owned by the renderer and its backend.
	// Binding set resources belong to their sets and must be released by the caller.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type and window.
// The window provides the platform-specific surface descriptor and the initial surface size.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - win: the window whose surface the renderer draws to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: an error wrapping ErrUnsupportedHardware, ErrDeviceCreationFailed, or ErrSurfaceConfig if initialization fails
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	backend, err := newBackend(backendType, win.SurfaceDescriptor(), r.forceFallbackAdapter)
	if err != nil {
		return nil, err
	}
	r.backend = backend

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}

	if err := r.backend.ConfigureSurface(win.Width(), win.Height()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) InitGrid(d grid.Descriptor, p pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := d.Validate(); err != nil {
		return err
	}
	if r.gridDesc != nil {
		return fmt.Errorf("grid already initialized as %dx%d", r.gridDesc.Width, r.gridDesc.Height)
	}

	key := p.PipelineKey()
	if _, exists := r.pipelineCache[key]; !exists {
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return err
		}
		r.pipelineCache[key] = p
	}

	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	r.declaredLayouts = mergeBindGroupLayouts(
		vertexShader.BindGroupLayoutDescriptors(),
		fragmentShader.BindGroupLayoutDescriptors(),
	)

	vertexData := common.SliceToBytes(grid.CellVertices(grid.DefaultCellExtent))
	params := d.Params()
	paramData := common.StructToBytes(&gridUniform{Cols: params[0], Rows: params[1]})
	if err := r.backend.InitGridBuffers(vertexData, paramData); err != nil {
		return err
	}

	r.gridDesc = &d
	r.gridPipelineKey = key
	return nil
}

func (r *renderer) InitBindingSet(set binding_set.BindingSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gridDesc == nil {
		return errors.New("grid not initialized; call InitGrid first")
	}
	if set.Grid() != *r.gridDesc {
		return fmt.Errorf("binding set %q targets a %dx%d grid, renderer holds %dx%d",
			set.Label(), set.Grid().Width, set.Grid().Height, r.gridDesc.Width, r.gridDesc.Height)
	}

	declared, ok := r.declaredLayouts[0]
	if !ok {
		return errors.New("grid shaders declare no bind group 0; nothing to bind")
	}
	if err := validateBindingSet(set, *r.gridDesc, declared); err != nil {
		return err
	}

	return r.backend.InitBindingSet(set, declared)
}

func (r *renderer) RenderFrame(set binding_set.BindingSet) error {
	r.mu.Lock()
	gridDesc := r.gridDesc
	key := r.gridPipelineKey
	p, exists := r.pipelineCache[key]
	r.mu.Unlock()

	if gridDesc == nil {
		return errors.New("grid not initialized; call InitGrid first")
	}
	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", key)
	}

	if err := r.backend.BeginFrame(); err != nil {
		return err
	}

	r.backend.DrawCall(p, set, grid.CellVertexCount, uint32(gridDesc.CellCount()))
	r.backend.EndFrame()
	r.backend.Present()
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
}

// validateBindingSet checks a binding set against the declared bind group
// layout: every storage entry must be exactly satisfied by the set's state
// slice, so a mismatched buffer is rejected before any GPU object exists.
//
// Parameters:
//   - set: the binding set to validate
//   - d: the grid dimensions the set must cover
//   - declared: the declared layout descriptor for bind group 0
//
// Returns:
//   - error: an error wrapping binding_set.ErrBufferLengthMismatch if a storage entry cannot be satisfied
func validateBindingSet(set binding_set.BindingSet, d grid.Descriptor, declared wgpu.BindGroupLayoutDescriptor) error {
	for _, entry := range declared.Entries {
		switch entry.Buffer.Type {
		case wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
			need := d.CellCount() * entry.Buffer.MinBindingSize
			got := uint64(len(set.States())) * 4
			if got != need {
				return fmt.Errorf("%w: set %q provides %d bytes for binding %d, layout requires %d",
					binding_set.ErrBufferLengthMismatch, set.Label(), got, entry.Binding, need)
			}
		}
	}
	return nil
}
