package binding_set

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gridgpu/cellgrid/grid"
)

// ErrBufferLengthMismatch indicates a cell state slice whose length does not
// match the cell count of the grid it is meant to cover. The mismatch is
// detected at construction, before any GPU resource exists.
var ErrBufferLengthMismatch = errors.New("binding_set: cell state length does not match grid cell count")

// bindingSet is the implementation of the BindingSet interface.
// It carries the host-side cell state data and, once a renderer has
// initialized it, the GPU objects derived from that data.
type bindingSet struct {
	// label identifies this set in GPU object labels and log output
	label string
	// descriptor is the grid this set's state buffer covers
	descriptor grid.Descriptor
	// states holds the host-side activation values, read-only after construction
	states []uint32

	// stateBuffer is the GPU copy of states, set once by the renderer during initialization
	stateBuffer *wgpu.Buffer
	// bindGroup permanently pairs the shared grid parameter buffer with stateBuffer
	bindGroup *wgpu.BindGroup
}

// BindingSet defines the interface for one renderable configuration of the
// grid: a fixed slice of per-cell activation values plus the GPU objects a
// renderer creates for it exactly once. Frame selection swaps whole binding
// sets; nothing inside a set ever changes after initialization.
type BindingSet interface {
	// Label retrieves the human-readable label for this binding set, used in GPU object labels.
	//
	// Returns:
	//   - string: the label for this binding set
	Label() string

	// Grid retrieves the grid descriptor this binding set was built for.
	//
	// Returns:
	//   - grid.Descriptor: the grid dimensions covered by the state buffer
	Grid() grid.Descriptor

	// States retrieves the host-side cell activation values in linear index order.
	// Callers must treat the returned slice as read-only.
	//
	// Returns:
	//   - []uint32: one activation value per cell, length Grid().CellCount()
	States() []uint32

	// StateBuffer retrieves the GPU buffer holding the uploaded cell states, if initialized.
	//
	// Returns:
	//   - *wgpu.Buffer: the state buffer, or nil if the set has not been initialized by a renderer
	StateBuffer() *wgpu.Buffer

	// BindGroup retrieves the bind group pairing the shared grid parameter buffer
	// with this set's state buffer, if initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group, or nil if the set has not been initialized by a renderer
	BindGroup() *wgpu.BindGroup

	// SetStateBuffer sets the GPU state buffer for this binding set.
	//
	// Parameters:
	//   - buf: the buffer holding the uploaded cell states
	SetStateBuffer(buf *wgpu.Buffer)

	// SetBindGroup sets the bind group for this binding set.
	//
	// Parameters:
	//   - bg: the bind group pairing the grid parameters with the state buffer
	SetBindGroup(bg *wgpu.BindGroup)

	// Release frees the GPU resources owned by this binding set. The shared grid
	// parameter buffer belongs to the renderer and is not touched. Safe to call
	// on an uninitialized set.
	Release()
}

var _ BindingSet = &bindingSet{}

// New creates a BindingSet from host-side cell state data. The state slice
// must hold exactly one value per cell of the grid; a mismatch returns
// ErrBufferLengthMismatch and nothing is allocated on the GPU.
//
// Parameters:
//   - label: a human-readable label for GPU object naming
//   - d: the grid the states cover
//   - states: one activation value per cell in linear index order
//
// Returns:
//   - BindingSet: the constructed binding set
//   - error: an error if the descriptor is invalid or the state length does not match
func New(label string, d grid.Descriptor, states []uint32) (BindingSet, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if uint64(len(states)) != d.CellCount() {
		return nil, fmt.Errorf("%w: set %q has %d values for a %dx%d grid (want %d)",
			ErrBufferLengthMismatch, label, len(states), d.Width, d.Height, d.CellCount())
	}
	return &bindingSet{
		label:      label,
		descriptor: d,
		states:     states,
	}, nil
}

// FromPattern creates a BindingSet by evaluating a pattern over every cell of
// the grid. The generated state slice always matches the grid's cell count.
//
// Parameters:
//   - label: a human-readable label for GPU object naming
//   - d: the grid to fill
//   - p: the activation pattern to evaluate, must not be nil
//
// Returns:
//   - BindingSet: the constructed binding set
//   - error: an error if the descriptor is invalid
func FromPattern(label string, d grid.Descriptor, p grid.Pattern) (BindingSet, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return New(label, d, grid.Activations(d, p))
}

func (b *bindingSet) Label() string {
	return b.label
}

func (b *bindingSet) Grid() grid.Descriptor {
	return b.descriptor
}

func (b *bindingSet) States() []uint32 {
	return b.states
}

func (b *bindingSet) StateBuffer() *wgpu.Buffer {
	return b.stateBuffer
}

func (b *bindingSet) BindGroup() *wgpu.BindGroup {
	return b.bindGroup
}

func (b *bindingSet) SetStateBuffer(buf *wgpu.Buffer) {
	b.stateBuffer = buf
}

func (b *bindingSet) SetBindGroup(bg *wgpu.BindGroup) {
	b.bindGroup = bg
}

func (b *bindingSet) Release() {
	if b.stateBuffer != nil {
		b.stateBuffer.Release()
		b.stateBuffer = nil
	}
	if b.bindGroup != nil {
		b.bindGroup.Release()
		b.bindGroup = nil
	}
}
