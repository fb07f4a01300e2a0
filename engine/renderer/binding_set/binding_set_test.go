package binding_set

import (
	"errors"
	"testing"

	"github.com/gridgpu/cellgrid/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	d := grid.Descriptor{Width: 4, Height: 4}
	states := grid.Activations(d, grid.EveryNth(2))

	bs, err := New("A", d, states)
	require.NoError(t, err)

	assert.Equal(t, "A", bs.Label())
	assert.Equal(t, d, bs.Grid())
	assert.Equal(t, states, bs.States())
	assert.Nil(t, bs.StateBuffer(), "no GPU resource before renderer initialization")
	assert.Nil(t, bs.BindGroup(), "no GPU resource before renderer initialization")
}

func TestNewLengthMismatch(t *testing.T) {
	d := grid.Descriptor{Width: 4, Height: 4}

	tests := []struct {
		name   string
		states []uint32
	}{
		{name: "too short", states: make([]uint32, 15)},
		{name: "too long", states: make([]uint32, 17)},
		{name: "empty", states: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs, err := New("bad", d, tt.states)
			assert.Nil(t, bs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBufferLengthMismatch))
		})
	}
}

func TestNewInvalidDescriptor(t *testing.T) {
	bs, err := New("bad", grid.Descriptor{Width: 0, Height: 4}, nil)
	assert.Nil(t, bs)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrBufferLengthMismatch), "dimension errors are not length mismatches")
}

func TestNewRejectsOversizedGrid(t *testing.T) {
	// 65536x65536 wraps to zero in uint32, so an empty state slice would
	// pass a wrapped length check. The descriptor must be rejected outright.
	d := grid.Descriptor{Width: 65536, Height: 65536}

	bs, err := New("huge", d, nil)
	assert.Nil(t, bs)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrBufferLengthMismatch), "oversized grids fail validation, not the length check")
}

func TestFromPattern(t *testing.T) {
	d := grid.Descriptor{Width: 8, Height: 8}

	bs, err := FromPattern("checker", d, grid.Checker(d))
	require.NoError(t, err)
	require.Len(t, bs.States(), int(d.CellCount()))
	assert.Equal(t, uint32(1), bs.States()[0])
	assert.Equal(t, uint32(0), bs.States()[1])
}

func TestReleaseWithoutInitialization(t *testing.T) {
	d := grid.Descriptor{Width: 2, Height: 2}
	bs, err := New("idle", d, make([]uint32, 4))
	require.NoError(t, err)

	assert.NotPanics(t, func() { bs.Release() })
}
