package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridVertexShader(t *testing.T) {
	s := NewGridVertexShader()

	assert.Equal(t, GridVertexShaderKey, s.Key())
	assert.Equal(t, ShaderTypeVertex, s.ShaderType())
	assert.Equal(t, "vs_main", s.EntryPoint())

	require.NotNil(t, s.Module())
	assert.Equal(t, GridVertexShaderKey, s.Module().Label)
	require.NotNil(t, s.Module().WGSLDescriptor)
	assert.Equal(t, s.Source(), s.Module().WGSLDescriptor.Code)
}

func TestGridVertexShaderVertexLayout(t *testing.T) {
	s := NewGridVertexShader()

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 1)

	layout := s.VertexLayout(0)
	require.Len(t, layout, 1)

	// One packed vec2f position per vertex.
	assert.Equal(t, uint64(8), layout[0].ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layout[0].StepMode)
	require.Len(t, layout[0].Attributes, 1)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout[0].Attributes[0].Format)
	assert.Equal(t, uint64(0), layout[0].Attributes[0].Offset)
	assert.Equal(t, uint32(0), layout[0].Attributes[0].ShaderLocation)
}

func TestGridVertexShaderBindGroupLayout(t *testing.T) {
	s := NewGridVertexShader()

	descs := s.BindGroupLayoutDescriptors()
	require.Len(t, descs, 1)

	desc := s.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 2)

	params := desc.Entries[0]
	assert.Equal(t, uint32(0), params.Binding)
	assert.Equal(t, wgpu.ShaderStageVertex, params.Visibility)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, params.Buffer.Type)
	assert.Equal(t, uint64(8), params.Buffer.MinBindingSize, "grid params are two packed f32 values")

	state := desc.Entries[1]
	assert.Equal(t, uint32(1), state.Binding)
	assert.Equal(t, wgpu.ShaderStageVertex, state.Visibility)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, state.Buffer.Type)
	assert.Equal(t, uint64(4), state.Buffer.MinBindingSize, "cell state elements are single u32 values")
}

func TestGridVertexShaderVarNames(t *testing.T) {
	s := NewGridVertexShader()

	assert.Equal(t, "grid", s.BindGroupVarName(0, 0))
	assert.Equal(t, "cellState", s.BindGroupVarName(0, 1))
	assert.Equal(t, "", s.BindGroupVarName(0, 2))
	assert.Equal(t, "", s.BindGroupVarName(3, 0))

	binding, ok := s.BindGroupFromVarName(0, "cellState")
	assert.True(t, ok)
	assert.Equal(t, 1, binding)

	binding, ok = s.BindGroupFromVarName(0, "missing")
	assert.False(t, ok)
	assert.Equal(t, -1, binding)
}

func TestNewGridFragmentShader(t *testing.T) {
	s := NewGridFragmentShader()

	assert.Equal(t, GridFragmentShaderKey, s.Key())
	assert.Equal(t, ShaderTypeFragment, s.ShaderType())
	assert.Equal(t, "fs_main", s.EntryPoint())

	// The fragment stage reads only interpolated vertex output, so it
	// declares no bindings and no vertex inputs of its own.
	assert.Empty(t, s.BindGroupLayoutDescriptors())
	assert.Empty(t, s.VertexLayouts())
}

func TestNewShaderEmptySourcePanics(t *testing.T) {
	assert.Panics(t, func() { NewShader("empty", ShaderTypeVertex, "") })
}

func TestNewShaderMissingEntryPointPanics(t *testing.T) {
	// Fragment-only source parsed as a vertex shader has no @vertex entry.
	assert.Panics(t, func() { NewShader("mismatched", ShaderTypeVertex, gridFragmentSource) })
}

func TestShaderTypeString(t *testing.T) {
	assert.Equal(t, "vertex", ShaderTypeVertex.String())
	assert.Equal(t, "fragment", ShaderTypeFragment.String())
	assert.Equal(t, "unknown", ShaderType(42).String())
}
