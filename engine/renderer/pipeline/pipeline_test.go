package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gridgpu/cellgrid/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("test")

	assert.Equal(t, "test", p.PipelineKey())
	assert.False(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	require.NotNil(t, p.BlendState())
	assert.Nil(t, p.Pipeline(), "GPU pipeline is nil until registered")
}

func TestNewGridPipeline(t *testing.T) {
	p := NewGridPipeline("grid")

	vert := p.Shader(shader.ShaderTypeVertex)
	require.NotNil(t, vert)
	assert.Equal(t, shader.GridVertexShaderKey, vert.Key())

	frag := p.Shader(shader.ShaderTypeFragment)
	require.NotNil(t, frag)
	assert.Equal(t, shader.GridFragmentShaderKey, frag.Key())
}

func TestWithShadersRejectMismatchedStage(t *testing.T) {
	vert := shader.NewGridVertexShader()
	frag := shader.NewGridFragmentShader()

	assert.Panics(t, func() { NewPipeline("bad", WithVertexShader(frag)) })
	assert.Panics(t, func() { NewPipeline("bad", WithFragmentShader(vert)) })
}

func TestPipelineBuilderOptions(t *testing.T) {
	blend := &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorZero,
			Operation: wgpu.BlendOperationAdd,
		},
	}
	p := NewPipeline("configured",
		WithBlendEnabled(true),
		WithCullMode(wgpu.CullModeBack),
		WithTopology(wgpu.PrimitiveTopologyLineList),
		WithFrontFace(wgpu.FrontFaceCW),
		WithWriteMask(wgpu.ColorWriteMaskRed),
		WithBlendState(blend),
	)

	assert.True(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskRed, p.WriteMask())
	assert.Same(t, blend, p.BlendState())
}
