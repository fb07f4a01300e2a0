package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntryPoint(t *testing.T) {
	assert.Equal(t, "vs_main", parseEntryPoint(gridVertexSource, ShaderTypeVertex))
	assert.Equal(t, "fs_main", parseEntryPoint(gridFragmentSource, ShaderTypeFragment))

	// Searching for a stage the source does not declare yields nothing.
	assert.Equal(t, "", parseEntryPoint(gridVertexSource, ShaderTypeFragment))
	assert.Equal(t, "", parseEntryPoint(gridFragmentSource, ShaderTypeVertex))
}

func TestParseVertexLayoutsSkipsOutputStructs(t *testing.T) {
	layouts := parseVertexLayouts(gridVertexSource)
	require.Len(t, layouts, 1, "only VertexInput qualifies; structs with @builtin fields are outputs")
	require.Len(t, layouts[0], 1)
	assert.Equal(t, uint64(8), layouts[0][0].ArrayStride)
}

func TestParseVertexLayoutsMultiField(t *testing.T) {
	source := `
struct Vertex {
    @location(0) position: vec3f,
    @location(1) uv: vec2f,
}

@vertex
fn vs_main(in: Vertex) -> @builtin(position) vec4f {
    return vec4f(in.position, 1.0);
}
`
	layouts := parseVertexLayouts(source)
	require.Len(t, layouts, 1)

	layout := layouts[0][0]
	assert.Equal(t, uint64(20), layout.ArrayStride)
	require.Len(t, layout.Attributes, 2)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[0].Format)
	assert.Equal(t, uint64(0), layout.Attributes[0].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[1].Format)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
	assert.Equal(t, uint32(1), layout.Attributes[1].ShaderLocation)
}

func TestParseBindGroupLayoutsSortsBindings(t *testing.T) {
	// Bindings declared out of order must come back sorted.
	source := `
struct Params {
    scale: f32,
    offset: f32,
}

@group(0) @binding(2) var<storage, read_write> results: array<u32>;
@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage> input: array<u32>;
`
	descs, varNames := parseBindGroupLayouts(source, wgpu.ShaderStageVertex)
	require.Len(t, descs, 1)

	entries := descs[0].Entries
	require.Len(t, entries, 3)
	assert.Equal(t, uint32(0), entries[0].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, entries[0].Buffer.Type)
	assert.Equal(t, uint32(1), entries[1].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, entries[1].Buffer.Type)
	assert.Equal(t, uint32(2), entries[2].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeStorage, entries[2].Buffer.Type)

	assert.Equal(t, "params", varNames[0][0])
	assert.Equal(t, "input", varNames[0][1])
	assert.Equal(t, "results", varNames[0][2])
}

func TestParseBindGroupLayoutsEmptyForNoDecls(t *testing.T) {
	descs, varNames := parseBindGroupLayouts(gridFragmentSource, wgpu.ShaderStageFragment)
	assert.Empty(t, descs)
	assert.Empty(t, varNames)
}

func TestResolveTypeLayout(t *testing.T) {
	tests := []struct {
		typeName string
		want     wgslTypeLayout
		ok       bool
	}{
		{"f32", wgslTypeLayout{4, 4}, true},
		{"u32", wgslTypeLayout{4, 4}, true},
		{"vec2f", wgslTypeLayout{8, 8}, true},
		{"vec3f", wgslTypeLayout{12, 16}, true},
		{"array<u32>", wgslTypeLayout{4, 4}, true},
		{"array<vec2f, 6>", wgslTypeLayout{48, 8}, true},
		{"texture_2d<f32>", wgslTypeLayout{}, false},
		{"NotAType", wgslTypeLayout{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			got, ok := resolveTypeLayout(tt.typeName, nil)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeStructSizes(t *testing.T) {
	source := `
struct Inner {
    v: vec2f,
}

struct Outer {
    i: Inner,
    x: f32,
}
`
	structs := parseStructBlocks(stripComments(source))
	sizes := computeStructSizes(structs)

	require.Contains(t, sizes, "Inner")
	assert.Equal(t, wgslTypeLayout{8, 8}, sizes["Inner"])

	// Outer: Inner at 0 (8 bytes), f32 at 8, total 12 rounded up to align 8.
	require.Contains(t, sizes, "Outer")
	assert.Equal(t, wgslTypeLayout{16, 8}, sizes["Outer"])
}

func TestComputeStructSizesVec3Padding(t *testing.T) {
	source := `
struct Padded {
    a: vec3f,
    b: f32,
}
`
	structs := parseStructBlocks(stripComments(source))
	sizes := computeStructSizes(structs)

	// f32 packs into the vec3f tail padding: 12 + 4 = 16, align 16.
	assert.Equal(t, wgslTypeLayout{16, 16}, sizes["Padded"])
}

func TestRoundUpAlign(t *testing.T) {
	assert.Equal(t, uint64(0), roundUpAlign(4, 0))
	assert.Equal(t, uint64(4), roundUpAlign(4, 1))
	assert.Equal(t, uint64(4), roundUpAlign(4, 4))
	assert.Equal(t, uint64(8), roundUpAlign(4, 5))
	assert.Equal(t, uint64(16), roundUpAlign(16, 12))
	assert.Equal(t, uint64(7), roundUpAlign(0, 7))
}

func TestStripComments(t *testing.T) {
	source := "a // line comment\nb /* block */ c\nd /* outer /* nested */ still outer */ e"
	cleaned := stripComments(source)
	assert.Contains(t, cleaned, "a")
	assert.Contains(t, cleaned, "b  c")
	assert.Contains(t, cleaned, "d  e")
	assert.NotContains(t, cleaned, "comment")
	assert.NotContains(t, cleaned, "nested")
}

func TestSplitAtTopLevelCommas(t *testing.T) {
	parts := splitAtTopLevelCommas("a: f32, b: array<u32, 6>, c: vec2f")
	require.Len(t, parts, 3)
	assert.Equal(t, "a: f32", parts[0])
	assert.Equal(t, " b: array<u32, 6>", parts[1])
	assert.Equal(t, " c: vec2f", parts[2])
}

func TestIsVertexInputStruct(t *testing.T) {
	structs := parseStructBlocks(stripComments(gridVertexSource))
	byName := make(map[string]parsedStruct, len(structs))
	for _, ps := range structs {
		byName[ps.name] = ps
	}

	require.Contains(t, byName, "VertexInput")
	require.Contains(t, byName, "VertexOutput")
	require.Contains(t, byName, "GridParams")

	assert.True(t, isVertexInputStruct(byName["VertexInput"]))
	assert.False(t, isVertexInputStruct(byName["VertexOutput"]), "@builtin(position) marks an output struct")
	assert.False(t, isVertexInputStruct(byName["GridParams"]), "uniform structs carry no @location fields")
}
