package shader

import _ "embed"

//go:embed grid_vert.wgsl
var gridVertexSource string

//go:embed grid_frag.wgsl
var gridFragmentSource string

const (
	// GridVertexShaderKey is the cache key of the built-in grid vertex stage.
	GridVertexShaderKey = "grid_vertex"

	// GridFragmentShaderKey is the cache key of the built-in grid fragment stage.
	GridFragmentShaderKey = "grid_fragment"
)

// NewGridVertexShader returns the built-in grid vertex stage. It reads the
// per-cell activation value from the bound state buffer, scales the cell quad
// by it, translates the quad into its grid slot, and forwards the normalized
// cell coordinate to the fragment stage.
//
// Returns:
//   - Shader: the parsed grid vertex shader
func NewGridVertexShader() Shader {
	return NewShader(GridVertexShaderKey, ShaderTypeVertex, gridVertexSource)
}

// NewGridFragmentShader returns the built-in grid fragment stage. It colors
// each fragment purely from the interpolated normalized cell coordinate and
// declares no bindings of its own.
//
// Returns:
//   - Shader: the parsed grid fragment shader
func NewGridFragmentShader() Shader {
	return NewShader(GridFragmentShaderKey, ShaderTypeFragment, gridFragmentSource)
}
