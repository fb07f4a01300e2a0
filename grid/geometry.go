package grid

import "github.com/gridgpu/cellgrid/common"

// CellVertexCount is the number of vertices in the cell quad, two triangles
// of three vertices each.
const CellVertexCount = 6

// DefaultCellExtent is the half extent used when CellVertices is asked for
// the default quad. Cells span [-1, 1] in their local space, so an extent
// below 1 leaves a visible gutter between neighboring cells.
const DefaultCellExtent = 0.8

// CellVertices returns the vertex positions of a single cell quad as packed
// x, y float32 pairs, two counter-clockwise triangles covering the square
// [-halfExtent, halfExtent] in the cell's local space. The same quad is
// instanced once per cell, so this is the only vertex data a grid ever
// uploads.
//
// Parameters:
//   - halfExtent: the quad half extent in local space, 0 selects
//     DefaultCellExtent
//
// Returns:
//   - []float32: 12 floats, CellVertexCount packed x, y positions
func CellVertices(halfExtent float32) []float32 {
	h := common.Coalesce(halfExtent, DefaultCellExtent)
	return []float32{
		-h, -h,
		h, -h,
		h, h,

		-h, -h,
		h, h,
		-h, h,
	}
}
