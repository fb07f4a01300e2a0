package grid

import (
	"fmt"
	"math"
)

// Descriptor fixes the dimensions of a cell grid in cells.
// A grid never changes size after creation; every GPU resource derived from
// a Descriptor is sized exactly once.
type Descriptor struct {
	// Width is the number of cell columns.
	Width uint32
	// Height is the number of cell rows.
	Height uint32
}

// Validate checks that the descriptor describes a drawable grid.
//
// Returns:
//   - error: an error if either dimension is zero or the cell count exceeds
//     the uint32 index space, otherwise nil
func (d Descriptor) Validate() error {
	if d.Width < 1 || d.Height < 1 {
		return fmt.Errorf("grid: %dx%d descriptor must have both dimensions >= 1", d.Width, d.Height)
	}
	if d.CellCount() > math.MaxUint32 {
		return fmt.Errorf("grid: %dx%d descriptor has %d cells, exceeding the uint32 limit", d.Width, d.Height, d.CellCount())
	}
	return nil
}

// CellCount returns the total number of cells in the grid. This is the
// instance count for every draw of the grid and the required element count
// for every cell state buffer. The product is computed in uint64 so it is
// exact even for descriptors Validate rejects.
//
// Returns:
//   - uint64: Width * Height
func (d Descriptor) CellCount() uint64 {
	return uint64(d.Width) * uint64(d.Height)
}

// Index converts a cell coordinate to its row-major linear index.
//
// Parameters:
//   - x: the column, 0 <= x < Width
//   - y: the row, 0 <= y < Height
//
// Returns:
//   - uint32: the linear index y*Width + x
func (d Descriptor) Index(x, y uint32) uint32 {
	return y*d.Width + x
}

// Coord converts a row-major linear index back to a cell coordinate.
// Coord is the inverse of Index for every in-range coordinate.
//
// Parameters:
//   - i: the linear index, 0 <= i < CellCount()
//
// Returns:
//   - uint32: the column (i mod Width)
//   - uint32: the row (i / Width)
func (d Descriptor) Coord(i uint32) (uint32, uint32) {
	return i % d.Width, i / d.Width
}

// Params returns the grid dimensions as two packed float32 values, the exact
// payload of the grid parameter uniform buffer consumed by the shaders.
//
// Returns:
//   - [2]float32: {Width, Height} converted to float32
func (d Descriptor) Params() [2]float32 {
	return [2]float32{float32(d.Width), float32(d.Height)}
}
