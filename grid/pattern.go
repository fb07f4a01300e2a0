package grid

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// parallelFillThreshold is the cell count at or above which Activations
// splits the fill across the worker pool instead of looping on the caller's
// goroutine.
const parallelFillThreshold = 4096

// fillWorkers is the worker count of the shared fill pool, leaving one CPU
// for the caller.
var fillWorkers = max(runtime.NumCPU()-1, 1)

// fillPool lazily creates the worker pool shared by every parallel fill.
// Workers persist for the life of the process and are reused across
// Activations calls, never spawned or torn down per call.
var fillPool = sync.OnceValue(func() worker.DynamicWorkerPool {
	return worker.NewDynamicWorkerPool(fillWorkers, 256, 1*time.Second)
})

// Pattern maps a cell's linear index to its activation value, 1 for active
// and 0 for inactive. A Pattern must be pure: the same index always yields
// the same value, with no dependence on call order or shared state. That
// purity is what keeps buffer population deterministic regardless of how the
// fill is scheduled.
type Pattern func(index uint32) uint32

// EveryNth returns a Pattern activating every cell whose linear index is a
// multiple of n. EveryNth(1) activates every cell.
//
// Parameters:
//   - n: the activation interval, must be >= 1
//
// Returns:
//   - Pattern: the interval pattern
func EveryNth(n uint32) Pattern {
	if n < 1 {
		panic("grid: EveryNth requires n >= 1")
	}
	return func(index uint32) uint32 {
		if index%n == 0 {
			return 1
		}
		return 0
	}
}

// Solid returns a Pattern holding every cell at the same activation value.
//
// Parameters:
//   - active: true for all cells active, false for all cells inactive
//
// Returns:
//   - Pattern: the constant pattern
func Solid(active bool) Pattern {
	var v uint32
	if active {
		v = 1
	}
	return func(uint32) uint32 {
		return v
	}
}

// Checker returns a Pattern activating cells in a checkerboard over the
// given grid, starting with an active cell at coordinate (0, 0).
//
// Parameters:
//   - d: the grid the checkerboard is laid out on
//
// Returns:
//   - Pattern: the checkerboard pattern
func Checker(d Descriptor) Pattern {
	return func(index uint32) uint32 {
		x, y := d.Coord(index)
		if (x+y)%2 == 0 {
			return 1
		}
		return 0
	}
}

// Activations evaluates a Pattern over every cell of a grid and returns the
// resulting activation values, one scalar slot per cell in linear index
// order. Large grids are filled in parallel chunks on the shared worker
// pool; because patterns are pure per-index functions, the result is
// identical to a sequential fill.
//
// Parameters:
//   - d: the grid to fill
//   - p: the pattern to evaluate, must not be nil
//
// Returns:
//   - []uint32: the activation values, length d.CellCount()
func Activations(d Descriptor, p Pattern) []uint32 {
	if p == nil {
		panic("grid: Activations requires a non-nil Pattern")
	}
	count := d.CellCount()
	states := make([]uint32, count)
	if count < parallelFillThreshold {
		for i := uint64(0); i < count; i++ {
			states[i] = p(uint32(i))
		}
		return states
	}

	chunk := (count + uint64(fillWorkers) - 1) / uint64(fillWorkers)

	// A WaitGroup scopes completion to this call's tasks; the pool is shared
	// and may be running other fills.
	var wg sync.WaitGroup
	for id := 0; uint64(id)*chunk < count; id++ {
		start := uint64(id) * chunk
		end := min(start+chunk, count)
		wg.Add(1)
		fillPool().SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for i := start; i < end; i++ {
					states[i] = p(uint32(i))
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	return states
}
