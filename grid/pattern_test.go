package grid

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryNth(t *testing.T) {
	p := EveryNth(3)
	want := []uint32{1, 0, 0, 1, 0, 0, 1, 0}
	for i, w := range want {
		assert.Equal(t, w, p(uint32(i)), "index %d", i)
	}

	all := EveryNth(1)
	for i := uint32(0); i < 16; i++ {
		assert.Equal(t, uint32(1), all(i))
	}
}

func TestEveryNthZeroPanics(t *testing.T) {
	assert.Panics(t, func() { EveryNth(0) })
}

func TestEveryNthIsPure(t *testing.T) {
	p := EveryNth(2)
	assert.Equal(t, uint32(1), p(4))
	assert.Equal(t, uint32(0), p(5))
	assert.Equal(t, uint32(1), p(4), "repeated call must not change the result")
}

func TestSolid(t *testing.T) {
	on := Solid(true)
	off := Solid(false)
	for i := uint32(0); i < 8; i++ {
		assert.Equal(t, uint32(1), on(i))
		assert.Equal(t, uint32(0), off(i))
	}
}

func TestChecker(t *testing.T) {
	d := Descriptor{Width: 4, Height: 2}
	p := Checker(d)

	// Row 0: 1 0 1 0, row 1: 0 1 0 1.
	want := []uint32{1, 0, 1, 0, 0, 1, 0, 1}
	for i, w := range want {
		assert.Equal(t, w, p(uint32(i)), "index %d", i)
	}
}

func TestActivations(t *testing.T) {
	d := Descriptor{Width: 32, Height: 32}
	states := Activations(d, EveryNth(3))

	require.Len(t, states, int(d.CellCount()))
	active := 0
	for i, s := range states {
		if uint32(i)%3 == 0 {
			assert.Equal(t, uint32(1), s, "index %d", i)
			active++
		} else {
			assert.Equal(t, uint32(0), s, "index %d", i)
		}
	}
	assert.Equal(t, 342, active)
}

func TestActivationsParallelMatchesSequential(t *testing.T) {
	d := Descriptor{Width: 128, Height: 128}
	require.GreaterOrEqual(t, d.CellCount(), uint64(parallelFillThreshold),
		"grid must be large enough to take the parallel path")

	p := Checker(d)
	got := Activations(d, p)

	want := make([]uint32, d.CellCount())
	for i := range want {
		want[i] = p(uint32(i))
	}
	assert.Equal(t, want, got)
}

func TestActivationsReusesFillWorkers(t *testing.T) {
	d := Descriptor{Width: 128, Height: 128}
	require.GreaterOrEqual(t, d.CellCount(), uint64(parallelFillThreshold),
		"grid must be large enough to take the parallel path")

	// Prime the shared pool so its workers are part of the baseline.
	Activations(d, Solid(true))
	before := runtime.NumGoroutine()

	// Enough calls that even one leaked goroutine per call would exceed the
	// pool's worker cap.
	calls := fillWorkers + 10
	for range calls {
		Activations(d, Checker(d))
	}
	after := runtime.NumGoroutine()

	assert.LessOrEqual(t, after, before+fillWorkers,
		"%d fills grew the goroutine count from %d to %d; fills must reuse the shared pool's workers",
		calls, before, after)
}

func TestActivationsNilPatternPanics(t *testing.T) {
	assert.Panics(t, func() { Activations(Descriptor{Width: 4, Height: 4}, nil) })
}
