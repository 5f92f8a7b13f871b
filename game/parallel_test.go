package game

import (
	"sync/atomic"
	"testing"
)

func TestDispatchCoversEveryIndexOnce(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 8} {
		pool := newWorkerPool(workers)

		for _, n := range []int{1, 64, 640, 1000} {
			counts := make([]atomic.Int32, n)
			pool.dispatch(n, 64, func(start, end int) {
				for i := start; i < end; i++ {
					counts[i].Add(1)
				}
			})
			for i := range counts {
				if c := counts[i].Load(); c != 1 {
					t.Fatalf("workers=%d n=%d: index %d visited %d times", workers, n, i, c)
				}
			}
		}
		pool.stop()
	}
}

func TestDispatchChunksAlignToGrain(t *testing.T) {
	pool := newWorkerPool(4)
	defer pool.stop()

	var misaligned atomic.Int32
	pool.dispatch(64*40, 64, func(start, end int) {
		if start%64 != 0 || (end%64 != 0 && end != 64*40) {
			misaligned.Add(1)
		}
	})
	if misaligned.Load() != 0 {
		t.Error("chunk boundaries must fall on group multiples")
	}
}

func TestDispatchIsABarrier(t *testing.T) {
	pool := newWorkerPool(4)
	defer pool.stop()

	const n = 64 * 32
	first := make([]int32, n)
	var violations atomic.Int32

	for round := 0; round < 20; round++ {
		pool.dispatch(n, 64, func(start, end int) {
			for i := start; i < end; i++ {
				first[i]++
			}
		})
		// Every write of the previous dispatch is visible here
		want := int32(round + 1)
		pool.dispatch(n, 64, func(start, end int) {
			for i := 0; i < n; i++ {
				if first[i] != want {
					violations.Add(1)
					return
				}
			}
		})
	}
	if violations.Load() != 0 {
		t.Errorf("observed %d reads before the previous dispatch finished", violations.Load())
	}
}

func TestDispatchEmptyAndRestart(t *testing.T) {
	pool := newWorkerPool(4)

	called := false
	pool.dispatch(0, 8, func(int, int) { called = true })
	if called {
		t.Error("kernel called for empty range")
	}

	var total atomic.Int64
	pool.dispatch(800, 8, func(start, end int) { total.Add(int64(end - start)) })
	pool.stop()
	pool.stop() // idempotent

	// A stopped pool restarts on demand
	pool.dispatch(800, 8, func(start, end int) { total.Add(int64(end - start)) })
	pool.stop()

	if total.Load() != 1600 {
		t.Errorf("expected 1600 items processed, got %d", total.Load())
	}
}
