package systems

import (
	"testing"

	"gonum.org/v1/gonum/blas/blas32"
)

func diffuse(f *TrailField, p *Params) {
	NewDiffusionSystem().Update(f, 0, f.H, p)
	f.Swap()
}

func TestDiffusionUniformFieldOnlyEvaporates(t *testing.T) {
	p := testParams(16, 16)
	p.DiffuseSpeed = 8
	p.EvaporateSpeed = 0.6
	p.DeltaTime = 1.0 / 60

	f, _ := NewTrailField(16, 16)
	f.Fill(Uniform(0.5))
	diffuse(f, &p)

	want := 0.5 - p.EvaporateSpeed*p.DeltaTime
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			c := f.Read(x, y)
			if !approx(c.R, want) || !approx(c.A, want) {
				t.Fatalf("cell (%d,%d): expected %f, got %+v", x, y, want, c)
			}
		}
	}
}

func TestDiffusionNeverNegative(t *testing.T) {
	p := testParams(8, 8)
	p.DiffuseSpeed = 1
	p.EvaporateSpeed = 10

	f, _ := NewTrailField(8, 8)
	f.Write(3, 3, Uniform(2))
	diffuse(f, &p)

	view := f.View()
	for i := 0; i < view.Len(); i++ {
		c := view.Cell(i)
		if c.R < 0 || c.G < 0 || c.B < 0 || c.A < 0 {
			t.Fatalf("cell %d negative: %+v", i, c)
		}
	}
	if got := f.Read(3, 3); got != (Cell{}) {
		t.Errorf("expected full evaporation, got %+v", got)
	}
}

func TestDiffusionExcludesOutOfRangeNeighbors(t *testing.T) {
	p := testParams(8, 8)
	p.DiffuseSpeed = 1 // full blend toward the local mean
	p.EvaporateSpeed = 0

	f, _ := NewTrailField(8, 8)
	f.Write(0, 0, Uniform(9))
	diffuse(f, &p)

	tests := []struct {
		x, y int
		want float32
	}{
		{0, 0, 9.0 / 4}, // corner has 4 in-range cells
		{1, 0, 9.0 / 6}, // edge has 6
		{1, 1, 9.0 / 9}, // interior has 9
		{2, 2, 0},
	}
	for _, tc := range tests {
		if got := f.Read(tc.x, tc.y).R; !approx(got, tc.want) {
			t.Errorf("cell (%d,%d): expected %f, got %f", tc.x, tc.y, tc.want, got)
		}
	}
}

func TestDiffusionBlendClamped(t *testing.T) {
	p := testParams(8, 8)
	p.EvaporateSpeed = 0

	run := func(speed float32) Cell {
		p.DiffuseSpeed = speed
		f, _ := NewTrailField(8, 8)
		f.Write(4, 4, Uniform(9))
		diffuse(f, &p)
		return f.Read(4, 4)
	}

	full := run(1)
	over := run(100)
	if full != over {
		t.Errorf("blend above 1 should clamp: %+v vs %+v", full, over)
	}
	if !approx(full.R, 1) {
		t.Errorf("expected local mean 1, got %f", full.R)
	}

	if still := run(0); still.R != 9 {
		t.Errorf("zero diffuse speed should keep the cell, got %f", still.R)
	}
}

func TestDiffusionRowRange(t *testing.T) {
	p := testParams(8, 8)
	p.DiffuseSpeed = 1
	p.EvaporateSpeed = 0

	f, _ := NewTrailField(8, 8)
	f.Fill(Uniform(1))

	// Only rows [0,4) of next are written
	NewDiffusionSystem().Update(f, 0, 4, &p)
	f.Swap()

	if !approx(f.Read(0, 3).R, 1) {
		t.Errorf("row 3 not written: %+v", f.Read(0, 3))
	}
	if f.Read(0, 4) != (Cell{}) {
		t.Errorf("row 4 outside the range was written: %+v", f.Read(0, 4))
	}
}

func BenchmarkDiffusion(b *testing.B) {
	p := testParams(512, 512)
	p.DiffuseSpeed = 8
	p.EvaporateSpeed = 0.6
	p.DeltaTime = 1.0 / 60

	f, _ := NewTrailField(512, 512)
	f.Fill(Uniform(0.5))
	d := NewDiffusionSystem()

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		d.Update(f, 0, f.H, &p)
		f.Swap()
	}
}

// Benchmark the blend of one channel plane with the scalar loop
func BenchmarkBlendScalar(b *testing.B) {
	size := 512 * 512
	cur := make([]float32, size)
	mean := make([]float32, size)
	for i := range cur {
		cur[i] = float32(i%97) * 0.01
		mean[i] = float32(i%89) * 0.01
	}
	blend := float32(0.13)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for i := range cur {
			cur[i] += (mean[i] - cur[i]) * blend
		}
	}
}

// Benchmark the same blend as two BLAS level-1 calls: cur = (1-t)*cur + t*mean
func BenchmarkBlendBLAS(b *testing.B) {
	size := 512 * 512
	cur := make([]float32, size)
	mean := make([]float32, size)
	for i := range cur {
		cur[i] = float32(i%97) * 0.01
		mean[i] = float32(i%89) * 0.01
	}
	blend := float32(0.13)

	x := blas32.Vector{N: size, Data: mean, Inc: 1}
	y := blas32.Vector{N: size, Data: cur, Inc: 1}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		blas32.Scal(1-blend, y)
		blas32.Axpy(blend, x, y)
	}
}
