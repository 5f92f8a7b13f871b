package systems

import (
	"sync/atomic"
)

// Cell is one RGBA trail sample. The channels carry the same intensity.
type Cell struct {
	R, G, B, A float32
}

// Intensity returns the channel sum the sensors weigh.
func (c Cell) Intensity() float32 {
	return c.R + c.G + c.B
}

// Uniform returns a cell with every channel set to v.
func Uniform(v float32) Cell {
	return Cell{R: v, G: v, B: v, A: v}
}

// TrailField is the double-buffered trail grid.
//
// Agents never write the current grid directly during steering: each visit bumps an
// atomic hit counter, and CommitDeposits folds the counters into the current grid once
// the steering dispatch has completed. Sensing therefore observes the field as it was
// at the start of the tick, independent of agent order.
type TrailField struct {
	W, H int

	cur  []Cell
	next []Cell
	hits []atomic.Uint32
}

// NewTrailField allocates two zeroed w*h grids.
func NewTrailField(w, h int) (*TrailField, error) {
	if w <= 0 {
		return nil, configErr("width", w, "must be positive")
	}
	if h <= 0 {
		return nil, configErr("height", h, "must be positive")
	}
	return &TrailField{
		W:    w,
		H:    h,
		cur:  make([]Cell, w*h),
		next: make([]Cell, w*h),
		hits: make([]atomic.Uint32, w*h),
	}, nil
}

// Read returns the current cell at (x,y). Coordinates must be in range.
func (f *TrailField) Read(x, y int) Cell {
	return f.cur[y*f.W+x]
}

// Write stores c in the current grid at (x,y).
func (f *TrailField) Write(x, y int, c Cell) {
	f.cur[y*f.W+x] = c
}

// Fill sets every current cell to c.
func (f *TrailField) Fill(c Cell) {
	for i := range f.cur {
		f.cur[i] = c
	}
}

// Swap exchanges the current and next grids.
func (f *TrailField) Swap() {
	f.cur, f.next = f.next, f.cur
}

// Deposit records one agent visit at (x,y). Safe for concurrent use.
func (f *TrailField) Deposit(x, y int) {
	f.hits[y*f.W+x].Add(1)
}

// Pending returns the number of visits recorded at (x,y) since the last commit.
func (f *TrailField) Pending(x, y int) uint32 {
	return f.hits[y*f.W+x].Load()
}

// CommitDeposits adds amount per recorded visit to rows [y0,y1) and clears their counters.
// Rows may be committed concurrently as long as ranges do not overlap.
func (f *TrailField) CommitDeposits(y0, y1 int, amount float32) {
	for i := y0 * f.W; i < y1*f.W; i++ {
		n := f.hits[i].Swap(0)
		if n == 0 {
			continue
		}
		add := float32(n) * amount
		c := &f.cur[i]
		c.R += add
		c.G += add
		c.B += add
		c.A += add
	}
}

// View returns a read-only handle to the current grid.
// It is only valid until the next tick.
func (f *TrailField) View() FieldView {
	return FieldView{W: f.W, H: f.H, cells: f.cur}
}

// FieldView is a read-only view of the trail grid handed to presentation.
type FieldView struct {
	W, H  int
	cells []Cell
}

// At returns the cell at (x,y).
func (v FieldView) At(x, y int) Cell {
	return v.cells[y*v.W+x]
}

// Cell returns the cell at flat index i (row-major).
func (v FieldView) Cell(i int) Cell {
	return v.cells[i]
}

// Len returns the number of cells.
func (v FieldView) Len() int {
	return len(v.cells)
}

// Intensities writes the red channel of every cell into dst, growing it if needed.
func (v FieldView) Intensities(dst []float64) []float64 {
	if cap(dst) < len(v.cells) {
		dst = make([]float64, len(v.cells))
	}
	dst = dst[:len(v.cells)]
	for i, c := range v.cells {
		dst[i] = float64(c.R)
	}
	return dst
}
