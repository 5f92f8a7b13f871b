package systems

// DiffusionSystem blurs the trail field toward its 3x3 average and evaporates it.
type DiffusionSystem struct{}

// NewDiffusionSystem creates a diffusion system.
func NewDiffusionSystem() *DiffusionSystem {
	return &DiffusionSystem{}
}

// Update reads the current grid and writes rows [y0,y1) of the next grid.
// Disjoint row ranges may run concurrently; call field.Swap once all rows are done.
func (d *DiffusionSystem) Update(field *TrailField, y0, y1 int, p *Params) {
	blend := clamp01(p.DiffuseSpeed * p.DeltaTime)
	decay := p.EvaporateSpeed * p.DeltaTime

	w, h := field.W, field.H
	src := field.cur
	dst := field.next

	for y := y0; y < y1; y++ {
		yLo := max(y-1, 0)
		yHi := min(y+1, h-1)
		for x := 0; x < w; x++ {
			xLo := max(x-1, 0)
			xHi := min(x+1, w-1)

			// Out-of-range neighbors are excluded, not padded
			var sum Cell
			for ny := yLo; ny <= yHi; ny++ {
				row := src[ny*w : (ny+1)*w]
				for nx := xLo; nx <= xHi; nx++ {
					c := row[nx]
					sum.R += c.R
					sum.G += c.G
					sum.B += c.B
					sum.A += c.A
				}
			}
			inv := 1 / float32((yHi-yLo+1)*(xHi-xLo+1))

			i := y*w + x
			c := src[i]
			dst[i] = Cell{
				R: evaporate(c.R+(sum.R*inv-c.R)*blend, decay),
				G: evaporate(c.G+(sum.G*inv-c.G)*blend, decay),
				B: evaporate(c.B+(sum.B*inv-c.B)*blend, decay),
				A: evaporate(c.A+(sum.A*inv-c.A)*blend, decay),
			}
		}
	}
}

func evaporate(v, decay float32) float32 {
	v -= decay
	if v < 0 {
		return 0
	}
	return v
}
