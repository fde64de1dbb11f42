// Package diffuse spreads the dissolved substances of the ocean over
// the hexagonal water lattice, like a simple finite element method:
// per step, each water pixel exchanges a fraction of every substance
// difference with its six neighbors. Deltas are buffered and merged
// after the sweep, so the order of the sweep does not bias the result.
package diffuse

import (
	"github.com/openworld42/Cellolution/frand"
	"github.com/openworld42/Cellolution/ocean"
	"github.com/openworld42/Cellolution/smokers"
)

const (
	neighborCount = 6

	// DiffusionDivider is the fraction denominator of an exchanged
	// difference: half of the neighbor count plus the pixel itself.
	DiffusionDivider = (neighborCount + 1) * 2

	// Organic matter is re-dissolved from the walls only while the
	// reservoir holds more than this amount, and only every fifth step.
	soluteReservoirMin = 5000
	soluteStepModulo   = 5

	// Surface exchange with the atmosphere.
	surfaceCO2       = 100
	surfaceH2SKeep   = 20 // below this value no H2S escapes
	surfaceH2SEscape = 20 // fraction divisor of the escaping H2S
)

// Reservoir is the organic matter pool substances dissolve from and
// return to. The organism manager implements it.
type Reservoir interface {
	OrganicMatterReservoir() int
	AddToOrganicMatterReservoir(amount int)
}

// Engine performs the diffusion steps for an ocean.
type Engine struct {
	ocean     *ocean.Ocean
	smokers   *smokers.Smokers
	reservoir Reservoir
	rnd       *frand.Source

	step     int
	rounding [DiffusionDivider]int
	// buffered per-pixel substance deltas, same indexing as the ocean
	deltas [][ocean.NumSubstances]int

	soluteOrganicMatter bool
}

// New creates a diffusion engine. The ocean borders must have been
// computed already.
func New(oc *ocean.Ocean, sm *smokers.Smokers, reservoir Reservoir, rnd *frand.Source) *Engine {
	return &Engine{
		ocean:     oc,
		smokers:   sm,
		reservoir: reservoir,
		rnd:       rnd,
		deltas:    make([][ocean.NumSubstances]int, oc.Columns()*oc.Rows()),
	}
}

// Step performs one full diffusion step: boundary exchange with the
// atmosphere, the rocks and the smokers, then the buffered sweep over
// all water pixels.
func (e *Engine) Step(step int) {
	e.step = step
	e.BoundaryForcing(step)
	if e.smokers != nil {
		e.smokers.EmitSubstances()
	}
	e.Diffuse()
}

// BoundaryForcing applies the substance sources and sinks at the
// borders of the water body: the atmosphere above the surface and the
// rock of the walls and the seabed.
func (e *Engine) BoundaryForcing(step int) {
	oc := e.ocean
	columns := oc.Columns()
	// diffusion from the water surface
	for col := 1; col < columns; col++ {
		p := oc.At(col, 0)
		if p.Kind != ocean.KindWater {
			continue
		}
		p.SetSubstance(ocean.CO2, surfaceCO2)
		// H2S diffusion into the atmosphere
		h2s := p.Substance(ocean.H2S)
		if h2s > surfaceH2SKeep {
			h2s -= h2s / surfaceH2SEscape
		}
		p.SetSubstance(ocean.H2S, h2s)
	}
	// diffusion from the left wall
	border := oc.LeftBorderCols()
	for row := 0; row < len(border); row++ {
		e.solutionRock(border[row], row)
	}
	// if there is enough organic matter in the reservoir, solute it
	// from the walls and the ground
	e.soluteOrganicMatter = e.reservoir.OrganicMatterReservoir() > soluteReservoirMin &&
		step%soluteStepModulo == 0
	// diffusion from the right wall
	border = oc.RightBorderCols()
	for row := 0; row < len(border); row++ {
		e.solutionRock(border[row], row)
	}
	// diffusion from the bottom
	border = oc.BottomBorderRows()
	for col := 0; col < len(border); col++ {
		row := border[col]
		if row <= 0 {
			// all rock in this column, or no water above
			continue
		}
		e.solutionRock(col, row)
	}
}

// solutionRock exchanges matter between a water pixel and the rock it
// touches: lime dissolves or deposits towards its equilibrium, some
// minimum H2S seeps out, and organic matter returns from the
// reservoir.
func (e *Engine) solutionRock(col, row int) {
	p := e.ocean.At(col, row)
	if p.Kind != ocean.KindWater {
		return
	}
	value := p.Substance(ocean.CaCO3)
	if value < 40 {
		p.SetSubstance(ocean.CaCO3, value+1) // dissolve a little lime of the rock
	} else if value > 80 {
		p.SetSubstance(ocean.CaCO3, value-1) // deposit some lime
	}
	value = p.Substance(ocean.H2S)
	if value < 20 {
		// dissolve some minimum H2S
		p.SetSubstance(ocean.H2S, value+20/(value+1))
	}
	if e.soluteOrganicMatter {
		// dissolve some collected matter of decomposed organisms
		p.AddSubstance(ocean.Organic, 1)
		e.reservoir.AddToOrganicMatterReservoir(-1)
	}
}

// Diffuse performs the buffered diffusion sweep: compute the deltas of
// all water pixels column by column, then merge them in one pass.
func (e *Engine) Diffuse() {
	oc := e.ocean
	columns, rows := oc.Columns(), oc.Rows()
	border := oc.BottomBorderRows()
	col := 0
	for ; col < columns; col++ {
		if border[col] >= 0 {
			break // the first column holding water
		}
	}
	e.updateRoundingByChance()
	for ; col < columns-2; col++ {
		rowBottom := border[col]
		if rowBottom < 0 {
			// all rock again, no more water to the right
			break
		}
		e.computeDiffusionCol(col, rowBottom)
	}
	// add the buffered differences and clear them for the next step
	for col = 0; col < columns; col++ {
		for row := 0; row < rows; row++ {
			idx := col*rows + row
			p := oc.At(col, row)
			if p.Kind == ocean.KindWater {
				for i := 0; i < ocean.NumSubstances; i++ {
					p.AddSubstance(i, e.deltas[idx][i])
				}
			}
			e.deltas[idx] = [ocean.NumSubstances]int{}
		}
	}
}

// computeDiffusionCol computes the deltas of one water pixel column.
// Since this is done column by column into the buffer, the result does
// not depend on the sweep order.
func (e *Engine) computeDiffusionCol(col, rowBottom int) {
	for row := 0; row <= rowBottom; row++ {
		if e.ocean.At(col, row).Kind != ocean.KindWater {
			continue
		}
		e.computeDeltasFor(col, row)
	}
}

// computeDeltasFor buffers the substance exchange of one water pixel
// with its six hexagon neighbors.
func (e *Engine) computeDeltasFor(col, row int) {
	colLeft := col
	if col&1 == 0 {
		colLeft = col - 1
	}
	colRight := colLeft + 1
	if row > 0 {
		e.neighborDeltas(col, row, colLeft, row-1)
		e.neighborDeltas(col, row, colRight, row-1)
	}
	e.neighborDeltas(col, row, col-1, row)
	e.neighborDeltas(col, row, col+1, row)
	e.neighborDeltas(col, row, colLeft, row+1)
	e.neighborDeltas(col, row, colRight, row+1)
}

// neighborDeltas adds the exchanged fraction of each substance
// difference with one neighbor to the pixel's buffered deltas.
func (e *Engine) neighborDeltas(col, row, nCol, nRow int) {
	oc := e.ocean
	if nCol < 0 || nCol >= oc.Columns() || nRow < 0 || nRow >= oc.Rows() {
		return
	}
	neighbor := oc.At(nCol, nRow)
	if neighbor.Kind != ocean.KindWater {
		return
	}
	self := oc.At(col, row)
	deltas := &e.deltas[col*oc.Rows()+row]
	for i := 0; i < ocean.NumSubstances; i++ {
		difference := neighbor.Substance(i) - self.Substance(i)
		remainder := difference % DiffusionDivider
		delta := difference / DiffusionDivider
		if remainder >= 0 {
			delta += e.rounding[remainder]
		} else {
			delta -= e.rounding[-remainder]
		}
		deltas[i] += delta
	}
}

// updateRoundingByChance changes the probability for rounding up or
// down, depending on the remainder of the divided difference. Each
// remainder keeps its chance proportional to its size, so the expected
// exchange equals the exact fraction. Refreshed once per step.
func (e *Engine) updateRoundingByChance() {
	e.rounding[0] = 0 // no remainder, no rounding
	for i := 1; i < len(e.rounding); i++ {
		e.rounding[i] = (e.rnd.Intn(len(e.rounding)) + i) / len(e.rounding)
	}
}
