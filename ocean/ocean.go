// Package ocean provides the fixed-size hexagonally addressed lattice the
// simulation lives in: rock and water pixels, dissolved substances, border
// tables and the global organic matter reservoir.
package ocean

import (
	"github.com/hsluv/hsluv-go"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/openworld42/Cellolution/frand"
)

// Occupancy answers whether an organism cell currently sits on a lattice
// position. The organism manager implements it; the indirection keeps the
// lattice free of any organism dependency.
type Occupancy interface {
	HasCellOn(col, row int) bool
}

// Ocean is the water world all cells are living in: a column-major array
// of pixels, each either rock or water. Two columns on every side are
// permanently rock so neighbor lookups never need bounds checks.
type Ocean struct {
	columns int
	rows    int
	pixels  []Pixel

	leftBorderCols  []int // per row: first water column from the left
	rightBorderCols []int // per row: first water column from the right
	bottomBorderRow []int // per column: deepest water row, -1 if none

	// The total amount of organic matter in the ocean stays constant;
	// the reservoir balances what is locked in organisms and the lattice.
	reservoir int

	occupancy Occupancy
	rand      *frand.Source
}

// Terrain profile bounds, in pixels of rock thickness.
const (
	sideRockMin   = 5
	sideRockMax   = 15
	bottomRockMin = 8
	bottomRockMax = 20
)

// New creates an ocean with a noise-generated rocky border and water
// everywhere else. Substance values are not yet initialized; call
// InitSubstances (or let a persisted snapshot overwrite them).
func New(columns, rows int, rnd *frand.Source) *Ocean {
	o := &Ocean{
		columns:   columns,
		rows:      rows,
		pixels:    make([]Pixel, columns*rows),
		reservoir: (columns + rows*2) * 50,
		rand:      rnd,
	}
	o.createRockAndWater()
	return o
}

// Columns returns the number of lattice columns.
func (o *Ocean) Columns() int { return o.columns }

// Rows returns the number of lattice rows.
func (o *Ocean) Rows() int { return o.rows }

// At returns the pixel at a position. The caller is responsible for
// staying within the lattice; all simulation passes do by construction.
func (o *Ocean) At(col, row int) *Pixel {
	return &o.pixels[col*o.rows+row]
}

// SetOccupancy wires the organism manager in as the occupancy oracle.
func (o *Ocean) SetOccupancy(oc Occupancy) {
	o.occupancy = oc
}

// IsWater reports whether the pixel is water and not covered by a cell of
// any organism. Positions outside the lattice are not water.
func (o *Ocean) IsWater(col, row int) bool {
	if col < 0 || col >= o.columns || row < 0 || row >= o.rows {
		return false
	}
	if !o.pixels[col*o.rows+row].IsWater() {
		return false
	}
	return o.occupancy == nil || !o.occupancy.HasCellOn(col, row)
}

// Reservoir returns the amount of organic matter currently available for
// re-dissolution.
func (o *Ocean) Reservoir() int {
	return o.reservoir
}

// AddToReservoir adds (or, if negative, subtracts) organic matter.
func (o *Ocean) AddToReservoir(amount int) {
	o.reservoir += amount
}

// SetReservoir overwrites the reservoir, used when loading a snapshot.
func (o *Ocean) SetReservoir(amount int) {
	o.reservoir = amount
}

// SetRock turns a pixel into rock with the given display color.
func (o *Ocean) SetRock(col, row int, rgb uint32) {
	p := o.At(col, row)
	p.Kind = KindRock
	p.RGB = rgb
	p.Substances = [NumSubstances]uint8{}
	p.Sun = 0
}

// createRockAndWater builds the surrounding rocky environment. The wall
// and seabed thickness follows an opensimplex noise profile so that every
// ocean has its own shoreline.
func (o *Ocean) createRockAndWater() {
	noise := opensimplex.New(o.rand.Int63())
	for col := 0; col < o.columns; col++ {
		for row := 0; row < o.rows; row++ {
			p := o.At(col, row)
			p.Kind = KindWater
			p.RGB = WaterRGB
		}
	}
	for row := 0; row < o.rows; row++ {
		left := thickness(noise.Eval2(0.5, float64(row)/24), sideRockMin, sideRockMax)
		right := thickness(noise.Eval2(77.5, float64(row)/24), sideRockMin, sideRockMax)
		for col := 0; col < left; col++ {
			o.SetRock(col, row, o.rockRGB(noise, col, row))
		}
		for col := o.columns - right; col < o.columns; col++ {
			o.SetRock(col, row, o.rockRGB(noise, col, row))
		}
	}
	for col := 0; col < o.columns; col++ {
		bottom := thickness(noise.Eval2(float64(col)/24, 155.5), bottomRockMin, bottomRockMax)
		for row := o.rows - bottom; row < o.rows; row++ {
			o.SetRock(col, row, o.rockRGB(noise, col, row))
		}
	}
	// two columns on each side are always rock, neighbor lookups of any
	// water pixel may then skip bounds checking
	for col := 0; col < 2; col++ {
		for row := 0; row < o.rows; row++ {
			o.SetRock(col, row, o.rockRGB(noise, col, row))
			o.SetRock(o.columns-1-col, row, o.rockRGB(noise, o.columns-1-col, row))
		}
	}
	o.ComputeBorders()
}

func thickness(noise float64, min, max int) int {
	t := min + int((noise+1)/2*float64(max-min+1))
	if t < min {
		return min
	}
	if t > max {
		return max
	}
	return t
}

// rockRGB shades the rock from a narrow hue band, a little darker with
// depth.
func (o *Ocean) rockRGB(noise opensimplex.Noise, col, row int) uint32 {
	l := 30 + noise.Eval2(float64(col)/10, float64(row)/10)*8 - 6*float64(row)/float64(o.rows)
	r, g, b := hsluv.HsluvToRGB(50, 18, l)
	return uint32(r*255)<<16 | uint32(g*255)<<8 | uint32(b*255)
}

// InitSubstances sets the initial dissolved substance profile of all water
// pixels: more CO2 near the surface, more lime and H2S in the deep.
func (o *Ocean) InitSubstances() {
	for col := 0; col < o.columns; col++ {
		for row := 0; row < o.rows; row++ {
			p := o.At(col, row)
			if !p.IsWater() {
				continue
			}
			deeperMore := 80 * row / o.rows
			p.SetSubstance(CO2, 100-deeperMore)
			p.SetSubstance(CaCO3, deeperMore/3+23)
			p.SetSubstance(H2S, 10+deeperMore/2+1)
			p.SetSubstance(Organic, 20)
		}
	}
}

// ComputeBorders recomputes the border tables: the first water pixel per
// row seen from the left and right walls, and the deepest water pixel per
// column. The edge column/row pixels are forced to rock first.
func (o *Ocean) ComputeBorders() {
	o.leftBorderCols = make([]int, 0, o.rows)
	for row := 0; row < o.rows; row++ {
		found := false
		for col := 1; col < o.columns; col++ {
			if o.At(col, row).IsWater() {
				o.leftBorderCols = append(o.leftBorderCols, col)
				found = true
				break
			}
		}
		if !found {
			break
		}
	}
	o.rightBorderCols = make([]int, 0, o.rows)
	for row := 0; row < o.rows; row++ {
		found := false
		for col := o.columns - 2; col >= 0; col-- {
			if o.At(col, row).IsWater() {
				o.rightBorderCols = append(o.rightBorderCols, col)
				found = true
				break
			}
		}
		if !found {
			break
		}
	}
	o.bottomBorderRow = make([]int, o.columns)
	for col := 0; col < o.columns; col++ {
		o.bottomBorderRow[col] = -1 // column may be rock all the way down
		for row := o.rows - 2; row >= 0; row-- {
			if o.At(col, row).IsWater() {
				o.bottomBorderRow[col] = row
				break
			}
		}
	}
}

// LeftBorderCols returns, per row, the first water column from the left.
func (o *Ocean) LeftBorderCols() []int { return o.leftBorderCols }

// RightBorderCols returns, per row, the first water column from the right.
func (o *Ocean) RightBorderCols() []int { return o.rightBorderCols }

// BottomBorderRows returns, per column, the deepest water row (-1 for an
// all-rock column).
func (o *Ocean) BottomBorderRows() []int { return o.bottomBorderRow }
