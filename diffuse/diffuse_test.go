package diffuse_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openworld42/Cellolution/diffuse"
	"github.com/openworld42/Cellolution/frand"
	"github.com/openworld42/Cellolution/ocean"
	"github.com/openworld42/Cellolution/organism"
)

// carveBasin shapes a rectangular water basin with two rock columns on
// each side and a rock floor, then recomputes the borders.
func carveBasin(columns, rows int, rnd *frand.Source) *ocean.Ocean {
	oc := ocean.New(columns, rows, rnd)
	for col := 0; col < columns; col++ {
		for row := 0; row < rows; row++ {
			p := oc.At(col, row)
			if col < 2 || col >= columns-2 || row >= rows-2 {
				p.Kind = ocean.KindRock
				p.RGB = 0x404040
				p.Substances = [ocean.NumSubstances]uint8{}
			} else {
				p.Kind = ocean.KindWater
				p.RGB = ocean.WaterRGB
			}
		}
	}
	oc.ComputeBorders()
	return oc
}

func waterSums(oc *ocean.Ocean) [ocean.NumSubstances]int {
	var sums [ocean.NumSubstances]int
	for col := 0; col < oc.Columns(); col++ {
		for row := 0; row < oc.Rows(); row++ {
			p := oc.At(col, row)
			if p.Kind != ocean.KindWater {
				continue
			}
			for i := 0; i < ocean.NumSubstances; i++ {
				sums[i] += p.Substance(i)
			}
		}
	}
	return sums
}

func TestDiffuseConservesMass(t *testing.T) {
	rnd := frand.New(11)
	oc := carveBasin(40, 30, rnd)
	mgr := organism.NewManager(oc, rnd, time.Unix(0, 0))
	// substance values far from the clamping bounds
	for col := 2; col < 38; col++ {
		for row := 0; row < 28; row++ {
			p := oc.At(col, row)
			for i := 0; i < ocean.NumSubstances; i++ {
				p.SetSubstance(i, 40+rnd.Intn(21))
			}
		}
	}
	before := waterSums(oc)
	e := diffuse.New(oc, nil, mgr, rnd)
	for i := 0; i < 10; i++ {
		e.Diffuse()
	}
	assert.Equal(t, before, waterSums(oc))
}

func TestDiffuseSpreadsTowardsNeighbors(t *testing.T) {
	rnd := frand.New(5)
	oc := carveBasin(40, 30, rnd)
	mgr := organism.NewManager(oc, rnd, time.Unix(0, 0))
	for col := 2; col < 38; col++ {
		for row := 0; row < 28; row++ {
			oc.At(col, row).SetSubstance(ocean.H2S, 10)
		}
	}
	oc.At(20, 14).SetSubstance(ocean.H2S, 90)
	e := diffuse.New(oc, nil, mgr, rnd)
	e.Diffuse()
	assert.Less(t, oc.At(20, 14).Substance(ocean.H2S), 90)
	spread := false
	for _, nr := range []int{1, 2, 3, 4, 5, 6} {
		col, row := ocean.Neighbor(20, 14, nr)
		if oc.At(col, row).Substance(ocean.H2S) > 10 {
			spread = true
		}
	}
	assert.True(t, spread, "expected H2S to reach a neighbor")
}

func TestDiffuseStaysBounded(t *testing.T) {
	rnd := frand.New(17)
	oc := carveBasin(40, 30, rnd)
	mgr := organism.NewManager(oc, rnd, time.Unix(0, 0))
	// extreme checkerboard of full and empty pixels
	for col := 2; col < 38; col++ {
		for row := 0; row < 28; row++ {
			v := 0
			if (col+row)&1 == 0 {
				v = 100
			}
			for i := 0; i < ocean.NumSubstances; i++ {
				oc.At(col, row).SetSubstance(i, v)
			}
		}
	}
	e := diffuse.New(oc, nil, mgr, rnd)
	for i := 0; i < 20; i++ {
		e.Diffuse()
	}
	for col := 0; col < 40; col++ {
		for row := 0; row < 30; row++ {
			p := oc.At(col, row)
			for i := 0; i < ocean.NumSubstances; i++ {
				v := p.Substance(i)
				require.GreaterOrEqual(t, v, 0)
				require.LessOrEqual(t, v, 100)
			}
		}
	}
}

func TestBoundaryForcingSurface(t *testing.T) {
	rnd := frand.New(23)
	oc := carveBasin(40, 30, rnd)
	mgr := organism.NewManager(oc, rnd, time.Unix(0, 0))
	p := oc.At(10, 0)
	p.SetSubstance(ocean.CO2, 55)
	p.SetSubstance(ocean.H2S, 50)
	e := diffuse.New(oc, nil, mgr, rnd)
	e.BoundaryForcing(1)
	// the atmosphere saturates CO2 and takes 1/20 of the H2S
	assert.Equal(t, 100, p.Substance(ocean.CO2))
	assert.Equal(t, 48, p.Substance(ocean.H2S))

	// low H2S stays untouched
	p.SetSubstance(ocean.H2S, 15)
	e.BoundaryForcing(2)
	assert.Equal(t, 15, p.Substance(ocean.H2S))
}

func TestBoundaryForcingRockSolution(t *testing.T) {
	rnd := frand.New(29)
	oc := carveBasin(40, 30, rnd)
	mgr := organism.NewManager(oc, rnd, time.Unix(0, 0))
	// the water pixel touching the right wall in row 5; the organic
	// solute flag is decided before the right wall pass
	col := oc.RightBorderCols()[5]
	p := oc.At(col, 5)
	p.SetSubstance(ocean.CaCO3, 30)
	p.SetSubstance(ocean.H2S, 4)
	organicBefore := p.Substance(ocean.Organic)
	mgr.AddToOrganicMatterReservoir(1000)
	reservoirBefore := mgr.OrganicMatterReservoir()
	require.Greater(t, reservoirBefore, 5000)

	e := diffuse.New(oc, nil, mgr, rnd)
	e.BoundaryForcing(5) // a multiple of the organic solute cadence
	assert.Equal(t, 31, p.Substance(ocean.CaCO3))
	// 4 + 20/(4+1) = 8
	assert.Equal(t, 8, p.Substance(ocean.H2S))
	assert.Equal(t, organicBefore+1, p.Substance(ocean.Organic))
	assert.Less(t, mgr.OrganicMatterReservoir(), reservoirBefore)
}

func TestBoundaryForcingLimeEquilibrium(t *testing.T) {
	rnd := frand.New(31)
	oc := carveBasin(40, 30, rnd)
	mgr := organism.NewManager(oc, rnd, time.Unix(0, 0))
	col := oc.RightBorderCols()[7]
	p := oc.At(col, 7)
	p.SetSubstance(ocean.CaCO3, 90)
	e := diffuse.New(oc, nil, mgr, rnd)
	e.BoundaryForcing(1)
	// oversaturated lime deposits back onto the rock
	assert.Equal(t, 89, p.Substance(ocean.CaCO3))

	p.SetSubstance(ocean.CaCO3, 60)
	e.BoundaryForcing(2)
	// within the equilibrium band nothing changes
	assert.Equal(t, 60, p.Substance(ocean.CaCO3))
}
