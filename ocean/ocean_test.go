package ocean

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openworld42/Cellolution/frand"
)

func TestNeighborEvenOddColumns(t *testing.T) {
	tests := []struct {
		col, row  int
		direction int
		wantCol   int
		wantRow   int
	}{
		// even column: above/below neighbors shift left
		{10, 10, 1, 10, 9},
		{10, 10, 2, 11, 10},
		{10, 10, 3, 10, 11},
		{10, 10, 4, 9, 11},
		{10, 10, 5, 9, 10},
		{10, 10, 6, 9, 9},
		// odd column: above/below neighbors shift right
		{11, 10, 1, 12, 9},
		{11, 10, 2, 12, 10},
		{11, 10, 3, 12, 11},
		{11, 10, 4, 11, 11},
		{11, 10, 5, 10, 10},
		{11, 10, 6, 11, 9},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt), func(t *testing.T) {
			col, row := Neighbor(tt.col, tt.row, tt.direction)
			assert.Equal(t, tt.wantCol, col, "unexpected neighbor column")
			assert.Equal(t, tt.wantRow, row, "unexpected neighbor row")
		})
	}
}

func TestMoveDegreesMatchesNeighborSectors(t *testing.T) {
	// the degree sectors must agree with the neighbor numbering, for both
	// column parities
	for _, col := range []int{10, 11} {
		for direction := 1; direction <= 6; direction++ {
			degrees := (direction-1)*60 + 30 // sector center
			wantCol, wantRow := Neighbor(col, 20, direction)
			gotCol, gotRow := MoveDegrees(col, 20, degrees)
			assert.Equal(t, wantCol, gotCol, "direction %d column", direction)
			assert.Equal(t, wantRow, gotRow, "direction %d row", direction)
		}
	}
}

func TestSubstanceClamping(t *testing.T) {
	var p Pixel
	p.SetSubstance(H2S, 150)
	assert.Equal(t, 100, p.Substance(H2S), "substances saturate at 100")
	p.SetSubstance(H2S, -3)
	assert.Equal(t, 0, p.Substance(H2S), "substances never go negative")

	p.SetSubstance(CO2, 95)
	applied := p.AddSubstance(CO2, 20)
	assert.Equal(t, 5, applied, "delta capped against headroom")
	assert.Equal(t, 100, p.Substance(CO2))
	applied = p.AddSubstance(CO2, -120)
	assert.Equal(t, -100, applied, "negative delta capped at zero")
}

func TestNewOceanTerrain(t *testing.T) {
	o := New(120, 80, frand.New(7))

	// two columns at every side are rock, margins make neighbor lookups
	// branch free
	for row := 0; row < o.Rows(); row++ {
		for col := 0; col < 2; col++ {
			assert.Equal(t, KindRock, o.At(col, row).Kind, "left margin col %d row %d", col, row)
			assert.Equal(t, KindRock, o.At(o.Columns()-1-col, row).Kind, "right margin")
		}
	}
	// the bottom row is covered by the seabed
	for col := 0; col < o.Columns(); col++ {
		assert.Equal(t, KindRock, o.At(col, o.Rows()-1).Kind, "seabed col %d", col)
	}
	// there is open water in the middle
	assert.True(t, o.At(60, 1).IsWater(), "expected surface water")

	o.InitSubstances()
	p := o.At(60, 0)
	require.True(t, p.IsWater())
	assert.Equal(t, 100, p.Substance(CO2), "surface water is CO2 saturated")
	deep := o.BottomBorderRows()[60]
	require.Greater(t, deep, 0)
	assert.Greater(t, o.At(60, deep).Substance(H2S), p.Substance(H2S),
		"H2S grows with depth")
}

func TestBorderTables(t *testing.T) {
	o := New(100, 60, frand.New(3))
	left := o.LeftBorderCols()
	right := o.RightBorderCols()
	bottom := o.BottomBorderRows()

	require.NotEmpty(t, left)
	require.NotEmpty(t, right)
	require.Len(t, bottom, o.Columns())
	for row, col := range left {
		assert.True(t, o.At(col, row).IsWater(), "left border points at water")
		assert.False(t, o.At(col-1, row).IsWater(), "pixel left of border is rock")
	}
	for col, row := range bottom {
		if row < 0 {
			continue
		}
		assert.True(t, o.At(col, row).IsWater(), "bottom border points at water")
	}
}

type occupied struct{ col, row int }

func (oc occupied) HasCellOn(col, row int) bool { return col == oc.col && row == oc.row }

func TestIsWaterConsultsOccupancy(t *testing.T) {
	o := New(60, 40, frand.New(1))
	require.True(t, o.IsWater(30, 5))
	o.SetOccupancy(occupied{30, 5})
	assert.False(t, o.IsWater(30, 5), "a cell occupies the pixel")
	assert.True(t, o.IsWater(31, 5))
}

func TestIsWaterOutsideLattice(t *testing.T) {
	o := New(60, 40, frand.New(1))
	assert.False(t, o.IsWater(30, -1), "above the surface")
	assert.False(t, o.IsWater(-1, 5), "left of the lattice")
	assert.False(t, o.IsWater(60, 5), "right of the lattice")
	assert.False(t, o.IsWater(30, 40), "below the seabed")
}

func TestReservoir(t *testing.T) {
	o := New(100, 60, frand.New(3))
	assert.Equal(t, (100+60*2)*50, o.Reservoir(), "initial reservoir")
	o.AddToReservoir(-70)
	assert.Equal(t, (100+60*2)*50-70, o.Reservoir())
}
