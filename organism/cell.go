package organism

import (
	"fmt"

	"github.com/openworld42/Cellolution/ocean"
)

// Species identifies the concrete kind of a cell.
type Species uint8

const (
	// SpeciesAlgae cells transform sunlight and CO2 into energy and
	// organic matter. H2S is slightly toxic to them.
	SpeciesAlgae Species = iota
	// SpeciesH2SEater cells gain energy from hydrogen sulfide emitted
	// by the seabed or by smokers, a slow process.
	SpeciesH2SEater
	// SpeciesStem cells carry the genome of a multi-cell organism. A
	// stem cell without a genome is the temporary narrowing cell
	// bridging parent and child during a replication.
	SpeciesStem
)

// Name returns the public name of the species.
func (s Species) Name() string {
	switch s {
	case SpeciesAlgae:
		return "Single Algae Cell"
	case SpeciesH2SEater:
		return "Single H2S Eater"
	case SpeciesStem:
		return "Stem cell"
	}
	return fmt.Sprintf("Species(%d)", uint8(s))
}

// SpeciesByName resolves a persisted species name.
func SpeciesByName(name string) (Species, bool) {
	for _, s := range []Species{SpeciesAlgae, SpeciesH2SEater, SpeciesStem} {
		if s.Name() == name {
			return s, true
		}
	}
	return 0, false
}

// Cell property indices. A floating point value of 1.0 equates to the
// integer 10000 unless stated otherwise; substances held by a cell are
// capped at StockMax.
const (
	PropEnergy = iota
	PropEnergyConsumption // energy consumed to live one period
	PropSunBeamIncrement  // energy gained when hit by a sun beam
	PropH2SToEnergy       // energy per unit of H2S burned, zero if none
	PropWeight            // water equals 10000
	PropAgility           // standard is AgilityOne, modified by the genome
	PropCO2
	PropCO2AdsorptionRate
	PropCO2AdsorbEnergy // e.g. 5 means 1/5 = 20% of the adsorbed value
	PropCaCO3
	PropCaCO3AdsorptionRate
	PropCaCO3AdsorbEnergy
	PropH2S
	PropH2SAdsorptionRate
	PropH2SAdsorbEnergy
	PropOrganic
	PropOrganicAdsorptionRate
	PropOrganicAdsorbEnergy
	NumCellProps
)

const (
	// AgilityOne is the agility factor meaning "standard".
	AgilityOne = 10000

	// StockMax caps the amount of a substance a cell can hold.
	StockMax = 10000

	// WaterWeight is the weight of water, the buoyancy reference.
	WaterWeight = 10000

	// H2SEaterWeight is slightly heavier than water due to CaCO3 uptake.
	H2SEaterWeight = 10500
)

// Base colors of the cell species.
const (
	algaeBaseRGB     = 128<<16 | 218<<8 | 128
	h2sEaterBaseRGB  = 255<<16 | 70<<8 | 20
	stemCellRGB      = 40<<16 | 40<<8 | 255
	narrowingCellRGB = 100<<16 | 120<<8 | 255
)

// adsorbProps maps each substance to the property indices used when the
// cell takes it up from the surrounding water.
var adsorbProps = [ocean.NumSubstances]struct{ stock, rate, cost int }{
	ocean.CO2:     {PropCO2, PropCO2AdsorptionRate, PropCO2AdsorbEnergy},
	ocean.CaCO3:   {PropCaCO3, PropCaCO3AdsorptionRate, PropCaCO3AdsorbEnergy},
	ocean.H2S:     {PropH2S, PropH2SAdsorptionRate, PropH2SAdsorbEnergy},
	ocean.Organic: {PropOrganic, PropOrganicAdsorptionRate, PropOrganicAdsorbEnergy},
}

// Cell is a single cell belonging to an organism. All cells of any
// species share the same compact property vector.
type Cell struct {
	Species Species
	Col     int
	Row     int
	RGB     uint32
	Props   [NumCellProps]int
	Genome  Genome // nil for a narrowing cell

	organism *Organism
}

// NewAlgaeCell creates an algae cell with its species defaults. Energy
// is set by the caller, the genome may change the other values.
func NewAlgaeCell(col, row int, genome Genome) *Cell {
	c := &Cell{Species: SpeciesAlgae, Col: col, Row: row, RGB: algaeBaseRGB, Genome: genome}
	p := &c.Props
	p[PropAgility] = AgilityOne
	p[PropEnergyConsumption] = 80
	p[PropSunBeamIncrement] = 1000
	p[PropH2SToEnergy] = 0
	p[PropWeight] = WaterWeight
	p[PropCO2] = 100
	p[PropCO2AdsorptionRate] = 10
	p[PropCO2AdsorbEnergy] = 5
	p[PropCaCO3AdsorbEnergy] = 5
	p[PropH2SAdsorbEnergy] = 5
	p[PropOrganic] = 300
	p[PropOrganicAdsorptionRate] = 10
	p[PropOrganicAdsorbEnergy] = 8
	return c
}

// NewH2SEaterCell creates a hydrogen sulfide eater with its species
// defaults.
func NewH2SEaterCell(col, row int, genome Genome) *Cell {
	c := &Cell{Species: SpeciesH2SEater, Col: col, Row: row, RGB: h2sEaterBaseRGB, Genome: genome}
	p := &c.Props
	p[PropAgility] = AgilityOne
	p[PropEnergyConsumption] = 80
	p[PropH2SToEnergy] = 2
	p[PropWeight] = H2SEaterWeight
	p[PropCO2] = 100
	p[PropCO2AdsorbEnergy] = 5
	p[PropCaCO3AdsorbEnergy] = 5
	p[PropH2S] = 1000
	p[PropH2SAdsorptionRate] = 25
	p[PropH2SAdsorbEnergy] = 5
	p[PropOrganic] = 50
	p[PropOrganicAdsorptionRate] = 10
	p[PropOrganicAdsorbEnergy] = 8
	return c
}

// NewStemCell creates a stem cell. A nil genome makes it the temporary
// narrowing cell displayed during replication.
func NewStemCell(col, row int, genome Genome) *Cell {
	c := &Cell{Species: SpeciesStem, Col: col, Row: row, Genome: genome}
	if genome == nil {
		c.RGB = narrowingCellRGB
	} else {
		c.RGB = stemCellRGB
	}
	p := &c.Props
	p[PropAgility] = AgilityOne
	p[PropEnergyConsumption] = 80
	p[PropWeight] = WaterWeight
	p[PropCO2AdsorbEnergy] = 5
	p[PropCaCO3AdsorbEnergy] = 5
	p[PropH2SAdsorbEnergy] = 5
	p[PropOrganic] = 50
	p[PropOrganicAdsorptionRate] = 10
	p[PropOrganicAdsorbEnergy] = 8
	return c
}

// Organism returns the organism this cell belongs to.
func (c *Cell) Organism() *Organism { return c.organism }

// SetOrganism attaches the cell to an organism, usually during the
// replication process.
func (c *Cell) SetOrganism(o *Organism) { c.organism = o }

// Clone copies the cell with all its properties. The clone belongs to
// no organism yet.
func (c *Cell) Clone() *Cell {
	clone := *c
	clone.organism = nil
	return &clone
}

// AdsorbSubstances takes up substances from the underlying water pixel
// according to the cell's adsorption rates. Water substances are in the
// range [0..100], cell stocks are capped at StockMax, and each uptake
// costs energy.
func (c *Cell) AdsorbSubstances(p *ocean.Pixel) {
	for sub := 0; sub < ocean.NumSubstances; sub++ {
		ap := adsorbProps[sub]
		value := p.Substance(sub) * c.Props[ap.rate] / 100
		if c.Props[ap.stock]+value > StockMax {
			value = StockMax - c.Props[ap.stock]
		}
		p.SetSubstance(sub, p.Substance(sub)-value)
		c.Props[ap.stock] += value
		c.Props[PropEnergy] -= value / c.Props[ap.cost]
	}
}

// Decompose releases substances of a dead cell back into the water. On
// a non-water pixel the matter shrinks in place and the freed organic
// part goes back to the reservoir.
func (c *Cell) Decompose(oc *ocean.Ocean) int {
	p := oc.At(c.Col, c.Row)
	if p.Kind != ocean.KindWater {
		c.Props[PropCO2] = c.Props[PropCO2] * 95 / 100
		c.Props[PropCaCO3] = c.Props[PropCaCO3] * 95 / 100
		c.Props[PropH2S] = c.Props[PropH2S] * 95 / 100
		organic := c.Props[PropOrganic]
		c.Props[PropOrganic] = organic * 95 / 100
		return organic - organic*95/100
	}
	releaseClamped := func(sub, stock, percent int) {
		diff := c.Props[stock] * percent / 100
		diff = p.AddSubstance(sub, diff)
		c.Props[stock] -= diff
	}
	releaseClamped(ocean.CO2, PropCO2, 95)
	releaseClamped(ocean.CaCO3, PropCaCO3, 95)
	releaseClamped(ocean.H2S, PropH2S, 95)
	releaseClamped(ocean.Organic, PropOrganic, 90)
	return 0
}

// AdjustColorByEnergy recolors the cell, more energy shifts the color
// towards the bright end of the species ramp.
func (c *Cell) AdjustColorByEnergy() {
	e := c.Props[PropEnergy]
	if e < 0 {
		e = 0
	}
	switch c.Species {
	case SpeciesAlgae:
		red := min(90+e*50/50000, 128)
		green := min(130+e*120/50000, 230)
		blue := min(60+e*60/50000, 128)
		c.RGB = uint32(red<<16 | green<<8 | blue)
	case SpeciesH2SEater:
		green := min(70+e*184/50000, 240)
		blue := min(20+e*40/50000, 60)
		c.RGB = uint32(255<<16 | green<<8 | blue)
	case SpeciesStem:
		// stem cells keep their fixed color
	}
}

// SlowUpdate performs the species specific metabolism for one slow
// period: living costs energy, the energy source of the species adds
// some back.
func (c *Cell) SlowUpdate(oceanRows int) {
	switch c.Species {
	case SpeciesAlgae:
		// photosynthesis depends on the depth of the cell
		energy := c.Props[PropEnergy] - c.Props[PropEnergyConsumption]*c.Props[PropAgility]/AgilityOne
		sunAmount := 100 * oceanRows / (oceanRows - c.Row)
		energy += sunAmount + c.Props[PropAgility]/AgilityOne
		c.Props[PropEnergy] = energy
		c.AdjustColorByEnergy()
	case SpeciesH2SEater:
		energy := c.Props[PropEnergy] - c.Props[PropEnergyConsumption]*c.Props[PropAgility]/AgilityOne
		h2sDiff := (c.Props[PropH2S] * c.Props[PropAgility] / AgilityOne) / 10
		energy += h2sDiff * c.Props[PropH2SToEnergy]
		c.Props[PropH2S] -= h2sDiff
		c.Props[PropEnergy] = energy
		c.AdjustColorByEnergy()
	case SpeciesStem:
		// nothing to do
	}
}

func (c *Cell) String() string {
	return fmt.Sprintf("Cell [type=%s, Column=%d, Row=%d]", c.Species.Name(), c.Col, c.Row)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
