// Package smokers implements the black smokers of the seabed: vents
// emitting hydrogen sulfide and lime into the water above, and from
// time to time pushing out a sulfur-based living cell.
package smokers

import (
	"time"

	"github.com/openworld42/Cellolution/frand"
	"github.com/openworld42/Cellolution/ocean"
	"github.com/openworld42/Cellolution/organism"
)

const (
	// SmokerRGB is the display color of smoker rocks.
	SmokerRGB = 80<<16 | 70<<8 | 70

	// BubbleSizeMax is the size at which a smoke bubble bursts.
	BubbleSizeMax = 18

	// smokePeriod throttles the visible smoking and the cell emission.
	smokePeriod = 100 * time.Millisecond

	// Substance values forced into the water column above a vent.
	ventH2S   = 90
	ventCaCO3 = 80
)

// Vent is the mouth of a smoker.
type Vent struct {
	Col int
	Row int
}

// Smokers places a number of smokers on the seabed and drives their
// emissions.
type Smokers struct {
	ocean                *ocean.Ocean
	mgr                  *organism.Manager
	rnd                  *frand.Source
	vents                []Vent
	bubbleSize           []int
	emittedH2SEaterCount int
	lastTimeSmoked       time.Time
}

// New creates the given number of smokers, spread over the seabed.
func New(oc *ocean.Ocean, mgr *organism.Manager, rnd *frand.Source, smokerCount int, now time.Time) *Smokers {
	s := &Smokers{
		ocean:          oc,
		mgr:            mgr,
		rnd:            rnd,
		lastTimeSmoked: now,
	}
	distance := oc.Columns() / (smokerCount + 1)
	for i := 0; i < smokerCount; i++ {
		s.createSmoker(i, distance)
	}
	s.bubbleSize = make([]int, len(s.vents))
	for i := range s.bubbleSize {
		// negative to start the bubbles at different times
		s.bubbleSize[i] = -rnd.Intn(10) - 1
	}
	return s
}

// Vents returns the smoker mouths.
func (s *Smokers) Vents() []Vent { return s.vents }

// BubbleSizes returns the current smoke bubble size per smoker, used
// by the rendering. Negative values mean no bubble yet.
func (s *Smokers) BubbleSizes() []int { return s.bubbleSize }

// EmittedH2SEaterCount returns the number of cells pushed out so far.
func (s *Smokers) EmittedH2SEaterCount() int { return s.emittedH2SEaterCount }

func (s *Smokers) isRock(col, row int) bool {
	return s.ocean.At(col, row).Kind == ocean.KindRock
}

func (s *Smokers) isWater(col, row int) bool {
	return s.ocean.At(col, row).Kind == ocean.KindWater
}

// createSmoker searches a fitting place on the seabed and builds the
// smoker: a chimney mouth with a cone of rocks below it.
func (s *Smokers) createSmoker(number, distance int) {
	col := 30 + number*distance + distance/2 + s.rnd.Intn(distance/4)
	for attempt := 0; attempt < 30; attempt, col = attempt+1, col+1 {
		// the lowest water pixel of the column
		rowFound := -1
		for row := s.ocean.Rows() - 1; row > 10; row-- {
			if s.isWater(col, row) {
				rowFound = row
				break
			}
		}
		if rowFound < 0 {
			continue
		}
		// a good place has water above and rock below
		if !s.isWater(col-1, rowFound-7) || !s.isWater(col+1, rowFound-7) ||
			!s.isWater(col, rowFound-8) || !s.isRock(col, rowFound+1) ||
			!s.isRock(col-1, rowFound+2) || !s.isRock(col+1, rowFound+2) {
			continue
		}
		rowFound -= 7
		s.ocean.SetRock(col, rowFound, SmokerRGB)
		s.vents = append(s.vents, Vent{Col: col, Row: rowFound})
		colLeftSide := col
		if col&1 == 0 {
			colLeftSide = col - 1
		}
		// the cone of rocks below the mouth, widening downwards
		row := rowFound + 1
		width := 2
		for j := 0; j < 4; j++ {
			s.createSmokerRocks(colLeftSide-j, row, width)
			row++
			width++
			s.createSmokerRocks(col-j, row, width)
			row++
			width++
		}
		width -= 2
		s.createSmokerRocks(colLeftSide-4, row, width)
		row++
		// avoid water below smokers
		colLeftSide -= 4
		for j := 0; j < 8 && row < s.ocean.Rows()-3; j++ {
			for k := 0; k < width; k++ {
				if s.isWater(colLeftSide+k, row) {
					s.ocean.SetRock(colLeftSide+k, row, SmokerRGB)
				}
			}
			row++
		}
		return
	}
}

func (s *Smokers) createSmokerRocks(col, row, count int) {
	for i := 0; i < count; i++ {
		s.ocean.SetRock(col+i, row, SmokerRGB)
	}
}

// EmitSubstances forces hydrogen sulfide and some lime into the water
// column above each vent, five columns wide and nine rows up.
func (s *Smokers) EmitSubstances() {
	for _, vent := range s.vents {
		for j := 1; j < 10; j++ {
			for col := vent.Col - 2; col <= vent.Col+2; col++ {
				p := s.ocean.At(col, vent.Row-j)
				if p.Kind != ocean.KindWater {
					continue
				}
				p.SetSubstance(ocean.H2S, ventH2S)
				p.SetSubstance(ocean.CaCO3, ventCaCO3)
			}
		}
	}
}

// emitH2SEater pushes a cell which has been living inside the smoker
// out into the ocean, with a lot of speed and energy.
func (s *Smokers) emitH2SEater(index int) {
	vent := s.vents[index]
	row := vent.Row - 3 - s.rnd.Intn(20)
	if !s.ocean.IsWater(vent.Col, row) {
		return
	}
	cell := s.mgr.CreateH2SEaterOrganism(vent.Col, row, 19000+s.rnd.Intn(9)*3000)
	cell.Organism().SetSpeedAndDirection(5+s.rnd.Intn(30), -20+s.rnd.Intn(41))
	s.emittedH2SEaterCount++
}

// Smoke lets the smokers smoke visibly and sometimes pushes an eater
// cell out. Throttled to its pass period.
func (s *Smokers) Smoke(now time.Time) {
	if now.Sub(s.lastTimeSmoked) <= smokePeriod {
		return
	}
	s.lastTimeSmoked = now
	for i := range s.vents {
		s.bubbleSize[i]++
		if s.bubbleSize[i] > BubbleSizeMax {
			s.bubbleSize[i] = -s.rnd.Intn(70)
		}
		if s.rnd.Intn(10) == 0 && s.bubbleSize[i] > 5 {
			if s.emittedH2SEaterCount < 20 {
				s.emitH2SEater(i)
			} else if s.rnd.Intn(10) == 0 {
				s.emitH2SEater(i)
			}
		}
	}
}
