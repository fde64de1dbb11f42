package sim

import (
	"time"

	"github.com/openworld42/Cellolution/ocean"
	"github.com/openworld42/Cellolution/organism"
	"github.com/openworld42/Cellolution/sunshine"
)

// RenderState is an immutable picture of the simulation for a front
// end: the lattice colors with sunshine and cells painted in, organism
// bounding boxes, and the property dump of a followed organism. The
// worker publishes a fresh one periodically, readers keep whatever
// they loaded last.
type RenderState struct {
	Columns int
	Rows    int
	Step    int

	// Pixels holds one RGB value per lattice position, row-major.
	Pixels []uint32

	Organisms []OrganismBox
	Followed  *OrganismInfo

	OrganismCount  int
	Reservoir      int
	DroppedAlgae   int
	EmittedEaters  int
	TicksPerSecond int
	AverageTick    time.Duration
}

// At returns the published color at a lattice position.
func (r *RenderState) At(col, row int) uint32 {
	return r.Pixels[row*r.Columns+col]
}

// OrganismBox is the outline of one organism. Marked boxes carry
// the color of a recent state change, for the front end to flash.
type OrganismBox struct {
	Number                         int
	MinCol, MaxCol, MinRow, MaxRow int
	State                          organism.State
	Marked                         bool
	MarkRGB                        uint32
}

// OrganismInfo is the full dump of a followed organism.
type OrganismInfo struct {
	Number        int
	State         string
	Energy        int
	Weight        int
	Speed         int
	Direction     int
	OrganicAmount int
	Cells         []CellInfo
}

// CellInfo is the property vector of one cell of a followed organism.
type CellInfo struct {
	Species string
	Col     int
	Row     int
	RGB     uint32
	Props   [organism.NumCellProps]int
}

// Render returns the last published render state. Never nil once the
// simulation is built.
func (s *Simulation) Render() *RenderState {
	return s.render.Load()
}

// publish builds a render state from the current lattice and
// population and stores it for the readers.
func (s *Simulation) publish(now time.Time, step int) {
	oc := s.ocean
	state := &RenderState{
		Columns:        oc.Columns(),
		Rows:           oc.Rows(),
		Step:           step,
		Pixels:         make([]uint32, oc.Columns()*oc.Rows()),
		OrganismCount:  s.mgr.OrganismCount(),
		Reservoir:      s.mgr.OrganicMatterReservoir(),
		DroppedAlgae:   s.algae.DroppedCount(),
		EmittedEaters:  s.smokers.EmittedH2SEaterCount(),
		TicksPerSecond: s.times.CountRecent(now, time.Second),
		AverageTick:    s.durations.Average(),
	}
	for row := 0; row < oc.Rows(); row++ {
		for col := 0; col < oc.Columns(); col++ {
			p := oc.At(col, row)
			rgb := p.RGB
			if p.Kind == ocean.KindWater && p.Sun > 0 {
				rgb = sunshine.RGB(int(p.Sun))
			}
			state.Pixels[row*oc.Columns()+col] = rgb
		}
	}
	followed := s.followed.Load()
	for _, o := range s.mgr.Organisms() {
		for _, c := range o.Cells() {
			state.Pixels[c.Row*oc.Columns()+c.Col] = c.RGB
		}
		minCol, maxCol, minRow, maxRow := o.Outline()
		box := OrganismBox{
			Number: o.Number(),
			MinCol: minCol,
			MaxCol: maxCol,
			MinRow: minRow,
			MaxRow: maxRow,
			State:  o.State(),
		}
		if rgb, ok := o.State().RGB(); ok && o.DisplayPosition() {
			box.Marked = true
			box.MarkRGB = rgb
		}
		state.Organisms = append(state.Organisms, box)
		if o == followed {
			state.Followed = dumpOrganism(o)
		}
	}
	s.render.Store(state)
}

func dumpOrganism(o *organism.Organism) *OrganismInfo {
	info := &OrganismInfo{
		Number:        o.Number(),
		State:         o.State().String(),
		Energy:        o.Energy,
		Weight:        o.Weight,
		Speed:         o.Speed,
		Direction:     o.Direction,
		OrganicAmount: o.OrganicAmount(),
	}
	for _, c := range o.Cells() {
		info.Cells = append(info.Cells, CellInfo{
			Species: c.Species.Name(),
			Col:     c.Col,
			Row:     c.Row,
			RGB:     c.RGB,
			Props:   c.Props,
		})
	}
	return info
}
