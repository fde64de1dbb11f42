package organism

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/openworld42/Cellolution/frand"
	"github.com/openworld42/Cellolution/ocean"
)

const (
	// displayPositionCountDefault is the number of slow update passes a
	// state change stays marked in the rendered output.
	displayPositionCountDefault = 10

	// decomposeCountDefault is the number of slow update passes a
	// decomposing organism takes to vanish.
	decomposeCountDefault = 200

	// Lifecycle energy thresholds.
	deadEnergy      = 2000
	dyingEnergy     = 3000
	starvingEnergy  = 7000
	replicateEnergy = 50000

	// replicateOrganic is the organic matter an organism needs on top
	// of replicateEnergy to start a replication.
	replicateOrganic = 3000
)

// ErrState reports an organism in a state the lifecycle does not know.
var ErrState = errors.New("unexpected organism state")

// ErrMultiCell reports an attempt to grow an organism beyond a single
// cell, which needs outer cell computation not implemented yet.
var ErrMultiCell = errors.New("organisms with more than one cell not implemented")

// An Organism consists of one or more cells grouping together: a
// being, a creation. Each organism has an energy budget, the budget of
// a cell is the organism budget divided through the number of cells.
// If the budget is too low, the organism is starving and will die.
// A single cell may also form an organism.
type Organism struct {
	// Energy is the average energy of the organism's cells, the unit
	// of "1" is an integer of 10000.
	Energy int
	// Speed of one means one pixel per time slice, resistance grows
	// with the square of the speed.
	Speed int
	// Direction of the speed, atlas-like, in degrees: 0 is north,
	// clockwise.
	Direction int
	// Weight is the sum of the cell weights divided through the number
	// of cells, water equals 10000.
	Weight int
	// Moveable is false for agglutinated organisms.
	Moveable bool

	state      State
	lastState  State
	mgr        *Manager
	cells      []*Cell
	outerCells []*Cell // the cells outside, with water contact

	replication *Replication

	// outline: max/min of row and column of all cells
	minCol, maxCol int
	minRow, maxRow int

	number               int // individual number, starting with one
	displayPositionCount int
	decomposeCount       int
	organicAmount        int // average organic matter of the cells
}

func newOrganism(state State, mgr *Manager) *Organism {
	mgr.lastNumber++
	return &Organism{
		state:  state,
		mgr:    mgr,
		minCol: int(^uint(0) >> 1),
		minRow: int(^uint(0) >> 1),
		number: mgr.lastNumber,
	}
}

// Add adds a cell to this organism, usually during creation or
// replication.
func (o *Organism) Add(cell *Cell) error {
	if len(o.cells) >= 1 {
		return ErrMultiCell
	}
	o.growOutline(cell.Col, cell.Row)
	cell.SetOrganism(o)
	o.cells = append(o.cells, cell)
	o.outerCells = append(o.outerCells, cell)
	return nil
}

func (o *Organism) growOutline(col, row int) {
	if col < o.minCol {
		o.minCol = col
	}
	if col > o.maxCol {
		o.maxCol = col
	}
	if row < o.minRow {
		o.minRow = row
	}
	if row > o.maxRow {
		o.maxRow = row
	}
}

// AddEnergy adds an amount (possibly negative) to the organism's
// energy and returns the new energy.
func (o *Organism) AddEnergy(amount int) int {
	o.Energy += amount
	return o.Energy
}

// Cells returns the cells of the organism.
func (o *Organism) Cells() []*Cell { return o.cells }

// CellCount returns the number of cells belonging to this organism.
func (o *Organism) CellCount() int { return len(o.cells) }

// CenterCol returns the column of the center of this organism.
func (o *Organism) CenterCol() int { return (o.maxCol + o.minCol) / 2 }

// CenterRow returns the row of the center of this organism.
func (o *Organism) CenterRow() int { return (o.maxRow + o.minRow) / 2 }

// DimensionMax returns the maximum dimension of the organism's
// outline.
func (o *Organism) DimensionMax() int {
	dimCol := o.maxCol - o.minCol + 1
	dimRow := o.maxRow - o.minRow + 1
	if dimCol > dimRow {
		return dimCol
	}
	return dimRow
}

// Number returns the individual number of this organism.
func (o *Organism) Number() int { return o.number }

// OrganicAmount returns the average amount of organic matter collected
// by this organism, needed for replication.
func (o *Organism) OrganicAmount() int { return o.organicAmount }

// State returns the lifecycle state.
func (o *Organism) State() State { return o.state }

// LastState returns the state before the last state change.
func (o *Organism) LastState() State { return o.lastState }

// DecomposeCount returns the remaining decompose countdown of a
// decomposing organism.
func (o *Organism) DecomposeCount() int { return o.decomposeCount }

// DisplayPosition reports whether the rendering should still mark the
// position of the organism after a recent state change.
func (o *Organism) DisplayPosition() bool { return o.displayPositionCount > 0 }

// Outline returns the bounding box of the organism's cells.
func (o *Organism) Outline() (minCol, maxCol, minRow, maxRow int) {
	return o.minCol, o.maxCol, o.minRow, o.maxRow
}

// RestoreState sets the lifecycle fields of a reloaded organism.
func (o *Organism) RestoreState(state, lastState State, decomposeCount int) {
	o.state = state
	o.lastState = lastState
	o.decomposeCount = decomposeCount
}

// SetState sets the lifecycle state. Entering Alive also discards a
// finished replication.
func (o *Organism) SetState(state State) {
	o.state = state
	if state == Alive {
		o.replication = nil
	}
}

// Replication returns the running replication, if any.
func (o *Organism) Replication() *Replication { return o.replication }

// changeToState adjusts the organism on a state transition and logs
// it.
func (o *Organism) changeToState(newState State) {
	if newState == o.state {
		return
	}
	o.lastState = o.state
	o.state = newState
	log.Printf("organism %d at (%d/%d) changed from %s to %s",
		o.number, o.CenterCol(), o.CenterRow(), o.lastState, o.state)
	switch o.state {
	case Alive:
		o.displayPositionCount = 0 // not marked any longer
	case Starving, Dying, Dead, Decomposing, InReplication:
		o.displayPositionCount = displayPositionCountDefault
	}
}

// ComputeMaxMin recomputes the outline of this organism from its
// cells.
func (o *Organism) ComputeMaxMin() {
	first := o.cells[0]
	o.minCol, o.maxCol = first.Col, first.Col
	o.minRow, o.maxRow = first.Row, first.Row
	for _, c := range o.cells[1:] {
		o.growOutline(c.Col, c.Row)
	}
}

// HasCellOn tests if the organism has a cell on the given column and
// row.
func (o *Organism) HasCellOn(col, row int) bool {
	if col < o.minCol || col > o.maxCol || row < o.minRow || row > o.maxRow {
		return false
	}
	for _, c := range o.cells {
		if c.Col == col && c.Row == row {
			return true
		}
	}
	return false
}

// HasFreeSpace reports whether there is only water within the given
// distance around the organism's outline.
func (o *Organism) HasFreeSpace(distance int) bool {
	oc := o.mgr.ocean
	columns, rows := oc.Columns(), oc.Rows()
	for i := 1; i <= distance; i++ {
		colMin := max(o.minCol-i, 0)
		colMax := min(o.maxCol+i, columns-1)
		rowMin := max(o.minRow-i, 0)
		rowMax := min(o.maxRow+i, rows-1)
		for col := colMin; col <= colMax; col++ {
			if !oc.IsWater(col, rowMin) || !oc.IsWater(col, rowMax) {
				return false
			}
		}
		for row := rowMin; row <= rowMax; row++ {
			if !oc.IsWater(colMin, row) || !oc.IsWater(colMax, row) {
				return false
			}
		}
	}
	return true
}

// IsTouched reports whether the given rectangle overlaps the outline
// of the organism.
func (o *Organism) IsTouched(left, right, top, bottom int) bool {
	for col := left; col <= right; col++ {
		for row := top; row <= bottom; row++ {
			if col < o.minCol || col > o.maxCol || row < o.minRow || row > o.maxRow {
				continue
			}
			return true
		}
	}
	return false
}

// SetSpeedAndDirection sets the speed and the direction this organism
// moves.
func (o *Organism) SetSpeedAndDirection(speed, directionDegrees int) {
	o.Speed = speed
	o.Direction = AdjustDegrees(directionDegrees)
}

// Move moves this organism if it is moveable, either due to speed or
// Brownian movement. Rocks stop the speed.
func (o *Organism) Move(rnd *frand.Source) {
	if !o.Moveable {
		return
	}
	stepsToGo := 1
	switch o.state {
	case Dead, Decomposing:
		// sink a little from time to time, or do some Brownian movement
		if rnd.Intn(5) == 0 {
			o.Direction = 180 // down
		} else {
			stepsToGo = moveAndTurnWithBrownianMovement(o, rnd)
		}
	default:
		stepsToGo = moveAndTurnWithBrownianMovement(o, rnd)
	}
	for step := 0; step < stepsToGo; step++ {
		if !canMoveDueToRocks(o, o.mgr.ocean) {
			// organism would touch something, therefore it has stopped
			o.Speed = 0
			break
		}
		moveCells(o, 1)
		o.ComputeMaxMin()
	}
}

// OneStepOfLife performs one time step of life: the outer cells adsorb
// substances of the water they touch. Growing organisms do not
// exchange substances yet.
func (o *Organism) OneStepOfLife() {
	switch o.state {
	case Dead, Decomposing, Growing:
		return
	}
	oc := o.mgr.ocean
	for _, cell := range o.outerCells {
		p := oc.At(cell.Col, cell.Row)
		if p == nil || p.Kind != ocean.KindWater {
			continue
		}
		cell.AdsorbSubstances(p)
	}
}

// deadOrDecomposing handles an organism on its way to vanish: losing
// energy while dead, then dissolving its substances into the water.
func (o *Organism) deadOrDecomposing() {
	if o.state == Dead {
		energy := o.Energy * 95 / 100
		o.Energy = energy
		for _, c := range o.cells {
			c.Props[PropEnergy] = energy
		}
		if energy == 0 {
			o.changeToState(Decomposing)
			o.decomposeCount = decomposeCountDefault
		}
		return
	}
	// decompose
	for _, c := range o.cells {
		if freed := c.Decompose(o.mgr.ocean); freed > 0 {
			o.mgr.AddToOrganicMatterReservoir(freed)
		}
	}
	o.decomposeCount--
	if o.decomposeCount <= 0 {
		// save the remaining organic matter
		organic := 0
		for _, c := range o.cells {
			organic += c.Props[PropOrganic]
		}
		o.mgr.AddToOrganicMatterReservoir(organic)
		// everything useful has been decomposed, the organism vanishes
		o.mgr.Remove(o)
	}
}

// SlowUpdate performs the updates not needed to be fast: cell
// metabolism, the energy budget and the resulting lifecycle
// transitions.
func (o *Organism) SlowUpdate(now time.Time) error {
	if o.displayPositionCount > 0 {
		// a marked organism stays marked for a while
		o.displayPositionCount--
	}
	// the average amount of organic material, needed for replication
	sumOrganic := 0
	for _, c := range o.cells {
		sumOrganic += c.Props[PropOrganic]
	}
	o.organicAmount = sumOrganic / len(o.cells)
	switch o.state {
	case Alive, Growing, Starving, Dying:
		// the usual computation below
	case InReplication:
		return o.replication.NextStep(now)
	case Dead, Decomposing:
		o.deadOrDecomposing()
		return nil
	default:
		return fmt.Errorf("organism %d: %w: %s", o.number, ErrState, o.state)
	}
	sumEnergy := 0
	for _, c := range o.cells {
		sumEnergy += c.Props[PropEnergy]
		c.SlowUpdate(o.mgr.ocean.Rows())
	}
	energy := sumEnergy / len(o.cells)
	o.Energy = energy
	switch {
	case energy < deadEnergy:
		o.changeToState(Dead)
		o.deadOrDecomposing()
	case energy < dyingEnergy:
		o.changeToState(Dying)
	case energy < starvingEnergy:
		o.changeToState(Starving)
	case energy > replicateEnergy && o.organicAmount > replicateOrganic:
		// cell division and replication, resulting in 2 organisms
		o.changeToState(InReplication)
		o.replication = NewReplication(o, o.mgr, now)
	default:
		// alive, recovered, or a grown child turning alive
		o.changeToState(Alive)
	}
	return nil
}

func (o *Organism) String() string {
	s := fmt.Sprintf("Organism [state=%s, minCol=%d, maxCol=%d, minRow=%d, maxRow=%d] -> cells:",
		o.state, o.minCol, o.maxCol, o.minRow, o.maxRow)
	for i, c := range o.cells {
		s += fmt.Sprintf("\n\tCell[%d]: %s", i, c)
	}
	return s
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
