package organism

import (
	"fmt"
	"time"

	"github.com/openworld42/Cellolution/ocean"
)

// replicationRGB marks the stem cell of an organism in replication.
const replicationRGB = 0x00ff00

// Replication phases.
type replicationPhase uint8

const (
	phaseStart replicationPhase = iota
	phaseCopyCells
	phaseCopyEnd
)

// Waiting periods between the replication phases.
const (
	startWait     = 1000 * time.Millisecond
	copyCellsWait = 600 * time.Millisecond
	copyEndWait   = 600 * time.Millisecond
)

// Replication performs the duplication of an organism, depending on
// its genome: the cell division resulting in two organisms, each with
// parts of the energy and substances. The process spans several slow
// update passes and waits for free space around the parent.
type Replication struct {
	phase       replicationPhase
	organism    *Organism
	mgr         *Manager
	lastTime    time.Time
	stemCell    *Cell
	oldStemRGB  uint32
	narrowing   *Cell // the temporary bridge between parent and child
	neighborNr  int   // direction for the new cell and the narrowing
	newStemCell *Cell
	genome      Genome
	newGenome   Genome
	newEnergy   int // the energy each organism has after replication
	child       *Organism
}

// NewReplication starts the replication of an organism. The parent
// keeps a bit more than half of its energy, the rest is the cost of
// the replication and the budget of the child.
func NewReplication(o *Organism, mgr *Manager, now time.Time) *Replication {
	r := &Replication{
		organism: o,
		mgr:      mgr,
		lastTime: now,
	}
	// find the cell with the genome, either a single cell organism or
	// a stem cell
	for _, c := range o.cells {
		if c.Genome != nil {
			r.stemCell = c
			r.genome = c.Genome
			break
		}
	}
	energy := o.Energy
	r.newEnergy = energy/2 + energy/10
	o.Energy = r.newEnergy
	for _, c := range o.cells {
		c.Props[PropEnergy] = r.newEnergy
	}
	return r
}

// NextStep performs the next step of the replication.
func (r *Replication) NextStep(now time.Time) error {
	o := r.organism
	switch r.phase {
	case phaseStart:
		if now.Sub(r.lastTime) <= startWait {
			return nil
		}
		if !o.HasFreeSpace(o.DimensionMax() + 1) {
			// await free space (Brownian movement)
			return nil
		}
		// find a direction where to replicate: both the narrowing and
		// the new stem cell position need open water, an organism at
		// the surface cannot replicate upwards
		nr := r.mgr.rnd.Intn(6) + 1
		nCol, nRow := ocean.Neighbor(r.stemCell.Col, r.stemCell.Row, nr)
		newCol, newRow := ocean.Neighbor(nCol, nRow, nr)
		if !r.mgr.ocean.IsWater(nCol, nRow) || !r.mgr.ocean.IsWater(newCol, newRow) {
			// await, the next pass draws a new direction
			return nil
		}
		r.neighborNr = nr
		r.oldStemRGB = r.stemCell.RGB
		r.stemCell.RGB = replicationRGB
		// bridge the direction with a narrowing cell between the old
		// and the new stem cell
		r.narrowing = NewStemCell(nCol, nRow, nil)
		r.narrowing.Props[PropEnergy] = 4000 // just to display some energy
		// not a real part of the organism, bypassing Add
		o.cells = append(o.cells, r.narrowing)
		r.newGenome = r.genome.EvolutionaryClone(o, r.mgr.rnd)
		r.child = r.newGenome.CreateOrganism(r.mgr, o, r.newEnergy)
		r.phase = phaseCopyCells
		r.lastTime = now
		return nil
	case phaseCopyCells:
		if now.Sub(r.lastTime) <= copyCellsWait {
			return nil
		}
		if !o.HasFreeSpace(o.DimensionMax() + 1) {
			return nil
		}
		if r.newStemCell == nil {
			col, row := ocean.Neighbor(r.narrowing.Col, r.narrowing.Row, r.neighborNr)
			if !r.mgr.ocean.IsWater(col, row) {
				// the organism has drifted, await open water again
				return nil
			}
			r.newStemCell = r.newGenome.DuplicateStemCell(r.stemCell, col, row, r.child, r.mgr.rnd)
			if err := r.child.Add(r.newStemCell); err != nil {
				return fmt.Errorf("replication of organism %d: %w", o.number, err)
			}
			return nil // next cycle
		}
		if r.newGenome.CompleteOrganism() {
			r.phase = phaseCopyEnd
			r.lastTime = now
		}
		return nil
	case phaseCopyEnd:
		if now.Sub(r.lastTime) < copyEndWait {
			return nil
		}
		r.newGenome.Cleanup()
		r.removeNarrowing()
		r.stemCell.RGB = r.oldStemRGB
		r.mgr.AddOrganismDeferred(r.child)
		o.SetState(Alive) // this also clears the replication
		return nil
	}
	return fmt.Errorf("replication of organism %d: %w", o.number, ErrState)
}

// Revert undoes a replication in progress, e.g. before taking a
// snapshot of the simulation. The parent keeps its reduced energy and
// turns alive again, the child is discarded.
func (r *Replication) Revert() {
	if r.narrowing != nil {
		r.removeNarrowing()
	}
	if r.oldStemRGB != 0 {
		r.stemCell.RGB = r.oldStemRGB
	}
	r.organism.SetState(Alive)
}

func (r *Replication) removeNarrowing() {
	o := r.organism
	for i, c := range o.cells {
		if c == r.narrowing {
			o.cells = append(o.cells[:i], o.cells[i+1:]...)
			break
		}
	}
	r.narrowing = nil
}
