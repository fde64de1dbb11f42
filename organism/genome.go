package organism

import (
	"github.com/openworld42/Cellolution/frand"
)

const (
	// SimpleSingleCellGenomeTag identifies the genome of single cell
	// organisms in persisted data.
	SimpleSingleCellGenomeTag = "SimpleSingleCellGenome"

	// mutationDeviation is the standard deviation of the clipped
	// Gaussian used to mutate a property during replication.
	mutationDeviation = 1.5

	// Adsorbing costs energy: the cost divisor stays in [5..10],
	// 5 means 1/5 (20%), 10 means 1/10 (10%).
	minAdsorbEnergy = 5
	maxAdsorbEnergy = 10
)

// Genome defines how an organism works and what to do in a
// replication. It is carried by a stem cell; single cell organisms
// have stem cell properties within the single cell by definition.
type Genome interface {
	// Tag returns the persistence identifier of the genome kind.
	Tag() string
	// EvolutionaryClone creates a mutated copy of the genome for the
	// child organism of a replication.
	EvolutionaryClone(parent *Organism, rnd *frand.Source) Genome
	// DuplicateStemCell clones the parent's stem cell with mutated
	// properties, placing it at the given position within the child.
	DuplicateStemCell(stemCell *Cell, col, row int, child *Organism, rnd *frand.Source) *Cell
	// CompleteOrganism finishes the copy of all remaining cells after
	// the stem cell exists. It returns true when the child is complete.
	CompleteOrganism() bool
	// CreateOrganism creates the child organism carrying this genome.
	CreateOrganism(mgr *Manager, parent *Organism, energy int) *Organism
	// Cleanup releases replication scratch state after the copy.
	Cleanup()
}

// SingleCellGenome is the genome of a single cell organism.
type SingleCellGenome struct {
	parent *Organism
}

// NewSingleCellGenome creates the genome of a single cell organism.
func NewSingleCellGenome() *SingleCellGenome {
	return &SingleCellGenome{}
}

// Tag implements Genome.
func (g *SingleCellGenome) Tag() string { return SimpleSingleCellGenomeTag }

// EvolutionaryClone implements Genome. A single cell organism carries
// no genome state beyond its cell properties, so the clone only
// remembers its parentage.
func (g *SingleCellGenome) EvolutionaryClone(parent *Organism, rnd *frand.Source) Genome {
	return &SingleCellGenome{parent: parent}
}

// DuplicateStemCell implements Genome: the child's cell is a mutated
// copy of the parent's cell.
func (g *SingleCellGenome) DuplicateStemCell(stemCell *Cell, col, row int, child *Organism, rnd *frand.Source) *Cell {
	newCell := mutateCell(stemCell, rnd)
	newCell.SetOrganism(child)
	newCell.Col = col
	newCell.Row = row
	newCell.Genome = g
	return newCell
}

// CompleteOrganism implements Genome. A single cell organism consists
// of the stem cell alone, so the copy is already complete.
func (g *SingleCellGenome) CompleteOrganism() bool { return true }

// CreateOrganism implements Genome.
func (g *SingleCellGenome) CreateOrganism(mgr *Manager, parent *Organism, energy int) *Organism {
	child := mgr.CreateOrganism(Growing)
	child.AddEnergy(energy)
	child.Weight = parent.Weight
	child.Moveable = true
	return child
}

// Cleanup implements Genome.
func (g *SingleCellGenome) Cleanup() { g.parent = nil }

// mutateCell clones a cell and mutates some of its properties with a
// clipped Gaussian around the old value.
func mutateCell(old *Cell, rnd *frand.Source) *Cell {
	c := old.Clone()
	p := &c.Props
	p[PropAgility] = mutate(rnd, p[PropAgility])
	p[PropCO2AdsorbEnergy] = mutateBounded(rnd, p[PropCO2AdsorbEnergy])
	p[PropCaCO3AdsorptionRate] = mutateBounded(rnd, p[PropCaCO3AdsorptionRate])
	p[PropH2SAdsorptionRate] = mutateBounded(rnd, p[PropH2SAdsorptionRate])
	p[PropOrganicAdsorbEnergy] = mutateBounded(rnd, p[PropOrganicAdsorbEnergy])
	c.AdjustColorByEnergy()
	return c
}

// mutate draws a Gaussian around mean, clipped to [80%..120%] of it.
func mutate(rnd *frand.Source, mean int) int {
	return rnd.Gaussian(mean, mutationDeviation, mean*8/10, mean*12/10)
}

// mutateBounded draws a Gaussian around mean within the adsorb energy
// band.
func mutateBounded(rnd *frand.Source, mean int) int {
	return rnd.Gaussian(mean, mutationDeviation, minAdsorbEnergy, maxAdsorbEnergy)
}
