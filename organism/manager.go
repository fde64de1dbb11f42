package organism

import (
	"time"

	"go.uber.org/multierr"

	"github.com/openworld42/Cellolution/frand"
	"github.com/openworld42/Cellolution/ocean"
)

// Pass throttles: organisms do not move or update too often, saving
// CPU power and keeping the pace of the simulation independent of the
// tick rate.
const (
	movePeriod       = 130 * time.Millisecond
	slowUpdatePeriod = 500 * time.Millisecond
)

// nearestSearchMax limits the ring search distance of
// NearestOrganism.
const nearestSearchMax = 70

// Manager owns all organisms of the ocean. Additions and removals
// during a pass are deferred to keep the organism list stable while it
// is iterated.
type Manager struct {
	ocean      *ocean.Ocean
	rnd        *frand.Source
	organisms  []*Organism
	toRemove   []*Organism
	toAdd      []*Organism
	lastNumber int // organism numbers grow monotonically and never repeat

	lastTimeMoved      time.Time
	lastTimeSlowUpdate time.Time
}

// NewManager creates the organism manager and registers it as the
// occupancy oracle of the ocean.
func NewManager(oc *ocean.Ocean, rnd *frand.Source, now time.Time) *Manager {
	m := &Manager{
		ocean:         oc,
		rnd:           rnd,
		lastTimeMoved: now,
	}
	oc.SetOccupancy(m)
	return m
}

// Ocean returns the ocean the organisms live in.
func (m *Manager) Ocean() *ocean.Ocean { return m.ocean }

// Rand returns the random source of the simulation.
func (m *Manager) Rand() *frand.Source { return m.rnd }

// CreateOrganism creates a new organism in the given state, not yet
// added to the manager.
func (m *Manager) CreateOrganism(state State) *Organism {
	return newOrganism(state, m)
}

// AddOrganism adds an organism to the ocean.
func (m *Manager) AddOrganism(o *Organism) {
	m.organisms = append(m.organisms, o)
}

// AddOrganismDeferred queues an organism for addition at the end of
// the next slow update pass.
func (m *Manager) AddOrganismDeferred(o *Organism) {
	m.toAdd = append(m.toAdd, o)
}

// Remove queues an organism for removal, usually because it is
// completely decomposed.
func (m *Manager) Remove(o *Organism) {
	m.toRemove = append(m.toRemove, o)
}

// Organisms returns the organisms currently in the ocean.
func (m *Manager) Organisms() []*Organism { return m.organisms }

// OrganismCount returns the number of organisms within the ocean.
func (m *Manager) OrganismCount() int { return len(m.organisms) }

// HasCellOn tests if any organism has a cell on the given column and
// row.
func (m *Manager) HasCellOn(col, row int) bool {
	for _, o := range m.organisms {
		if o.HasCellOn(col, row) {
			return true
		}
	}
	return false
}

// AddToOrganicMatterReservoir adds (or subtracts) organic matter to
// the reservoir of the ocean. The amount of organic matter in the
// ocean should stay constant.
func (m *Manager) AddToOrganicMatterReservoir(amount int) {
	m.ocean.AddToReservoir(amount)
}

// OrganicMatterReservoir returns the amount of organic matter
// available to the ocean.
func (m *Manager) OrganicMatterReservoir() int {
	return m.ocean.Reservoir()
}

// NearestOrganism finds the organism closest to the given position,
// searching in growing rings up to a fixed distance. It returns nil if
// none is near.
func (m *Manager) NearestOrganism(col, row int) *Organism {
	columns, rows := m.ocean.Columns(), m.ocean.Rows()
	for i := 1; i < nearestSearchMax; i++ {
		left := max(col-i, 0)
		right := min(col+i, columns-1)
		top := max(row-i, 0)
		bottom := min(row+i, rows-1)
		for _, o := range m.organisms {
			if o.IsTouched(left, right, top, bottom) {
				return o
			}
		}
	}
	return nil
}

// MoveOrganisms moves all organisms, either through some gained speed
// or by Brownian motion. Throttled to its pass period.
func (m *Manager) MoveOrganisms(now time.Time) {
	if now.Sub(m.lastTimeMoved) < movePeriod {
		return
	}
	m.lastTimeMoved = now
	for _, o := range m.organisms {
		o.Move(m.rnd)
	}
}

// OneStepOfLife performs one time step of life for all organisms.
func (m *Manager) OneStepOfLife() {
	for _, o := range m.organisms {
		o.OneStepOfLife()
	}
}

// SlowUpdate performs the slow pass for all organisms and applies the
// deferred removals and additions afterwards. Throttled to its pass
// period. Errors of single organisms are collected, the pass always
// completes.
func (m *Manager) SlowUpdate(now time.Time) error {
	if now.Sub(m.lastTimeSlowUpdate) < slowUpdatePeriod {
		return nil
	}
	m.lastTimeSlowUpdate = now
	var err error
	for i := 0; i < len(m.organisms); i++ {
		err = multierr.Append(err, m.organisms[i].SlowUpdate(now))
	}
	for _, o := range m.toRemove {
		for i, existing := range m.organisms {
			if existing == o {
				m.organisms = append(m.organisms[:i], m.organisms[i+1:]...)
				break
			}
		}
	}
	m.toRemove = m.toRemove[:0]
	for _, o := range m.toAdd {
		m.AddOrganism(o)
	}
	m.toAdd = m.toAdd[:0]
	return err
}
