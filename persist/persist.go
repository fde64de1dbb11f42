// Package persist saves and loads the simulation state as a JSON
// file. The snapshot keeps the key names of the original file format,
// so a record stays readable with a text editor.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"

	"go.uber.org/multierr"
	billy "gopkg.in/src-d/go-billy.v4"

	"github.com/openworld42/Cellolution/organism"
	"github.com/openworld42/Cellolution/smokers"
)

// Snapshot format version.
const (
	versionMajor   = 1
	versionMinor   = 0
	versionRelease = 0
)

// ErrFormat reports a malformed simulation file. It is recoverable:
// the caller falls back to a freshly created simulation.
var ErrFormat = errors.New("malformed simulation file")

// VersionRecord identifies the format of a snapshot file.
type VersionRecord struct {
	Version string `json:"Version"`
	Major   int    `json:"Version.major"`
	Minor   int    `json:"Version.minor"`
	Release int    `json:"Version.release"`
}

// CellRecord holds one cell with its complete property vector.
type CellRecord struct {
	Cell   string `json:"Cell"`
	Genome string `json:"Genome,omitempty"`
	Column int    `json:"Column"`
	Row    int    `json:"Row"`
	Color  uint32 `json:"Color"`

	Energy            int `json:"Energy"`
	EnergyConsumption int `json:"EnergyConsumption"`
	SunbeamIncrement  int `json:"SunbeamIncrement"`
	H2SToEnergy       int `json:"H2SToEnergy"`
	Weight            int `json:"Weight"`
	Agility           int `json:"Agility"`

	CO2                   int `json:"CO2"`
	CO2AdsorbtionRate     int `json:"CO2AdsorbtionRate"`
	CO2AdsorbEnergy       int `json:"CO2AdsorbEnergy"`
	CaCO3                 int `json:"CaCO3"`
	CaCO3AdsorbtionRate   int `json:"CaCO3AdsorbtionRate"`
	CaCO3AdsorbEnergy     int `json:"CaCO3AdsorbEnergy"`
	H2S                   int `json:"H2S"`
	H2SAdsorbtionRate     int `json:"H2SAdsorbtionRate"`
	H2SAdsorbEnergy       int `json:"H2SAdsorbEnergy"`
	Organic               int `json:"Organic"`
	OrganicAdsorbtionRate int `json:"OrganicAdsorbtionRate"`
	OrganicAdsorbEnergy   int `json:"OrganicAdsorbEnergy"`
}

// OrganismRecord holds one organism and its cells.
type OrganismRecord struct {
	OrganismState  string       `json:"OrganismState"`
	LastState      string       `json:"LastState"`
	Energy         int          `json:"Energy"`
	Weight         int          `json:"Weight"`
	Movable        bool         `json:"Movable"`
	DecomposeCount int          `json:"DecomposeCount"`
	Cells          []CellRecord `json:"Cells"`
}

// VentRecord holds the mouth of one smoker.
type VentRecord struct {
	Column int    `json:"Column"`
	Row    int    `json:"Row"`
	Color  uint32 `json:"Color"`
}

// OceanRecord holds everything living in or dissolved in the water.
type OceanRecord struct {
	OrganicMatterReservoir int              `json:"OrganicMatterReservoir"`
	SmokerCount            int              `json:"SmokerCount"`
	Smokers                []VentRecord     `json:"Smokers"`
	Organisms              []OrganismRecord `json:"Organisms"`
}

// Snapshot is the top level record of a simulation file.
type Snapshot struct {
	Version VersionRecord `json:"Version"`
	Ocean   OceanRecord   `json:"Ocean"`
}

// Capture records the simulation state into a snapshot. An organism
// caught while replicating is reverted first: the parent turns Alive
// again and the half-built child is discarded, a restart replicates
// from scratch. A child still in the Growing state serializes as
// Alive for the same reason.
func Capture(mgr *organism.Manager, sm *smokers.Smokers) *Snapshot {
	snap := &Snapshot{
		Version: VersionRecord{
			Version: fmt.Sprintf("%d.%d.%d", versionMajor, versionMinor, versionRelease),
			Major:   versionMajor,
			Minor:   versionMinor,
			Release: versionRelease,
		},
	}
	snap.Ocean.OrganicMatterReservoir = mgr.OrganicMatterReservoir()
	if sm != nil {
		vents := sm.Vents()
		snap.Ocean.SmokerCount = len(vents)
		for _, vent := range vents {
			snap.Ocean.Smokers = append(snap.Ocean.Smokers, VentRecord{
				Column: vent.Col,
				Row:    vent.Row,
				Color:  smokers.SmokerRGB,
			})
		}
	}
	for _, o := range mgr.Organisms() {
		if o.State() == organism.InReplication {
			o.Replication().Revert()
		}
		state := o.State()
		if state == organism.Growing {
			state = organism.Alive
		}
		rec := OrganismRecord{
			OrganismState:  state.String(),
			LastState:      o.LastState().String(),
			Energy:         o.Energy,
			Weight:         o.Weight,
			Movable:        o.Moveable,
			DecomposeCount: o.DecomposeCount(),
		}
		for _, c := range o.Cells() {
			rec.Cells = append(rec.Cells, cellToRecord(c))
		}
		snap.Ocean.Organisms = append(snap.Ocean.Organisms, rec)
	}
	return snap
}

func cellToRecord(c *organism.Cell) CellRecord {
	rec := CellRecord{
		Cell:   c.Species.Name(),
		Column: c.Col,
		Row:    c.Row,
		Color:  c.RGB,

		Energy:            c.Props[organism.PropEnergy],
		EnergyConsumption: c.Props[organism.PropEnergyConsumption],
		SunbeamIncrement:  c.Props[organism.PropSunBeamIncrement],
		H2SToEnergy:       c.Props[organism.PropH2SToEnergy],
		Weight:            c.Props[organism.PropWeight],
		Agility:           c.Props[organism.PropAgility],

		CO2:                   c.Props[organism.PropCO2],
		CO2AdsorbtionRate:     c.Props[organism.PropCO2AdsorptionRate],
		CO2AdsorbEnergy:       c.Props[organism.PropCO2AdsorbEnergy],
		CaCO3:                 c.Props[organism.PropCaCO3],
		CaCO3AdsorbtionRate:   c.Props[organism.PropCaCO3AdsorptionRate],
		CaCO3AdsorbEnergy:     c.Props[organism.PropCaCO3AdsorbEnergy],
		H2S:                   c.Props[organism.PropH2S],
		H2SAdsorbtionRate:     c.Props[organism.PropH2SAdsorptionRate],
		H2SAdsorbEnergy:       c.Props[organism.PropH2SAdsorbEnergy],
		Organic:               c.Props[organism.PropOrganic],
		OrganicAdsorbtionRate: c.Props[organism.PropOrganicAdsorptionRate],
		OrganicAdsorbEnergy:   c.Props[organism.PropOrganicAdsorbEnergy],
	}
	if c.Genome != nil {
		rec.Genome = c.Genome.Tag()
	}
	return rec
}

// Restore populates the manager's ocean from a snapshot. The lattice
// itself is generated, only the reservoir and the organisms are taken
// from the record. The error wraps ErrFormat on unknown state,
// species or genome tags and on values that would break the
// metabolism, leaving already restored organisms behind; the caller
// discards the simulation in that case.
func Restore(snap *Snapshot, mgr *organism.Manager) error {
	oc := mgr.Ocean()
	oc.SetReservoir(snap.Ocean.OrganicMatterReservoir)
	for i, rec := range snap.Ocean.Organisms {
		state, ok := organism.StateByName(rec.OrganismState)
		if !ok {
			return fmt.Errorf("%w: organism %d: unknown state %q", ErrFormat, i, rec.OrganismState)
		}
		lastState := state
		if rec.LastState != "" {
			if lastState, ok = organism.StateByName(rec.LastState); !ok {
				return fmt.Errorf("%w: organism %d: unknown state %q", ErrFormat, i, rec.LastState)
			}
		}
		if rec.Movable && rec.Weight <= 0 {
			return fmt.Errorf("%w: organism %d: weight %d", ErrFormat, i, rec.Weight)
		}
		o := mgr.CreateOrganism(state)
		o.Energy = rec.Energy
		o.Weight = rec.Weight
		o.Moveable = rec.Movable
		o.RestoreState(state, lastState, rec.DecomposeCount)
		hasGenome := false
		for _, cellRec := range rec.Cells {
			if cellRec.Column < 0 || cellRec.Column >= oc.Columns() ||
				cellRec.Row < 0 || cellRec.Row >= oc.Rows() {
				return fmt.Errorf("%w: organism %d: cell outside the ocean at %d/%d",
					ErrFormat, i, cellRec.Column, cellRec.Row)
			}
			cell, err := cellFromRecord(cellRec)
			if err != nil {
				return fmt.Errorf("organism %d: %w", i, err)
			}
			hasGenome = hasGenome || cell.Genome != nil
			if err := o.Add(cell); err != nil {
				return fmt.Errorf("%w: organism %d: %v", ErrFormat, i, err)
			}
		}
		if len(rec.Cells) == 0 {
			return fmt.Errorf("%w: organism %d has no cells", ErrFormat, i)
		}
		if !hasGenome {
			return fmt.Errorf("%w: organism %d has no genome cell", ErrFormat, i)
		}
		mgr.AddOrganism(o)
	}
	return nil
}

func cellFromRecord(rec CellRecord) (*organism.Cell, error) {
	species, ok := organism.SpeciesByName(rec.Cell)
	if !ok {
		return nil, fmt.Errorf("%w: unknown species %q", ErrFormat, rec.Cell)
	}
	// the adsorb energy costs are divisors of the metabolism
	costs := []struct {
		name  string
		value int
	}{
		{"CO2AdsorbEnergy", rec.CO2AdsorbEnergy},
		{"CaCO3AdsorbEnergy", rec.CaCO3AdsorbEnergy},
		{"H2SAdsorbEnergy", rec.H2SAdsorbEnergy},
		{"OrganicAdsorbEnergy", rec.OrganicAdsorbEnergy},
	}
	for _, cost := range costs {
		if cost.value <= 0 {
			return nil, fmt.Errorf("%w: cell %s: %s %d", ErrFormat, rec.Cell, cost.name, cost.value)
		}
	}
	var genome organism.Genome
	if rec.Genome != "" {
		if rec.Genome != organism.SimpleSingleCellGenomeTag {
			return nil, fmt.Errorf("%w: unknown genome %q", ErrFormat, rec.Genome)
		}
		genome = organism.NewSingleCellGenome()
	}
	var cell *organism.Cell
	switch species {
	case organism.SpeciesAlgae:
		cell = organism.NewAlgaeCell(rec.Column, rec.Row, genome)
	case organism.SpeciesH2SEater:
		cell = organism.NewH2SEaterCell(rec.Column, rec.Row, genome)
	case organism.SpeciesStem:
		cell = organism.NewStemCell(rec.Column, rec.Row, genome)
	}
	cell.RGB = rec.Color

	cell.Props[organism.PropEnergy] = rec.Energy
	cell.Props[organism.PropEnergyConsumption] = rec.EnergyConsumption
	cell.Props[organism.PropSunBeamIncrement] = rec.SunbeamIncrement
	cell.Props[organism.PropH2SToEnergy] = rec.H2SToEnergy
	cell.Props[organism.PropWeight] = rec.Weight
	cell.Props[organism.PropAgility] = rec.Agility

	cell.Props[organism.PropCO2] = rec.CO2
	cell.Props[organism.PropCO2AdsorptionRate] = rec.CO2AdsorbtionRate
	cell.Props[organism.PropCO2AdsorbEnergy] = rec.CO2AdsorbEnergy
	cell.Props[organism.PropCaCO3] = rec.CaCO3
	cell.Props[organism.PropCaCO3AdsorptionRate] = rec.CaCO3AdsorbtionRate
	cell.Props[organism.PropCaCO3AdsorbEnergy] = rec.CaCO3AdsorbEnergy
	cell.Props[organism.PropH2S] = rec.H2S
	cell.Props[organism.PropH2SAdsorptionRate] = rec.H2SAdsorbtionRate
	cell.Props[organism.PropH2SAdsorbEnergy] = rec.H2SAdsorbEnergy
	cell.Props[organism.PropOrganic] = rec.Organic
	cell.Props[organism.PropOrganicAdsorptionRate] = rec.OrganicAdsorbtionRate
	cell.Props[organism.PropOrganicAdsorbEnergy] = rec.OrganicAdsorbEnergy
	return cell, nil
}

// Save writes the snapshot to the filesystem. The write goes to a
// temporary file first, renamed atomically afterwards, so a crash
// never leaves a half-written simulation file behind.
func Save(fs billy.Filesystem, name string, snap *Snapshot) error {
	buf, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	temp, err := fs.TempFile("", name)
	if err != nil {
		return err
	}
	if _, err = temp.Write(buf); err != nil {
		err = multierr.Append(err, temp.Close())
		return multierr.Append(err, fs.Remove(temp.Name()))
	}
	if err = temp.Close(); err != nil {
		return multierr.Append(err, fs.Remove(temp.Name()))
	}
	return fs.Rename(temp.Name(), name)
}

// Load reads a snapshot from the filesystem. A missing file surfaces
// as the underlying filesystem error, a malformed one wraps
// ErrFormat.
func Load(fs billy.Filesystem, name string) (*Snapshot, error) {
	file, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	buf, err := ioutil.ReadAll(file)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(buf, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return &snap, nil
}
