package organism_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openworld42/Cellolution/frand"
	"github.com/openworld42/Cellolution/ocean"
	"github.com/openworld42/Cellolution/organism"
)

// newTestWorld builds a small ocean with its organism manager and
// clears a generous patch of open water so tests control the terrain.
func newTestWorld(t *testing.T) (*ocean.Ocean, *organism.Manager) {
	t.Helper()
	rnd := frand.New(42)
	oc := ocean.New(80, 40, rnd)
	for col := 5; col < 75; col++ {
		for row := 1; row < 20; row++ {
			p := oc.At(col, row)
			p.Kind = ocean.KindWater
			p.RGB = ocean.WaterRGB
		}
	}
	mgr := organism.NewManager(oc, rnd, time.Unix(0, 0))
	return oc, mgr
}

func TestSingleCellContract(t *testing.T) {
	_, mgr := newTestWorld(t)
	o := mgr.CreateOrganism(organism.Alive)
	first := organism.NewAlgaeCell(20, 5, organism.NewSingleCellGenome())
	require.NoError(t, o.Add(first))
	second := organism.NewAlgaeCell(21, 5, nil)
	assert.ErrorIs(t, o.Add(second), organism.ErrMultiCell)
	assert.Equal(t, 1, o.CellCount())
}

func TestOutlineFollowsCells(t *testing.T) {
	_, mgr := newTestWorld(t)
	cell := mgr.CreateAlgaeOrganism(20, 5, 10000)
	o := cell.Organism()
	assert.Equal(t, 20, o.CenterCol())
	assert.Equal(t, 5, o.CenterRow())
	assert.Equal(t, 1, o.DimensionMax())
	assert.True(t, o.HasCellOn(20, 5))
	assert.False(t, o.HasCellOn(21, 5))

	cell.Col, cell.Row = 23, 8
	o.ComputeMaxMin()
	assert.Equal(t, 23, o.CenterCol())
	assert.Equal(t, 8, o.CenterRow())
	assert.True(t, o.HasCellOn(23, 8))
	assert.False(t, o.HasCellOn(20, 5))
}

func TestLifecycleTransitions(t *testing.T) {
	tests := []struct {
		name   string
		energy int
		want   organism.State
	}{
		{"alive", 20000, organism.Alive},
		{"starving", 6500, organism.Starving},
		{"dying", 2500, organism.Dying},
		{"dead", 1500, organism.Dead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mgr := newTestWorld(t)
			cell := mgr.CreateAlgaeOrganism(20, 5, tt.energy)
			o := cell.Organism()
			require.NoError(t, o.SlowUpdate(time.Unix(1, 0)))
			assert.Equal(t, tt.want, o.State())
		})
	}
}

func TestDeadOrganismDecomposes(t *testing.T) {
	_, mgr := newTestWorld(t)
	cell := mgr.CreateAlgaeOrganism(20, 5, 1000)
	o := cell.Organism()
	now := time.Unix(1, 0)
	require.NoError(t, o.SlowUpdate(now))
	require.Equal(t, organism.Dead, o.State())
	// a dead organism loses 5% of its energy per pass until empty
	for i := 0; o.State() == organism.Dead && i < 300; i++ {
		now = now.Add(time.Second)
		require.NoError(t, o.SlowUpdate(now))
	}
	assert.Equal(t, organism.Decomposing, o.State())
	assert.Zero(t, o.Energy)
}

func TestDecomposingVanishesAfterCountdown(t *testing.T) {
	_, mgr := newTestWorld(t)
	cell := mgr.CreateAlgaeOrganism(20, 5, 0)
	o := cell.Organism()
	now := time.Unix(1, 0)
	require.NoError(t, o.SlowUpdate(now))
	require.Equal(t, organism.Decomposing, o.State())
	reservoirBefore := mgr.OrganicMatterReservoir()
	// 200 decompose passes, then the organism is queued for removal
	for i := 0; i < 200; i++ {
		now = now.Add(time.Second)
		require.NoError(t, o.SlowUpdate(now))
	}
	now = now.Add(time.Second)
	require.NoError(t, mgr.SlowUpdate(now))
	assert.Zero(t, mgr.OrganismCount())
	assert.Greater(t, mgr.OrganicMatterReservoir(), reservoirBefore)
}

func TestGrowingOrganismExchangesNoSubstances(t *testing.T) {
	oc, mgr := newTestWorld(t)
	o := mgr.CreateOrganism(organism.Growing)
	cell := organism.NewAlgaeCell(20, 5, organism.NewSingleCellGenome())
	cell.Props[organism.PropEnergy] = 10000
	require.NoError(t, o.Add(cell))
	mgr.AddOrganism(o)
	p := oc.At(20, 5)
	p.SetSubstance(ocean.CO2, 80)
	o.OneStepOfLife()
	assert.Equal(t, 80, p.Substance(ocean.CO2))
	// after one slow pass the organism turns alive and adsorbs
	require.NoError(t, o.SlowUpdate(time.Unix(1, 0)))
	assert.Equal(t, organism.Alive, o.State())
	o.OneStepOfLife()
	assert.Less(t, p.Substance(ocean.CO2), 80)
}

func TestAdsorbSubstances(t *testing.T) {
	oc, _ := newTestWorld(t)
	cell := organism.NewAlgaeCell(20, 5, nil)
	cell.Props[organism.PropEnergy] = 10000
	cell.Props[organism.PropCO2] = 0
	cell.Props[organism.PropOrganic] = 0
	p := oc.At(20, 5)
	p.SetSubstance(ocean.CO2, 100)
	p.SetSubstance(ocean.Organic, 50)
	p.SetSubstance(ocean.H2S, 30)
	cell.AdsorbSubstances(p)
	// CO2: 100 * rate 10 / 100 = 10, costing 10/5 = 2 energy
	assert.Equal(t, 10, cell.Props[organism.PropCO2])
	assert.Equal(t, 90, p.Substance(ocean.CO2))
	// organic: 50 * rate 10 / 100 = 5, costing 5/8 = 0 energy
	assert.Equal(t, 5, cell.Props[organism.PropOrganic])
	assert.Equal(t, 45, p.Substance(ocean.Organic))
	// algae have no H2S adsorption
	assert.Equal(t, 30, p.Substance(ocean.H2S))
	assert.Equal(t, 10000-2, cell.Props[organism.PropEnergy])
}

func TestAdsorbStockCap(t *testing.T) {
	oc, _ := newTestWorld(t)
	cell := organism.NewH2SEaterCell(20, 5, nil)
	cell.Props[organism.PropEnergy] = 10000
	cell.Props[organism.PropH2S] = organism.StockMax - 3
	p := oc.At(20, 5)
	p.SetSubstance(ocean.H2S, 100)
	cell.AdsorbSubstances(p)
	assert.Equal(t, organism.StockMax, cell.Props[organism.PropH2S])
	assert.Equal(t, 97, p.Substance(ocean.H2S))
}

func TestDecomposeReleaseClamped(t *testing.T) {
	oc, _ := newTestWorld(t)
	cell := organism.NewAlgaeCell(20, 5, nil)
	cell.Props[organism.PropCO2] = 1000
	cell.Props[organism.PropOrganic] = 40
	p := oc.At(20, 5)
	p.SetSubstance(ocean.CO2, 90)
	p.SetSubstance(ocean.Organic, 0)
	freed := cell.Decompose(oc)
	assert.Zero(t, freed)
	// the water can only take 10 more CO2
	assert.Equal(t, 100, p.Substance(ocean.CO2))
	assert.Equal(t, 990, cell.Props[organism.PropCO2])
	// 90% of the organic stock dissolves
	assert.Equal(t, 36, p.Substance(ocean.Organic))
	assert.Equal(t, 4, cell.Props[organism.PropOrganic])
}

func TestReplicationSplitsEnergy(t *testing.T) {
	_, mgr := newTestWorld(t)
	cell := mgr.CreateAlgaeOrganism(20, 8, 60000)
	cell.Props[organism.PropOrganic] = 4000
	o := cell.Organism()
	now := time.Unix(10, 0)
	require.NoError(t, o.SlowUpdate(now))
	require.Equal(t, organism.InReplication, o.State())
	// the parent keeps E/2 + E/10
	assert.Equal(t, 36000, o.Energy)
	assert.GreaterOrEqual(t, o.Energy, 60000/2)
	assert.LessOrEqual(t, o.Energy, 60000*6/10)
}

func TestReplicationProtocol(t *testing.T) {
	_, mgr := newTestWorld(t)
	cell := mgr.CreateAlgaeOrganism(20, 8, 60000)
	cell.Props[organism.PropOrganic] = 4000
	o := cell.Organism()
	now := time.Unix(10, 0)
	require.NoError(t, o.SlowUpdate(now))
	require.Equal(t, organism.InReplication, o.State())
	rep := o.Replication()
	require.NotNil(t, rep)

	// too early, nothing happens
	now = now.Add(500 * time.Millisecond)
	require.NoError(t, rep.NextStep(now))
	assert.Equal(t, 1, o.CellCount())

	// start: the narrowing cell bridges parent and child
	now = now.Add(600 * time.Millisecond)
	require.NoError(t, rep.NextStep(now))
	require.Equal(t, 2, len(o.Cells()))
	assert.Equal(t, organism.SpeciesStem, o.Cells()[1].Species)

	// copy: the child's stem cell is created
	now = now.Add(700 * time.Millisecond)
	require.NoError(t, rep.NextStep(now))
	// copy completion check
	require.NoError(t, rep.NextStep(now))

	// end: the child is queued, the parent is alive again
	now = now.Add(700 * time.Millisecond)
	require.NoError(t, rep.NextStep(now))
	assert.Equal(t, organism.Alive, o.State())
	assert.Nil(t, o.Replication())
	assert.Equal(t, 1, o.CellCount())

	// apply the deferred addition
	now = now.Add(time.Second)
	require.NoError(t, mgr.SlowUpdate(now))
	require.Equal(t, 2, mgr.OrganismCount())
	child := mgr.Organisms()[1]
	assert.Equal(t, organism.Growing, child.State())
	assert.Equal(t, 36000, child.Energy)
	assert.Equal(t, 1, child.CellCount())
}

func TestReplicationRevert(t *testing.T) {
	_, mgr := newTestWorld(t)
	cell := mgr.CreateAlgaeOrganism(20, 8, 60000)
	cell.Props[organism.PropOrganic] = 4000
	o := cell.Organism()
	now := time.Unix(10, 0)
	require.NoError(t, o.SlowUpdate(now))
	rep := o.Replication()
	require.NotNil(t, rep)
	now = now.Add(1100 * time.Millisecond)
	require.NoError(t, rep.NextStep(now))
	require.Equal(t, 2, len(o.Cells()))

	rep.Revert()
	assert.Equal(t, organism.Alive, o.State())
	assert.Nil(t, o.Replication())
	assert.Equal(t, 1, o.CellCount())
}

func TestReplicationAtSurfaceStaysInsideOcean(t *testing.T) {
	// an organism in the top water row cannot replicate upwards, the
	// replication waits until a direction with open water is drawn
	for seed := int64(1); seed <= 8; seed++ {
		rnd := frand.New(seed)
		oc := ocean.New(80, 40, rnd)
		for col := 5; col < 75; col++ {
			for row := 0; row < 20; row++ {
				p := oc.At(col, row)
				p.Kind = ocean.KindWater
				p.RGB = ocean.WaterRGB
			}
		}
		mgr := organism.NewManager(oc, rnd, time.Unix(0, 0))
		cell := mgr.CreateAlgaeOrganism(20, 1, 60000)
		cell.Props[organism.PropOrganic] = 4000
		o := cell.Organism()
		now := time.Unix(10, 0)
		require.NoError(t, o.SlowUpdate(now))
		require.Equal(t, organism.InReplication, o.State())
		rep := o.Replication()
		for i := 0; i < 50 && o.State() == organism.InReplication; i++ {
			now = now.Add(700 * time.Millisecond)
			require.NoError(t, rep.NextStep(now))
		}
		require.Equal(t, organism.Alive, o.State(), "seed %d", seed)
		now = now.Add(time.Second)
		require.NoError(t, mgr.SlowUpdate(now))
		require.Equal(t, 2, mgr.OrganismCount(), "seed %d", seed)
		for _, org := range mgr.Organisms() {
			for _, c := range org.Cells() {
				assert.GreaterOrEqual(t, c.Row, 0, "seed %d", seed)
				assert.Less(t, c.Row, oc.Rows(), "seed %d", seed)
				assert.GreaterOrEqual(t, c.Col, 0, "seed %d", seed)
				assert.Less(t, c.Col, oc.Columns(), "seed %d", seed)
			}
		}
	}
}

func TestMutationStaysWithinBands(t *testing.T) {
	_, mgr := newTestWorld(t)
	parentCell := organism.NewAlgaeCell(20, 5, nil)
	genome := organism.NewSingleCellGenome()
	parentCell.Genome = genome
	parent := mgr.CreateOrganism(organism.Alive)
	require.NoError(t, parent.Add(parentCell))

	rnd := mgr.Rand()
	for i := 0; i < 500; i++ {
		child := mgr.CreateOrganism(organism.Growing)
		newGenome := genome.EvolutionaryClone(parent, rnd)
		cell := newGenome.DuplicateStemCell(parentCell, 21, 5, child, rnd)
		agility := cell.Props[organism.PropAgility]
		assert.GreaterOrEqual(t, agility, organism.AgilityOne*8/10)
		assert.LessOrEqual(t, agility, organism.AgilityOne*12/10)
		cost := cell.Props[organism.PropCO2AdsorbEnergy]
		assert.GreaterOrEqual(t, cost, 5)
		assert.LessOrEqual(t, cost, 10)
	}
}

func TestManagerDeferredQueues(t *testing.T) {
	_, mgr := newTestWorld(t)
	first := mgr.CreateAlgaeOrganism(20, 5, 20000).Organism()
	require.Equal(t, 1, mgr.OrganismCount())

	second := mgr.CreateOrganism(organism.Growing)
	cell := organism.NewAlgaeCell(30, 5, organism.NewSingleCellGenome())
	cell.Props[organism.PropEnergy] = 20000
	require.NoError(t, second.Add(cell))

	mgr.AddOrganismDeferred(second)
	mgr.Remove(first)
	// queues are untouched until the next slow pass
	require.Equal(t, 1, mgr.OrganismCount())
	require.NoError(t, mgr.SlowUpdate(time.Unix(1, 0)))
	require.Equal(t, 1, mgr.OrganismCount())
	assert.Same(t, second, mgr.Organisms()[0])
}

func TestOrganismNumbersNeverRepeat(t *testing.T) {
	_, mgr := newTestWorld(t)
	first := mgr.CreateAlgaeOrganism(20, 5, 20000).Organism()
	second := mgr.CreateAlgaeOrganism(30, 5, 20000).Organism()
	assert.NotEqual(t, first.Number(), second.Number())

	// a number is never reused, even after its organism is gone
	mgr.Remove(first)
	require.NoError(t, mgr.SlowUpdate(time.Unix(1, 0)))
	require.Equal(t, 1, mgr.OrganismCount())
	third := mgr.CreateAlgaeOrganism(40, 5, 20000).Organism()
	assert.Greater(t, third.Number(), second.Number())
}

func TestNearestOrganism(t *testing.T) {
	_, mgr := newTestWorld(t)
	far := mgr.CreateAlgaeOrganism(70, 15, 20000).Organism()
	near := mgr.CreateAlgaeOrganism(25, 6, 20000).Organism()
	assert.Same(t, near, mgr.NearestOrganism(22, 6))
	assert.Same(t, far, mgr.NearestOrganism(68, 14))
}

func TestHasCellOnConsultsAllOrganisms(t *testing.T) {
	_, mgr := newTestWorld(t)
	mgr.CreateAlgaeOrganism(20, 5, 20000)
	mgr.CreateAlgaeOrganism(40, 9, 20000)
	assert.True(t, mgr.HasCellOn(20, 5))
	assert.True(t, mgr.HasCellOn(40, 9))
	assert.False(t, mgr.HasCellOn(30, 7))
}

func TestStateNamesRoundTrip(t *testing.T) {
	states := []organism.State{
		organism.Growing, organism.Alive, organism.InReplication,
		organism.Starving, organism.Dying, organism.Dead, organism.Decomposing,
	}
	for _, s := range states {
		got, ok := organism.StateByName(s.String())
		require.True(t, ok)
		assert.Equal(t, s, got)
	}
	_, ok := organism.StateByName("NO_SUCH_STATE")
	assert.False(t, ok)
}
