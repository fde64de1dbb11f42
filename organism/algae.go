package organism

import "time"

// dropPeriod is the minimum time between two attempts to drop an
// algae cell onto the surface.
const dropPeriod = 100 * time.Millisecond

// AlgaeProducer drops algae cells from the atmosphere onto the surface
// of the ocean from time to time. It populates a young ocean quickly
// and keeps a trickle of newcomers later on.
type AlgaeProducer struct {
	mgr          *Manager
	lastDropTime time.Time
	droppedCount int
}

// NewAlgaeProducer creates a surface algae producer.
func NewAlgaeProducer(mgr *Manager, now time.Time) *AlgaeProducer {
	return &AlgaeProducer{mgr: mgr, lastDropTime: now}
}

// DroppedCount returns the number of algae dropped so far.
func (p *AlgaeProducer) DroppedCount() int { return p.droppedCount }

// PlungeAlgae drops an algae cell at the surface of the ocean from
// time to time, often while the ocean is young and rarely afterwards.
func (p *AlgaeProducer) PlungeAlgae(now time.Time) {
	if now.Sub(p.lastDropTime) <= dropPeriod {
		return
	}
	rnd := p.mgr.rnd
	if p.droppedCount < 5 || (p.droppedCount < 25 && rnd.Intn(70) == 0) || rnd.Intn(300) == 0 {
		p.dropAlgaeOrganism()
	}
	p.lastDropTime = now
}

// dropAlgaeOrganism plunges a single algae cell into the ocean at a
// free spot near the surface.
func (p *AlgaeProducer) dropAlgaeOrganism() {
	mgr := p.mgr
	columns := mgr.ocean.Columns()
	rnd := mgr.rnd
	const row = 1
	for {
		col := 10 + rnd.Intn(columns-20)
		if !mgr.ocean.IsWater(col, row) {
			continue
		}
		cell := mgr.CreateAlgaeOrganism(col, row, 18000+rnd.Intn(30000))
		cell.Props[PropOrganic] = 300 + rnd.Intn(2500)
		cell.Organism().SetSpeedAndDirection(3+rnd.Intn(5), 120+rnd.Intn(121))
		p.droppedCount++
		return
	}
}
