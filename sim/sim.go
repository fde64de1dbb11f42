// Package sim assembles the ocean, its organisms, smokers, sunshine
// and diffusion into one simulation, driven by a single background
// worker. Front ends read published render states and never touch the
// lattice directly.
package sim

import (
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/openworld42/Cellolution/diffuse"
	"github.com/openworld42/Cellolution/frand"
	"github.com/openworld42/Cellolution/ocean"
	"github.com/openworld42/Cellolution/organism"
	"github.com/openworld42/Cellolution/persist"
	"github.com/openworld42/Cellolution/smokers"
	"github.com/openworld42/Cellolution/stats"
	"github.com/openworld42/Cellolution/sunshine"
)

const (
	// publishPeriod paces the render state publication.
	publishPeriod = 100 * time.Millisecond

	// stopTimeout bounds the wait for the worker to observe the stop
	// flag.
	stopTimeout = 5 * time.Second

	// pausePoll is the sleep between stop flag checks while paused.
	pausePoll = 10 * time.Millisecond

	// reportEvery ticks, the average tick duration goes to the log.
	reportEvery = 5000

	// timingWindow is the capacity of the tick timing buffers.
	timingWindow = 1000
)

// ErrStop reports a worker that did not observe the stop flag in time.
var ErrStop = errors.New("simulation: could not stop the worker")

// Config carries the startup parameters of a simulation.
type Config struct {
	Columns     int
	Rows        int
	SmokerCount int
	Seed        int64
}

// DefaultConfig returns the classic ocean setup.
func DefaultConfig() Config {
	return Config{
		Columns:     800,
		Rows:        450,
		SmokerCount: 3,
		Seed:        time.Now().UnixNano(),
	}
}

// Simulation owns the whole living ocean and the worker ticking it.
type Simulation struct {
	cfg Config

	rnd     *frand.Source
	ocean   *ocean.Ocean
	mgr     *organism.Manager
	smokers *smokers.Smokers
	sun     *sunshine.Sunshine
	algae   *organism.AlgaeProducer
	engine  *diffuse.Engine

	durations stats.Durations
	times     stats.Times

	running   atomic.Bool
	stopFlag  atomic.Bool
	pauseFlag atomic.Bool
	done      chan struct{}

	fatal    atomic.Value // errBox
	followed atomic.Pointer[organism.Organism]
	render   atomic.Pointer[RenderState]
}

type errBox struct{ err error }

// New builds a fresh simulation world from the configuration. The
// worker is not started yet.
func New(cfg Config) *Simulation {
	s := &Simulation{cfg: cfg}
	s.buildWorld()
	s.ocean.InitSubstances()
	s.publish(time.Now(), 0)
	return s
}

// NewFromSnapshot builds a simulation world and populates it from a
// persisted snapshot: new terrain, but the reservoir, the organisms
// and the smoker count are taken from the record. On a malformed
// snapshot the caller should fall back to New.
func NewFromSnapshot(cfg Config, snap *persist.Snapshot) (*Simulation, error) {
	if snap.Ocean.SmokerCount > 0 {
		cfg.SmokerCount = snap.Ocean.SmokerCount
	}
	s := &Simulation{cfg: cfg}
	s.buildWorld()
	s.ocean.InitSubstances()
	if err := persist.Restore(snap, s.mgr); err != nil {
		return nil, err
	}
	s.publish(time.Now(), 0)
	return s, nil
}

// buildWorld creates the lattice and all its inhabitants. The smokers
// change the seabed, so the border tables are computed after them.
func (s *Simulation) buildWorld() {
	now := time.Now()
	s.rnd = frand.New(s.cfg.Seed)
	s.ocean = ocean.New(s.cfg.Columns, s.cfg.Rows, s.rnd)
	s.mgr = organism.NewManager(s.ocean, s.rnd, now)
	s.smokers = smokers.New(s.ocean, s.mgr, s.rnd, s.cfg.SmokerCount, now)
	s.ocean.ComputeBorders()
	s.sun = sunshine.New(s.ocean, s.rnd, now)
	s.algae = organism.NewAlgaeProducer(s.mgr, now)
	s.engine = diffuse.New(s.ocean, s.smokers, s.mgr, s.rnd)

	s.durations = stats.MakeDurations(timingWindow)
	s.durations.ReportEvery = reportEvery
	s.durations.Report = func(d *stats.Durations, i int) {
		log.Printf("simulation: average tick %v", d.Average())
	}
	s.times = stats.MakeTimes(timingWindow)
	s.fatal.Store(errBox{})
	s.followed.Store(nil)
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() Config { return s.cfg }

// Ocean returns the lattice.
func (s *Simulation) Ocean() *ocean.Ocean { return s.ocean }

// Manager returns the organism manager.
func (s *Simulation) Manager() *organism.Manager { return s.mgr }

// Smokers returns the smokers of the seabed.
func (s *Simulation) Smokers() *smokers.Smokers { return s.smokers }

// Capture records the simulation into a persistable snapshot. Call
// with the worker stopped; an in-flight replication is reverted.
func (s *Simulation) Capture() *persist.Snapshot {
	return persist.Capture(s.mgr, s.smokers)
}

// Running reports whether the worker is ticking.
func (s *Simulation) Running() bool { return s.running.Load() }

// Err returns the fatal error that stopped the worker, if any.
func (s *Simulation) Err() error {
	if v := s.fatal.Load(); v != nil {
		return v.(errBox).err
	}
	return nil
}

// Start launches the background worker running the tick loop.
func (s *Simulation) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("simulation: already running")
	}
	s.stopFlag.Store(false)
	s.done = make(chan struct{})
	go s.run()
	return nil
}

// Stop asks the worker to exit and waits for it, bounded. A worker
// stuck beyond the bound is reported as ErrStop.
func (s *Simulation) Stop() error {
	if !s.running.Load() {
		return nil
	}
	s.stopFlag.Store(true)
	select {
	case <-s.done:
		return nil
	case <-time.After(stopTimeout):
		return ErrStop
	}
}

// Pause suspends ticking without stopping the worker.
func (s *Simulation) Pause() { s.pauseFlag.Store(true) }

// Resume continues a paused simulation.
func (s *Simulation) Resume() { s.pauseFlag.Store(false) }

// Paused reports whether the worker is suspended.
func (s *Simulation) Paused() bool { return s.pauseFlag.Load() }

// Reset replaces the world by a freshly generated one, populated from
// the snapshot if one is given. A running worker is stopped first and
// started again afterwards.
func (s *Simulation) Reset(snap *persist.Snapshot) error {
	wasRunning := s.running.Load()
	if err := s.Stop(); err != nil {
		return err
	}
	if snap != nil && snap.Ocean.SmokerCount > 0 {
		s.cfg.SmokerCount = snap.Ocean.SmokerCount
	}
	s.cfg.Seed = s.rnd.Int63()
	s.buildWorld()
	s.ocean.InitSubstances()
	if snap != nil {
		if err := persist.Restore(snap, s.mgr); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	s.publish(time.Now(), 0)
	if wasRunning {
		return s.Start()
	}
	return nil
}

// Follow marks the organism nearest to the given position; its full
// property dump is part of each published render state.
func (s *Simulation) Follow(col, row int) *organism.Organism {
	o := s.mgr.NearestOrganism(col, row)
	s.followed.Store(o)
	return o
}

// Unfollow clears the followed organism.
func (s *Simulation) Unfollow() { s.followed.Store(nil) }

// NearestOrganism returns the organism closest to a position within
// the search radius, or nil.
func (s *Simulation) NearestOrganism(col, row int) *organism.Organism {
	return s.mgr.NearestOrganism(col, row)
}

// run is the tick loop of the background worker.
func (s *Simulation) run() {
	defer close(s.done)
	defer s.running.Store(false)
	var lastPublished time.Time
	for step := 1; ; step++ {
		if s.stopFlag.Load() {
			return
		}
		if s.pauseFlag.Load() {
			time.Sleep(pausePoll)
			step--
			continue
		}
		began := time.Now()
		s.sun.Next(began)
		s.smokers.Smoke(began)
		s.algae.PlungeAlgae(began)
		s.mgr.MoveOrganisms(began)
		s.mgr.OneStepOfLife()
		if err := s.mgr.SlowUpdate(began); err != nil {
			// an invariant violation, the world stays frozen for
			// inspection
			s.fatal.Store(errBox{err})
			log.Printf("simulation stopped: %v", err)
			return
		}
		s.engine.Step(step)

		s.durations.Collect(time.Since(began))
		s.times.Collect(time.Now())
		if began.Sub(lastPublished) > publishPeriod {
			s.publish(began, step)
			lastPublished = began
		}
		if step%3 == 0 {
			// be polite to the others
			time.Sleep(time.Millisecond)
		}
	}
}
