// Command cellolution runs the ocean simulation headless: it loads a
// previously saved simulation file if one exists, ticks the ocean
// until interrupted, and saves the population back on exit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	billy "gopkg.in/src-d/go-billy.v4"
	"gopkg.in/src-d/go-billy.v4/osfs"

	"github.com/openworld42/Cellolution/persist"
	"github.com/openworld42/Cellolution/sim"
)

var (
	columns     = 800
	rows        = 450
	smokers     = 3
	seed        = int64(0)
	file        = "cellolution.json"
	statusEvery = 5 * time.Second
)

func main() {
	flag.IntVar(&columns, "columns", columns, "lattice columns of the ocean")
	flag.IntVar(&rows, "rows", rows, "lattice rows of the ocean")
	flag.IntVar(&smokers, "smokers", smokers, "number of black smokers on the seabed")
	flag.Int64Var(&seed, "seed", seed, "random seed, 0 means time-based")
	flag.StringVar(&file, "file", file, "simulation file to load and save")
	flag.DurationVar(&statusEvery, "status", statusEvery, "interval between status lines")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		signal.Reset()
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := sim.DefaultConfig()
	cfg.Columns = columns
	cfg.Rows = rows
	cfg.SmokerCount = smokers
	if seed != 0 {
		cfg.Seed = seed
	}

	dir, name := filepath.Split(file)
	if dir == "" {
		dir = "."
	}
	fs := osfs.New(dir)

	s := load(cfg, fs, name)
	if err := s.Start(); err != nil {
		return err
	}

	ticker := time.NewTicker(statusEvery)
	defer ticker.Stop()
	for running := true; running; {
		select {
		case <-ctx.Done():
			running = false
		case <-ticker.C:
			r := s.Render()
			log.Printf("step %d: %d organisms, %d ticks/s, reservoir %d",
				r.Step, r.OrganismCount, r.TicksPerSecond, r.Reservoir)
		}
		if !s.Running() {
			// the worker died on an invariant violation
			return s.Err()
		}
	}

	if err := s.Stop(); err != nil {
		return err
	}
	log.Printf("saving simulation to %s", file)
	return persist.Save(fs, name, s.Capture())
}

// load builds the simulation from the saved file, or a fresh one if
// the file is missing or broken.
func load(cfg sim.Config, fs billy.Filesystem, name string) *sim.Simulation {
	snap, err := persist.Load(fs, name)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("ignoring %s: %v", name, err)
		}
		return sim.New(cfg)
	}
	s, err := sim.NewFromSnapshot(cfg, snap)
	if err != nil {
		if !errors.Is(err, persist.ErrFormat) {
			log.Printf("restoring %s: %v", name, err)
		} else {
			log.Printf("ignoring %s: %v", name, err)
		}
		return sim.New(cfg)
	}
	log.Printf("loaded %d organisms from %s", s.Manager().OrganismCount(), name)
	return s
}
