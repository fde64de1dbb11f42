// Package stats collects timing samples of the running simulation:
// how long the passes of a tick took and how many ticks completed
// recently.
package stats

import (
	"math"
	"time"
)

// Durations is a ring buffer of collected tick durations with an
// optional reporting function called every ReportEvery samples.
type Durations struct {
	Report      func(d *Durations, i int)
	ReportEvery int

	samples []time.Duration
	next    int
}

// MakeDurations creates a ring buffer holding up to n samples.
func MakeDurations(n int) Durations {
	return Durations{samples: make([]time.Duration, 0, n)}
}

// Collect stores one sample, evicting the oldest one once the buffer
// is full.
func (d *Durations) Collect(sample time.Duration) {
	if len(d.samples) < cap(d.samples) {
		d.samples = append(d.samples, sample)
		d.observe(len(d.samples) - 1)
		return
	}
	d.samples[d.next] = sample
	d.next = (d.next + 1) % len(d.samples)
	d.observe(d.next)
}

func (d *Durations) observe(i int) {
	if d.Report != nil && d.ReportEvery != 0 && i%d.ReportEvery == 0 {
		d.Report(d, i)
	}
}

// Count returns the number of collected samples.
func (d *Durations) Count() int { return len(d.samples) }

// Total returns the sum of the collected samples.
func (d *Durations) Total() time.Duration {
	var total time.Duration
	for _, sample := range d.samples {
		total += sample
	}
	return total
}

// Average returns the mean of the collected samples, zero while the
// buffer is empty.
func (d *Durations) Average() time.Duration {
	if len(d.samples) == 0 {
		return 0
	}
	return time.Duration(math.Round(float64(d.Total()) / float64(d.Count())))
}

// Times is a ring buffer of tick completion times.
type Times struct {
	stamps []time.Time
	next   int
}

// MakeTimes creates a ring buffer holding up to n completion times.
func MakeTimes(n int) Times {
	return Times{stamps: make([]time.Time, 0, n)}
}

// Collect stores one completion time, evicting the oldest one once
// the buffer is full.
func (t *Times) Collect(now time.Time) {
	if len(t.stamps) < cap(t.stamps) {
		t.stamps = append(t.stamps, now)
		return
	}
	t.stamps[t.next] = now
	t.next = (t.next + 1) % len(t.stamps)
}

// CountRecent returns how many collected ticks completed within the
// given duration before now. Called with one second this is the
// ticks-per-second of the simulation.
func (t *Times) CountRecent(now time.Time, within time.Duration) int {
	count := 0
	for _, stamp := range t.stamps {
		if now.Sub(stamp) <= within {
			count++
		}
	}
	return count
}
