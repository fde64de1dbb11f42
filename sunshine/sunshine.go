// Package sunshine lets the sun create energy beams that shine
// through the water, gliding into the deep until they fade out or hit
// a rock.
package sunshine

import (
	"time"

	"github.com/openworld42/Cellolution/frand"
	"github.com/openworld42/Cellolution/interp"
	"github.com/openworld42/Cellolution/ocean"
)

const (
	// MaxIntensity is the intensity of a beam hitting the surface.
	MaxIntensity = 1500

	// MaxSunbeamPixels limits the number of beam pixels traveling
	// through the ocean at the same time.
	MaxSunbeamPixels = 100

	// BeamLength is the length of the displayed beam trail.
	BeamLength = 5

	// extinguishIntensity is the intensity below which a beam fades
	// out.
	extinguishIntensity = 600

	// nextPeriod throttles the sunshine steps.
	nextPeriod = 100 * time.Millisecond

	// Beam angle: one column to the right, three rows down.
	beamColStep = 1
	beamRowStep = 3
)

// Color ramps of a sunshine pixel, from faint to bright yellow.
var (
	redRamp   = interp.New([]float32{0, 150, MaxIntensity, 250})
	greenRamp = interp.New([]float32{0, 130, MaxIntensity, 230})
)

// RGB returns the display color of a water pixel carrying sunshine
// intensity, or the plain water color without any.
func RGB(sun int) uint32 {
	if sun == 0 {
		return ocean.WaterRGB
	}
	return uint32(redRamp.YInt(float32(sun))<<16 | greenRamp.YInt(float32(sun))<<8 | 10)
}

type position struct {
	col, row int
}

// Sunshine drives the sun beams of the ocean.
type Sunshine struct {
	ocean            *ocean.Ocean
	rnd              *frand.Source
	beams            map[position]struct{}
	lastTime         time.Time
	maxSunbeamPixels int
}

// New creates the sunshine of an ocean.
func New(oc *ocean.Ocean, rnd *frand.Source, now time.Time) *Sunshine {
	return &Sunshine{
		ocean:    oc,
		rnd:      rnd,
		beams:    make(map[position]struct{}),
		lastTime: now,
	}
}

// BeamCount returns the number of beam pixels currently traveling.
func (s *Sunshine) BeamCount() int { return len(s.beams) }

// Remove extinguishes the sunshine of a water pixel, usually because
// it has been adsorbed by a cell.
func (s *Sunshine) Remove(col, row int) {
	s.ocean.At(col, row).Sun = 0
	delete(s.beams, position{col, row})
}

// Next performs the next sunshine step: the beams glide deeper, new
// ones hit the surface. Throttled to its pass period.
func (s *Sunshine) Next(now time.Time) {
	if now.Sub(s.lastTime) < nextPeriod {
		return
	}
	s.lastTime = now
	s.glideDeeper()
	// add some new sunshine beams at the surface
	if len(s.beams) > MaxSunbeamPixels {
		s.maxSunbeamPixels = MaxSunbeamPixels
	} else {
		s.maxSunbeamPixels++
	}
	if len(s.beams) > s.maxSunbeamPixels {
		return
	}
	columns := s.ocean.Columns()
	for i := 0; i < 2; i++ {
		intensity := MaxIntensity*2/3 + s.rnd.Intn(MaxIntensity/3)
		col := (s.rnd.Intn(columns) * 7877) % columns
		p := s.ocean.At(col, 0)
		if p.Kind != ocean.KindWater {
			continue
		}
		p.Sun = uint16(intensity)
		s.beams[position{col, 0}] = struct{}{}
	}
}

// glideDeeper moves every beam pixel one step along the beam angle.
// A beam below the extinguish intensity or hitting rock fades out.
func (s *Sunshine) glideDeeper() {
	columns, rows := s.ocean.Columns(), s.ocean.Rows()
	next := make(map[position]struct{}, len(s.beams))
	for pos := range s.beams {
		nextCol := pos.col + beamColStep
		nextRow := pos.row + beamRowStep
		if nextCol >= columns || nextRow >= rows {
			s.drawTrail(0, pos.col, pos.row)
			continue
		}
		nextPixel := s.ocean.At(nextCol, nextRow)
		intensity := int(s.ocean.At(pos.col, pos.row).Sun)
		if nextPixel.Kind == ocean.KindWater && intensity > extinguishIntensity {
			// decrease the sunshine energy
			nextPixel.Sun = uint16(intensity * 996 / 1000)
			next[position{nextCol, nextRow}] = struct{}{}
			s.drawTrail(intensity, pos.col, pos.row)
		} else {
			s.drawTrail(0, nextCol, nextRow)
		}
	}
	s.beams = next
}

// drawTrail writes something looking like a beam behind the head, or
// removes a faded beam trail.
func (s *Sunshine) drawTrail(intensity, col, row int) {
	for i := 1; i <= BeamLength; i++ {
		nextCol := col - beamColStep*i
		nextRow := row - beamRowStep*i
		if nextCol < 0 || nextRow < 0 {
			break
		}
		p := s.ocean.At(nextCol, nextRow)
		if p.Kind != ocean.KindWater {
			continue
		}
		if i == BeamLength-1 {
			intensity = 0
		} else {
			intensity = intensity * 80 / 100
		}
		p.Sun = uint16(intensity)
	}
}
