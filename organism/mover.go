package organism

import (
	"github.com/openworld42/Cellolution/frand"
	"github.com/openworld42/Cellolution/ocean"
)

// brownianSpeedMax is the speed up to which Brownian movement
// dominates the direction of an organism.
const brownianSpeedMax = 5

// AdjustDegrees normalizes a direction to the range of 0 to 359
// degrees.
func AdjustDegrees(directionDegrees int) int {
	return (directionDegrees + 360000) % 360
}

// canMoveDueToRocks tests if the organism can move in the direction it
// points without touching rock or the ocean borders.
func canMoveDueToRocks(o *Organism, oc *ocean.Ocean) bool {
	direction := o.Direction
	columns, rows := oc.Columns(), oc.Rows()
	isRockFree := func(col, row int) bool {
		if col < 0 || col >= columns || row >= rows {
			return false
		}
		return oc.At(col, row).Kind == ocean.KindWater
	}
	// 180 .. 360 degrees, left side
	if direction >= 180 {
		for row := o.minRow; row <= o.maxRow; row++ {
			if !isRockFree(o.minCol-1, row) {
				return false
			}
		}
	}
	// 0 .. 180 degrees, right side
	if direction <= 180 {
		for row := o.minRow; row <= o.maxRow; row++ {
			if !isRockFree(o.maxCol+1, row) {
				return false
			}
		}
	}
	// 90 .. 270 degrees, bottom
	if direction >= 90 && direction <= 270 {
		for col := o.minCol; col <= o.maxCol; col++ {
			if !isRockFree(col, o.maxRow+1) {
				return false
			}
		}
	}
	// 270 .. 90 degrees, top, in some rare cases
	if direction >= 270 || direction <= 90 {
		if o.minRow-1 <= 0 {
			return false
		}
		for col := o.minCol; col <= o.maxCol; col++ {
			if !isRockFree(col, o.minRow-1) {
				return false
			}
		}
	}
	return true
}

// moveAndTurnWithBrownianMovement adjusts speed and direction of an
// organism. Some kind of Brownian movement and turning behavior is
// added, and the speed is reduced by the resistance of the water,
// growing with the square of the speed. It returns the number of cells
// to move this pass.
func moveAndTurnWithBrownianMovement(o *Organism, rnd *frand.Source) int {
	cellCount := o.CellCount()
	if cellCount > 2 && rnd.Intn(cellCount) == 0 {
		// bigger organisms have less Brownian movement
		return 0
	}
	speed := o.Speed
	direction := o.Direction
	// bigger organisms are also less influenced when turning
	reduction := cellCount/2 + 1
	if cellCount >= 7 {
		reduction = cellCount/3 + 2
	}
	if speed == 0 && rnd.Intn(o.Weight) > WaterWeight {
		// sometimes the weight influences more than the Brownian movement
		speed = 1
		direction = 170 + rnd.Intn(21) // down
		o.Direction = direction
	} else {
		brownianSpeed := rnd.Intn(2) / (rnd.Intn(reduction) + 1)
		if brownianSpeed != 0 {
			if speed < brownianSpeedMax {
				// slow, Brownian movement dominates
				direction = rnd.Intn(360)
				speed += brownianSpeed
			} else {
				// the direction may still change a bit
				direction = AdjustDegrees(direction - 20 + rnd.Intn(41))
			}
			o.Direction = direction
		}
	}
	if speed == 0 {
		return 0
	}
	stepSpeed := 1
	speed--
	switch {
	case speed > 50:
		stepSpeed = 4
		speed /= 4
	case speed > 20:
		stepSpeed = 3
		speed -= speed / 3
	case speed > 6:
		stepSpeed = 2
		speed -= speed / 2
	case speed > 1:
		speed -= speed / 2
	}
	o.Speed = speed
	return stepSpeed
}

// moveCells moves all cells of the organism some steps in its
// direction.
func moveCells(o *Organism, stepsToGo int) {
	for step := 0; step < stepsToGo; step++ {
		for _, c := range o.cells {
			c.Col, c.Row = ocean.MoveDegrees(c.Col, c.Row, o.Direction)
		}
	}
}
