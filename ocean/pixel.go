package ocean

// Substance indices of the dissolved matter in a water pixel.
// Water can dissolve matter in the range of 0 to 100 for each substance.
const (
	CO2     = iota // carbon dioxide, for "plant breathing"
	CaCO3          // lime, to build hard matter
	H2S            // hydrogen sulfide, as energy in the deep
	Organic        // organic matter, to build cells and cell parts
	NumSubstances
)

// SubstanceMax is the saturation value of any dissolved substance.
const SubstanceMax = 100

// Kind discriminates the pixel variants of the lattice.
type Kind uint8

const (
	// KindWater is a water pixel carrying dissolved substances.
	KindWater Kind = iota
	// KindRock is impermeable, immutable terrain.
	KindRock
)

// WaterRGB is the default display color of plain water.
const WaterRGB = uint32(147<<16 | 167<<8 | 187)

// Pixel is one cell of the hexagonally addressed lattice.
//
// The shape of a pixel is a regular hexagon, packed by column parity:
//
//	hexagon neighbor cells:   6 1      even column rows are offset by
//	                         5 C 2     half a cell against odd columns
//	                          4 3
//
// Organism cells are an overlay owned by the organism manager; the
// lattice itself holds only rock and water.
type Pixel struct {
	Kind       Kind
	RGB        uint32
	Substances [NumSubstances]uint8
	Sun        uint16
}

// IsWater reports whether the pixel is water (an organism cell may still
// sit on top of it, see Ocean.IsWater).
func (p *Pixel) IsWater() bool {
	return p.Kind == KindWater
}

// Substance returns the amount of the given dissolved substance.
func (p *Pixel) Substance(i int) int {
	return int(p.Substances[i])
}

// SetSubstance stores a substance amount, clamped to [0, SubstanceMax].
func (p *Pixel) SetSubstance(i, value int) {
	p.Substances[i] = clampSubstance(value)
}

// AddSubstance adds a (possibly negative) delta to a substance, clamped to
// [0, SubstanceMax], and returns the delta actually applied.
func (p *Pixel) AddSubstance(i, delta int) int {
	old := int(p.Substances[i])
	p.Substances[i] = clampSubstance(old + delta)
	return int(p.Substances[i]) - old
}

func clampSubstance(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > SubstanceMax {
		return SubstanceMax
	}
	return uint8(v)
}

// Neighbor returns the coordinates of a hex neighbor by direction number
// 1..6, clockwise starting above-right. Callers rely on the two-column
// rock margin so single steps from water never leave the lattice.
func Neighbor(col, row, direction int) (int, int) {
	left := col // column of the above/below-left neighbor
	if col&1 == 0 {
		left = col - 1
	}
	right := left + 1
	switch direction {
	case 1:
		return right, row - 1
	case 2:
		return col + 1, row
	case 3:
		return right, row + 1
	case 4:
		return left, row + 1
	case 5:
		return col - 1, row
	case 6:
		return left, row - 1
	}
	return col, row
}

// MoveDegrees maps a compass bearing (0..359 degrees, 0 is north,
// clockwise) onto a single hex step and returns the new coordinates.
// The six 60 degree sectors correspond to the neighbor numbering.
func MoveDegrees(col, row, degrees int) (int, int) {
	left := col
	if col&1 == 0 {
		left = col - 1
	}
	right := left + 1
	switch {
	case degrees < 60: // above right
		return right, row - 1
	case degrees < 120: // right
		return col + 1, row
	case degrees < 180: // below right
		return right, row + 1
	case degrees < 240: // below left
		return left, row + 1
	case degrees < 300: // left
		return col - 1, row
	default: // above left
		return left, row - 1
	}
}
