package organism

import "fmt"

// State enumerates the lifecycle states of an organism.
type State uint8

const (
	// Growing is the transient state of a child organism awaiting its
	// first alive transition after a replication completed. It performs
	// no substance exchange.
	Growing State = iota
	// Alive is the normal state.
	Alive
	// InReplication marks an organism currently budding a child.
	InReplication
	// Starving organisms are low on energy.
	Starving
	// Dying organisms starved too long.
	Dying
	// Dead organisms lose their residual energy.
	Dead
	// Decomposing organisms dissolve their matter back into the water.
	Decomposing
)

var stateNames = map[State]string{
	Growing:       "GROWING",
	Alive:         "ALIVE",
	InReplication: "IN_REPLICATION",
	Starving:      "STARVING",
	Dying:         "DYING",
	Dead:          "DEAD",
	Decomposing:   "DECOMPOSING",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// StateByName resolves a persisted state tag.
func StateByName(name string) (State, bool) {
	for s, n := range stateNames {
		if n == name {
			return s, true
		}
	}
	return Alive, false
}

// RGB returns the display color of the state and whether it has one
// (the alive and growing states keep the cell's own coloring).
func (s State) RGB() (uint32, bool) {
	switch s {
	case InReplication:
		return 0x00ff00, true // green
	case Starving:
		return 0xffc800, true // orange
	case Dying:
		return 0xc0c0c0, true // light gray
	case Dead:
		return 0x404040, true // dark gray
	case Decomposing:
		return 0x000000, true
	}
	return 0, false
}
