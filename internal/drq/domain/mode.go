package domain

import (
	"fmt"
	"strings"
)

// Strategy selects where decoy hostnames come from.
type Strategy uint8

const (
	// StrategyBasic pads every block with uniformly random hostnames.
	StrategyBasic Strategy = iota
	// StrategyPattern pads with real patterns of the same length as the target's.
	StrategyPattern
)

// String returns a stable string representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyBasic:
		return "basic"
	case StrategyPattern:
		return "pattern"
	default:
		return fmt.Sprintf("Strategy(%d)", s)
	}
}

// Shape describes how much block structure an observer can see.
//
// ndb - no distinguishable blocks: one flat set
// dfb - distinguishable first block: (head, tail)
// fdb - fully distinguishable blocks: one set per pattern element
type Shape uint8

const (
	ShapeNDB Shape = iota
	ShapeDFB
	ShapeFDB
)

// String returns a stable string representation of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeNDB:
		return "ndb"
	case ShapeDFB:
		return "dfb"
	case ShapeFDB:
		return "fdb"
	default:
		return fmt.Sprintf("Shape(%d)", s)
	}
}

// ParseShape converts "ndb", "dfb" or "fdb" (case-insensitive) into a Shape.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ndb":
		return ShapeNDB, nil
	case "dfb":
		return ShapeDFB, nil
	case "fdb":
		return ShapeFDB, nil
	default:
		return 0, fmt.Errorf("unsupported shape: %q", s)
	}
}

// Mode is the numbered generator/attacker pairing exposed on the command line.
//
//	1) no distinguishable blocks     - random generation
//	2) distinguishable first block   - random generation
//	3) fully distinguishable blocks  - random generation
//	4) no distinguishable blocks     - pattern-based generation
//	5) distinguishable first block   - pattern-based generation
//	6) fully distinguishable blocks  - pattern-based generation
type Mode int

const (
	MinMode Mode = 1
	MaxMode Mode = 6
)

// NewMode validates n and returns it as a Mode.
func NewMode(n int) (Mode, error) {
	m := Mode(n)
	if m < MinMode || m > MaxMode {
		return 0, fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidMode, n, MinMode, MaxMode)
	}
	return m, nil
}

// Strategy returns the padding strategy of the mode.
func (m Mode) Strategy() Strategy {
	if m >= 4 {
		return StrategyPattern
	}
	return StrategyBasic
}

// Shape returns the distinguishability shape of the mode.
func (m Mode) Shape() Shape {
	return Shape((int(m) - 1) % 3)
}

// String returns e.g. "mode 5 (pattern/dfb)".
func (m Mode) String() string {
	return fmt.Sprintf("mode %d (%s/%s)", int(m), m.Strategy(), m.Shape())
}
