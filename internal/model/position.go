package model

import (
	"fmt"
	"strings"
)

// Position is the screen corner a toast is anchored to.
type Position int

const (
	PositionBottomLeft Position = iota
	PositionBottomRight
	PositionTopLeft
	PositionTopRight
)

// Positions returns every position in render order.
func Positions() []Position {
	return []Position{
		PositionBottomLeft,
		PositionBottomRight,
		PositionTopLeft,
		PositionTopRight,
	}
}

// String returns the kebab-case name used in config files and D-Bus hints.
func (p Position) String() string {
	switch p {
	case PositionBottomLeft:
		return "bottom-left"
	case PositionBottomRight:
		return "bottom-right"
	case PositionTopLeft:
		return "top-left"
	case PositionTopRight:
		return "top-right"
	default:
		return fmt.Sprintf("position(%d)", int(p))
	}
}

// Valid reports whether p is one of the four known corners.
func (p Position) Valid() bool {
	return p >= PositionBottomLeft && p <= PositionTopRight
}

// IsTop reports whether the position is anchored to the top edge.
func (p Position) IsTop() bool {
	return p == PositionTopLeft || p == PositionTopRight
}

// IsRight reports whether the position is anchored to the right edge.
func (p Position) IsRight() bool {
	return p == PositionBottomRight || p == PositionTopRight
}

// ParsePosition parses a position name. Underscores and case are tolerated.
func ParsePosition(s string) (Position, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for _, p := range Positions() {
		if p.String() == norm {
			return p, nil
		}
	}
	return PositionBottomLeft, fmt.Errorf("invalid position %q, must be one of: %v", s, Positions())
}

// MarshalText implements encoding.TextMarshaler.
func (p Position) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid position %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Position) UnmarshalText(text []byte) error {
	parsed, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
