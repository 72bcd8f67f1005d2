package valueobjects

import "fmt"

// Direction selects which edges a traversal follows relative to a node.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

// ParseDirection validates a raw string direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.IsValid() {
		return "", fmt.Errorf("unknown direction %q", s)
	}
	return d, nil
}

// IsValid checks that the direction is one of the three allowed values.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionOutgoing, DirectionIncoming, DirectionBoth:
		return true
	}
	return false
}

// String returns the string representation of the direction
func (d Direction) String() string {
	return string(d)
}
