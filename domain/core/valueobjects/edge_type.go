package valueobjects

import (
	"errors"
	"fmt"
)

// EdgeType is the closed taxonomy of relationships between nodes.
// Type-specific rules live here rather than in callers so the set
// stays exhaustive in one place.
type EdgeType string

const (
	// EdgeTypeLink is a general many-to-many association.
	EdgeTypeLink EdgeType = "LINK"

	// EdgeTypeNest is a hierarchical parent to child relationship.
	// A child has at most one NEST parent and the hierarchy is acyclic.
	EdgeTypeNest EdgeType = "NEST"

	// EdgeTypeSequence is an ordered succession carrying a sequence order
	// unique within its chain.
	EdgeTypeSequence EdgeType = "SEQUENCE"

	// EdgeTypeAffinity is a computed similarity with a weight in [0,1].
	EdgeTypeAffinity EdgeType = "AFFINITY"
)

// AllEdgeTypes lists every member of the taxonomy.
func AllEdgeTypes() []EdgeType {
	return []EdgeType{EdgeTypeLink, EdgeTypeNest, EdgeTypeSequence, EdgeTypeAffinity}
}

// ParseEdgeType validates a raw string against the taxonomy.
func ParseEdgeType(s string) (EdgeType, error) {
	t := EdgeType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown edge type %q", s)
	}
	return t, nil
}

// IsValid checks membership in the taxonomy.
func (t EdgeType) IsValid() bool {
	switch t {
	case EdgeTypeLink, EdgeTypeNest, EdgeTypeSequence, EdgeTypeAffinity:
		return true
	}
	return false
}

// String returns the string representation of the edge type
func (t EdgeType) String() string {
	return string(t)
}

// ValidateAttributes applies the type-specific rules to an edge's
// directedness, weight and sequence order.
func (t EdgeType) ValidateAttributes(directed bool, weight float64, sequenceOrder *int) error {
	switch t {
	case EdgeTypeLink:
		return nil
	case EdgeTypeNest:
		if !directed {
			return errors.New("NEST edges must be directed")
		}
		return nil
	case EdgeTypeSequence:
		if !directed {
			return errors.New("SEQUENCE edges must be directed")
		}
		if sequenceOrder == nil {
			return errors.New("SEQUENCE edges require a sequence order")
		}
		if *sequenceOrder < 0 {
			return fmt.Errorf("sequence order must be non-negative, got %d", *sequenceOrder)
		}
		return nil
	case EdgeTypeAffinity:
		if weight < 0 || weight > 1 {
			return fmt.Errorf("AFFINITY weight must be in [0,1], got %v", weight)
		}
		return nil
	default:
		return fmt.Errorf("unknown edge type %q", string(t))
	}
}
