package entities

import (
	"time"

	"isometry-backend/domain/core/valueobjects"
	pkgerrors "isometry-backend/pkg/errors"
)

// Edge is a typed, optionally directed relationship between two nodes.
// Edges have no soft-delete tier; they carry no independent content
// worth preserving, so Delete is hard.
type Edge struct {
	ID       string                  `json:"id"`
	Type     valueobjects.EdgeType   `json:"type"`
	SourceID valueobjects.NodeID     `json:"source_id"`
	TargetID valueobjects.NodeID     `json:"target_id"`
	Label    string                  `json:"label,omitempty"`
	Weight   float64                 `json:"weight"`
	Directed bool                    `json:"directed"`

	// SequenceOrder is set for SEQUENCE edges only; contiguous from 0
	// within the chain created by a single CreateSequence call.
	SequenceOrder *int `json:"sequence_order,omitempty"`

	Properties map[string]interface{} `json:"properties,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// NewEdge creates an edge of the given type with default weight 1.0
// and directed semantics, then validates the type-specific rules.
func NewEdge(edgeType valueobjects.EdgeType, sourceID, targetID valueobjects.NodeID) (*Edge, error) {
	now := time.Now().UTC()
	e := &Edge{
		ID:         valueobjects.NewEdgeID(),
		Type:       edgeType,
		SourceID:   sourceID,
		TargetID:   targetID,
		Weight:     1.0,
		Directed:   true,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if edgeType == valueobjects.EdgeTypeSequence {
		order := 0
		e.SequenceOrder = &order
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewLinkEdge creates a general association edge.
func NewLinkEdge(sourceID, targetID valueobjects.NodeID, label string, weight float64) (*Edge, error) {
	e, err := NewEdge(valueobjects.EdgeTypeLink, sourceID, targetID)
	if err != nil {
		return nil, err
	}
	e.Label = label
	e.Weight = weight
	return e, e.Validate()
}

// NewNestEdge creates a hierarchical parent to child edge.
func NewNestEdge(parentID, childID valueobjects.NodeID) (*Edge, error) {
	return NewEdge(valueobjects.EdgeTypeNest, parentID, childID)
}

// NewSequenceEdge creates one hop of an ordered chain.
func NewSequenceEdge(sourceID, targetID valueobjects.NodeID, order int) (*Edge, error) {
	e, err := NewEdge(valueobjects.EdgeTypeSequence, sourceID, targetID)
	if err != nil {
		return nil, err
	}
	*e.SequenceOrder = order
	return e, e.Validate()
}

// NewAffinityEdge creates a computed-similarity edge with strength in [0,1].
func NewAffinityEdge(sourceID, targetID valueobjects.NodeID, weight float64) (*Edge, error) {
	e, err := NewEdge(valueobjects.EdgeTypeAffinity, sourceID, targetID)
	if err != nil {
		return nil, err
	}
	e.Weight = weight
	return e, e.Validate()
}

// Validate checks structural and type-specific edge rules.
func (e *Edge) Validate() error {
	if e.ID == "" {
		return pkgerrors.NewInvalidDataError("edge ID cannot be empty")
	}
	if !e.Type.IsValid() {
		return pkgerrors.NewInvalidDataError("invalid edge type: " + e.Type.String())
	}
	if e.SourceID.IsZero() || e.TargetID.IsZero() {
		return pkgerrors.NewInvalidDataError("edge endpoints cannot be empty")
	}
	if e.SourceID.Equals(e.TargetID) {
		return pkgerrors.NewInvalidDataError("edge cannot connect a node to itself")
	}
	if err := e.Type.ValidateAttributes(e.Directed, e.Weight, e.SequenceOrder); err != nil {
		return pkgerrors.NewInvalidDataError(err.Error())
	}
	return nil
}

// Touch refreshes the modification timestamp. Repository updates go
// through it.
func (e *Edge) Touch() {
	e.ModifiedAt = time.Now().UTC()
}

// Connects reports whether the edge touches the node, in either role.
func (e *Edge) Connects(nodeID valueobjects.NodeID) bool {
	return e.SourceID.Equals(nodeID) || e.TargetID.Equals(nodeID)
}

// OtherEnd returns the opposite endpoint, or the zero NodeID when the
// edge does not touch the node.
func (e *Edge) OtherEnd(nodeID valueobjects.NodeID) valueobjects.NodeID {
	switch {
	case e.SourceID.Equals(nodeID):
		return e.TargetID
	case e.TargetID.Equals(nodeID):
		return e.SourceID
	default:
		return valueobjects.NodeID{}
	}
}
