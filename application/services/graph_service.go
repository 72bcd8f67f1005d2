package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"isometry-backend/application/ports"
	"isometry-backend/domain/core/entities"
	"isometry-backend/domain/core/valueobjects"
	pkgerrors "isometry-backend/pkg/errors"
)

const (
	// nestCycleDepthCap bounds descendant materialization during the
	// NEST cycle check, guarding against corrupted hierarchies.
	nestCycleDepthCap = 100

	// DefaultMaxPathLength bounds all-paths enumeration per branch.
	DefaultMaxPathLength = 10

	// DefaultMaxPaths bounds the total number of collected paths.
	DefaultMaxPaths = 100

	// DefaultCentralityLimit truncates ranked centrality results.
	DefaultCentralityLimit = 50

	// DefaultMinClusterSize drops trivial clusters.
	DefaultMinClusterSize = 2

	// maxShortestPathDistance bounds the repeated shortest-path calls
	// issued by the analysis loops.
	maxShortestPathDistance = 100
)

// GraphService performs graph construction with invariant-preserving
// validation, multi-hop traversal and structural analysis. It holds no
// state between calls and never touches storage except through the two
// repository ports; concurrent mutation of overlapping data is
// serialized by the storage layer, not here.
type GraphService struct {
	nodes  ports.NodeRepository
	edges  ports.EdgeRepository
	logger *zap.Logger
}

// NewGraphService creates a graph service over the given repositories.
func NewGraphService(nodes ports.NodeRepository, edges ports.EdgeRepository, logger *zap.Logger) *GraphService {
	return &GraphService{
		nodes:  nodes,
		edges:  edges,
		logger: logger,
	}
}

// CreateLink persists a directed LINK edge after verifying both
// endpoints exist and no LINK already connects the ordered pair.
func (s *GraphService) CreateLink(
	ctx context.Context,
	sourceID, targetID valueobjects.NodeID,
	label string,
	weight float64,
) (*entities.Edge, error) {
	if err := s.requireNodes(ctx, sourceID, targetID); err != nil {
		return nil, err
	}

	linkType := valueobjects.EdgeTypeLink
	outgoing, err := s.edges.GetOutgoingEdges(ctx, sourceID, &linkType)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to check existing links")
	}
	for _, e := range outgoing {
		if e.TargetID.Equals(targetID) {
			return nil, pkgerrors.NewConflictError(
				fmt.Sprintf("link already exists from %s to %s", sourceID, targetID))
		}
	}

	edge, err := entities.NewLinkEdge(sourceID, targetID, label, weight)
	if err != nil {
		return nil, err
	}

	if err := s.edges.Create(ctx, edge); err != nil {
		return nil, err
	}

	s.logger.Info("Link created",
		zap.String("edgeID", edge.ID),
		zap.String("source", sourceID.String()),
		zap.String("target", targetID.String()),
		zap.Float64("weight", weight),
	)
	return edge, nil
}

// CreateNest persists a directed NEST edge after verifying both
// endpoints exist, the child has no NEST parent yet, and the edge
// would not close a cycle.
func (s *GraphService) CreateNest(
	ctx context.Context,
	parentID, childID valueobjects.NodeID,
) (*entities.Edge, error) {
	if err := s.requireNodes(ctx, parentID, childID); err != nil {
		return nil, err
	}
	if parentID.Equals(childID) {
		return nil, pkgerrors.NewBusinessRuleError("a node cannot nest under itself")
	}

	existingParent, err := s.edges.GetParent(ctx, childID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to check existing parent")
	}
	if !existingParent.IsZero() {
		return nil, pkgerrors.NewBusinessRuleError(
			fmt.Sprintf("node %s already has a parent", childID))
	}

	// Materialize the child's descendant set and test membership of the
	// prospective parent: if the parent is below the child the new edge
	// would close a cycle.
	descendants, err := s.edges.GetDescendants(ctx, childID, nestCycleDepthCap)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to compute descendants")
	}
	for _, d := range descendants {
		if d.Equals(parentID) {
			return nil, pkgerrors.NewBusinessRuleError(
				fmt.Sprintf("nesting %s under %s would create a cycle", childID, parentID))
		}
	}

	edge, err := entities.NewNestEdge(parentID, childID)
	if err != nil {
		return nil, err
	}

	if err := s.edges.Create(ctx, edge); err != nil {
		return nil, err
	}

	s.logger.Info("Nest created",
		zap.String("edgeID", edge.ID),
		zap.String("parent", parentID.String()),
		zap.String("child", childID.String()),
	)
	return edge, nil
}

// CreateSequence chains the given nodes with SEQUENCE edges carrying
// contiguous orders starting at 0. Every endpoint is validated before
// any edge is written; a missing node fails the whole operation.
func (s *GraphService) CreateSequence(
	ctx context.Context,
	nodeIDs []valueobjects.NodeID,
) ([]*entities.Edge, error) {
	if len(nodeIDs) < 2 {
		return nil, pkgerrors.NewInvalidDataError("a sequence requires at least 2 nodes")
	}

	seen := make(map[valueobjects.NodeID]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		if seen[id] {
			return nil, pkgerrors.NewInvalidDataError(
				fmt.Sprintf("node %s appears twice in the sequence", id))
		}
		seen[id] = true
		if _, err := s.nodes.Get(ctx, id); err != nil {
			return nil, err
		}
	}

	edges := make([]*entities.Edge, 0, len(nodeIDs)-1)
	for i := 0; i < len(nodeIDs)-1; i++ {
		edge, err := entities.NewSequenceEdge(nodeIDs[i], nodeIDs[i+1], i)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}

	if err := s.edges.CreateBatch(ctx, edges); err != nil {
		return nil, err
	}

	s.logger.Info("Sequence created",
		zap.Int("nodes", len(nodeIDs)),
		zap.Int("edges", len(edges)),
	)
	return edges, nil
}

// requireNodes verifies that every given node exists, surfacing the
// repository's NOT_FOUND verbatim.
func (s *GraphService) requireNodes(ctx context.Context, ids ...valueobjects.NodeID) error {
	for _, id := range ids {
		if _, err := s.nodes.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
