package services

import (
	"context"

	"go.uber.org/zap"

	"isometry-backend/domain/core/valueobjects"
	pkgerrors "isometry-backend/pkg/errors"
)

// FindAllPaths enumerates directed paths from source to target over
// outgoing edges of any type, depth first. A node may not repeat
// within a single path, but may appear in many paths, so diamond
// shapes are fully explored. Branches stop at maxLength edges and the
// enumeration stops after maxPaths paths; non-positive arguments fall
// back to the defaults. A disconnected pair yields an empty list, not
// an error.
func (s *GraphService) FindAllPaths(
	ctx context.Context,
	sourceID, targetID valueobjects.NodeID,
	maxLength, maxPaths int,
) ([][]valueobjects.NodeID, error) {
	if err := s.requireNodes(ctx, sourceID, targetID); err != nil {
		return nil, err
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxPathLength
	}
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}

	walk := &pathWalk{
		service:   s,
		target:    targetID,
		maxLength: maxLength,
		maxPaths:  maxPaths,
		onPath:    map[valueobjects.NodeID]bool{sourceID: true},
	}
	if err := walk.visit(ctx, sourceID, []valueobjects.NodeID{sourceID}); err != nil {
		return nil, err
	}

	s.logger.Debug("All-paths search finished",
		zap.String("source", sourceID.String()),
		zap.String("target", targetID.String()),
		zap.Int("paths", len(walk.paths)),
	)
	return walk.paths, nil
}

// pathWalk is the per-call state of one all-paths enumeration. It is
// never shared across invocations.
type pathWalk struct {
	service   *GraphService
	target    valueobjects.NodeID
	maxLength int
	maxPaths  int
	onPath    map[valueobjects.NodeID]bool
	paths     [][]valueobjects.NodeID
}

func (w *pathWalk) visit(ctx context.Context, current valueobjects.NodeID, path []valueobjects.NodeID) error {
	if len(w.paths) >= w.maxPaths {
		return nil
	}
	if current.Equals(w.target) {
		w.paths = append(w.paths, append([]valueobjects.NodeID(nil), path...))
		return nil
	}
	if len(path)-1 >= w.maxLength {
		return nil
	}

	outgoing, err := w.service.edges.GetOutgoingEdges(ctx, current, nil)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to expand path")
	}

	for _, edge := range outgoing {
		next := edge.TargetID
		if !edge.Directed {
			// Undirected edges come back as outgoing from either side;
			// follow them away from the current node.
			next = edge.OtherEnd(current)
		}
		if w.onPath[next] {
			continue
		}
		w.onPath[next] = true
		if err := w.visit(ctx, next, append(path, next)); err != nil {
			return err
		}
		delete(w.onPath, next)
		if len(w.paths) >= w.maxPaths {
			return nil
		}
	}
	return nil
}
