package ports

import (
	"context"
	"time"

	"isometry-backend/domain/core/entities"
	"isometry-backend/domain/core/valueobjects"
	pkgerrors "isometry-backend/pkg/errors"
)

// ListOptions carries optional pagination and soft-delete visibility.
// When both Limit and Offset are nil the full result set is returned.
// Offset without Limit is rejected.
type ListOptions struct {
	Limit          *int
	Offset         *int
	IncludeDeleted bool
}

// Validate enforces the pagination contract.
func (o ListOptions) Validate() error {
	if o.Offset != nil && o.Limit == nil {
		return pkgerrors.NewInvalidDataError("offset requires limit")
	}
	if o.Limit != nil && *o.Limit < 0 {
		return pkgerrors.NewInvalidDataError("limit cannot be negative")
	}
	if o.Offset != nil && *o.Offset < 0 {
		return pkgerrors.NewInvalidDataError("offset cannot be negative")
	}
	return nil
}

// Limited is a convenience constructor for limit/offset options.
func Limited(limit, offset int) ListOptions {
	return ListOptions{Limit: &limit, Offset: &offset}
}

// DateField selects which temporal attribute a date-range query filters on.
type DateField string

const (
	DateFieldCreated    DateField = "created_at"
	DateFieldModified   DateField = "modified_at"
	DateFieldDue        DateField = "due_at"
	DateFieldEventStart DateField = "event_start"
)

// IsValid checks membership in the queryable date fields.
func (f DateField) IsValid() bool {
	switch f {
	case DateFieldCreated, DateFieldModified, DateFieldDue, DateFieldEventStart:
		return true
	}
	return false
}

// Subgraph is the slice of the graph reachable from a center node
// within a depth bound.
type Subgraph struct {
	CenterID valueobjects.NodeID   `json:"center_id"`
	NodeIDs  []valueobjects.NodeID `json:"node_ids"`
	Edges    []*entities.Edge      `json:"edges"`
}

// NodeRepository is the storage-independent contract for node
// persistence. Implementations own the canonical persisted state;
// every operation may fail with a typed repository error
// (NOT_FOUND, INVALID_DATA, DATABASE, CONFLICT, NETWORK) and
// failures are surfaced to the caller, never swallowed.
type NodeRepository interface {
	// Create persists a new node; the ID must not already exist.
	Create(ctx context.Context, node *entities.Node) error

	// CreateBatch persists several nodes atomically.
	CreateBatch(ctx context.Context, nodes []*entities.Node) error

	// Get retrieves a node by ID, soft-deleted nodes included.
	Get(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error)

	// Update persists in-place mutation and bumps the version counter.
	Update(ctx context.Context, node *entities.Node) error

	// Delete soft-deletes: the node stays queryable with IncludeDeleted.
	Delete(ctx context.Context, id valueobjects.NodeID) error

	// HardDelete irreversibly removes the node. It fails with CONFLICT
	// while edges still reference the node; cascading is the caller's
	// responsibility.
	HardDelete(ctx context.Context, id valueobjects.NodeID) error

	// GetAll returns nodes in a stable order honoring pagination.
	GetAll(ctx context.Context, opts ListOptions) ([]*entities.Node, error)

	// Count returns the number of nodes.
	Count(ctx context.Context, includeDeleted bool) (int, error)

	// Search runs a full-text query over name and content, ranked by
	// relevance.
	Search(ctx context.Context, query string, opts ListOptions) ([]*entities.Node, error)

	// GetByType returns nodes of one type tag.
	GetByType(ctx context.Context, nodeType valueobjects.NodeType, opts ListOptions) ([]*entities.Node, error)

	// GetByFolder returns nodes grouped under a folder path.
	GetByFolder(ctx context.Context, folder string, opts ListOptions) ([]*entities.Node, error)

	// GetByTags OR-matches against any of the supplied tags.
	GetByTags(ctx context.Context, tags []string, opts ListOptions) ([]*entities.Node, error)

	// GetByDateRange filters on one temporal field, inclusive bounds.
	GetByDateRange(ctx context.Context, field DateField, start, end time.Time, opts ListOptions) ([]*entities.Node, error)

	// GetPendingSync returns nodes awaiting external reconciliation.
	GetPendingSync(ctx context.Context) ([]*entities.Node, error)

	// GetWithLocation returns nodes carrying a geolocation.
	GetWithLocation(ctx context.Context) ([]*entities.Node, error)

	// ExecuteSQL is an escape hatch for ad-hoc read queries. Writes
	// are rejected.
	ExecuteSQL(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error)
}

// EdgeRepository is the storage-independent contract for edge
// persistence and the traversal primitives built on it. An edgeType
// of nil means all types. Traversal reads observe a per-call
// snapshot; there is no cross-call locking.
type EdgeRepository interface {
	// Create persists a new edge. Both endpoints must reference
	// existing, non-hard-deleted nodes.
	Create(ctx context.Context, edge *entities.Edge) error

	// CreateBatch persists several edges atomically.
	CreateBatch(ctx context.Context, edges []*entities.Edge) error

	// Get retrieves an edge by ID.
	Get(ctx context.Context, id string) (*entities.Edge, error)

	// Update persists in-place mutation.
	Update(ctx context.Context, edge *entities.Edge) error

	// Delete removes the edge. Hard; edges have no soft-delete tier.
	Delete(ctx context.Context, id string) error

	// GetByType returns all edges of one type.
	GetByType(ctx context.Context, edgeType valueobjects.EdgeType) ([]*entities.Edge, error)

	// GetOutgoingEdges returns edges whose source is the node.
	GetOutgoingEdges(ctx context.Context, nodeID valueobjects.NodeID, edgeType *valueobjects.EdgeType) ([]*entities.Edge, error)

	// GetIncomingEdges returns edges whose target is the node.
	GetIncomingEdges(ctx context.Context, nodeID valueobjects.NodeID, edgeType *valueobjects.EdgeType) ([]*entities.Edge, error)

	// GetConnectedEdges returns edges touching the node in either role.
	GetConnectedEdges(ctx context.Context, nodeID valueobjects.NodeID, edgeType *valueobjects.EdgeType) ([]*entities.Edge, error)

	// GetNeighbors returns the distinct nodes one hop away.
	GetNeighbors(ctx context.Context, nodeID valueobjects.NodeID, edgeType *valueobjects.EdgeType, direction valueobjects.Direction) ([]valueobjects.NodeID, error)

	// GetNodesAtDistance returns the distinct nodes exactly distance
	// hops away.
	GetNodesAtDistance(ctx context.Context, sourceID valueobjects.NodeID, distance int, edgeType *valueobjects.EdgeType, direction valueobjects.Direction) ([]valueobjects.NodeID, error)

	// FindShortestPath returns the node sequence of a shortest path
	// from source to target, both endpoints included. The empty slice
	// means no path within maxDistance; that is not an error.
	FindShortestPath(ctx context.Context, sourceID, targetID valueobjects.NodeID, edgeType *valueobjects.EdgeType, maxDistance int) ([]valueobjects.NodeID, error)

	// ExtractSubgraph returns everything reachable from the center
	// within depth hops.
	ExtractSubgraph(ctx context.Context, centerID valueobjects.NodeID, depth int, edgeType *valueobjects.EdgeType, direction valueobjects.Direction) (*Subgraph, error)

	// FindConnectedComponents partitions the node set into weakly
	// connected components, dropping those below minSize.
	FindConnectedComponents(ctx context.Context, edgeType *valueobjects.EdgeType, minSize int) ([][]valueobjects.NodeID, error)

	// Hierarchy primitives over NEST edges.

	// GetChildren returns the direct NEST children of a node.
	GetChildren(ctx context.Context, nodeID valueobjects.NodeID) ([]valueobjects.NodeID, error)

	// GetParent returns the NEST parent, or the zero NodeID when the
	// node is a root.
	GetParent(ctx context.Context, nodeID valueobjects.NodeID) (valueobjects.NodeID, error)

	// GetDescendants returns all NEST descendants down to maxDepth.
	GetDescendants(ctx context.Context, nodeID valueobjects.NodeID, maxDepth int) ([]valueobjects.NodeID, error)

	// GetAncestors returns the NEST ancestor chain, nearest first.
	GetAncestors(ctx context.Context, nodeID valueobjects.NodeID) ([]valueobjects.NodeID, error)

	// GetRootNodes returns nodes with NEST children but no NEST parent.
	GetRootNodes(ctx context.Context) ([]valueobjects.NodeID, error)

	// GetLeafNodes returns nodes with a NEST parent but no NEST children.
	GetLeafNodes(ctx context.Context) ([]valueobjects.NodeID, error)

	// Sequence primitives over SEQUENCE edges.

	// GetSequence follows a chain from its start node, order ascending,
	// up to maxLength nodes.
	GetSequence(ctx context.Context, startID valueobjects.NodeID, maxLength int) ([]valueobjects.NodeID, error)

	// GetAllSequences returns every chain of at least minLength nodes.
	GetAllSequences(ctx context.Context, minLength int) ([][]valueobjects.NodeID, error)
}
