package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"isometry-backend/application/ports"
	"isometry-backend/domain/core/entities"
	"isometry-backend/domain/core/valueobjects"
	pkgerrors "isometry-backend/pkg/errors"
)

const edgeColumns = `id, type, source_id, target_id, label, weight, directed,
	sequence_order, properties, created_at, modified_at`

// defaultTraversalDepth bounds unbounded hierarchy and sequence walks
// so corrupted data cannot loop forever.
const defaultTraversalDepth = 100

// EdgeRepository implements ports.EdgeRepository on SQLite. Traversal
// primitives load the filtered edge list and walk it in memory; every
// walk's state is scoped to a single call.
type EdgeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEdgeRepository creates a SQLite-backed edge repository.
func NewEdgeRepository(db *sql.DB, logger *zap.Logger) ports.EdgeRepository {
	return &EdgeRepository{db: db, logger: logger}
}

// Create persists a new edge after verifying both endpoints reference
// persisted nodes.
func (r *EdgeRepository) Create(ctx context.Context, edge *entities.Edge) error {
	if err := edge.Validate(); err != nil {
		return err
	}
	if err := r.requireNodes(ctx, edge.SourceID, edge.TargetID); err != nil {
		return err
	}
	return r.insert(ctx, r.db, edge)
}

// CreateBatch persists several edges atomically: all endpoints are
// validated before the first write.
func (r *EdgeRepository) CreateBatch(ctx context.Context, edges []*entities.Edge) error {
	for _, edge := range edges {
		if err := edge.Validate(); err != nil {
			return err
		}
		if err := r.requireNodes(ctx, edge.SourceID, edge.TargetID); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.NewDatabaseError("begin", err)
	}
	defer tx.Rollback()

	for _, edge := range edges {
		if err := r.insert(ctx, tx, edge); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return pkgerrors.NewDatabaseError("commit", err)
	}

	r.logger.Debug("Edge batch created", zap.Int("count", len(edges)))
	return nil
}

func (r *EdgeRepository) insert(ctx context.Context, ex execer, edge *entities.Edge) error {
	props, err := json.Marshal(edge.Properties)
	if err != nil {
		return pkgerrors.NewInvalidDataError("edge properties are not serializable")
	}

	var order interface{}
	if edge.SequenceOrder != nil {
		order = *edge.SequenceOrder
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO edges (`+edgeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		edge.ID, edge.Type.String(), edge.SourceID.String(), edge.TargetID.String(),
		edge.Label, edge.Weight, edge.Directed, order, string(props),
		encodeTime(edge.CreatedAt), encodeTime(edge.ModifiedAt),
	)
	if isUniqueViolation(err) {
		return pkgerrors.NewConflictError(fmt.Sprintf("edge %s already exists", edge.ID))
	}
	if err != nil {
		return pkgerrors.NewDatabaseError("insert edge", err)
	}
	return nil
}

// Get retrieves an edge by ID.
func (r *EdgeRepository) Get(ctx context.Context, id string) (*entities.Edge, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+edgeColumns+` FROM edges WHERE id = ?`, id)
	edge, err := scanEdge(row)
	if err == sql.ErrNoRows {
		return nil, pkgerrors.NewNotFoundError("edge " + id)
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get edge", err)
	}
	return edge, nil
}

// Update persists in-place mutation.
func (r *EdgeRepository) Update(ctx context.Context, edge *entities.Edge) error {
	if err := edge.Validate(); err != nil {
		return err
	}
	edge.Touch()

	props, err := json.Marshal(edge.Properties)
	if err != nil {
		return pkgerrors.NewInvalidDataError("edge properties are not serializable")
	}
	var order interface{}
	if edge.SequenceOrder != nil {
		order = *edge.SequenceOrder
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE edges SET type = ?, source_id = ?, target_id = ?, label = ?,
			weight = ?, directed = ?, sequence_order = ?, properties = ?, modified_at = ?
		WHERE id = ?`,
		edge.Type.String(), edge.SourceID.String(), edge.TargetID.String(), edge.Label,
		edge.Weight, edge.Directed, order, string(props), encodeTime(edge.ModifiedAt),
		edge.ID,
	)
	if err != nil {
		return pkgerrors.NewDatabaseError("update edge", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return pkgerrors.NewNotFoundError("edge " + edge.ID)
	}
	return nil
}

// Delete removes an edge. Hard; edges have no soft-delete tier.
func (r *EdgeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM edges WHERE id = ?`, id)
	if err != nil {
		return pkgerrors.NewDatabaseError("delete edge", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return pkgerrors.NewNotFoundError("edge " + id)
	}
	return nil
}

// GetByType returns all edges of one type.
func (r *EdgeRepository) GetByType(ctx context.Context, edgeType valueobjects.EdgeType) ([]*entities.Edge, error) {
	return r.queryEdges(ctx,
		`SELECT `+edgeColumns+` FROM edges WHERE type = ? ORDER BY created_at, id`,
		edgeType.String())
}

// GetOutgoingEdges returns edges leaving the node: directed edges with
// the node as source plus undirected edges touching it.
func (r *EdgeRepository) GetOutgoingEdges(ctx context.Context, nodeID valueobjects.NodeID, edgeType *valueobjects.EdgeType) ([]*entities.Edge, error) {
	q := `SELECT ` + edgeColumns + ` FROM edges
		WHERE (source_id = ? OR (directed = 0 AND target_id = ?))`
	args := []interface{}{nodeID.String(), nodeID.String()}
	q, args = filterType(q, args, edgeType)
	return r.queryEdges(ctx, q+` ORDER BY created_at, id`, args...)
}

// GetIncomingEdges returns edges arriving at the node: directed edges
// with the node as target plus undirected edges touching it.
func (r *EdgeRepository) GetIncomingEdges(ctx context.Context, nodeID valueobjects.NodeID, edgeType *valueobjects.EdgeType) ([]*entities.Edge, error) {
	q := `SELECT ` + edgeColumns + ` FROM edges
		WHERE (target_id = ? OR (directed = 0 AND source_id = ?))`
	args := []interface{}{nodeID.String(), nodeID.String()}
	q, args = filterType(q, args, edgeType)
	return r.queryEdges(ctx, q+` ORDER BY created_at, id`, args...)
}

// GetConnectedEdges returns edges touching the node in either role.
func (r *EdgeRepository) GetConnectedEdges(ctx context.Context, nodeID valueobjects.NodeID, edgeType *valueobjects.EdgeType) ([]*entities.Edge, error) {
	q := `SELECT ` + edgeColumns + ` FROM edges WHERE (source_id = ? OR target_id = ?)`
	args := []interface{}{nodeID.String(), nodeID.String()}
	q, args = filterType(q, args, edgeType)
	return r.queryEdges(ctx, q+` ORDER BY created_at, id`, args...)
}

// GetNeighbors returns the distinct nodes one hop away.
func (r *EdgeRepository) GetNeighbors(ctx context.Context, nodeID valueobjects.NodeID, edgeType *valueobjects.EdgeType, direction valueobjects.Direction) ([]valueobjects.NodeID, error) {
	adjacency, err := r.loadAdjacency(ctx, edgeType, direction)
	if err != nil {
		return nil, err
	}
	return sortedIDs(adjacency[nodeID]), nil
}

// GetNodesAtDistance returns the distinct nodes exactly distance hops
// away via breadth-first search.
func (r *EdgeRepository) GetNodesAtDistance(ctx context.Context, sourceID valueobjects.NodeID, distance int, edgeType *valueobjects.EdgeType, direction valueobjects.Direction) ([]valueobjects.NodeID, error) {
	if distance < 0 {
		return nil, pkgerrors.NewInvalidDataError("distance cannot be negative")
	}
	if distance == 0 {
		return []valueobjects.NodeID{sourceID}, nil
	}

	adjacency, err := r.loadAdjacency(ctx, edgeType, direction)
	if err != nil {
		return nil, err
	}

	visited := map[valueobjects.NodeID]bool{sourceID: true}
	frontier := map[valueobjects.NodeID]bool{sourceID: true}
	for hop := 0; hop < distance; hop++ {
		next := make(map[valueobjects.NodeID]bool)
		for id := range frontier {
			for neighbor := range adjacency[id] {
				if !visited[neighbor] {
					visited[neighbor] = true
					next[neighbor] = true
				}
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}

	ids := make(map[valueobjects.NodeID]bool, len(frontier))
	for id := range frontier {
		ids[id] = true
	}
	return sortedIDs(ids), nil
}

// FindShortestPath runs breadth-first search over outgoing edges and
// reconstructs the hop sequence. The empty slice means no path within
// maxDistance; that is not an error.
func (r *EdgeRepository) FindShortestPath(ctx context.Context, sourceID, targetID valueobjects.NodeID, edgeType *valueobjects.EdgeType, maxDistance int) ([]valueobjects.NodeID, error) {
	if maxDistance <= 0 {
		maxDistance = defaultTraversalDepth
	}
	if sourceID.Equals(targetID) {
		return []valueobjects.NodeID{sourceID}, nil
	}

	adjacency, err := r.loadAdjacency(ctx, edgeType, valueobjects.DirectionOutgoing)
	if err != nil {
		return nil, err
	}

	parent := make(map[valueobjects.NodeID]valueobjects.NodeID)
	visited := map[valueobjects.NodeID]bool{sourceID: true}
	frontier := []valueobjects.NodeID{sourceID}

	for depth := 0; depth < maxDistance && len(frontier) > 0; depth++ {
		var next []valueobjects.NodeID
		for _, current := range frontier {
			for _, neighbor := range sortedIDs(adjacency[current]) {
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				parent[neighbor] = current
				if neighbor.Equals(targetID) {
					return reconstructPath(sourceID, targetID, parent), nil
				}
				next = append(next, neighbor)
			}
		}
		frontier = next
	}
	return []valueobjects.NodeID{}, nil
}

// ExtractSubgraph returns the nodes reachable from the center within
// depth hops plus every edge joining two of them.
func (r *EdgeRepository) ExtractSubgraph(ctx context.Context, centerID valueobjects.NodeID, depth int, edgeType *valueobjects.EdgeType, direction valueobjects.Direction) (*ports.Subgraph, error) {
	if depth < 0 {
		return nil, pkgerrors.NewInvalidDataError("depth cannot be negative")
	}

	adjacency, err := r.loadAdjacency(ctx, edgeType, direction)
	if err != nil {
		return nil, err
	}

	included := map[valueobjects.NodeID]bool{centerID: true}
	frontier := map[valueobjects.NodeID]bool{centerID: true}
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		next := make(map[valueobjects.NodeID]bool)
		for id := range frontier {
			for neighbor := range adjacency[id] {
				if !included[neighbor] {
					included[neighbor] = true
					next[neighbor] = true
				}
			}
		}
		frontier = next
	}

	edges, err := r.edgesAmong(ctx, included, edgeType)
	if err != nil {
		return nil, err
	}
	return &ports.Subgraph{
		CenterID: centerID,
		NodeIDs:  sortedIDs(included),
		Edges:    edges,
	}, nil
}

// FindConnectedComponents partitions the live node set into weakly
// connected components; isolated nodes form singletons. Components
// below minSize are dropped.
func (r *EdgeRepository) FindConnectedComponents(ctx context.Context, edgeType *valueobjects.EdgeType, minSize int) ([][]valueobjects.NodeID, error) {
	if minSize < 1 {
		minSize = 1
	}

	nodeIDs, err := r.liveNodeIDs(ctx)
	if err != nil {
		return nil, err
	}
	alive := make(map[valueobjects.NodeID]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		alive[id] = true
	}

	adjacency, err := r.loadAdjacency(ctx, edgeType, valueobjects.DirectionBoth)
	if err != nil {
		return nil, err
	}

	visited := make(map[valueobjects.NodeID]bool, len(nodeIDs))
	var components [][]valueobjects.NodeID
	for _, start := range nodeIDs {
		if visited[start] {
			continue
		}
		component := []valueobjects.NodeID{}
		stack := []valueobjects.NodeID{start}
		visited[start] = true
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, current)
			for _, neighbor := range sortedIDs(adjacency[current]) {
				if !alive[neighbor] || visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				stack = append(stack, neighbor)
			}
		}
		if len(component) >= minSize {
			sort.Slice(component, func(i, j int) bool {
				return component[i].String() < component[j].String()
			})
			components = append(components, component)
		}
	}

	sort.Slice(components, func(i, j int) bool {
		if len(components[i]) != len(components[j]) {
			return len(components[i]) > len(components[j])
		}
		return components[i][0].String() < components[j][0].String()
	})
	return components, nil
}

// GetChildren returns the direct NEST children of a node.
func (r *EdgeRepository) GetChildren(ctx context.Context, nodeID valueobjects.NodeID) ([]valueobjects.NodeID, error) {
	return r.queryIDs(ctx, `
		SELECT target_id FROM edges WHERE type = ? AND source_id = ?
		ORDER BY created_at, id`,
		valueobjects.EdgeTypeNest.String(), nodeID.String())
}

// GetParent returns the NEST parent, or the zero NodeID for a root.
func (r *EdgeRepository) GetParent(ctx context.Context, nodeID valueobjects.NodeID) (valueobjects.NodeID, error) {
	var parent string
	err := r.db.QueryRowContext(ctx, `
		SELECT source_id FROM edges WHERE type = ? AND target_id = ? LIMIT 1`,
		valueobjects.EdgeTypeNest.String(), nodeID.String()).Scan(&parent)
	if err == sql.ErrNoRows {
		return valueobjects.NodeID{}, nil
	}
	if err != nil {
		return valueobjects.NodeID{}, pkgerrors.NewDatabaseError("get parent", err)
	}
	return valueobjects.NewNodeIDFromString(parent)
}

// GetDescendants returns all NEST descendants down to maxDepth.
func (r *EdgeRepository) GetDescendants(ctx context.Context, nodeID valueobjects.NodeID, maxDepth int) ([]valueobjects.NodeID, error) {
	if maxDepth <= 0 {
		maxDepth = defaultTraversalDepth
	}

	nestType := valueobjects.EdgeTypeNest
	adjacency, err := r.loadAdjacency(ctx, &nestType, valueobjects.DirectionOutgoing)
	if err != nil {
		return nil, err
	}

	visited := map[valueobjects.NodeID]bool{nodeID: true}
	var descendants []valueobjects.NodeID
	frontier := []valueobjects.NodeID{nodeID}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []valueobjects.NodeID
		for _, current := range frontier {
			for _, child := range sortedIDs(adjacency[current]) {
				if visited[child] {
					continue
				}
				visited[child] = true
				descendants = append(descendants, child)
				next = append(next, child)
			}
		}
		frontier = next
	}
	return descendants, nil
}

// GetAncestors returns the NEST ancestor chain, nearest first.
func (r *EdgeRepository) GetAncestors(ctx context.Context, nodeID valueobjects.NodeID) ([]valueobjects.NodeID, error) {
	var ancestors []valueobjects.NodeID
	visited := map[valueobjects.NodeID]bool{nodeID: true}
	current := nodeID
	for depth := 0; depth < defaultTraversalDepth; depth++ {
		parent, err := r.GetParent(ctx, current)
		if err != nil {
			return nil, err
		}
		if parent.IsZero() || visited[parent] {
			break
		}
		visited[parent] = true
		ancestors = append(ancestors, parent)
		current = parent
	}
	return ancestors, nil
}

// GetRootNodes returns nodes with NEST children but no NEST parent.
func (r *EdgeRepository) GetRootNodes(ctx context.Context) ([]valueobjects.NodeID, error) {
	return r.queryIDs(ctx, `
		SELECT DISTINCT e.source_id FROM edges e
		WHERE e.type = ?
		  AND NOT EXISTS (
			SELECT 1 FROM edges p WHERE p.type = ? AND p.target_id = e.source_id)
		ORDER BY e.source_id`,
		valueobjects.EdgeTypeNest.String(), valueobjects.EdgeTypeNest.String())
}

// GetLeafNodes returns nodes with a NEST parent but no NEST children.
func (r *EdgeRepository) GetLeafNodes(ctx context.Context) ([]valueobjects.NodeID, error) {
	return r.queryIDs(ctx, `
		SELECT DISTINCT e.target_id FROM edges e
		WHERE e.type = ?
		  AND NOT EXISTS (
			SELECT 1 FROM edges c WHERE c.type = ? AND c.source_id = e.target_id)
		ORDER BY e.target_id`,
		valueobjects.EdgeTypeNest.String(), valueobjects.EdgeTypeNest.String())
}

// GetSequence follows a chain from its start node, lowest order first,
// up to maxLength nodes.
func (r *EdgeRepository) GetSequence(ctx context.Context, startID valueobjects.NodeID, maxLength int) ([]valueobjects.NodeID, error) {
	if maxLength <= 0 {
		maxLength = defaultTraversalDepth
	}

	chain := []valueobjects.NodeID{startID}
	visited := map[valueobjects.NodeID]bool{startID: true}
	current := startID
	for len(chain) < maxLength {
		var next string
		err := r.db.QueryRowContext(ctx, `
			SELECT target_id FROM edges
			WHERE type = ? AND source_id = ?
			ORDER BY sequence_order LIMIT 1`,
			valueobjects.EdgeTypeSequence.String(), current.String()).Scan(&next)
		if err == sql.ErrNoRows {
			break
		}
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("get sequence", err)
		}
		nextID, err := valueobjects.NewNodeIDFromString(next)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("get sequence", err)
		}
		if visited[nextID] {
			break
		}
		visited[nextID] = true
		chain = append(chain, nextID)
		current = nextID
	}
	return chain, nil
}

// GetAllSequences returns every chain of at least minLength nodes,
// each followed from a node with outgoing SEQUENCE edges but none
// incoming.
func (r *EdgeRepository) GetAllSequences(ctx context.Context, minLength int) ([][]valueobjects.NodeID, error) {
	if minLength < 2 {
		minLength = 2
	}

	starts, err := r.queryIDs(ctx, `
		SELECT DISTINCT e.source_id FROM edges e
		WHERE e.type = ?
		  AND NOT EXISTS (
			SELECT 1 FROM edges p WHERE p.type = ? AND p.target_id = e.source_id)
		ORDER BY e.source_id`,
		valueobjects.EdgeTypeSequence.String(), valueobjects.EdgeTypeSequence.String())
	if err != nil {
		return nil, err
	}

	var sequences [][]valueobjects.NodeID
	for _, start := range starts {
		chain, err := r.GetSequence(ctx, start, 0)
		if err != nil {
			return nil, err
		}
		if len(chain) >= minLength {
			sequences = append(sequences, chain)
		}
	}
	return sequences, nil
}

// requireNodes verifies that each node row exists (soft-deleted rows
// still count; only hard-deleted nodes are gone).
func (r *EdgeRepository) requireNodes(ctx context.Context, ids ...valueobjects.NodeID) error {
	for _, id := range ids {
		var one int
		err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM nodes WHERE id = ?`, id.String()).Scan(&one)
		if err == sql.ErrNoRows {
			return pkgerrors.NewNotFoundError("node " + id.String())
		}
		if err != nil {
			return pkgerrors.NewDatabaseError("check node", err)
		}
	}
	return nil
}

// liveNodeIDs lists non-soft-deleted node IDs in stable order.
func (r *EdgeRepository) liveNodeIDs(ctx context.Context) ([]valueobjects.NodeID, error) {
	return r.queryIDs(ctx,
		`SELECT id FROM nodes WHERE deleted_at IS NULL ORDER BY created_at, id`)
}

// loadAdjacency builds the neighbor map for one traversal call from
// the filtered edge list. Undirected edges connect both ways in every
// direction mode.
func (r *EdgeRepository) loadAdjacency(ctx context.Context, edgeType *valueobjects.EdgeType, direction valueobjects.Direction) (map[valueobjects.NodeID]map[valueobjects.NodeID]bool, error) {
	if !direction.IsValid() {
		return nil, pkgerrors.NewInvalidDataError(fmt.Sprintf("unknown direction %q", direction))
	}

	q := `SELECT source_id, target_id, directed FROM edges`
	var args []interface{}
	if edgeType != nil {
		q += ` WHERE type = ?`
		args = append(args, edgeType.String())
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("load adjacency", err)
	}
	defer rows.Close()

	adjacency := make(map[valueobjects.NodeID]map[valueobjects.NodeID]bool)
	link := func(from, to valueobjects.NodeID) {
		if adjacency[from] == nil {
			adjacency[from] = make(map[valueobjects.NodeID]bool)
		}
		adjacency[from][to] = true
	}

	for rows.Next() {
		var source, target string
		var directed bool
		if err := rows.Scan(&source, &target, &directed); err != nil {
			return nil, pkgerrors.NewDatabaseError("load adjacency", err)
		}
		sourceID, err := valueobjects.NewNodeIDFromString(source)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("load adjacency", err)
		}
		targetID, err := valueobjects.NewNodeIDFromString(target)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("load adjacency", err)
		}

		forward := direction == valueobjects.DirectionOutgoing || direction == valueobjects.DirectionBoth
		backward := direction == valueobjects.DirectionIncoming || direction == valueobjects.DirectionBoth
		if forward || !directed {
			link(sourceID, targetID)
		}
		if backward || !directed {
			link(targetID, sourceID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("load adjacency", err)
	}
	return adjacency, nil
}

// edgesAmong returns edges whose both endpoints are in the set.
func (r *EdgeRepository) edgesAmong(ctx context.Context, nodes map[valueobjects.NodeID]bool, edgeType *valueobjects.EdgeType) ([]*entities.Edge, error) {
	q := `SELECT ` + edgeColumns + ` FROM edges`
	var args []interface{}
	if edgeType != nil {
		q += ` WHERE type = ?`
		args = append(args, edgeType.String())
	}
	q += ` ORDER BY created_at, id`

	all, err := r.queryEdges(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	edges := []*entities.Edge{}
	for _, edge := range all {
		if nodes[edge.SourceID] && nodes[edge.TargetID] {
			edges = append(edges, edge)
		}
	}
	return edges, nil
}

func filterType(q string, args []interface{}, edgeType *valueobjects.EdgeType) (string, []interface{}) {
	if edgeType != nil {
		q += ` AND type = ?`
		args = append(args, edgeType.String())
	}
	return q, args
}

func (r *EdgeRepository) queryEdges(ctx context.Context, q string, args ...interface{}) ([]*entities.Edge, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query edges", err)
	}
	defer rows.Close()

	edges := []*entities.Edge{}
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan edge", err)
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("query edges", err)
	}
	return edges, nil
}

func (r *EdgeRepository) queryIDs(ctx context.Context, q string, args ...interface{}) ([]valueobjects.NodeID, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query ids", err)
	}
	defer rows.Close()

	ids := []valueobjects.NodeID{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, pkgerrors.NewDatabaseError("query ids", err)
		}
		id, err := valueobjects.NewNodeIDFromString(raw)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query ids", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("query ids", err)
	}
	return ids, nil
}

func scanEdge(row rowScanner) (*entities.Edge, error) {
	var (
		id, edgeType, source, target, label string
		weight                              float64
		directed                            bool
		order                               sql.NullInt64
		props                               string
		createdAt, modifiedAt               string
	)
	err := row.Scan(&id, &edgeType, &source, &target, &label, &weight,
		&directed, &order, &props, &createdAt, &modifiedAt)
	if err != nil {
		return nil, err
	}

	sourceID, err := valueobjects.NewNodeIDFromString(source)
	if err != nil {
		return nil, err
	}
	targetID, err := valueobjects.NewNodeIDFromString(target)
	if err != nil {
		return nil, err
	}

	edge := &entities.Edge{
		ID:       id,
		Type:     valueobjects.EdgeType(edgeType),
		SourceID: sourceID,
		TargetID: targetID,
		Label:    label,
		Weight:   weight,
		Directed: directed,
	}
	if order.Valid {
		o := int(order.Int64)
		edge.SequenceOrder = &o
	}
	if props != "" && props != "{}" {
		if err := json.Unmarshal([]byte(props), &edge.Properties); err != nil {
			return nil, err
		}
	}
	if edge.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	if edge.ModifiedAt, err = decodeTime(modifiedAt); err != nil {
		return nil, err
	}
	return edge, nil
}

// reconstructPath rebuilds the node sequence from BFS parent links.
func reconstructPath(sourceID, targetID valueobjects.NodeID, parent map[valueobjects.NodeID]valueobjects.NodeID) []valueobjects.NodeID {
	path := []valueobjects.NodeID{targetID}
	current := targetID
	for !current.Equals(sourceID) {
		current = parent[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// sortedIDs flattens a set to a deterministic slice.
func sortedIDs(set map[valueobjects.NodeID]bool) []valueobjects.NodeID {
	ids := make([]valueobjects.NodeID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
