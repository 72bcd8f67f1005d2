package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isometry-backend/application/ports"
	"isometry-backend/domain/core/entities"
	"isometry-backend/domain/core/valueobjects"
	pkgerrors "isometry-backend/pkg/errors"
)

func seedNodes(t *testing.T, nodes ports.NodeRepository, count int) []valueobjects.NodeID {
	t.Helper()
	ids := make([]valueobjects.NodeID, count)
	for i := range ids {
		node := mustNode(t, valueobjects.NodeTypeNote, "node")
		require.NoError(t, nodes.Create(context.Background(), node))
		ids[i] = node.ID
	}
	return ids
}

func link(t *testing.T, edges ports.EdgeRepository, from, to valueobjects.NodeID) *entities.Edge {
	t.Helper()
	edge, err := entities.NewLinkEdge(from, to, "", 1.0)
	require.NoError(t, err)
	require.NoError(t, edges.Create(context.Background(), edge))
	return edge
}

func nest(t *testing.T, edges ports.EdgeRepository, parent, child valueobjects.NodeID) *entities.Edge {
	t.Helper()
	edge, err := entities.NewNestEdge(parent, child)
	require.NoError(t, err)
	require.NoError(t, edges.Create(context.Background(), edge))
	return edge
}

func TestEdgeRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	nodes, edges := openTestDB(t)
	ids := seedNodes(t, nodes, 2)

	edge, err := entities.NewLinkEdge(ids[0], ids[1], "references", 0.75)
	require.NoError(t, err)
	edge.Properties = map[string]interface{}{"origin": "import"}
	require.NoError(t, edges.Create(ctx, edge))

	got, err := edges.Get(ctx, edge.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobjects.EdgeTypeLink, got.Type)
	assert.Equal(t, "references", got.Label)
	assert.Equal(t, 0.75, got.Weight)
	assert.True(t, got.Directed)
	assert.True(t, got.SourceID.Equals(ids[0]))
	assert.True(t, got.TargetID.Equals(ids[1]))
	assert.Equal(t, "import", got.Properties["origin"])
	assert.Nil(t, got.SequenceOrder)
}

func TestEdgeRepository_CreateRequiresEndpoints(t *testing.T) {
	ctx := context.Background()
	nodes, edges := openTestDB(t)
	ids := seedNodes(t, nodes, 1)

	edge, err := entities.NewLinkEdge(ids[0], valueobjects.NewNodeID(), "", 1.0)
	require.NoError(t, err)

	err = edges.Create(ctx, edge)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestEdgeRepository_SoftDeletedEndpointStillCounts(t *testing.T) {
	ctx := context.Background()
	nodes, edges := openTestDB(t)
	ids := seedNodes(t, nodes, 2)

	require.NoError(t, nodes.Delete(ctx, ids[1]))

	edge, err := entities.NewLinkEdge(ids[0], ids[1], "", 1.0)
	require.NoError(t, err)
	assert.NoError(t, edges.Create(ctx, edge))
}

func TestEdgeRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	nodes, edges := openTestDB(t)
	ids := seedNodes(t, nodes, 2)
	edge := link(t, edges, ids[0], ids[1])

	edge.Label = "renamed"
	edge.Weight = 0.25
	require.NoError(t, edges.Update(ctx, edge))

	got, err := edges.Get(ctx, edge.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Label)
	assert.Equal(t, 0.25, got.Weight)

	require.NoError(t, edges.Delete(ctx, edge.ID))
	_, err = edges.Get(ctx, edge.ID)
	assert.True(t, pkgerrors.IsNotFound(err))

	err = edges.Delete(ctx, edge.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestEdgeRepository_DirectionalQueries(t *testing.T) {
	ctx := context.Background()
	nodes, edges := openTestDB(t)
	ids := seedNodes(t, nodes, 3)
	a, b, c := ids[0], ids[1], ids[2]

	link(t, edges, a, b)
	link(t, edges, c, a)
	nest(t, edges, a, c)

	outgoing, err := edges.GetOutgoingEdges(ctx, a, nil)
	require.NoError(t, err)
	assert.Len(t, outgoing, 2)

	linkType := valueobjects.EdgeTypeLink
	outgoingLinks, err := edges.GetOutgoingEdges(ctx, a, &linkType)
	require.NoError(t, err)
	require.Len(t, outgoingLinks, 1)
	assert.True(t, outgoingLinks[0].TargetID.Equals(b))

	incoming, err := edges.GetIncomingEdges(ctx, a, nil)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.True(t, incoming[0].SourceID.Equals(c))

	connected, err := edges.GetConnectedEdges(ctx, a, nil)
	require.NoError(t, err)
	assert.Len(t, connected, 3)
}

func TestEdgeRepository_Traversal(t *testing.T) {
	ctx := context.Background()
	nodes, edges := openTestDB(t)
	ids := seedNodes(t, nodes, 4)
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]

	// a -> b -> c, d disconnected
	link(t, edges, a, b)
	link(t, edges, b, c)

	neighbors, err := edges.GetNeighbors(ctx, a, nil, valueobjects.DirectionOutgoing)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.True(t, neighbors[0].Equals(b))

	atTwo, err := edges.GetNodesAtDistance(ctx, a, 2, nil, valueobjects.DirectionOutgoing)
	require.NoError(t, err)
	require.Len(t, atTwo, 1)
	assert.True(t, atTwo[0].Equals(c))

	path, err := edges.FindShortestPath(ctx, a, c, nil, 0)
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.True(t, path[0].Equals(a))
	assert.True(t, path[2].Equals(c))

	// The bound cuts off the two-hop path.
	short, err := edges.FindShortestPath(ctx, a, c, nil, 1)
	require.NoError(t, err)
	assert.Empty(t, short)

	// Disconnected pair is empty, not an error.
	none, err := edges.FindShortestPath(ctx, a, d, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEdgeRepository_ExtractSubgraph(t *testing.T) {
	ctx := context.Background()
	nodes, edges := openTestDB(t)
	ids := seedNodes(t, nodes, 4)
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]

	link(t, edges, a, b)
	link(t, edges, b, c)
	link(t, edges, c, d)

	sub, err := edges.ExtractSubgraph(ctx, a, 2, nil, valueobjects.DirectionOutgoing)
	require.NoError(t, err)
	assert.True(t, sub.CenterID.Equals(a))
	assert.Len(t, sub.NodeIDs, 3)
	assert.Len(t, sub.Edges, 2)
}

func TestEdgeRepository_ConnectedComponents(t *testing.T) {
	ctx := context.Background()
	nodes, edges := openTestDB(t)
	ids := seedNodes(t, nodes, 5)

	link(t, edges, ids[0], ids[1])
	link(t, edges, ids[2], ids[3])

	// ids[4] is a live singleton, counted at minSize 1.
	components, err := edges.FindConnectedComponents(ctx, nil, 1)
	require.NoError(t, err)
	assert.Len(t, components, 3)

	pairs, err := edges.FindConnectedComponents(ctx, nil, 2)
	require.NoError(t, err)
	assert.Len(t, pairs, 2)

	// Soft-deleted nodes drop out of components.
	require.NoError(t, nodes.Delete(ctx, ids[4]))
	components, err = edges.FindConnectedComponents(ctx, nil, 1)
	require.NoError(t, err)
	assert.Len(t, components, 2)
}

func TestEdgeRepository_Hierarchy(t *testing.T) {
	ctx := context.Background()
	nodes, edges := openTestDB(t)
	ids := seedNodes(t, nodes, 4)
	root, mid, leaf := ids[0], ids[1], ids[2]

	nest(t, edges, root, mid)
	nest(t, edges, mid, leaf)

	children, err := edges.GetChildren(ctx, root)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.True(t, children[0].Equals(mid))

	parent, err := edges.GetParent(ctx, mid)
	require.NoError(t, err)
	assert.True(t, parent.Equals(root))

	// A node without a NEST parent reports the zero ID.
	parent, err = edges.GetParent(ctx, root)
	require.NoError(t, err)
	assert.True(t, parent.IsZero())

	descendants, err := edges.GetDescendants(ctx, root, 0)
	require.NoError(t, err)
	assert.Len(t, descendants, 2)

	shallow, err := edges.GetDescendants(ctx, root, 1)
	require.NoError(t, err)
	require.Len(t, shallow, 1)
	assert.True(t, shallow[0].Equals(mid))

	ancestors, err := edges.GetAncestors(ctx, leaf)
	require.NoError(t, err)
	require.Len(t, ancestors, 2)
	assert.True(t, ancestors[0].Equals(mid))
	assert.True(t, ancestors[1].Equals(root))

	roots, err := edges.GetRootNodes(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.True(t, roots[0].Equals(root))

	leaves, err := edges.GetLeafNodes(ctx)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.True(t, leaves[0].Equals(leaf))
}

func TestEdgeRepository_Sequences(t *testing.T) {
	ctx := context.Background()
	nodes, edges := openTestDB(t)
	ids := seedNodes(t, nodes, 5)

	chain := make([]*entities.Edge, 0, 2)
	for i := 0; i < 2; i++ {
		edge, err := entities.NewSequenceEdge(ids[i], ids[i+1], i)
		require.NoError(t, err)
		chain = append(chain, edge)
	}
	require.NoError(t, edges.CreateBatch(ctx, chain))

	other, err := entities.NewSequenceEdge(ids[3], ids[4], 0)
	require.NoError(t, err)
	require.NoError(t, edges.Create(ctx, other))

	sequence, err := edges.GetSequence(ctx, ids[0], 0)
	require.NoError(t, err)
	require.Len(t, sequence, 3)
	for i, id := range sequence {
		assert.True(t, id.Equals(ids[i]))
	}

	truncated, err := edges.GetSequence(ctx, ids[0], 2)
	require.NoError(t, err)
	assert.Len(t, truncated, 2)

	all, err := edges.GetAllSequences(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	long, err := edges.GetAllSequences(ctx, 3)
	require.NoError(t, err)
	require.Len(t, long, 1)
	assert.Len(t, long[0], 3)
}

func TestEdgeRepository_GetByType(t *testing.T) {
	ctx := context.Background()
	nodes, edges := openTestDB(t)
	ids := seedNodes(t, nodes, 3)

	link(t, edges, ids[0], ids[1])
	nest(t, edges, ids[0], ids[2])

	links, err := edges.GetByType(ctx, valueobjects.EdgeTypeLink)
	require.NoError(t, err)
	assert.Len(t, links, 1)

	affinities, err := edges.GetByType(ctx, valueobjects.EdgeTypeAffinity)
	require.NoError(t, err)
	assert.Empty(t, affinities)
}
