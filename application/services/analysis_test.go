package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"isometry-backend/application/ports"
	"isometry-backend/domain/core/entities"
	"isometry-backend/domain/core/valueobjects"
	"isometry-backend/infrastructure/persistence/sqlite"
	pkgerrors "isometry-backend/pkg/errors"
)

// newSQLiteService builds a GraphService over an in-memory database so
// the analysis loops exercise the real storage queries.
func newSQLiteService(t *testing.T) (*GraphService, ports.NodeRepository, ports.EdgeRepository) {
	t.Helper()
	logger := zap.NewNop()
	db, err := sqlite.Open(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	nodes := sqlite.NewNodeRepository(db, logger)
	edges := sqlite.NewEdgeRepository(db, logger)
	return NewGraphService(nodes, edges, logger), nodes, edges
}

func seedNode(t *testing.T, nodes ports.NodeRepository, name string) valueobjects.NodeID {
	t.Helper()
	node, err := entities.NewNode(valueobjects.NodeTypeNote, name)
	require.NoError(t, err)
	require.NoError(t, nodes.Create(context.Background(), node))
	return node.ID
}

func seedLink(t *testing.T, edges ports.EdgeRepository, from, to valueobjects.NodeID) {
	t.Helper()
	edge, err := entities.NewLinkEdge(from, to, "", 1.0)
	require.NoError(t, err)
	require.NoError(t, edges.Create(context.Background(), edge))
}

func TestGraphService_GetNodesByCentrality_Degree(t *testing.T) {
	ctx := context.Background()
	svc, nodes, edges := newSQLiteService(t)

	hub := seedNode(t, nodes, "hub")
	spokes := []valueobjects.NodeID{
		seedNode(t, nodes, "spoke-1"),
		seedNode(t, nodes, "spoke-2"),
		seedNode(t, nodes, "spoke-3"),
	}
	for _, spoke := range spokes {
		seedLink(t, edges, hub, spoke)
	}

	result, err := svc.GetNodesByCentrality(ctx, CentralityDegree, 0)

	require.NoError(t, err)
	require.Len(t, result.Scores, 4)
	assert.True(t, result.Scores[0].NodeID.Equals(hub))
	assert.Equal(t, 3.0, result.Scores[0].Score)
	for _, score := range result.Scores[1:] {
		assert.Equal(t, 1.0, score.Score)
	}
	assert.Zero(t, result.SkippedPairs)
}

func TestGraphService_GetNodesByCentrality_DegreeBidirectionalStar(t *testing.T) {
	ctx := context.Background()
	svc, nodes, edges := newSQLiteService(t)

	center := seedNode(t, nodes, "center")
	leaves := make([]valueobjects.NodeID, 5)
	for i := range leaves {
		leaves[i] = seedNode(t, nodes, "leaf")
		seedLink(t, edges, center, leaves[i])
		seedLink(t, edges, leaves[i], center)
	}

	result, err := svc.GetNodesByCentrality(ctx, CentralityDegree, 0)

	require.NoError(t, err)
	require.Len(t, result.Scores, 6)
	assert.True(t, result.Scores[0].NodeID.Equals(center))
	assert.Equal(t, 10.0, result.Scores[0].Score)
	for _, score := range result.Scores[1:] {
		assert.Equal(t, 2.0, score.Score)
	}
}

func TestGraphService_GetNodesByCentrality_Betweenness(t *testing.T) {
	ctx := context.Background()
	svc, nodes, edges := newSQLiteService(t)

	// a -> b -> c: only b sits on the interior of a shortest path.
	a := seedNode(t, nodes, "a")
	b := seedNode(t, nodes, "b")
	c := seedNode(t, nodes, "c")
	seedLink(t, edges, a, b)
	seedLink(t, edges, b, c)

	result, err := svc.GetNodesByCentrality(ctx, CentralityBetweenness, 0)

	require.NoError(t, err)
	require.Len(t, result.Scores, 3)
	assert.True(t, result.Scores[0].NodeID.Equals(b))
	assert.Equal(t, 1.0, result.Scores[0].Score)
	assert.Equal(t, 0.0, result.Scores[1].Score)
	assert.Equal(t, 0.0, result.Scores[2].Score)
	assert.Zero(t, result.SkippedPairs)
}

func TestGraphService_GetNodesByCentrality_SkippedPairs(t *testing.T) {
	ctx := context.Background()
	svc, nodes, edges := newServiceWithMocks()

	stubs := make([]*entities.Node, 3)
	for i := range stubs {
		stubs[i] = stubNode(t, valueobjects.NewNodeID())
	}
	nodes.On("GetAll", ctx, ports.ListOptions{}).Return(stubs, nil)
	edges.On("FindShortestPath", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, pkgerrors.NewDatabaseError("traverse", assert.AnError))

	result, err := svc.GetNodesByCentrality(ctx, CentralityBetweenness, 0)

	// Per-pair failures are skipped and reported, not propagated.
	require.NoError(t, err)
	assert.Equal(t, 3, result.SkippedPairs)
	require.Len(t, result.Scores, 3)
	for _, score := range result.Scores {
		assert.Equal(t, 0.0, score.Score)
	}
}

func TestGraphService_GetNodesByCentrality_Closeness(t *testing.T) {
	ctx := context.Background()
	svc, nodes, edges := newSQLiteService(t)

	// a -> b -> c, so a averages (1+2)/2 hops.
	a := seedNode(t, nodes, "a")
	b := seedNode(t, nodes, "b")
	c := seedNode(t, nodes, "c")
	seedLink(t, edges, a, b)
	seedLink(t, edges, b, c)

	result, err := svc.GetNodesByCentrality(ctx, CentralityCloseness, 0)

	require.NoError(t, err)
	require.Len(t, result.Scores, 3)
	byID := make(map[valueobjects.NodeID]float64, 3)
	for _, score := range result.Scores {
		byID[score.NodeID] = score.Score
	}
	assert.InDelta(t, 2.0/3.0, byID[a], 1e-9)
	assert.InDelta(t, 1.0, byID[b], 1e-9)
	assert.Equal(t, 0.0, byID[c])
}

func TestGraphService_GetNodesByCentrality_RejectsUnknownMeasure(t *testing.T) {
	svc, _, _ := newSQLiteService(t)

	_, err := svc.GetNodesByCentrality(context.Background(), CentralityMeasure("pagerank"), 0)

	assert.True(t, pkgerrors.IsInvalidData(err))
}

func TestGraphService_FindClusters_ConnectedComponents(t *testing.T) {
	ctx := context.Background()
	svc, nodes, edges := newSQLiteService(t)

	a := seedNode(t, nodes, "a")
	b := seedNode(t, nodes, "b")
	c := seedNode(t, nodes, "c")
	d := seedNode(t, nodes, "d")
	e := seedNode(t, nodes, "e")
	seedNode(t, nodes, "loner")

	seedLink(t, edges, a, b)
	seedLink(t, edges, b, c)
	seedLink(t, edges, d, e)

	result, err := svc.FindClusters(ctx, ClusterConnectedComponents, 0)

	require.NoError(t, err)
	require.Len(t, result.Clusters, 2)
	assert.Len(t, result.Clusters[0], 3)
	assert.Len(t, result.Clusters[1], 2)
}

func TestGraphService_FindClusters_StronglyConnected(t *testing.T) {
	ctx := context.Background()
	svc, nodes, edges := newSQLiteService(t)

	// a -> b -> c -> a is mutually reachable; d -> e is one-way only.
	a := seedNode(t, nodes, "a")
	b := seedNode(t, nodes, "b")
	c := seedNode(t, nodes, "c")
	d := seedNode(t, nodes, "d")
	e := seedNode(t, nodes, "e")
	seedLink(t, edges, a, b)
	seedLink(t, edges, b, c)
	seedLink(t, edges, c, a)
	seedLink(t, edges, d, e)

	result, err := svc.FindClusters(ctx, ClusterStronglyConnected, 0)

	require.NoError(t, err)
	require.Len(t, result.Clusters, 1)
	assert.Len(t, result.Clusters[0], 3)
	assert.Zero(t, result.SkippedPairs)
}

func TestGraphService_FindClusters_AffinityCommunities(t *testing.T) {
	ctx := context.Background()
	svc, nodes, edges := newSQLiteService(t)

	a := seedNode(t, nodes, "a")
	b := seedNode(t, nodes, "b")
	c := seedNode(t, nodes, "c")
	d := seedNode(t, nodes, "d")
	e := seedNode(t, nodes, "e")

	for _, pair := range []struct {
		from, to valueobjects.NodeID
		weight   float64
	}{
		{a, b, 0.9},
		{b, c, 0.8},
		{d, e, 0.3},
	} {
		edge, err := entities.NewAffinityEdge(pair.from, pair.to, pair.weight)
		require.NoError(t, err)
		require.NoError(t, edges.Create(ctx, edge))
	}

	result, err := svc.FindClusters(ctx, ClusterCommunityDetection, 0)

	require.NoError(t, err)
	require.Len(t, result.Clusters, 1)
	assert.Len(t, result.Clusters[0], 3)
}

func TestGraphService_FindClusters_RejectsUnknownAlgorithm(t *testing.T) {
	svc, _, _ := newSQLiteService(t)

	_, err := svc.FindClusters(context.Background(), ClusterAlgorithm("louvain"), 0)

	assert.True(t, pkgerrors.IsInvalidData(err))
}

func TestGraphService_AnalyzeGraph(t *testing.T) {
	ctx := context.Background()
	svc, nodes, edges := newSQLiteService(t)

	a := seedNode(t, nodes, "a")
	b := seedNode(t, nodes, "b")
	c := seedNode(t, nodes, "c")
	seedNode(t, nodes, "isolated")

	seedLink(t, edges, a, b)
	nest, err := entities.NewNestEdge(a, c)
	require.NoError(t, err)
	require.NoError(t, edges.Create(ctx, nest))

	analysis, err := svc.AnalyzeGraph(ctx)

	require.NoError(t, err)
	assert.Equal(t, 4, analysis.NodeCount)
	assert.Equal(t, 2, analysis.EdgeCount)
	assert.Equal(t, 2, analysis.MaxOutDegree)
	assert.Equal(t, 1, analysis.MaxInDegree)
	assert.Equal(t, 2, analysis.EdgeTypeHistogram[valueobjects.EdgeTypeLink]+analysis.EdgeTypeHistogram[valueobjects.EdgeTypeNest])
	assert.Equal(t, 0, analysis.EdgeTypeHistogram[valueobjects.EdgeTypeSequence])
	assert.Equal(t, 2, analysis.ComponentCount)
	assert.Equal(t, 3, analysis.LargestComponentSize)
	assert.InDelta(t, 2.0/12.0, analysis.Density, 1e-9)
}

func TestGraphService_AnalyzeGraph_IgnoresEdgesOfDeletedNodes(t *testing.T) {
	ctx := context.Background()
	svc, nodes, edges := newSQLiteService(t)

	a := seedNode(t, nodes, "a")
	b := seedNode(t, nodes, "b")
	c := seedNode(t, nodes, "c")
	seedLink(t, edges, a, b)
	seedLink(t, edges, b, c)

	require.NoError(t, nodes.Delete(ctx, c))

	analysis, err := svc.AnalyzeGraph(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, analysis.NodeCount)
	assert.Equal(t, 1, analysis.EdgeCount)
	assert.Equal(t, 1, analysis.EdgeTypeHistogram[valueobjects.EdgeTypeLink])
	assert.Equal(t, 1, analysis.MaxOutDegree)
	assert.InDelta(t, 0.5, analysis.Density, 1e-9)
}

func TestGraphService_AnalyzeGraph_Empty(t *testing.T) {
	svc, _, _ := newSQLiteService(t)

	analysis, err := svc.AnalyzeGraph(context.Background())

	require.NoError(t, err)
	assert.Zero(t, analysis.NodeCount)
	assert.Zero(t, analysis.EdgeCount)
	assert.Zero(t, analysis.Density)
}
